package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/orbitcrm/orbitcrm/internal/approval/domain"
	"github.com/orbitcrm/orbitcrm/internal/authctx"
	quotedomain "github.com/orbitcrm/orbitcrm/internal/quote/domain"
	"github.com/orbitcrm/orbitcrm/pkg/tenantctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.Repository
	QuoteRepo quotedomain.Repository
	QuoteSvc  quotedomain.Service
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	quoteRepo quotedomain.Repository
	quoteSvc  quotedomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("approval.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		quoteRepo: p.QuoteRepo,
		quoteSvc:  p.QuoteSvc,
	}
}

func (s *Service) Request(ctx context.Context, quoteID string) (domain.RequestResult, error) {
	if _, ok := authctx.PrincipalFromContext(ctx); !ok {
		return domain.RequestResult{}, quotedomain.ErrUnauthenticated
	}

	// Recalculate immediately before matching: band selection must never see
	// a stale amount, so totals are refreshed from the line items rather than
	// trusted from the last write.
	view, err := s.quoteSvc.Get(ctx, quoteID)
	if err != nil {
		return domain.RequestResult{}, err
	}
	quote := view.Quote
	if quote.Locked() {
		return domain.RequestResult{}, quotedomain.ErrQuoteLocked
	}

	db := tenantctx.DB(ctx, s.db)
	rules, err := s.repo.ListActiveRules(ctx, db)
	if err != nil {
		return domain.RequestResult{}, err
	}
	matched := domain.MatchRules(rules, quote.Total)

	if len(matched) == 0 {
		// Nothing to collect: the quote is approved outright. Any chain from
		// an earlier request is discarded with the status flip or not at all.
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := s.repo.ReplaceChain(ctx, tx, quote.ID, nil); err != nil {
				return err
			}
			return s.setQuoteStatus(ctx, tx, &quote, quotedomain.StatusApproved)
		})
		if err != nil {
			return domain.RequestResult{}, err
		}
		s.log.Info("quote auto-approved",
			zap.String("quote_id", quote.ID.String()),
			zap.String("total", quote.Total.String()),
		)
		return domain.RequestResult{AutoApproved: true}, nil
	}

	// Concatenate the matched rules' steps into one chain with a global,
	// monotonically increasing step order. A matched rule without active
	// steps means the matrix is misconfigured; nothing is written.
	now := time.Now().UTC()
	var chain []domain.QuoteApproval
	order := 0
	for _, rule := range matched {
		if len(rule.Steps) == 0 {
			return domain.RequestResult{}, domain.ErrRuleMisconfigured
		}
		for _, step := range rule.Steps {
			order++
			status := domain.StatusWaiting
			if order == 1 {
				status = domain.StatusPending
			}
			chain = append(chain, domain.QuoteApproval{
				ID:         s.genID.Generate(),
				QuoteID:    quote.ID,
				RuleID:     rule.ID,
				RuleStepID: step.ID,
				StepOrder:  order,
				Approver:   step.Approver,
				Status:     status,
				CreatedAt:  now,
			})
		}
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.ReplaceChain(ctx, tx, quote.ID, chain); err != nil {
			return err
		}
		return s.setQuoteStatus(ctx, tx, &quote, quotedomain.StatusPendingApproval)
	})
	if err != nil {
		return domain.RequestResult{}, err
	}

	s.log.Info("approval chain created",
		zap.String("quote_id", quote.ID.String()),
		zap.Int("steps", len(chain)),
	)
	return domain.RequestResult{Approvals: chain}, nil
}

func (s *Service) Act(ctx context.Context, req domain.ActRequest) (domain.QuoteApproval, error) {
	principal, ok := authctx.PrincipalFromContext(ctx)
	if !ok {
		return domain.QuoteApproval{}, quotedomain.ErrUnauthenticated
	}

	id, err := parseID(req.ApprovalID)
	if err != nil {
		return domain.QuoteApproval{}, err
	}

	db := tenantctx.DB(ctx, s.db)
	approval, err := s.repo.FindApprovalByID(ctx, db, id)
	if err != nil {
		return domain.QuoteApproval{}, err
	}
	if approval == nil {
		return domain.QuoteApproval{}, domain.ErrApprovalNotFound
	}
	if !approval.Approver.Matches(principal.UserID, principal.RoleName) {
		return domain.QuoteApproval{}, domain.ErrNotAuthorized
	}

	next := domain.StatusApproved
	if !req.Approve {
		next = domain.StatusRejected
	}
	var comment *string
	if trimmed := strings.TrimSpace(req.Comment); trimmed != "" {
		comment = &trimmed
	}

	// The CAS and everything it triggers (cascade, promotion, quote status)
	// commit together or not at all.
	now := time.Now().UTC()
	err = db.Transaction(func(tx *gorm.DB) error {
		won, err := s.repo.TransitionStatus(ctx, tx, approval.ID, domain.StatusPending, next, principal.UserID, now, comment)
		if err != nil {
			return err
		}
		if !won {
			// Either the step was never PENDING or a concurrent actor got
			// there first.
			return domain.ErrConflict
		}

		quote, err := s.quoteRepo.FindByID(ctx, tx, approval.QuoteID)
		if err != nil {
			return err
		}
		if quote == nil {
			return quotedomain.ErrNotFound
		}

		if !req.Approve {
			if err := s.repo.CancelRemaining(ctx, tx, approval.QuoteID); err != nil {
				return err
			}
			return s.setQuoteStatus(ctx, tx, quote, quotedomain.StatusRejected)
		}

		waiting, err := s.repo.FirstWithStatus(ctx, tx, approval.QuoteID, domain.StatusWaiting)
		if err != nil {
			return err
		}
		if waiting != nil {
			_, err := s.repo.SetStatus(ctx, tx, waiting.ID, domain.StatusWaiting, domain.StatusPending)
			return err
		}

		// Chain exhausted.
		return s.setQuoteStatus(ctx, tx, quote, quotedomain.StatusApproved)
	})
	if err != nil {
		return domain.QuoteApproval{}, err
	}

	approval.Status = next
	approval.ActedByID = &principal.UserID
	approval.ActedAt = &now
	approval.Comment = comment

	s.log.Info("approval recorded",
		zap.String("quote_id", approval.QuoteID.String()),
		zap.Int("step_order", approval.StepOrder),
		zap.Bool("approved", req.Approve),
	)
	return *approval, nil
}

func (s *Service) Inbox(ctx context.Context) ([]domain.InboxEntry, error) {
	principal, ok := authctx.PrincipalFromContext(ctx)
	if !ok {
		return nil, quotedomain.ErrUnauthenticated
	}

	db := tenantctx.DB(ctx, s.db)
	approvals, err := s.repo.ListPendingFor(ctx, db, principal.UserID, principal.RoleName)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.InboxEntry, 0, len(approvals))
	for _, approval := range approvals {
		entry := domain.InboxEntry{Approval: approval}
		quote, err := s.quoteRepo.FindByID(ctx, db, approval.QuoteID)
		if err != nil {
			return nil, err
		}
		if quote != nil {
			entry.QuoteCode = quote.QuoteCode
			entry.Total = quote.Total
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *Service) ListByQuote(ctx context.Context, quoteID string) ([]domain.QuoteApproval, error) {
	id, err := parseID(quoteID)
	if err != nil {
		return nil, err
	}
	db := tenantctx.DB(ctx, s.db)
	return s.repo.ListByQuote(ctx, db, id)
}

func (s *Service) CreateRule(ctx context.Context, req domain.CreateRuleRequest) (domain.ApprovalRule, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.ApprovalRule{}, domain.ErrInvalidRule
	}
	if req.MaxAmount != nil && req.MaxAmount.LessThan(req.MinAmount) {
		return domain.ApprovalRule{}, domain.ErrInvalidRule
	}

	now := time.Now().UTC()
	rule := domain.ApprovalRule{
		ID:        s.genID.Generate(),
		Name:      name,
		MinAmount: req.MinAmount,
		MaxAmount: req.MaxAmount,
		SortOrder: req.SortOrder,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	steps, err := s.buildSteps(rule.ID, req.Steps)
	if err != nil {
		return domain.ApprovalRule{}, err
	}
	rule.Steps = steps

	db := tenantctx.DB(ctx, s.db)
	if err := s.repo.InsertRule(ctx, db, &rule); err != nil {
		return domain.ApprovalRule{}, err
	}
	return rule, nil
}

func (s *Service) UpdateRule(ctx context.Context, req domain.UpdateRuleRequest) (domain.ApprovalRule, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return domain.ApprovalRule{}, err
	}

	db := tenantctx.DB(ctx, s.db)
	rule, err := s.repo.FindRuleByID(ctx, db, id)
	if err != nil {
		return domain.ApprovalRule{}, err
	}
	if rule == nil {
		return domain.ApprovalRule{}, domain.ErrRuleNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.ApprovalRule{}, domain.ErrInvalidRule
		}
		rule.Name = name
	}
	if req.MinAmount != nil {
		rule.MinAmount = *req.MinAmount
	}
	if req.MaxAmount != nil {
		rule.MaxAmount = req.MaxAmount
	}
	if req.SortOrder != nil {
		rule.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	if rule.MaxAmount != nil && rule.MaxAmount.LessThan(rule.MinAmount) {
		return domain.ApprovalRule{}, domain.ErrInvalidRule
	}
	rule.UpdatedAt = time.Now().UTC()

	if req.Steps != nil {
		steps, err := s.buildSteps(rule.ID, req.Steps)
		if err != nil {
			return domain.ApprovalRule{}, err
		}
		if err := s.repo.ReplaceSteps(ctx, db, rule.ID, steps); err != nil {
			return domain.ApprovalRule{}, err
		}
		rule.Steps = steps
	}
	if err := s.repo.SaveRule(ctx, db, rule); err != nil {
		return domain.ApprovalRule{}, err
	}
	return *rule, nil
}

func (s *Service) ListRules(ctx context.Context) ([]domain.ApprovalRule, error) {
	db := tenantctx.DB(ctx, s.db)
	return s.repo.ListRules(ctx, db)
}

func (s *Service) DeleteRule(ctx context.Context, id string) error {
	ruleID, err := parseID(id)
	if err != nil {
		return err
	}
	db := tenantctx.DB(ctx, s.db)
	rule, err := s.repo.FindRuleByID(ctx, db, ruleID)
	if err != nil {
		return err
	}
	if rule == nil {
		return domain.ErrRuleNotFound
	}
	return s.repo.DeleteRule(ctx, db, ruleID)
}

func (s *Service) buildSteps(ruleID snowflake.ID, inputs []domain.StepInput) ([]domain.ApprovalRuleStep, error) {
	steps := make([]domain.ApprovalRuleStep, 0, len(inputs))
	for i, in := range inputs {
		spec := in.Approver
		switch spec.Type {
		case domain.ApproverUser:
			if spec.UserID == nil {
				return nil, domain.ErrInvalidRule
			}
			spec.RoleName = nil
		case domain.ApproverRole:
			if spec.RoleName == nil || strings.TrimSpace(*spec.RoleName) == "" {
				return nil, domain.ErrInvalidRule
			}
			spec.UserID = nil
		default:
			return nil, domain.ErrInvalidRule
		}
		active := true
		if in.Active != nil {
			active = *in.Active
		}
		steps = append(steps, domain.ApprovalRuleStep{
			ID:        s.genID.Generate(),
			RuleID:    ruleID,
			StepOrder: i + 1,
			Approver:  spec,
			IsActive:  active,
		})
	}
	return steps, nil
}

func (s *Service) setQuoteStatus(ctx context.Context, db *gorm.DB, quote *quotedomain.Quote, name string) error {
	status, err := s.quoteRepo.GetStatusByName(ctx, db, name)
	if err != nil {
		return err
	}
	if status == nil {
		return quotedomain.ErrStatusMissing
	}
	quote.StatusID = status.ID
	quote.Status = status
	quote.UpdatedAt = time.Now().UTC()
	return s.quoteRepo.Save(ctx, db, quote)
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, quotedomain.ErrInvalidID
	}
	return id, nil
}

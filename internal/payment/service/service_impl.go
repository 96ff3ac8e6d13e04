package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/orbitcrm/orbitcrm/internal/authctx"
	"github.com/orbitcrm/orbitcrm/internal/payment/domain"
	quotedomain "github.com/orbitcrm/orbitcrm/internal/quote/domain"
	"github.com/orbitcrm/orbitcrm/pkg/tenantctx"
	"github.com/shopspring/decimal"
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
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	quoteRepo quotedomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("payment.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		quoteRepo: p.QuoteRepo,
	}
}

func (s *Service) Record(ctx context.Context, req domain.RecordRequest) (domain.PaymentCollection, error) {
	principal, ok := authctx.PrincipalFromContext(ctx)
	if !ok {
		return domain.PaymentCollection{}, quotedomain.ErrUnauthenticated
	}
	if !req.Amount.IsPositive() {
		return domain.PaymentCollection{}, domain.ErrInvalidAmount
	}

	quoteID, err := parseID(req.QuoteID)
	if err != nil {
		return domain.PaymentCollection{}, err
	}

	db := tenantctx.DB(ctx, s.db)
	quote, err := s.quoteRepo.FindByID(ctx, db, quoteID)
	if err != nil {
		return domain.PaymentCollection{}, err
	}
	if quote == nil {
		return domain.PaymentCollection{}, quotedomain.ErrNotFound
	}

	method := strings.TrimSpace(req.Method)
	if method == "" {
		method = "Bank Transfer"
	}

	collection := domain.PaymentCollection{
		ID:           s.genID.Generate(),
		QuoteID:      quote.ID,
		Amount:       req.Amount,
		Method:       method,
		Status:       domain.StatusPending,
		RecordedByID: principal.UserID,
		CreatedAt:    time.Now().UTC(),
	}
	if ref := strings.TrimSpace(req.Reference); ref != "" {
		collection.Reference = &ref
	}
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		collection.Notes = &notes
	}

	if err := s.repo.Insert(ctx, db, &collection); err != nil {
		return domain.PaymentCollection{}, err
	}
	s.log.Info("collection recorded",
		zap.String("quote_id", quote.ID.String()),
		zap.String("amount", collection.Amount.String()),
	)
	return collection, nil
}

func (s *Service) Verify(ctx context.Context, id string, approve bool) (domain.PaymentCollection, error) {
	principal, ok := authctx.PrincipalFromContext(ctx)
	if !ok {
		return domain.PaymentCollection{}, quotedomain.ErrUnauthenticated
	}

	collectionID, err := parseID(id)
	if err != nil {
		return domain.PaymentCollection{}, err
	}

	db := tenantctx.DB(ctx, s.db)
	collection, err := s.repo.FindByID(ctx, db, collectionID)
	if err != nil {
		return domain.PaymentCollection{}, err
	}
	if collection == nil {
		return domain.PaymentCollection{}, domain.ErrNotFound
	}

	next := domain.StatusVerified
	if !approve {
		next = domain.StatusRejected
	}
	now := time.Now().UTC()
	won, err := s.repo.TransitionStatus(ctx, db, collection.ID, next, principal.UserID, now)
	if err != nil {
		return domain.PaymentCollection{}, err
	}
	if !won {
		return domain.PaymentCollection{}, domain.ErrNotPending
	}

	collection.Status = next
	collection.VerifiedByID = &principal.UserID
	collection.VerifiedAt = &now
	return *collection, nil
}

func (s *Service) ListByQuote(ctx context.Context, quoteID string) ([]domain.PaymentCollection, error) {
	id, err := parseID(quoteID)
	if err != nil {
		return nil, err
	}
	db := tenantctx.DB(ctx, s.db)
	return s.repo.ListByQuote(ctx, db, id)
}

func (s *Service) Summarize(ctx context.Context, quoteID string) (domain.Summary, error) {
	id, err := parseID(quoteID)
	if err != nil {
		return domain.Summary{}, err
	}

	db := tenantctx.DB(ctx, s.db)
	quote, err := s.quoteRepo.FindByID(ctx, db, id)
	if err != nil {
		return domain.Summary{}, err
	}
	if quote == nil {
		return domain.Summary{}, quotedomain.ErrNotFound
	}

	collected, err := s.repo.SumVerified(ctx, db, id)
	if err != nil {
		return domain.Summary{}, err
	}
	remaining := quote.Total.Sub(collected)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	return domain.Summary{
		QuoteID:   quote.ID,
		Total:     quote.Total,
		Collected: collected,
		Remaining: remaining,
	}, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, quotedomain.ErrInvalidID
	}
	return id, nil
}

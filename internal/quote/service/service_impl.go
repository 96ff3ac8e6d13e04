package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/orbitcrm/orbitcrm/internal/authctx"
	clientdomain "github.com/orbitcrm/orbitcrm/internal/client/domain"
	companydomain "github.com/orbitcrm/orbitcrm/internal/company/domain"
	opportunitydomain "github.com/orbitcrm/orbitcrm/internal/opportunity/domain"
	"github.com/orbitcrm/orbitcrm/internal/pricing"
	"github.com/orbitcrm/orbitcrm/internal/quote/domain"
	"github.com/orbitcrm/orbitcrm/pkg/db/pagination"
	"github.com/orbitcrm/orbitcrm/pkg/tenantctx"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Repo        domain.Repository
	CompanyRepo companydomain.Repository
	ClientRepo  clientdomain.Repository
	OppRepo     opportunitydomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        domain.Repository
	companyRepo companydomain.Repository
	clientRepo  clientdomain.Repository
	oppRepo     opportunitydomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("quote.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		companyRepo: p.CompanyRepo,
		clientRepo:  p.ClientRepo,
		oppRepo:     p.OppRepo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateQuoteRequest) (domain.QuoteView, error) {
	principal, ok := authctx.PrincipalFromContext(ctx)
	if !ok {
		return domain.QuoteView{}, domain.ErrUnauthenticated
	}

	oppID, err := parseID(req.OpportunityID)
	if err != nil {
		return domain.QuoteView{}, err
	}

	db := tenantctx.DB(ctx, s.db)
	opp, err := s.oppRepo.FindByID(ctx, db, oppID)
	if err != nil {
		return domain.QuoteView{}, err
	}
	if opp == nil {
		return domain.QuoteView{}, domain.ErrOpportunityNotFound
	}

	draft, err := s.statusByName(ctx, db, domain.StatusDraft)
	if err != nil {
		return domain.QuoteView{}, err
	}

	version, err := s.repo.NextVersion(ctx, db, oppID)
	if err != nil {
		return domain.QuoteView{}, err
	}
	count, err := s.repo.CountQuotes(ctx, db)
	if err != nil {
		return domain.QuoteView{}, err
	}

	now := time.Now().UTC()
	quote := domain.Quote{
		ID:              s.genID.Generate(),
		QuoteCode:       fmt.Sprintf("QT-%06d", count+1),
		Version:         version,
		OpportunityID:   oppID,
		StatusID:        draft.ID,
		Status:          draft,
		CreatedByID:     principal.UserID,
		ClientID:        opp.ClientID,
		ClientBranchID:  opp.ClientBranchID,
		Currency:        normalizeCurrency(req.Currency),
		Discount:        req.Discount,
		BillingState:    strings.TrimSpace(req.BillingState),
		IsGSTApplicable: req.IsGSTApplicable,
		ValidUntil:      req.ValidUntil,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if gstin := strings.TrimSpace(req.BillingGSTIN); gstin != "" {
		quote.BillingGSTIN = &gstin
	}
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		quote.Notes = &notes
	}
	if req.CompanyBranchID != "" {
		branchID, err := parseID(req.CompanyBranchID)
		if err != nil {
			return domain.QuoteView{}, err
		}
		quote.CompanyBranchID = &branchID
	}

	items, err := s.buildItems(quote.ID, req.Items)
	if err != nil {
		return domain.QuoteView{}, err
	}

	if err := s.computeTotals(ctx, db, &quote, items); err != nil {
		return domain.QuoteView{}, err
	}
	if err := s.repo.Insert(ctx, db, &quote, items); err != nil {
		return domain.QuoteView{}, err
	}

	s.log.Info("quote created",
		zap.String("quote_id", quote.ID.String()),
		zap.String("quote_code", quote.QuoteCode),
		zap.Int("version", quote.Version),
	)
	return domain.QuoteView{Quote: quote, Items: items}, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.QuoteView, error) {
	db := tenantctx.DB(ctx, s.db)
	quote, items, err := s.loadAggregate(ctx, db, id)
	if err != nil {
		return domain.QuoteView{}, err
	}

	// Recalculate on read so stored totals are never served stale.
	if err := s.computeTotals(ctx, db, quote, items); err != nil {
		return domain.QuoteView{}, err
	}
	if err := s.repo.SaveTotals(ctx, db, quote, items); err != nil {
		return domain.QuoteView{}, err
	}
	return domain.QuoteView{Quote: *quote, Items: items}, nil
}

func (s *Service) ListByOpportunity(ctx context.Context, opportunityID string, page pagination.Pagination) (domain.QuoteList, error) {
	oppID, err := parseID(opportunityID)
	if err != nil {
		return domain.QuoteList{}, err
	}

	size := page.PageSize
	if size <= 0 {
		size = 50
	}

	db := tenantctx.DB(ctx, s.db)
	rows, err := s.repo.ListByOpportunity(ctx, db, oppID, pagination.Pagination{
		PageToken: page.PageToken,
		PageSize:  size,
	})
	if err != nil {
		return domain.QuoteList{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(rows, size, func(quote *domain.Quote) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        quote.ID.String(),
			CreatedAt: quote.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(rows) > size {
		rows = rows[:size]
	}

	quotes := make([]domain.Quote, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		quotes = append(quotes, *row)
	}

	list := domain.QuoteList{Quotes: quotes}
	if pageInfo != nil {
		list.PageInfo = *pageInfo
	}
	return list, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateQuoteRequest) (domain.QuoteView, error) {
	db := tenantctx.DB(ctx, s.db)
	quote, _, err := s.loadAggregate(ctx, db, req.ID)
	if err != nil {
		return domain.QuoteView{}, err
	}
	if quote.Locked() {
		return domain.QuoteView{}, domain.ErrQuoteLocked
	}

	if req.Discount != nil {
		quote.Discount = *req.Discount
	}
	if req.Currency != "" {
		quote.Currency = normalizeCurrency(req.Currency)
	}
	if req.CompanyBranchID != "" {
		branchID, err := parseID(req.CompanyBranchID)
		if err != nil {
			return domain.QuoteView{}, err
		}
		quote.CompanyBranchID = &branchID
	}
	if req.BillingState != nil {
		quote.BillingState = strings.TrimSpace(*req.BillingState)
	}
	if req.IsGSTApplicable != nil {
		quote.IsGSTApplicable = *req.IsGSTApplicable
	}

	items, err := s.buildItems(quote.ID, req.Items)
	if err != nil {
		return domain.QuoteView{}, err
	}

	if err := s.computeTotals(ctx, db, quote, items); err != nil {
		return domain.QuoteView{}, err
	}
	quote.UpdatedAt = time.Now().UTC()

	if err := s.repo.ReplaceItems(ctx, db, quote.ID, items); err != nil {
		return domain.QuoteView{}, err
	}
	if err := s.repo.Save(ctx, db, quote); err != nil {
		return domain.QuoteView{}, err
	}
	return domain.QuoteView{Quote: *quote, Items: items}, nil
}

func (s *Service) NewVersion(ctx context.Context, id string) (domain.QuoteView, error) {
	db := tenantctx.DB(ctx, s.db)
	quote, items, err := s.loadAggregate(ctx, db, id)
	if err != nil {
		return domain.QuoteView{}, err
	}

	draft, err := s.statusByName(ctx, db, domain.StatusDraft)
	if err != nil {
		return domain.QuoteView{}, err
	}
	version, err := s.repo.NextVersion(ctx, db, quote.OpportunityID)
	if err != nil {
		return domain.QuoteView{}, err
	}
	count, err := s.repo.CountQuotes(ctx, db)
	if err != nil {
		return domain.QuoteView{}, err
	}

	now := time.Now().UTC()
	next := *quote
	next.ID = s.genID.Generate()
	next.QuoteCode = fmt.Sprintf("QT-%06d", count+1)
	next.Version = version
	next.StatusID = draft.ID
	next.Status = draft
	next.ProformaRequest = domain.DocumentRequest{State: domain.DocRequestNone}
	next.InvoiceRequest = domain.DocumentRequest{State: domain.DocRequestNone}
	next.CreatedAt = now
	next.UpdatedAt = now

	copied := make([]domain.QuoteItem, len(items))
	for i, item := range items {
		copied[i] = item
		copied[i].ID = s.genID.Generate()
		copied[i].QuoteID = next.ID
	}

	if err := s.computeTotals(ctx, db, &next, copied); err != nil {
		return domain.QuoteView{}, err
	}
	if err := s.repo.Insert(ctx, db, &next, copied); err != nil {
		return domain.QuoteView{}, err
	}
	return domain.QuoteView{Quote: next, Items: copied}, nil
}

func (s *Service) MarkSent(ctx context.Context, id string) (domain.QuoteView, error) {
	db := tenantctx.DB(ctx, s.db)
	quote, items, err := s.loadAggregate(ctx, db, id)
	if err != nil {
		return domain.QuoteView{}, err
	}
	if quote.Status == nil || quote.Status.Name != domain.StatusApproved {
		return domain.QuoteView{}, domain.ErrInvalidStatus
	}

	sent, err := s.statusByName(ctx, db, domain.StatusSent)
	if err != nil {
		return domain.QuoteView{}, err
	}
	quote.StatusID = sent.ID
	quote.Status = sent
	quote.UpdatedAt = time.Now().UTC()
	if err := s.repo.Save(ctx, db, quote); err != nil {
		return domain.QuoteView{}, err
	}
	return domain.QuoteView{Quote: *quote, Items: items}, nil
}

func (s *Service) RequestProforma(ctx context.Context, id, note string) (domain.QuoteView, error) {
	return s.requestDocument(ctx, id, note, func(q *domain.Quote) *domain.DocumentRequest {
		return &q.ProformaRequest
	})
}

func (s *Service) CompleteProforma(ctx context.Context, id string, approve bool) (domain.QuoteView, error) {
	return s.completeDocument(ctx, id, approve, func(q *domain.Quote) *domain.DocumentRequest {
		return &q.ProformaRequest
	})
}

func (s *Service) RequestInvoice(ctx context.Context, id, note string) (domain.QuoteView, error) {
	return s.requestDocument(ctx, id, note, func(q *domain.Quote) *domain.DocumentRequest {
		return &q.InvoiceRequest
	})
}

func (s *Service) CompleteInvoice(ctx context.Context, id string, approve bool) (domain.QuoteView, error) {
	return s.completeDocument(ctx, id, approve, func(q *domain.Quote) *domain.DocumentRequest {
		return &q.InvoiceRequest
	})
}

func (s *Service) requestDocument(ctx context.Context, id, note string, pick func(*domain.Quote) *domain.DocumentRequest) (domain.QuoteView, error) {
	principal, ok := authctx.PrincipalFromContext(ctx)
	if !ok {
		return domain.QuoteView{}, domain.ErrUnauthenticated
	}

	db := tenantctx.DB(ctx, s.db)
	quote, items, err := s.loadAggregate(ctx, db, id)
	if err != nil {
		return domain.QuoteView{}, err
	}
	if quote.Status == nil || (quote.Status.Name != domain.StatusApproved && quote.Status.Name != domain.StatusSelected) {
		return domain.QuoteView{}, domain.ErrInvalidStatus
	}

	req := pick(quote)
	if req.State == domain.DocRequestPending {
		return domain.QuoteView{}, domain.ErrAlreadyRequested
	}

	now := time.Now().UTC()
	userID := principal.UserID
	*req = domain.DocumentRequest{
		State:         domain.DocRequestPending,
		RequestedAt:   &now,
		RequestedByID: &userID,
	}
	if trimmed := strings.TrimSpace(note); trimmed != "" {
		req.Note = &trimmed
	}
	quote.UpdatedAt = now

	if err := s.repo.Save(ctx, db, quote); err != nil {
		return domain.QuoteView{}, err
	}
	return domain.QuoteView{Quote: *quote, Items: items}, nil
}

func (s *Service) completeDocument(ctx context.Context, id string, approve bool, pick func(*domain.Quote) *domain.DocumentRequest) (domain.QuoteView, error) {
	principal, ok := authctx.PrincipalFromContext(ctx)
	if !ok {
		return domain.QuoteView{}, domain.ErrUnauthenticated
	}

	db := tenantctx.DB(ctx, s.db)
	quote, items, err := s.loadAggregate(ctx, db, id)
	if err != nil {
		return domain.QuoteView{}, err
	}

	req := pick(quote)
	if req.State != domain.DocRequestPending {
		return domain.QuoteView{}, domain.ErrRequestNotPending
	}

	now := time.Now().UTC()
	userID := principal.UserID
	if approve {
		req.State = domain.DocRequestApproved
	} else {
		req.State = domain.DocRequestRejected
	}
	req.CompletedAt = &now
	req.CompletedByID = &userID
	quote.UpdatedAt = now

	if err := s.repo.Save(ctx, db, quote); err != nil {
		return domain.QuoteView{}, err
	}
	return domain.QuoteView{Quote: *quote, Items: items}, nil
}

// computeTotals resolves the jurisdiction, runs the recalculation engine, and
// writes the derived fields back onto the aggregate in memory.
func (s *Service) computeTotals(ctx context.Context, db *gorm.DB, quote *domain.Quote, items []domain.QuoteItem) error {
	companyState := ""
	if quote.CompanyBranchID != nil {
		branch, err := s.companyRepo.FindBranchByID(ctx, db, *quote.CompanyBranchID)
		if err != nil {
			return err
		}
		if branch != nil {
			companyState = branch.State
		}
	}

	// Prefer the linked client branch's state; fall back to the quote's
	// free-text billing state.
	customerState := quote.BillingState
	if quote.ClientBranchID != nil {
		branch, err := s.clientRepo.FindBranchByID(ctx, db, *quote.ClientBranchID)
		if err != nil {
			return err
		}
		if branch != nil && strings.TrimSpace(branch.State) != "" {
			customerState = branch.State
		}
	}

	in := pricing.Input{
		Currency:      quote.Currency,
		Discount:      quote.Discount,
		GSTApplicable: quote.IsGSTApplicable,
		CompanyState:  companyState,
		CustomerState: customerState,
		Items:         make([]pricing.LineItem, len(items)),
	}
	for i, item := range items {
		in.Items[i] = pricing.LineItem{
			Qty:          item.Qty,
			Rate:         item.Rate,
			BillingCycle: item.BillingCycle,
		}
	}

	out := pricing.Recalculate(in)
	for i := range items {
		items[i].BillingCycle = string(out.Items[i].BillingCycle)
		items[i].Amount = out.Items[i].Amount
	}
	quote.Subtotal = out.Subtotal
	quote.CGST = out.Tax.CGST
	quote.SGST = out.Tax.SGST
	quote.IGST = out.Tax.IGST
	quote.Tax = out.Tax.Total
	quote.Total = out.Total
	quote.TotalAmount = out.Total
	quote.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Service) loadAggregate(ctx context.Context, db *gorm.DB, id string) (*domain.Quote, []domain.QuoteItem, error) {
	quoteID, err := parseID(id)
	if err != nil {
		return nil, nil, err
	}
	quote, err := s.repo.FindByID(ctx, db, quoteID)
	if err != nil {
		return nil, nil, err
	}
	if quote == nil {
		return nil, nil, domain.ErrNotFound
	}
	items, err := s.repo.FindItems(ctx, db, quoteID)
	if err != nil {
		return nil, nil, err
	}
	return quote, items, nil
}

func (s *Service) statusByName(ctx context.Context, db *gorm.DB, name string) (*domain.QuoteStatus, error) {
	status, err := s.repo.GetStatusByName(ctx, db, name)
	if err != nil {
		return nil, err
	}
	if status == nil {
		return nil, domain.ErrStatusMissing
	}
	return status, nil
}

func (s *Service) buildItems(quoteID snowflake.ID, inputs []domain.ItemInput) ([]domain.QuoteItem, error) {
	items := make([]domain.QuoteItem, 0, len(inputs))
	for _, in := range inputs {
		name := strings.TrimSpace(in.ItemName)
		if name == "" {
			return nil, domain.ErrInvalidItem
		}
		qty := in.Qty
		if qty.IsZero() {
			qty = decimal.NewFromInt(1)
		}
		items = append(items, domain.QuoteItem{
			ID:           s.genID.Generate(),
			QuoteID:      quoteID,
			ItemName:     name,
			Description:  in.Description,
			Qty:          qty,
			Rate:         in.Rate,
			BillingCycle: string(pricing.NormalizeCycle(in.BillingCycle)),
			SortOrder:    in.SortOrder,
		})
	}
	return items, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func normalizeCurrency(value string) string {
	currency := strings.ToUpper(strings.TrimSpace(value))
	if currency == "" {
		return "INR"
	}
	return currency
}

package service_test

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/orbitcrm/orbitcrm/internal/approval/domain"
	approvalrepo "github.com/orbitcrm/orbitcrm/internal/approval/repository"
	"github.com/orbitcrm/orbitcrm/internal/approval/service"
	authdomain "github.com/orbitcrm/orbitcrm/internal/auth/domain"
	"github.com/orbitcrm/orbitcrm/internal/authctx"
	clientrepo "github.com/orbitcrm/orbitcrm/internal/client/repository"
	companyrepo "github.com/orbitcrm/orbitcrm/internal/company/repository"
	opprepo "github.com/orbitcrm/orbitcrm/internal/opportunity/repository"
	quotedomain "github.com/orbitcrm/orbitcrm/internal/quote/domain"
	quoterepo "github.com/orbitcrm/orbitcrm/internal/quote/repository"
	quoteservice "github.com/orbitcrm/orbitcrm/internal/quote/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	node     *snowflake.Node
	svc      domain.Service
	statuses map[string]quotedomain.QuoteStatus
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&quotedomain.QuoteStatus{},
		&quotedomain.Quote{},
		&quotedomain.QuoteItem{},
		&domain.ApprovalRule{},
		&domain.ApprovalRuleStep{},
		&domain.QuoteApproval{},
	))

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	f := &fixture{db: db, node: node, statuses: map[string]quotedomain.QuoteStatus{}}
	for i, name := range []string{
		quotedomain.StatusDraft,
		quotedomain.StatusPendingApproval,
		quotedomain.StatusApproved,
		quotedomain.StatusSelected,
		quotedomain.StatusRejected,
		quotedomain.StatusSent,
	} {
		status := quotedomain.QuoteStatus{ID: node.Generate(), Name: name, SortOrder: i, IsActive: true}
		require.NoError(t, db.Create(&status).Error)
		f.statuses[name] = status
	}

	quoteSvc := quoteservice.New(quoteservice.Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Repo:        quoterepo.Provide(),
		CompanyRepo: companyrepo.Provide(),
		ClientRepo:  clientrepo.Provide(),
		OppRepo:     opprepo.Provide(),
	})
	f.svc = service.New(service.Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		Repo:      approvalrepo.Provide(),
		QuoteRepo: quoterepo.Provide(),
		QuoteSvc:  quoteSvc,
	})
	return f
}

func (f *fixture) asUser(userID snowflake.ID, role string) context.Context {
	return authctx.WithPrincipal(context.Background(), authdomain.Principal{
		UserID:   userID,
		Name:     "Approver",
		RoleName: role,
	})
}

func (f *fixture) makeQuote(t *testing.T, total int64, statusName string) quotedomain.Quote {
	t.Helper()
	quote := quotedomain.Quote{
		ID:            f.node.Generate(),
		QuoteCode:     "QT-" + f.node.Generate().String(),
		Version:       1,
		OpportunityID: f.node.Generate(),
		StatusID:      f.statuses[statusName].ID,
		CreatedByID:   f.node.Generate(),
		Currency:      "INR",
		Subtotal:      decimal.NewFromInt(total),
		Total:         decimal.NewFromInt(total),
		TotalAmount:   decimal.NewFromInt(total),
	}
	require.NoError(t, f.db.Create(&quote).Error)
	// One line item that reproduces the stored total under recalculation. No
	// billing state is set, so no tax applies.
	item := quotedomain.QuoteItem{
		ID:           f.node.Generate(),
		QuoteID:      quote.ID,
		ItemName:     "Subscription",
		Qty:          decimal.NewFromInt(1),
		Rate:         decimal.NewFromInt(total),
		BillingCycle: "ONETIME",
		Amount:       decimal.NewFromInt(total),
	}
	require.NoError(t, f.db.Create(&item).Error)
	return quote
}

func (f *fixture) makeRule(t *testing.T, min int64, max *int64, sortOrder int, specs ...domain.ApproverSpec) domain.ApprovalRule {
	t.Helper()
	rule := domain.ApprovalRule{
		ID:        f.node.Generate(),
		Name:      "Band",
		MinAmount: decimal.NewFromInt(min),
		SortOrder: sortOrder,
		IsActive:  true,
	}
	if max != nil {
		capped := decimal.NewFromInt(*max)
		rule.MaxAmount = &capped
	}
	for i, spec := range specs {
		rule.Steps = append(rule.Steps, domain.ApprovalRuleStep{
			ID:        f.node.Generate(),
			RuleID:    rule.ID,
			StepOrder: i + 1,
			Approver:  spec,
			IsActive:  true,
		})
	}
	require.NoError(t, f.db.Create(&rule).Error)
	return rule
}

func userSpec(id snowflake.ID) domain.ApproverSpec {
	return domain.ApproverSpec{Type: domain.ApproverUser, UserID: &id}
}

func roleSpec(name string) domain.ApproverSpec {
	return domain.ApproverSpec{Type: domain.ApproverRole, RoleName: &name}
}

func (f *fixture) quoteStatus(t *testing.T, id snowflake.ID) string {
	t.Helper()
	var quote quotedomain.Quote
	require.NoError(t, f.db.Preload("Status").First(&quote, "id = ?", id).Error)
	return quote.Status.Name
}

func int64Ptr(v int64) *int64 { return &v }

func boolPtr(v bool) *bool { return &v }

func TestRequest_NoMatchAutoApproves(t *testing.T) {
	f := newFixture(t)
	f.makeRule(t, 10_000, nil, 0, userSpec(f.node.Generate()))
	quote := f.makeQuote(t, 500, quotedomain.StatusDraft)

	result, err := f.svc.Request(f.asUser(f.node.Generate(), "Sales"), quote.ID.String())
	require.NoError(t, err)
	assert.True(t, result.AutoApproved)
	assert.Empty(t, result.Approvals)
	assert.Equal(t, quotedomain.StatusApproved, f.quoteStatus(t, quote.ID))
}

func TestRequest_BuildsGlobalChainAcrossRules(t *testing.T) {
	f := newFixture(t)
	u1, u2, u3 := f.node.Generate(), f.node.Generate(), f.node.Generate()
	f.makeRule(t, 0, int64Ptr(100_000), 0, userSpec(u1), userSpec(u2))
	f.makeRule(t, 50_000, nil, 1, userSpec(u3))
	quote := f.makeQuote(t, 60_000, quotedomain.StatusDraft)

	result, err := f.svc.Request(f.asUser(f.node.Generate(), "Sales"), quote.ID.String())
	require.NoError(t, err)
	assert.False(t, result.AutoApproved)
	require.Len(t, result.Approvals, 3)

	for i, approval := range result.Approvals {
		assert.Equal(t, i+1, approval.StepOrder)
	}
	assert.Equal(t, domain.StatusPending, result.Approvals[0].Status)
	assert.Equal(t, domain.StatusWaiting, result.Approvals[1].Status)
	assert.Equal(t, domain.StatusWaiting, result.Approvals[2].Status)
	assert.Equal(t, quotedomain.StatusPendingApproval, f.quoteStatus(t, quote.ID))
}

func TestRequest_RecalculatesStaleTotalBeforeMatching(t *testing.T) {
	f := newFixture(t)
	f.makeRule(t, 10_000, nil, 0, userSpec(f.node.Generate()))
	quote := f.makeQuote(t, 500, quotedomain.StatusDraft)

	// Grow the line item underneath the stored total: 10 x 1000 billed
	// half-yearly is 60,000, while the quote row still says 500.
	require.NoError(t, f.db.Model(&quotedomain.QuoteItem{}).
		Where("quote_id = ?", quote.ID).
		Updates(map[string]any{"qty": 10, "rate": 1000, "billing_cycle": "HALF_YEARLY"}).Error)

	result, err := f.svc.Request(f.asUser(f.node.Generate(), "Sales"), quote.ID.String())
	require.NoError(t, err)
	assert.False(t, result.AutoApproved, "matching must see the recalculated total")
	require.Len(t, result.Approvals, 1)
	assert.Equal(t, quotedomain.StatusPendingApproval, f.quoteStatus(t, quote.ID))

	var stored quotedomain.Quote
	require.NoError(t, f.db.First(&stored, "id = ?", quote.ID).Error)
	assert.True(t, stored.Total.Equal(decimal.NewFromInt(60_000)), "got %s", stored.Total)
}

func TestRequest_InactiveStepSkipped(t *testing.T) {
	f := newFixture(t)
	u1, u2 := f.node.Generate(), f.node.Generate()
	ctx := f.asUser(f.node.Generate(), "Admin")
	rule, err := f.svc.CreateRule(ctx, domain.CreateRuleRequest{
		Name: "Band",
		Steps: []domain.StepInput{
			{Approver: userSpec(u1)},
			{Approver: userSpec(u2), Active: boolPtr(false)},
		},
	})
	require.NoError(t, err)
	quote := f.makeQuote(t, 1_000, quotedomain.StatusDraft)

	result, err := f.svc.Request(f.asUser(f.node.Generate(), "Sales"), quote.ID.String())
	require.NoError(t, err)
	require.Len(t, result.Approvals, 1, "inactive steps must not materialize")
	assert.Equal(t, rule.Steps[0].ID, result.Approvals[0].RuleStepID)
}

func TestRequest_AllStepsInactiveFailsClosed(t *testing.T) {
	f := newFixture(t)
	ctx := f.asUser(f.node.Generate(), "Admin")
	_, err := f.svc.CreateRule(ctx, domain.CreateRuleRequest{
		Name:  "Band",
		Steps: []domain.StepInput{{Approver: userSpec(f.node.Generate()), Active: boolPtr(false)}},
	})
	require.NoError(t, err)
	quote := f.makeQuote(t, 1_000, quotedomain.StatusDraft)

	_, err = f.svc.Request(f.asUser(f.node.Generate(), "Sales"), quote.ID.String())
	assert.ErrorIs(t, err, domain.ErrRuleMisconfigured)
	assert.Equal(t, quotedomain.StatusDraft, f.quoteStatus(t, quote.ID))
}

func TestRequest_SteplessRuleFailsClosed(t *testing.T) {
	f := newFixture(t)
	f.makeRule(t, 0, nil, 0, userSpec(f.node.Generate()))
	f.makeRule(t, 0, nil, 1) // no steps
	quote := f.makeQuote(t, 1_000, quotedomain.StatusDraft)

	_, err := f.svc.Request(f.asUser(f.node.Generate(), "Sales"), quote.ID.String())
	assert.ErrorIs(t, err, domain.ErrRuleMisconfigured)

	var count int64
	require.NoError(t, f.db.Model(&domain.QuoteApproval{}).Count(&count).Error)
	assert.Zero(t, count, "no partial chain may be written")
	assert.Equal(t, quotedomain.StatusDraft, f.quoteStatus(t, quote.ID))
}

func TestRequest_LockedQuoteRejected(t *testing.T) {
	f := newFixture(t)
	quote := f.makeQuote(t, 1_000, quotedomain.StatusPendingApproval)

	_, err := f.svc.Request(f.asUser(f.node.Generate(), "Sales"), quote.ID.String())
	assert.ErrorIs(t, err, quotedomain.ErrQuoteLocked)
}

func TestRequest_ReplacesPriorChainAfterRejection(t *testing.T) {
	f := newFixture(t)
	approver := f.node.Generate()
	f.makeRule(t, 0, nil, 0, userSpec(approver))
	quote := f.makeQuote(t, 1_000, quotedomain.StatusDraft)

	first, err := f.svc.Request(f.asUser(f.node.Generate(), "Sales"), quote.ID.String())
	require.NoError(t, err)

	_, err = f.svc.Act(f.asUser(approver, "Manager"), domain.ActRequest{
		ApprovalID: first.Approvals[0].ID.String(),
		Approve:    false,
	})
	require.NoError(t, err)
	assert.Equal(t, quotedomain.StatusRejected, f.quoteStatus(t, quote.ID))

	second, err := f.svc.Request(f.asUser(f.node.Generate(), "Sales"), quote.ID.String())
	require.NoError(t, err)
	require.Len(t, second.Approvals, 1)

	var rows []domain.QuoteApproval
	require.NoError(t, f.db.Where("quote_id = ?", quote.ID).Find(&rows).Error)
	require.Len(t, rows, 1, "prior chain must be replaced, not appended")
	assert.Equal(t, second.Approvals[0].ID, rows[0].ID)
}

func TestAct_SequentialApprovalCompletesQuote(t *testing.T) {
	f := newFixture(t)
	u1, u2 := f.node.Generate(), f.node.Generate()
	f.makeRule(t, 0, nil, 0, userSpec(u1), roleSpec("Finance Head"))
	quote := f.makeQuote(t, 1_000, quotedomain.StatusDraft)

	result, err := f.svc.Request(f.asUser(f.node.Generate(), "Sales"), quote.ID.String())
	require.NoError(t, err)

	// Step 2 cannot act while step 1 is pending.
	_, err = f.svc.Act(f.asUser(u2, "Finance Head"), domain.ActRequest{
		ApprovalID: result.Approvals[1].ID.String(),
		Approve:    true,
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	acted, err := f.svc.Act(f.asUser(u1, "Sales"), domain.ActRequest{
		ApprovalID: result.Approvals[0].ID.String(),
		Approve:    true,
		Comment:    "within budget",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, acted.Status)
	require.NotNil(t, acted.Comment)
	assert.Equal(t, "within budget", *acted.Comment)
	assert.Equal(t, quotedomain.StatusPendingApproval, f.quoteStatus(t, quote.ID))

	// Step 2 is now promoted and can act by role.
	_, err = f.svc.Act(f.asUser(u2, "Finance Head"), domain.ActRequest{
		ApprovalID: result.Approvals[1].ID.String(),
		Approve:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, quotedomain.StatusApproved, f.quoteStatus(t, quote.ID))
}

func TestAct_RejectionCancelsRemaining(t *testing.T) {
	f := newFixture(t)
	u1 := f.node.Generate()
	f.makeRule(t, 0, nil, 0, userSpec(u1), roleSpec("Finance Head"), roleSpec("Director"))
	quote := f.makeQuote(t, 1_000, quotedomain.StatusDraft)

	result, err := f.svc.Request(f.asUser(f.node.Generate(), "Sales"), quote.ID.String())
	require.NoError(t, err)

	_, err = f.svc.Act(f.asUser(u1, "Sales"), domain.ActRequest{
		ApprovalID: result.Approvals[0].ID.String(),
		Approve:    false,
		Comment:    "discount too deep",
	})
	require.NoError(t, err)
	assert.Equal(t, quotedomain.StatusRejected, f.quoteStatus(t, quote.ID))

	rows, err := f.svc.ListByQuote(f.asUser(u1, "Sales"), quote.ID.String())
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, domain.StatusRejected, rows[0].Status)
	assert.Equal(t, domain.StatusCancelled, rows[1].Status)
	assert.Equal(t, domain.StatusCancelled, rows[2].Status)
}

func TestRequest_ChainNotWrittenWhenStatusFlipFails(t *testing.T) {
	f := newFixture(t)
	f.makeRule(t, 0, nil, 0, userSpec(f.node.Generate()))
	quote := f.makeQuote(t, 1_000, quotedomain.StatusDraft)

	require.NoError(t, f.db.
		Delete(&quotedomain.QuoteStatus{}, "name = ?", quotedomain.StatusPendingApproval).Error)

	_, err := f.svc.Request(f.asUser(f.node.Generate(), "Sales"), quote.ID.String())
	assert.ErrorIs(t, err, quotedomain.ErrStatusMissing)

	var count int64
	require.NoError(t, f.db.Model(&domain.QuoteApproval{}).Count(&count).Error)
	assert.Zero(t, count, "chain and status flip must commit together")
	assert.Equal(t, quotedomain.StatusDraft, f.quoteStatus(t, quote.ID))
}

func TestAct_StepNotConsumedWhenStatusFlipFails(t *testing.T) {
	f := newFixture(t)
	u1 := f.node.Generate()
	f.makeRule(t, 0, nil, 0, userSpec(u1))
	quote := f.makeQuote(t, 1_000, quotedomain.StatusDraft)

	result, err := f.svc.Request(f.asUser(f.node.Generate(), "Sales"), quote.ID.String())
	require.NoError(t, err)

	require.NoError(t, f.db.
		Delete(&quotedomain.QuoteStatus{}, "name = ?", quotedomain.StatusApproved).Error)

	_, err = f.svc.Act(f.asUser(u1, "Sales"), domain.ActRequest{
		ApprovalID: result.Approvals[0].ID.String(),
		Approve:    true,
	})
	assert.ErrorIs(t, err, quotedomain.ErrStatusMissing)

	var row domain.QuoteApproval
	require.NoError(t, f.db.First(&row, "id = ?", result.Approvals[0].ID).Error)
	assert.Equal(t, domain.StatusPending, row.Status, "the acted step must roll back with the quote")
	assert.Equal(t, quotedomain.StatusPendingApproval, f.quoteStatus(t, quote.ID))
}

func TestAct_RejectionCancelsDriftedPendingStep(t *testing.T) {
	f := newFixture(t)
	u1 := f.node.Generate()
	f.makeRule(t, 0, nil, 0, userSpec(u1), roleSpec("Finance Head"), roleSpec("Director"))
	quote := f.makeQuote(t, 1_000, quotedomain.StatusDraft)

	result, err := f.svc.Request(f.asUser(f.node.Generate(), "Sales"), quote.ID.String())
	require.NoError(t, err)

	// Force a second PENDING row, as a crashed promotion would leave behind.
	require.NoError(t, f.db.Model(&domain.QuoteApproval{}).
		Where("id = ?", result.Approvals[1].ID).
		Update("status", domain.StatusPending).Error)

	_, err = f.svc.Act(f.asUser(u1, "Sales"), domain.ActRequest{
		ApprovalID: result.Approvals[0].ID.String(),
		Approve:    false,
	})
	require.NoError(t, err)

	rows, err := f.svc.ListByQuote(f.asUser(u1, "Sales"), quote.ID.String())
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, domain.StatusRejected, rows[0].Status)
	assert.Equal(t, domain.StatusCancelled, rows[1].Status, "stray PENDING rows must be cancelled too")
	assert.Equal(t, domain.StatusCancelled, rows[2].Status)
}

func TestAct_WrongActorNotAuthorized(t *testing.T) {
	f := newFixture(t)
	u1 := f.node.Generate()
	f.makeRule(t, 0, nil, 0, userSpec(u1))
	quote := f.makeQuote(t, 1_000, quotedomain.StatusDraft)

	result, err := f.svc.Request(f.asUser(f.node.Generate(), "Sales"), quote.ID.String())
	require.NoError(t, err)

	_, err = f.svc.Act(f.asUser(f.node.Generate(), "Sales"), domain.ActRequest{
		ApprovalID: result.Approvals[0].ID.String(),
		Approve:    true,
	})
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)
}

func TestAct_DoubleActConflicts(t *testing.T) {
	f := newFixture(t)
	u1 := f.node.Generate()
	f.makeRule(t, 0, nil, 0, userSpec(u1))
	quote := f.makeQuote(t, 1_000, quotedomain.StatusDraft)

	result, err := f.svc.Request(f.asUser(f.node.Generate(), "Sales"), quote.ID.String())
	require.NoError(t, err)

	req := domain.ActRequest{ApprovalID: result.Approvals[0].ID.String(), Approve: true}
	_, err = f.svc.Act(f.asUser(u1, "Sales"), req)
	require.NoError(t, err)

	_, err = f.svc.Act(f.asUser(u1, "Sales"), req)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestInbox_ListsPendingByUserAndRole(t *testing.T) {
	f := newFixture(t)
	u1 := f.node.Generate()
	f.makeRule(t, 0, nil, 0, userSpec(u1))
	f.makeRule(t, 0, nil, 1, roleSpec("Finance Head"))

	q1 := f.makeQuote(t, 100, quotedomain.StatusDraft)
	q2 := f.makeQuote(t, 200, quotedomain.StatusDraft)

	_, err := f.svc.Request(f.asUser(f.node.Generate(), "Sales"), q1.ID.String())
	require.NoError(t, err)
	_, err = f.svc.Request(f.asUser(f.node.Generate(), "Sales"), q2.ID.String())
	require.NoError(t, err)

	// Only the first step of each chain is pending, and both point at u1.
	entries, err := f.svc.Inbox(f.asUser(u1, "Sales"))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, q1.QuoteCode, entries[0].QuoteCode)
	assert.True(t, entries[0].Total.Equal(decimal.NewFromInt(100)))

	// Nobody holds Finance Head yet; its steps are still WAITING.
	entries, err = f.svc.Inbox(f.asUser(f.node.Generate(), "Finance Head"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCreateRule_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := f.asUser(f.node.Generate(), "Admin")

	_, err := f.svc.CreateRule(ctx, domain.CreateRuleRequest{Name: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidRule)

	capped := decimal.NewFromInt(10)
	_, err = f.svc.CreateRule(ctx, domain.CreateRuleRequest{
		Name:      "Inverted",
		MinAmount: decimal.NewFromInt(100),
		MaxAmount: &capped,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRule)

	_, err = f.svc.CreateRule(ctx, domain.CreateRuleRequest{
		Name:  "Bad spec",
		Steps: []domain.StepInput{{Approver: domain.ApproverSpec{Type: domain.ApproverUser}}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRule)

	rule, err := f.svc.CreateRule(ctx, domain.CreateRuleRequest{
		Name:      "Manager sign-off",
		MinAmount: decimal.NewFromInt(0),
		Steps:     []domain.StepInput{{Approver: roleSpec("Manager")}},
	})
	require.NoError(t, err)
	assert.True(t, rule.IsActive)
	require.Len(t, rule.Steps, 1)
	assert.Equal(t, 1, rule.Steps[0].StepOrder)
}

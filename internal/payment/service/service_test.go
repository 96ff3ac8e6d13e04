package service_test

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	authdomain "github.com/orbitcrm/orbitcrm/internal/auth/domain"
	"github.com/orbitcrm/orbitcrm/internal/authctx"
	"github.com/orbitcrm/orbitcrm/internal/payment/domain"
	paymentrepo "github.com/orbitcrm/orbitcrm/internal/payment/repository"
	"github.com/orbitcrm/orbitcrm/internal/payment/service"
	quotedomain "github.com/orbitcrm/orbitcrm/internal/quote/domain"
	quoterepo "github.com/orbitcrm/orbitcrm/internal/quote/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	node  *snowflake.Node
	svc   domain.Service
	quote quotedomain.Quote
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&quotedomain.QuoteStatus{},
		&quotedomain.Quote{},
		&domain.PaymentCollection{},
	))

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	status := quotedomain.QuoteStatus{ID: node.Generate(), Name: quotedomain.StatusApproved, IsActive: true}
	require.NoError(t, db.Create(&status).Error)

	quote := quotedomain.Quote{
		ID:            node.Generate(),
		QuoteCode:     "QT-000042",
		Version:       1,
		OpportunityID: node.Generate(),
		StatusID:      status.ID,
		CreatedByID:   node.Generate(),
		Currency:      "INR",
		Total:         decimal.NewFromInt(10_000),
		TotalAmount:   decimal.NewFromInt(10_000),
	}
	require.NoError(t, db.Create(&quote).Error)

	svc := service.New(service.Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		Repo:      paymentrepo.Provide(),
		QuoteRepo: quoterepo.Provide(),
	})
	return &fixture{db: db, node: node, svc: svc, quote: quote}
}

func (f *fixture) ctx() context.Context {
	return authctx.WithPrincipal(context.Background(), authdomain.Principal{
		UserID:   f.node.Generate(),
		RoleName: "Finance Head",
	})
}

func TestRecord_CreatesPendingCollection(t *testing.T) {
	f := newFixture(t)

	collection, err := f.svc.Record(f.ctx(), domain.RecordRequest{
		QuoteID:   f.quote.ID.String(),
		Amount:    decimal.NewFromInt(4_000),
		Method:    "UPI",
		Reference: "TXN-991",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, collection.Status)
	require.NotNil(t, collection.Reference)
	assert.Equal(t, "TXN-991", *collection.Reference)
}

func TestRecord_RejectsNonPositiveAmount(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Record(f.ctx(), domain.RecordRequest{
		QuoteID: f.quote.ID.String(),
		Amount:  decimal.Zero,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestVerify_OnlyPendingTransitions(t *testing.T) {
	f := newFixture(t)

	collection, err := f.svc.Record(f.ctx(), domain.RecordRequest{
		QuoteID: f.quote.ID.String(),
		Amount:  decimal.NewFromInt(4_000),
	})
	require.NoError(t, err)

	verified, err := f.svc.Verify(f.ctx(), collection.ID.String(), true)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusVerified, verified.Status)
	assert.NotNil(t, verified.VerifiedAt)

	_, err = f.svc.Verify(f.ctx(), collection.ID.String(), false)
	assert.ErrorIs(t, err, domain.ErrNotPending)
}

func TestSummarize_CountsOnlyVerified(t *testing.T) {
	f := newFixture(t)
	ctx := f.ctx()

	first, err := f.svc.Record(ctx, domain.RecordRequest{QuoteID: f.quote.ID.String(), Amount: decimal.NewFromInt(4_000)})
	require.NoError(t, err)
	second, err := f.svc.Record(ctx, domain.RecordRequest{QuoteID: f.quote.ID.String(), Amount: decimal.NewFromInt(3_000)})
	require.NoError(t, err)
	third, err := f.svc.Record(ctx, domain.RecordRequest{QuoteID: f.quote.ID.String(), Amount: decimal.NewFromInt(2_000)})
	require.NoError(t, err)

	_, err = f.svc.Verify(ctx, first.ID.String(), true)
	require.NoError(t, err)
	_, err = f.svc.Verify(ctx, second.ID.String(), true)
	require.NoError(t, err)
	_, err = f.svc.Verify(ctx, third.ID.String(), false)
	require.NoError(t, err)

	summary, err := f.svc.Summarize(ctx, f.quote.ID.String())
	require.NoError(t, err)
	assert.True(t, summary.Collected.Equal(decimal.NewFromInt(7_000)), summary.Collected.String())
	assert.True(t, summary.Remaining.Equal(decimal.NewFromInt(3_000)), summary.Remaining.String())
}

func TestSummarize_RemainingFloorsAtZero(t *testing.T) {
	f := newFixture(t)
	ctx := f.ctx()

	collection, err := f.svc.Record(ctx, domain.RecordRequest{QuoteID: f.quote.ID.String(), Amount: decimal.NewFromInt(12_000)})
	require.NoError(t, err)
	_, err = f.svc.Verify(ctx, collection.ID.String(), true)
	require.NoError(t, err)

	summary, err := f.svc.Summarize(ctx, f.quote.ID.String())
	require.NoError(t, err)
	assert.True(t, summary.Remaining.IsZero())
}

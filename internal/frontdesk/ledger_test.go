package frontdesk

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBalances struct {
	mu       sync.Mutex
	balances map[uuid.UUID]decimal.Decimal
	err      error
	fetches  int
}

func (f *fakeBalances) PatientBalance(_ context.Context, id uuid.UUID) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.err != nil {
		return decimal.Zero, f.err
	}
	return f.balances[id], nil
}

func (f *fakeBalances) set(id uuid.UUID, v int64) {
	f.mu.Lock()
	f.balances[id] = decimal.NewFromInt(v)
	f.mu.Unlock()
}

func newFakeBalances() *fakeBalances {
	return &fakeBalances{balances: make(map[uuid.UUID]decimal.Decimal)}
}

func TestBalance_AlwaysFetchesFresh(t *testing.T) {
	src := newFakeBalances()
	ledger := NewLedger(src)
	patientID := uuid.New()
	ctx := context.Background()

	src.set(patientID, 200)
	b, err := ledger.Balance(ctx, patientID)
	require.NoError(t, err)
	assert.True(t, b.Equal(decimal.NewFromInt(200)))

	// An appointment was deleted elsewhere; the next read must reflect the
	// server, not the value cached a moment ago.
	src.set(patientID, 0)
	b, err = ledger.Balance(ctx, patientID)
	require.NoError(t, err)
	assert.True(t, b.IsZero(), "balance after deletion must be a fresh fetch")
	assert.Equal(t, 2, src.fetches)
}

func TestCachedBalance_FallbackOnly(t *testing.T) {
	src := newFakeBalances()
	ledger := NewLedger(src)
	patientID := uuid.New()

	_, ok := ledger.CachedBalance(patientID)
	assert.False(t, ok, "never-fetched patient has no fallback value")

	src.set(patientID, 350)
	_, err := ledger.Balance(context.Background(), patientID)
	require.NoError(t, err)

	cached, ok := ledger.CachedBalance(patientID)
	require.True(t, ok)
	assert.True(t, cached.Equal(decimal.NewFromInt(350)))
}

func TestCheckPayment(t *testing.T) {
	balance := decimal.NewFromInt(200)

	// 500 + 200 = 700 ceiling.
	assert.NoError(t, CheckPayment("500", "700", balance))

	err := CheckPayment("500", "750", balance)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot exceed 700.00")

	assert.Error(t, CheckPayment("500", "12a", balance), "non-numeric input is rejected")
	assert.Error(t, CheckPayment("500001", "0", balance), "amounts above the cap are rejected")
	assert.NoError(t, CheckPayment("", "", balance), "empty fields parse as zero while typing")
}

func TestFallbackPending(t *testing.T) {
	ledger := NewLedger(newFakeBalances())
	p := ledger.FallbackPending(decimal.NewFromInt(500), decimal.NewFromInt(300))
	assert.True(t, p.Equal(decimal.NewFromInt(200)))
	assert.True(t, ledger.FallbackPending(decimal.NewFromInt(100), decimal.NewFromInt(150)).IsZero())
}

func TestRefreshAfterMutation_Independent(t *testing.T) {
	src := newFakeBalances()
	ledger := NewLedger(src)
	patientID := uuid.New()
	src.set(patientID, 120)

	listErr := errors.New("list reload failed")
	res := ledger.RefreshAfterMutation(context.Background(), patientID,
		func(context.Context) error { return listErr })

	assert.ErrorIs(t, res.ListErr, listErr)
	assert.NoError(t, res.BalanceErr, "list failure must not block the balance refresh")
	assert.True(t, res.Balance.Equal(decimal.NewFromInt(120)))

	// And the other way around.
	src.err = errors.New("balance service down")
	res = ledger.RefreshAfterMutation(context.Background(), patientID,
		func(context.Context) error { return nil })
	assert.Error(t, res.BalanceErr)
	assert.NoError(t, res.ListErr, "balance failure must not block the list refresh")
}

package frontdesk

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/clinicdesk/clinicdesk/internal/platform/money"
)

// BalanceFetcher fetches a patient's authoritative pending balance.
type BalanceFetcher interface {
	PatientBalance(ctx context.Context, patientID uuid.UUID) (decimal.Decimal, error)
}

// Ledger keeps displayed balances consistent with the server. Every
// read that matters (opening a form, validating a payment) goes through a
// fresh fetch; the cache exists only as a display fallback while a fetch
// is in flight or has failed.
type Ledger struct {
	fetcher BalanceFetcher

	mu     sync.Mutex
	cached map[uuid.UUID]decimal.Decimal
}

func NewLedger(fetcher BalanceFetcher) *Ledger {
	return &Ledger{
		fetcher: fetcher,
		cached:  make(map[uuid.UUID]decimal.Decimal),
	}
}

// Balance fetches the patient's current balance from the server, never
// trusting a previously loaded patient object.
func (l *Ledger) Balance(ctx context.Context, patientID uuid.UUID) (decimal.Decimal, error) {
	b, err := l.fetcher.PatientBalance(ctx, patientID)
	if err != nil {
		return decimal.Zero, err
	}
	l.mu.Lock()
	l.cached[patientID] = b
	l.mu.Unlock()
	return b, nil
}

// CachedBalance returns the last fetched balance, for fallback display
// only. The second return is false when the patient was never fetched.
func (l *Ledger) CachedBalance(patientID uuid.UUID) (decimal.Decimal, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.cached[patientID]
	return b, ok
}

// FallbackPending derives a visit's unpaid remainder for display when no
// authoritative balance is available yet.
func (l *Ledger) FallbackPending(total, paid decimal.Decimal) decimal.Decimal {
	return money.Pending(total, paid)
}

// CheckPayment validates raw form input against the payment ceiling for
// the given balance. It is meant to run on every keystroke; the returned
// error message names the computed maximum so it can be shown inline.
func CheckPayment(totalInput, paidInput string, balance decimal.Decimal) error {
	total, err := money.Parse(totalInput)
	if err != nil {
		return err
	}
	paid, err := money.Parse(paidInput)
	if err != nil {
		return err
	}
	if !money.InRange(total) {
		return &AmountRangeError{Field: "totalAmount"}
	}
	if !money.InRange(paid) {
		return &AmountRangeError{Field: "paidAmount"}
	}
	return money.ValidatePayment(total, paid, balance)
}

// AmountRangeError marks an amount outside [0, MaxAmount].
type AmountRangeError struct{ Field string }

func (e *AmountRangeError) Error() string {
	return e.Field + " must be between 0 and " + money.MaxAmount.String()
}

// MutationRefresh carries the outcome of the two independent refreshes
// that follow an appointment mutation.
type MutationRefresh struct {
	Balance    decimal.Decimal
	BalanceErr error
	ListErr    error
}

// RefreshAfterMutation re-fetches the owning patient's balance and asks
// the caller's list to reload, concurrently. Neither failure blocks the
// other; both are reported so the caller can surface them independently.
func (l *Ledger) RefreshAfterMutation(ctx context.Context, patientID uuid.UUID, refreshList func(context.Context) error) MutationRefresh {
	var res MutationRefresh
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		res.Balance, res.BalanceErr = l.Balance(ctx, patientID)
	}()
	go func() {
		defer wg.Done()
		res.ListErr = refreshList(ctx)
	}()
	wg.Wait()
	return res
}

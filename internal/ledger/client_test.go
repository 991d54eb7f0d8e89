package ledger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/payments-engine/internal/money"
	"github.com/ginjaninja78/payments-engine/internal/types"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func deposit(tx types.TxID, amount string) types.TransactionRecord {
	return types.TransactionRecord{Kind: types.KindDeposit, Client: 1, Tx: tx, Amount: money.MustParseAmount(amount)}
}

func withdrawal(tx types.TxID, amount string) types.TransactionRecord {
	return types.TransactionRecord{Kind: types.KindWithdrawal, Client: 1, Tx: tx, Amount: money.MustParseAmount(amount)}
}

func dispute(tx types.TxID) types.TransactionRecord {
	return types.TransactionRecord{Kind: types.KindDispute, Client: 1, Tx: tx}
}

func resolve(tx types.TxID) types.TransactionRecord {
	return types.TransactionRecord{Kind: types.KindResolve, Client: 1, Tx: tx}
}

func chargeback(tx types.TxID) types.TransactionRecord {
	return types.TransactionRecord{Kind: types.KindChargeback, Client: 1, Tx: tx}
}

func mustApply(t *testing.T, l *ClientLedger, records ...types.TransactionRecord) {
	t.Helper()

	for _, r := range records {
		outcome, err := l.Apply(r)
		require.NoError(t, err, "record %s", r)
		require.Equal(t, OutcomeApplied, outcome, "record %s", r)
	}
}

func requireRejected(t *testing.T, l *ClientLedger, record types.TransactionRecord, code ErrorCode) {
	t.Helper()

	before := l.Balance()
	disputes := l.DisputedCount()

	outcome, err := l.Apply(record)
	require.Error(t, err)
	assert.Equal(t, OutcomeRejected, outcome)

	var ledgerErr *Error
	require.True(t, errors.As(err, &ledgerErr))
	assert.Equal(t, code, ledgerErr.Code)
	assert.Equal(t, record.Client, ledgerErr.Client)
	assert.Equal(t, record.Tx, ledgerErr.Tx)

	assert.Equal(t, before, l.Balance(), "rejected record must not change the balance")
	assert.Equal(t, disputes, l.DisputedCount(), "rejected record must not change disputes")
}

func assertBalance(t *testing.T, l *ClientLedger, available, held string) {
	t.Helper()

	b := l.Balance()
	assert.Equal(t, available, b.Available.String(), "available")
	assert.Equal(t, held, b.Held.String(), "held")
}

// ---------------------------------------------------------------------------
// scenarios
// ---------------------------------------------------------------------------

func TestNewClientLedgerIsEmpty(t *testing.T) {
	l := NewClientLedger()

	assertBalance(t, l, "0.0000", "0.0000")
	assert.False(t, l.Locked())
	assert.Zero(t, l.DisputedCount())

	_, ok := l.LastTxID()
	assert.False(t, ok)
}

func TestDepositThenWithdrawal(t *testing.T) {
	l := NewClientLedger()

	mustApply(t, l, deposit(1, "20.0000"), withdrawal(2, "5.0000"))

	assertBalance(t, l, "15.0000", "0.0000")
	last, ok := l.LastTxID()
	require.True(t, ok)
	assert.Equal(t, types.TxID(2), last)
}

func TestFirstDepositMayUseTxZero(t *testing.T) {
	l := NewClientLedger()

	mustApply(t, l, deposit(0, "1"))
	assertBalance(t, l, "1.0000", "0.0000")

	requireRejected(t, l, deposit(0, "1"), ErrorNonMonotonicID)
}

func TestDisputeMovesFundsToHeld(t *testing.T) {
	l := NewClientLedger()

	mustApply(t, l, deposit(1, "10.0000"), dispute(1))

	assertBalance(t, l, "0.0000", "10.0000")
	assert.False(t, l.Locked())
	assert.True(t, l.IsDisputed(1))
}

func TestChargebackLocksAccount(t *testing.T) {
	l := NewClientLedger()

	mustApply(t, l, deposit(1, "10.0000"), dispute(1), chargeback(1))

	assertBalance(t, l, "0.0000", "0.0000")
	assert.True(t, l.Locked())
	assert.False(t, l.IsDisputed(1))

	requireRejected(t, l, deposit(2, "5"), ErrorAccountLocked)
	assertBalance(t, l, "0.0000", "0.0000")
}

func TestLockedAccountRejectsEveryKind(t *testing.T) {
	l := NewClientLedger()
	mustApply(t, l, deposit(1, "10"), deposit(2, "4"), dispute(2), dispute(1), chargeback(1))
	require.True(t, l.Locked())

	for _, record := range []types.TransactionRecord{
		deposit(3, "1"),
		withdrawal(4, "1"),
		dispute(2),
		resolve(2),
		chargeback(2),
	} {
		t.Run(record.Kind.String(), func(t *testing.T) {
			requireRejected(t, l, record, ErrorAccountLocked)
		})
	}

	assertBalance(t, l, "0.0000", "4.0000")
	assert.True(t, l.IsDisputed(2))
}

func TestResolveReturnsHeldFunds(t *testing.T) {
	l := NewClientLedger()

	mustApply(t, l, deposit(1, "10"), deposit(2, "2.5"), dispute(1), resolve(1))

	assertBalance(t, l, "12.5000", "0.0000")
	assert.False(t, l.IsDisputed(1))
	assert.False(t, l.Locked())

	// a resolved transaction can be disputed again
	mustApply(t, l, dispute(1))
	assertBalance(t, l, "2.5000", "10.0000")
}

func TestDisputeOfWithdrawalHoldsWithdrawnAmount(t *testing.T) {
	l := NewClientLedger()

	mustApply(t, l, deposit(1, "20"), withdrawal(2, "5"), dispute(2))

	assertBalance(t, l, "10.0000", "5.0000")
}

// ---------------------------------------------------------------------------
// rejections
// ---------------------------------------------------------------------------

func TestWithdrawalExceedingAvailableIsRejected(t *testing.T) {
	l := NewClientLedger()
	mustApply(t, l, deposit(1, "3"))

	requireRejected(t, l, withdrawal(2, "3.0001"), ErrorInsufficientFunds)
	assertBalance(t, l, "3.0000", "0.0000")

	// the rejected id was not recorded, so it can be reused
	mustApply(t, l, withdrawal(2, "3"))
	assertBalance(t, l, "0.0000", "0.0000")
}

func TestNonMonotonicIDsAreRejected(t *testing.T) {
	l := NewClientLedger()
	mustApply(t, l, deposit(5, "10"))

	requireRejected(t, l, deposit(5, "1"), ErrorNonMonotonicID)
	requireRejected(t, l, deposit(4, "1"), ErrorNonMonotonicID)
	requireRejected(t, l, withdrawal(3, "1"), ErrorNonMonotonicID)
}

func TestDisputeTwiceIsRejected(t *testing.T) {
	l := NewClientLedger()
	mustApply(t, l, deposit(1, "10"), dispute(1))

	requireRejected(t, l, dispute(1), ErrorAlreadyDisputed)
	assert.True(t, l.IsDisputed(1))
	assert.Equal(t, 1, l.DisputedCount())
}

func TestDisputeUnknownTransactionIsRejected(t *testing.T) {
	l := NewClientLedger()
	mustApply(t, l, deposit(1, "10"))

	requireRejected(t, l, dispute(99), ErrorUnknownTransaction)
	assertBalance(t, l, "10.0000", "0.0000")
}

func TestDisputeOnEmptyLedgerIsRejected(t *testing.T) {
	l := NewClientLedger()

	requireRejected(t, l, dispute(1), ErrorUnknownTransaction)
	assertBalance(t, l, "0.0000", "0.0000")
}

func TestDisputeExceedingAvailableIsRejected(t *testing.T) {
	l := NewClientLedger()
	mustApply(t, l, deposit(1, "10"), withdrawal(2, "8"))

	requireRejected(t, l, dispute(1), ErrorInsufficientFunds)
	assertBalance(t, l, "2.0000", "0.0000")
	assert.False(t, l.IsDisputed(1))
}

func TestResolveAndChargebackRequireDispute(t *testing.T) {
	l := NewClientLedger()
	mustApply(t, l, deposit(1, "10"))

	requireRejected(t, l, resolve(1), ErrorNotDisputed)
	requireRejected(t, l, chargeback(1), ErrorNotDisputed)
	requireRejected(t, l, resolve(42), ErrorNotDisputed)
	assert.False(t, l.Locked())
}

// ---------------------------------------------------------------------------
// held shortfall
// ---------------------------------------------------------------------------

// Held only drops below a disputed amount through inconsistent data, so the
// state is forced directly.
func TestHeldShortfallIsANoOp(t *testing.T) {
	for _, kind := range []types.Kind{types.KindResolve, types.KindChargeback} {
		t.Run(kind.String(), func(t *testing.T) {
			l := NewClientLedger()
			mustApply(t, l, deposit(1, "10"), dispute(1))

			l.balance.Held = money.MustParseAmount("4")

			outcome, err := l.Apply(types.TransactionRecord{Kind: kind, Client: 1, Tx: 1})
			require.NoError(t, err)
			assert.Equal(t, OutcomeHeldShortfall, outcome)

			assertBalance(t, l, "0.0000", "4.0000")
			assert.True(t, l.IsDisputed(1), "transaction stays disputed")
			assert.False(t, l.Locked())
		})
	}
}

// ---------------------------------------------------------------------------
// properties
// ---------------------------------------------------------------------------

func TestAvailableEqualsSumOfAppliedDeltas(t *testing.T) {
	l := NewClientLedger()

	amounts := []string{"0.1", "0.2", "0.3", "1.0001", "99.9999", "0.0001"}
	expected := money.Zero
	tx := types.TxID(1)

	for round := 0; round < 50; round++ {
		for _, a := range amounts {
			mustApply(t, l, deposit(tx, a))
			expected = expected.Add(money.MustParseAmount(a))
			tx++
		}
		mustApply(t, l, withdrawal(tx, "0.3"))
		expected = expected.Sub(money.MustParseAmount("0.3"))
		tx++
	}

	assert.True(t, expected.Equal(l.Balance().Available), "got %s want %s", l.Balance().Available, expected)
	assert.Equal(t, "5065.0050", l.Balance().Available.String())
}

func TestTotalEqualsDepositsMinusWithdrawalsMinusChargebacks(t *testing.T) {
	l := NewClientLedger()

	records := []types.TransactionRecord{
		deposit(1, "50"),
		deposit(2, "25.5"),
		withdrawal(3, "10"),
		withdrawal(4, "100"), // rejected
		dispute(2),
		dispute(2), // rejected
		resolve(2),
		dispute(1),
		deposit(2, "1"), // rejected, not monotonic
		resolve(3),      // rejected, not disputed
		chargeback(1),
	}

	for _, r := range records {
		_, _ = l.Apply(r)
	}

	// deposits 75.5 - withdrawals 10 - chargebacks 50
	assert.Equal(t, "15.5000", l.Balance().Total().String())
	assert.Equal(t, "15.5000", l.Balance().Available.String())
	assert.Equal(t, "0.0000", l.Balance().Held.String())
	assert.True(t, l.Locked())
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "applied", OutcomeApplied.String())
	assert.Equal(t, "rejected", OutcomeRejected.String())
	assert.Equal(t, "held_shortfall", OutcomeHeldShortfall.String())
}

func TestCodeOf(t *testing.T) {
	l := NewClientLedger()
	_, err := l.Apply(dispute(1))

	assert.Equal(t, ErrorUnknownTransaction, CodeOf(err))
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("boom")))
	assert.Contains(t, err.Error(), "UnknownTransaction: client 1 tx 1")
}

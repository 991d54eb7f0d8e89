package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/payments-engine/internal/money"
	"github.com/ginjaninja78/payments-engine/internal/types"
)

func record(kind types.Kind, client types.ClientID, tx types.TxID, amount string) types.TransactionRecord {
	r := types.TransactionRecord{Kind: kind, Client: client, Tx: tx}
	if amount != "" {
		r.Amount = money.MustParseAmount(amount)
	}
	return r
}

func TestAccountBookRoutesByClient(t *testing.T) {
	book := NewAccountBook()

	records := []types.TransactionRecord{
		record(types.KindDeposit, 1, 1, "1.0"),
		record(types.KindDeposit, 2, 2, "2.0"),
		record(types.KindDeposit, 1, 3, "2.0"),
		record(types.KindWithdrawal, 1, 4, "1.5"),
		record(types.KindWithdrawal, 2, 5, "3.0"), // insufficient funds
	}

	var rejected int
	for _, r := range records {
		if _, err := book.Apply(r); err != nil {
			rejected++
		}
	}

	assert.Equal(t, 1, rejected)
	require.Equal(t, 2, book.Len())

	snapshot := book.Snapshot()
	require.Len(t, snapshot, 2)

	assert.Equal(t, types.ClientID(1), snapshot[0].Client)
	assert.Equal(t, "1.5000", snapshot[0].Balance.Available.String())
	assert.Equal(t, "0.0000", snapshot[0].Balance.Held.String())
	assert.False(t, snapshot[0].Locked)

	assert.Equal(t, types.ClientID(2), snapshot[1].Client)
	assert.Equal(t, "2.0000", snapshot[1].Balance.Available.String())
}

func TestAccountBookDisputeAcrossClientsIsUnknown(t *testing.T) {
	book := NewAccountBook()

	_, err := book.Apply(record(types.KindDeposit, 1, 1, "10"))
	require.NoError(t, err)

	outcome, err := book.Apply(record(types.KindDispute, 2, 1, ""))
	require.Error(t, err)
	assert.Equal(t, OutcomeRejected, outcome)
	assert.Equal(t, ErrorUnknownTransaction, CodeOf(err))

	l, ok := book.Ledger(1)
	require.True(t, ok)
	assert.Equal(t, "10.0000", l.Balance().Available.String())
	assert.False(t, l.IsDisputed(1))
}

func TestAccountBookKeepsClientWhoseFirstRecordWasRejected(t *testing.T) {
	book := NewAccountBook()

	_, err := book.Apply(record(types.KindDispute, 7, 1, ""))
	require.Error(t, err)

	l, ok := book.Ledger(7)
	require.True(t, ok)
	assert.True(t, l.Balance().Total().IsZero())

	snapshot := book.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, types.ClientID(7), snapshot[0].Client)
}

func TestAccountBookSnapshotIsOrderedByClient(t *testing.T) {
	book := NewAccountBook()

	for i, client := range []types.ClientID{65535, 3, 0, 12} {
		_, err := book.Apply(record(types.KindDeposit, client, types.TxID(i+1), "1"))
		require.NoError(t, err)
	}

	var clients []types.ClientID
	for _, s := range book.Snapshot() {
		clients = append(clients, s.Client)
	}

	assert.Equal(t, []types.ClientID{0, 3, 12, 65535}, clients)
}

func TestAccountBookChargebackScenario(t *testing.T) {
	book := NewAccountBook()

	for _, r := range []types.TransactionRecord{
		record(types.KindDeposit, 1, 1, "10.0000"),
		record(types.KindDispute, 1, 1, ""),
		record(types.KindChargeback, 1, 1, ""),
	} {
		outcome, err := book.Apply(r)
		require.NoError(t, err)
		require.Equal(t, OutcomeApplied, outcome)
	}

	_, err := book.Apply(record(types.KindDeposit, 1, 2, "5"))
	assert.Equal(t, ErrorAccountLocked, CodeOf(err))

	snapshot := book.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "0.0000", snapshot[0].Balance.Available.String())
	assert.Equal(t, "0.0000", snapshot[0].Balance.Held.String())
	assert.True(t, snapshot[0].Locked)
}

func TestEmptyAccountBookSnapshot(t *testing.T) {
	book := NewAccountBook()

	assert.Empty(t, book.Snapshot())
	assert.Zero(t, book.Len())

	_, ok := book.Ledger(1)
	assert.False(t, ok)
}

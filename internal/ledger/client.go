// =============================================================================
// Payments Engine - Client Ledger
// =============================================================================
//
// The client ledger is the per-client transaction state machine. It owns the
// client's balance, the amounts of every deposit and withdrawal it recorded,
// the set of transactions currently under dispute and the lock flag.
//
// STATE DIMENSIONS:
//   - balance (available, held)
//   - disputed transaction ids
//   - locked flag (set by a chargeback, never cleared)
//
// RULES:
//   deposit     tx id > last id; available += amount
//   withdrawal  tx id > last id; available >= amount; available -= amount
//   dispute     not disputed; known tx; available >= amount; hold amount
//   resolve     disputed; held >= amount; release amount
//   chargeback  disputed; held >= amount; forfeit amount; lock
//
// Resolve and chargeback with held funds below the disputed amount leave the
// state untouched and report OutcomeHeldShortfall.
//
// =============================================================================

package ledger

import (
	"github.com/ginjaninja78/payments-engine/internal/money"
	"github.com/ginjaninja78/payments-engine/internal/types"
)

// Outcome describes what Apply did with a record.
type Outcome uint8

const (
	// OutcomeRejected means the record was refused; Apply also returns an *Error.
	OutcomeRejected Outcome = iota
	// OutcomeApplied means the record mutated the ledger.
	OutcomeApplied
	// OutcomeHeldShortfall means a resolve or chargeback found less held
	// money than the disputed amount and did nothing. The transaction stays
	// disputed.
	OutcomeHeldShortfall
)

// String returns a short name for logs and metrics labels.
func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeHeldShortfall:
		return "held_shortfall"
	default:
		return "rejected"
	}
}

// HistoryEntry is a recorded deposit or withdrawal that may later be disputed.
type HistoryEntry struct {
	Kind   types.Kind
	Amount money.Amount
}

// ClientLedger holds the state of a single client account.
// The zero value is not usable; create ledgers with NewClientLedger.
type ClientLedger struct {
	balance  money.Balance
	history  map[types.TxID]HistoryEntry
	disputed map[types.TxID]struct{}
	lastTx   types.TxID
	hasLast  bool
	locked   bool
}

// NewClientLedger returns a ledger with zero balance, empty history, no
// disputes and an unlocked account.
func NewClientLedger() *ClientLedger {
	return &ClientLedger{
		history:  make(map[types.TxID]HistoryEntry),
		disputed: make(map[types.TxID]struct{}),
	}
}

// Apply validates record against the current state and, when valid, applies
// it. A rejected record leaves the ledger unchanged.
func (l *ClientLedger) Apply(record types.TransactionRecord) (Outcome, error) {
	if l.locked {
		return OutcomeRejected, newError(ErrorAccountLocked, record,
			"transaction to a locked account was ignored")
	}

	switch record.Kind {
	case types.KindDeposit:
		if err := l.checkMonotonic(record); err != nil {
			return OutcomeRejected, err
		}
		l.balance.Credit(record.Amount)
		l.record(record)

	case types.KindWithdrawal:
		if err := l.checkMonotonic(record); err != nil {
			return OutcomeRejected, err
		}
		if err := l.checkAvailable(record, record.Amount); err != nil {
			return OutcomeRejected, err
		}
		l.balance.Debit(record.Amount)
		l.record(record)

	case types.KindDispute:
		if l.IsDisputed(record.Tx) {
			return OutcomeRejected, newError(ErrorAlreadyDisputed, record,
				"transaction is already disputed")
		}
		entry, err := l.lookup(record)
		if err != nil {
			return OutcomeRejected, err
		}
		if err := l.checkAvailable(record, entry.Amount); err != nil {
			return OutcomeRejected, err
		}
		l.balance.Hold(entry.Amount)
		l.disputed[record.Tx] = struct{}{}

	case types.KindResolve:
		entry, err := l.disputedEntry(record)
		if err != nil {
			return OutcomeRejected, err
		}
		if !l.balance.Held.GreaterThanOrEqual(entry.Amount) {
			return OutcomeHeldShortfall, nil
		}
		l.balance.Release(entry.Amount)
		delete(l.disputed, record.Tx)

	case types.KindChargeback:
		entry, err := l.disputedEntry(record)
		if err != nil {
			return OutcomeRejected, err
		}
		if !l.balance.Held.GreaterThanOrEqual(entry.Amount) {
			return OutcomeHeldShortfall, nil
		}
		l.balance.Forfeit(entry.Amount)
		l.locked = true
		delete(l.disputed, record.Tx)

	default:
		panic("ledger: unhandled transaction kind " + record.Kind.String())
	}

	return OutcomeApplied, nil
}

// record stores a deposit or withdrawal so it can be disputed later.
func (l *ClientLedger) record(record types.TransactionRecord) {
	l.history[record.Tx] = HistoryEntry{Kind: record.Kind, Amount: record.Amount}
	l.lastTx = record.Tx
	l.hasLast = true
}

func (l *ClientLedger) checkMonotonic(record types.TransactionRecord) error {
	if l.hasLast && record.Tx <= l.lastTx {
		return newError(ErrorNonMonotonicID, record,
			"new transactions must have a higher id; previous id %d", l.lastTx)
	}
	return nil
}

func (l *ClientLedger) checkAvailable(record types.TransactionRecord, amount money.Amount) error {
	if !l.balance.Available.GreaterThanOrEqual(amount) {
		return newError(ErrorInsufficientFunds, record,
			"available %s is below amount %s", l.balance.Available, amount)
	}
	return nil
}

func (l *ClientLedger) lookup(record types.TransactionRecord) (HistoryEntry, error) {
	entry, ok := l.history[record.Tx]
	if !ok {
		return HistoryEntry{}, newError(ErrorUnknownTransaction, record,
			"transaction not found; it belongs to another client or was never seen")
	}
	return entry, nil
}

func (l *ClientLedger) disputedEntry(record types.TransactionRecord) (HistoryEntry, error) {
	if !l.IsDisputed(record.Tx) {
		return HistoryEntry{}, newError(ErrorNotDisputed, record,
			"transaction is not disputed")
	}
	return l.lookup(record)
}

// Balance returns a copy of the current balance.
func (l *ClientLedger) Balance() money.Balance {
	return l.balance
}

// Locked reports whether a chargeback locked the account.
func (l *ClientLedger) Locked() bool {
	return l.locked
}

// IsDisputed reports whether tx is currently under dispute.
func (l *ClientLedger) IsDisputed(tx types.TxID) bool {
	_, ok := l.disputed[tx]
	return ok
}

// DisputedCount returns the number of open disputes.
func (l *ClientLedger) DisputedCount() int {
	return len(l.disputed)
}

// LastTxID returns the highest deposit/withdrawal id recorded, and false when
// nothing has been recorded yet.
func (l *ClientLedger) LastTxID() (types.TxID, bool) {
	return l.lastTx, l.hasLast
}

// Summary returns the reportable state of the ledger.
func (l *ClientLedger) Summary(client types.ClientID) Summary {
	return Summary{Client: client, Balance: l.balance, Locked: l.locked}
}

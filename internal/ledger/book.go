package ledger

import (
	"sort"

	"github.com/ginjaninja78/payments-engine/internal/money"
	"github.com/ginjaninja78/payments-engine/internal/types"
)

// Summary is the final state of one client account.
type Summary struct {
	Client  types.ClientID
	Balance money.Balance
	Locked  bool
}

// AccountBook maps client ids to their ledgers and is the single entry point
// for mutation. It is not safe for concurrent use; records are applied
// strictly in arrival order.
type AccountBook struct {
	ledgers map[types.ClientID]*ClientLedger
}

// NewAccountBook returns an empty book.
func NewAccountBook() *AccountBook {
	return &AccountBook{ledgers: make(map[types.ClientID]*ClientLedger)}
}

// Apply routes record to its client's ledger, creating the ledger in its
// default state on first sight of the client.
//
// The ledger is kept even when its first record is rejected, so the client
// still appears in the report.
func (b *AccountBook) Apply(record types.TransactionRecord) (Outcome, error) {
	l, ok := b.ledgers[record.Client]
	if !ok {
		l = NewClientLedger()
		b.ledgers[record.Client] = l
	}
	return l.Apply(record)
}

// Ledger returns the ledger of client, if any.
func (b *AccountBook) Ledger(client types.ClientID) (*ClientLedger, bool) {
	l, ok := b.ledgers[client]
	return l, ok
}

// Len returns the number of known clients.
func (b *AccountBook) Len() int {
	return len(b.ledgers)
}

// Snapshot returns the summary of every client ordered by client id.
func (b *AccountBook) Snapshot() []Summary {
	summaries := make([]Summary, 0, len(b.ledgers))
	for client, l := range b.ledgers {
		summaries = append(summaries, l.Summary(client))
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Client < summaries[j].Client
	})

	return summaries
}

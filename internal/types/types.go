// =============================================================================
// Payments Engine - Shared Types
// =============================================================================
//
// This package contains the transaction record types shared by the ingestion,
// validation, ledger and processor packages. Keeping them here avoids import
// cycles between those packages.
//
// =============================================================================

package types

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/payments-engine/internal/money"
)

// =============================================================================
// TRANSACTION KIND
// =============================================================================

// Kind identifies one of the five transaction kinds.
// The set is closed; the ledger dispatches on it with a switch.
type Kind uint8

const (
	// KindDeposit credits the client's available funds.
	KindDeposit Kind = iota + 1

	// KindWithdrawal debits the client's available funds.
	KindWithdrawal

	// KindDispute moves the funds of a prior transaction from available to held.
	KindDispute

	// KindResolve cancels a dispute and returns the held funds to available.
	KindResolve

	// KindChargeback finalizes a dispute, forfeits the held funds and locks
	// the account.
	KindChargeback
)

var kindNames = map[Kind]string{
	KindDeposit:    "deposit",
	KindWithdrawal: "withdrawal",
	KindDispute:    "dispute",
	KindResolve:    "resolve",
	KindChargeback: "chargeback",
}

// ParseKind parses the lowercase kind name used in the input file.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for kind, kindName := range kindNames {
		if kindName == name {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown transaction type %q", s)
}

// String returns the input-file name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// References reports whether the kind refers to an earlier transaction
// instead of carrying its own amount (dispute, resolve, chargeback).
func (k Kind) References() bool {
	return k == KindDispute || k == KindResolve || k == KindChargeback
}

// =============================================================================
// TRANSACTION RECORD
// =============================================================================

// ClientID identifies a client account.
type ClientID uint16

// TxID identifies a transaction. It is unique across the whole input.
type TxID uint32

// TransactionRecord is one parsed input event. It is treated as immutable
// once built.
type TransactionRecord struct {
	// Kind is the transaction kind.
	Kind Kind

	// Client owns the account the record applies to.
	Client ClientID

	// Tx is the transaction id. For dispute-family records it names the
	// transaction being disputed, resolved or charged back.
	Tx TxID

	// Amount is set for deposits and withdrawals and zero otherwise.
	Amount money.Amount

	// Row is the 1-indexed row in the source file. Used for diagnostics only.
	Row int
}

// String renders the record for log and error messages.
func (r TransactionRecord) String() string {
	if r.Kind.References() {
		return fmt.Sprintf("%s client=%d tx=%d", r.Kind, r.Client, r.Tx)
	}
	return fmt.Sprintf("%s client=%d tx=%d amount=%s", r.Kind, r.Client, r.Tx, r.Amount)
}

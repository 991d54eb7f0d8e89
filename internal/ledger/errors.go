package ledger

import (
	"errors"
	"fmt"

	"github.com/ginjaninja78/payments-engine/internal/types"
)

// ErrorCode classifies why the ledger rejected a record.
type ErrorCode string

const (
	// ErrorUnknownTransaction: a dispute-family record references a tx id
	// missing from this client's history (another client's, or never seen).
	ErrorUnknownTransaction ErrorCode = "UnknownTransaction"
	// ErrorNonMonotonicID: a deposit or withdrawal tx id is not greater than
	// the last recorded one.
	ErrorNonMonotonicID ErrorCode = "NonMonotonicId"
	// ErrorInsufficientFunds: a withdrawal or dispute exceeds available funds.
	ErrorInsufficientFunds ErrorCode = "InsufficientFunds"
	// ErrorAlreadyDisputed: the referenced transaction is already disputed.
	ErrorAlreadyDisputed ErrorCode = "AlreadyDisputed"
	// ErrorNotDisputed: a resolve or chargeback references an undisputed tx.
	ErrorNotDisputed ErrorCode = "NotDisputed"
	// ErrorAccountLocked: the account was charged back and accepts nothing.
	ErrorAccountLocked ErrorCode = "AccountLocked"
)

// Error is a per-record rejection. It never aborts a run.
type Error struct {
	Code    ErrorCode
	Client  types.ClientID
	Tx      types.TxID
	Message string
}

// Error returns the formatted rejection.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: client %d tx %d: %s", e.Code, e.Client, e.Tx, e.Message)
}

func newError(code ErrorCode, record types.TransactionRecord, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Client:  record.Client,
		Tx:      record.Tx,
		Message: fmt.Sprintf(format, args...),
	}
}

// CodeOf returns the rejection code carried by err, or "" when err is not a
// ledger rejection.
func CodeOf(err error) ErrorCode {
	var ledgerErr *Error
	if errors.As(err, &ledgerErr) {
		return ledgerErr.Code
	}
	return ""
}

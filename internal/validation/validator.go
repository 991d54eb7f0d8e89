// =============================================================================
// Payments Engine - Record Validation
// =============================================================================
//
// This module turns a raw input row into a TransactionRecord.
//
// VALIDATION STRATEGY:
//   Validation is performed at two levels:
//   1. Structural: the row must carry 3 or 4 fields. Anything else means the
//      input is not a transaction file, and the run stops (ErrMalformedRecord).
//   2. Field-level: each field is parsed against its type. A bad value only
//      rejects the one record; processing continues with the next row.
//
// FIELD RULES:
//   - type:   deposit | withdrawal | dispute | resolve | chargeback
//   - client: unsigned integer that fits in 16 bits
//   - tx:     unsigned integer that fits in 32 bits
//   - amount: non-negative decimal, empty means zero. Must be zero for
//             dispute, resolve and chargeback.
//
// =============================================================================

package validation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ginjaninja78/payments-engine/internal/money"
	"github.com/ginjaninja78/payments-engine/internal/types"
)

// ErrMalformedRecord is returned for rows whose field count is neither 3 nor 4.
var ErrMalformedRecord = errors.New("malformed record")

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// Code classifies a field-level validation failure.
type Code string

const (
	CodeInvalidKind        Code = "InvalidKind"
	CodeInvalidClient      Code = "InvalidClient"
	CodeInvalidTransaction Code = "InvalidTransaction"
	CodeInvalidAmount      Code = "InvalidAmount"
	CodeUnexpectedAmount   Code = "UnexpectedAmount"
)

// Error is a field-level validation failure for one row.
type Error struct {
	// Code is the rule that was violated.
	Code Code

	// Field is the name of the field that failed validation.
	Field string

	// Value is the raw value that failed validation.
	Value string

	// Message is a human-readable error message.
	Message string

	// RowNumber is the source row (for error reporting).
	RowNumber int
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("row %d: %s: field '%s': %s (value: '%s')",
		e.RowNumber,
		e.Code,
		e.Field,
		e.Message,
		e.Value,
	)
}

// CodeOf returns the validation code carried by err, or "" if err is not a
// validation error.
func CodeOf(err error) Code {
	var vErr *Error
	if errors.As(err, &vErr) {
		return vErr.Code
	}
	return ""
}

// =============================================================================
// MAIN VALIDATION FUNCTION
// =============================================================================

// Validate converts a trimmed input row into a TransactionRecord.
//
// PARAMETERS:
//   - fields: The row's fields, in type, client, tx[, amount] order.
//   - row: The source row number, copied into the record and any error.
//
// RETURNS:
//   - The record, or an error. ErrMalformedRecord (wrapped) is fatal to the
//     run; *Error only rejects this row.
func Validate(fields []string, row int) (types.TransactionRecord, error) {
	if len(fields) != 3 && len(fields) != 4 {
		return types.TransactionRecord{}, fmt.Errorf("row %d: %w: expected 3 or 4 fields, got %d",
			row, ErrMalformedRecord, len(fields))
	}

	kind, err := types.ParseKind(fields[0])
	if err != nil {
		return types.TransactionRecord{}, newError(CodeInvalidKind, "type", fields[0], row,
			"must be one of deposit, withdrawal, dispute, resolve or chargeback")
	}

	client, err := strconv.ParseUint(strings.TrimSpace(fields[1]), 10, 16)
	if err != nil {
		return types.TransactionRecord{}, newError(CodeInvalidClient, "client", fields[1], row,
			"must be an unsigned 16-bit integer")
	}

	tx, err := strconv.ParseUint(strings.TrimSpace(fields[2]), 10, 32)
	if err != nil {
		return types.TransactionRecord{}, newError(CodeInvalidTransaction, "tx", fields[2], row,
			"must be an unsigned 32-bit integer")
	}

	amount, err := validateAmount(kind, fields, row)
	if err != nil {
		return types.TransactionRecord{}, err
	}

	return types.TransactionRecord{
		Kind:   kind,
		Client: types.ClientID(client),
		Tx:     types.TxID(tx),
		Amount: amount,
		Row:    row,
	}, nil
}

// validateAmount parses the optional fourth field.
func validateAmount(kind types.Kind, fields []string, row int) (money.Amount, error) {
	raw := ""
	if len(fields) == 4 {
		raw = fields[3]
	}

	amount, err := money.ParseAmount(raw)
	if err != nil {
		return money.Zero, newError(CodeInvalidAmount, "amount", raw, row, "is not a valid decimal number")
	}

	if amount.IsNegative() {
		return money.Zero, newError(CodeInvalidAmount, "amount", raw, row, "must not be negative")
	}

	if kind.References() && !amount.IsZero() {
		return money.Zero, newError(CodeUnexpectedAmount, "amount", raw, row,
			fmt.Sprintf("%s does not carry an amount", kind))
	}

	return amount, nil
}

func newError(code Code, field, value string, row int, message string) *Error {
	return &Error{
		Code:      code,
		Field:     field,
		Value:     value,
		Message:   message,
		RowNumber: row,
	}
}

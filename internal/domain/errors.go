package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind tags a domain error. Transports switch on the kind, never on the
// concrete error value.
type Kind string

const (
	KindSameAccountTransfer       Kind = "SameAccountTransfer"
	KindInvalidAmount             Kind = "InvalidAmount"
	KindAccountNotFound           Kind = "AccountNotFound"
	KindAccountNotOwned           Kind = "AccountNotOwned"
	KindDifferentCurrencyAccounts Kind = "DifferentCurrencyAccounts"
	KindInsufficientBalance       Kind = "InsufficientBalance"
	KindAccountAlreadyExists      Kind = "AccountAlreadyExists"
	KindEntryCreationFailed       Kind = "EntryCreationFailed"
	KindTransferRecordFailed      Kind = "TransferRecordFailed"
	KindUserNotFound              Kind = "UserNotFound"
	KindUserAlreadyExists         Kind = "UserAlreadyExists"
	KindLoginNotFound             Kind = "LoginNotFound"
	KindIncorrectPassword         Kind = "IncorrectPassword"
	KindValidation                Kind = "ValidationError"
	KindInternal                  Kind = "InternalError"
)

var (
	// Transfer errors
	ErrSameAccount          = errors.New("cannot transfer to same account")
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrCurrencyMismatch     = errors.New("cannot transfer between different currencies")
	ErrTransferRecordFailed = errors.New("failed to record transfer")

	// Account errors
	ErrAccountNotFound      = errors.New("account not found")
	ErrAccountNotOwned      = errors.New("account is not owned by user")
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrAccountAlreadyExists = errors.New("account already exists")
	ErrEntryCreationFailed  = errors.New("failed to create entry")

	// User errors
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrLoginNotFound     = errors.New("login not found")
	ErrIncorrectPassword = errors.New("incorrect password")

	ErrInternal = errors.New("internal error")
)

var kindSentinels = map[Kind]error{
	KindSameAccountTransfer:       ErrSameAccount,
	KindInvalidAmount:             ErrInvalidAmount,
	KindAccountNotFound:           ErrAccountNotFound,
	KindAccountNotOwned:           ErrAccountNotOwned,
	KindDifferentCurrencyAccounts: ErrCurrencyMismatch,
	KindInsufficientBalance:       ErrInsufficientBalance,
	KindAccountAlreadyExists:      ErrAccountAlreadyExists,
	KindEntryCreationFailed:       ErrEntryCreationFailed,
	KindTransferRecordFailed:      ErrTransferRecordFailed,
	KindUserNotFound:              ErrUserNotFound,
	KindUserAlreadyExists:         ErrUserAlreadyExists,
	KindLoginNotFound:             ErrLoginNotFound,
	KindIncorrectPassword:         ErrIncorrectPassword,
	KindInternal:                  ErrInternal,
}

// Error is a tagged domain error carrying the identifiers the caller needs.
type Error struct {
	Kind         Kind
	Message      string
	AccountID    uuid.UUID
	UserID       uuid.UUID
	OwnerID      uuid.UUID
	Currency     string
	CurrencyFrom string
	CurrencyTo   string
	Login        string
	Amount       decimal.Decimal

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap exposes the kind sentinel and the underlying cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if sentinel, ok := kindSentinels[e.Kind]; ok {
		errs = append(errs, sentinel)
	}
	if e.cause != nil {
		errs = append(errs, e.cause)
	}
	return errs
}

// Expected reports whether the error is a recoverable domain rejection rather
// than an internal failure.
func (e *Error) Expected() bool {
	switch e.Kind {
	case KindInternal, KindEntryCreationFailed, KindTransferRecordFailed:
		return false
	default:
		return true
	}
}

// KindOf returns the kind of err. Errors that are neither *Error nor a known
// sentinel are internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}

	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}

	for kind, sentinel := range kindSentinels {
		if errors.Is(err, sentinel) {
			return kind
		}
	}

	if isValidationError(err) {
		return KindValidation
	}

	return KindInternal
}

// AsError converts err into a tagged *Error. Unknown errors are wrapped as
// internal errors so the original cause is kept for logging.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}

	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr
	}

	kind := KindOf(err)
	if kind == KindInternal {
		return NewInternalError(err)
	}

	return &Error{Kind: kind, Message: err.Error()}
}

func NewSameAccountTransferError(accountID uuid.UUID) *Error {
	return &Error{
		Kind:      KindSameAccountTransfer,
		Message:   fmt.Sprintf("cannot transfer from account %s to itself", accountID),
		AccountID: accountID,
	}
}

func NewInvalidAmountError(amount decimal.Decimal) *Error {
	return &Error{
		Kind:    KindInvalidAmount,
		Message: fmt.Sprintf("invalid amount %s", amount),
		Amount:  amount,
	}
}

func NewAccountNotFoundError(accountID uuid.UUID) *Error {
	return &Error{
		Kind:      KindAccountNotFound,
		Message:   fmt.Sprintf("account %s not found", accountID),
		AccountID: accountID,
	}
}

func NewAccountNotOwnedError(accountID, userID uuid.UUID) *Error {
	return &Error{
		Kind:      KindAccountNotOwned,
		Message:   fmt.Sprintf("account %s is not owned by user %s", accountID, userID),
		AccountID: accountID,
		UserID:    userID,
	}
}

func NewDifferentCurrencyAccountsError(currencyFrom, currencyTo string) *Error {
	return &Error{
		Kind:         KindDifferentCurrencyAccounts,
		Message:      fmt.Sprintf("cannot transfer between %s and %s accounts", currencyFrom, currencyTo),
		CurrencyFrom: currencyFrom,
		CurrencyTo:   currencyTo,
	}
}

func NewInsufficientBalanceError(accountID uuid.UUID, amount decimal.Decimal) *Error {
	return &Error{
		Kind:      KindInsufficientBalance,
		Message:   fmt.Sprintf("account %s has insufficient balance for amount %s", accountID, amount),
		AccountID: accountID,
		Amount:    amount,
	}
}

func NewAccountAlreadyExistsError(ownerID uuid.UUID, currency string) *Error {
	return &Error{
		Kind:     KindAccountAlreadyExists,
		Message:  fmt.Sprintf("user %s already has a %s account", ownerID, currency),
		OwnerID:  ownerID,
		Currency: currency,
	}
}

func NewEntryCreationFailedError(accountID uuid.UUID, cause error) *Error {
	return &Error{
		Kind:      KindEntryCreationFailed,
		Message:   fmt.Sprintf("failed to create entry for account %s", accountID),
		AccountID: accountID,
		cause:     cause,
	}
}

func NewTransferRecordFailedError(cause error) *Error {
	return &Error{
		Kind:    KindTransferRecordFailed,
		Message: "failed to record transfer",
		cause:   cause,
	}
}

func NewUserNotFoundError(userID uuid.UUID) *Error {
	return &Error{
		Kind:    KindUserNotFound,
		Message: fmt.Sprintf("user %s not found", userID),
		UserID:  userID,
	}
}

func NewUserAlreadyExistsError(login, email string) *Error {
	return &Error{
		Kind:    KindUserAlreadyExists,
		Message: fmt.Sprintf("user with login %q or email %q already exists", login, email),
		Login:   login,
	}
}

func NewLoginNotFoundError(login string) *Error {
	return &Error{
		Kind:    KindLoginNotFound,
		Message: fmt.Sprintf("login %q not found", login),
		Login:   login,
	}
}

func NewIncorrectPasswordError(login string) *Error {
	return &Error{
		Kind:    KindIncorrectPassword,
		Message: fmt.Sprintf("incorrect password for login %q", login),
		Login:   login,
	}
}

// NewValidationError tags a request validation failure.
func NewValidationError(cause error) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: "validation failed",
		cause:   cause,
	}
}

// NewInternalError wraps an unexpected failure. The cause is kept for logs and
// must not be shown to clients.
func NewInternalError(cause error) *Error {
	return &Error{
		Kind:    KindInternal,
		Message: "internal error",
		cause:   cause,
	}
}

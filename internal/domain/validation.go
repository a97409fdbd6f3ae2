package domain

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidCurrency     = errors.New("invalid currency code")
	ErrInvalidAmountFormat = errors.New("invalid amount format")
	ErrAmountOutOfRange    = errors.New("amount out of allowed range")
	ErrInvalidLogin        = errors.New("invalid login")
	ErrInvalidName         = errors.New("invalid name")
	ErrInvalidEmail        = errors.New("invalid email format")
	ErrPasswordTooWeak     = errors.New("password does not meet requirements")
	ErrInvalidPagination   = errors.New("invalid pagination parameters")
)

var validationSentinels = []error{
	ErrInvalidCurrency,
	ErrInvalidAmountFormat,
	ErrAmountOutOfRange,
	ErrInvalidLogin,
	ErrInvalidName,
	ErrInvalidEmail,
	ErrPasswordTooWeak,
	ErrInvalidPagination,
}

// Validation constants
const (
	MinAmount         = "-100000"
	MaxAmount         = "1000000"
	MinLoginLength    = 3
	MaxLoginLength    = 100
	MinNameLength     = 3
	MaxNameLength     = 100
	MinPasswordLength = 8
	MaxPasswordLength = 100
	MinPerPage        = 5
	MaxPerPage        = 100
	DefaultPerPage    = 20
)

// Currencies accounts can be opened in.
var validCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true, "CNY": true,
}

var (
	emailRegex  = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	amountRegex = regexp.MustCompile(`^-?((\d+\.\d{1,2})|\d+)$`)

	minAmount = decimal.RequireFromString(MinAmount)
	maxAmount = decimal.RequireFromString(MaxAmount)
)

func isValidationError(err error) bool {
	for _, sentinel := range validationSentinels {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// NormalizeCurrency upper-cases and trims a currency code.
func NormalizeCurrency(currency string) string {
	return strings.ToUpper(strings.TrimSpace(currency))
}

// ValidateCurrency validates currency code
func ValidateCurrency(currency string) error {
	currency = NormalizeCurrency(currency)

	if !validCurrencies[currency] {
		return fmt.Errorf("%w: %s is not supported", ErrInvalidCurrency, currency)
	}

	return nil
}

// MoneyScale is the number of decimal places stored for money.
const MoneyScale = 2

// FitsMoneyScale reports whether amount can be stored without rounding.
func FitsMoneyScale(amount decimal.Decimal) bool {
	return amount.Equal(amount.Truncate(MoneyScale))
}

// ParseAmount parses a client supplied amount with at most two decimal places
// and checks it against the allowed range.
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if !amountRegex.MatchString(raw) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmountFormat, raw)
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidAmountFormat, err)
	}

	if amount.LessThan(minAmount) || amount.GreaterThan(maxAmount) {
		return decimal.Zero, fmt.Errorf("%w: must be between %s and %s", ErrAmountOutOfRange, MinAmount, MaxAmount)
	}

	return amount, nil
}

// ValidateLogin validates login length
func ValidateLogin(login string) error {
	if n := len(strings.TrimSpace(login)); n < MinLoginLength || n > MaxLoginLength {
		return fmt.Errorf("%w: must be %d to %d characters", ErrInvalidLogin, MinLoginLength, MaxLoginLength)
	}
	return nil
}

// ValidateName validates display name length
func ValidateName(name string) error {
	if n := len(strings.TrimSpace(name)); n < MinNameLength || n > MaxNameLength {
		return fmt.Errorf("%w: must be %d to %d characters", ErrInvalidName, MinNameLength, MaxNameLength)
	}
	return nil
}

// ValidateEmail validates email format
func ValidateEmail(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}

	return nil
}

// ValidatePassword validates password length
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrPasswordTooWeak, MinPasswordLength)
	}

	if len(password) > MaxPasswordLength {
		return fmt.Errorf("%w: must not exceed %d characters", ErrPasswordTooWeak, MaxPasswordLength)
	}

	return nil
}

// PageToLimitOffset validates 1-based page parameters and converts them to
// limit/offset. Zero values fall back to the first page of DefaultPerPage.
func PageToLimitOffset(page, perPage int) (limit, offset int, err error) {
	if page == 0 {
		page = 1
	}
	if perPage == 0 {
		perPage = DefaultPerPage
	}

	if page < 1 {
		return 0, 0, fmt.Errorf("%w: page must be at least 1", ErrInvalidPagination)
	}

	if perPage < MinPerPage || perPage > MaxPerPage {
		return 0, 0, fmt.Errorf("%w: per_page must be between %d and %d", ErrInvalidPagination, MinPerPage, MaxPerPage)
	}

	// Offsets are passed to the database as int4.
	if page-1 > math.MaxInt32/perPage {
		return 0, 0, fmt.Errorf("%w: page %d is out of range", ErrInvalidPagination, page)
	}

	return perPage, (page - 1) * perPage, nil
}

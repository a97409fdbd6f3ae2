package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/iho/simplebank/internal/domain"
	"github.com/iho/simplebank/internal/usecase"
)

// PostgreSQL error codes the repositories translate.
const (
	pgErrUniqueViolation     = "23505"
	pgErrForeignKeyViolation = "23503"
	pgErrCheckViolation      = "23514"
)

// Constraint names from the schema migrations.
const (
	constraintAccountsOwnerCurrency = "accounts_owner_currency_key"
	constraintAccountsOwnerFK       = "accounts_owner_id_fkey"
	constraintAccountsBalance       = "accounts_balance_check"
	constraintUsersLogin            = "users_login_key"
	constraintUsersEmail            = "users_email_key"
)

// ErrNotOurTransaction is returned when a repository receives a transaction
// that was not started by TxManager.
var ErrNotOurTransaction = errors.New("postgres: transaction not created by TxManager")

// translate maps constraint violations to domain sentinels and leaves other
// errors untouched.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrAccountNotFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgErrUniqueViolation:
		switch pgErr.ConstraintName {
		case constraintAccountsOwnerCurrency:
			return domain.ErrAccountAlreadyExists
		case constraintUsersLogin, constraintUsersEmail:
			return domain.ErrUserAlreadyExists
		}
	case pgErrForeignKeyViolation:
		if pgErr.ConstraintName == constraintAccountsOwnerFK {
			return domain.ErrUserNotFound
		}
	case pgErrCheckViolation:
		if pgErr.ConstraintName == constraintAccountsBalance {
			return domain.ErrInsufficientBalance
		}
	}

	return fmt.Errorf("postgres %s (%s): %w", pgErr.Code, pgErr.ConstraintName, err)
}

func pgxTx(tx usecase.Transaction) (pgx.Tx, error) {
	t, ok := tx.(*Tx)
	if !ok {
		return nil, ErrNotOurTransaction
	}
	return t.PgxTx(), nil
}

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}

	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

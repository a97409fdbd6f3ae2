package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/simplebank/internal/infrastructure/metrics"
)

// ReconciliationUseCase compares stored balances with the entries that
// produced them.
type ReconciliationUseCase struct {
	accountRepo AccountRepository
	entryRepo   EntryRepository
	ledgerRepo  LedgerRepository
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	ledgerRepo LedgerRepository,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		ledgerRepo:  ledgerRepo,
		metrics:     metrics,
		logger:      logger,
	}
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	AccountID         uuid.UUID
	RecordedBalance   decimal.Decimal
	CalculatedBalance decimal.Decimal
	Difference        decimal.Decimal
	IsReconciled      bool
	LastChecked       time.Time
}

// ReconcileAccount compares the stored balance of an account with the sum of
// its entries. The two are read outside a transaction, so a concurrent write
// can produce a transient mismatch.
func (uc *ReconciliationUseCase) ReconcileAccount(ctx context.Context, accountID uuid.UUID) (*ReconciliationResult, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, accountStoreError(err, accountID, decimal.Zero)
	}

	calculated, err := uc.entryRepo.SumByAccount(ctx, accountID)
	if err != nil {
		return nil, internalError("sum entries", err)
	}

	difference := account.Balance.Sub(calculated)
	result := &ReconciliationResult{
		AccountID:         accountID,
		RecordedBalance:   account.Balance,
		CalculatedBalance: calculated,
		Difference:        difference,
		IsReconciled:      difference.IsZero(),
		LastChecked:       time.Now().UTC(),
	}

	if !result.IsReconciled {
		uc.logger.Warn().
			Str("account_id", accountID.String()).
			Str("recorded", account.Balance.String()).
			Str("calculated", calculated.String()).
			Msg("account balance does not match entries")
		if uc.metrics != nil {
			uc.metrics.ReconciliationMismatches.Inc()
		}
	}

	return result, nil
}

// ReconcileAllAccounts reconciles every account in the system
func (uc *ReconciliationUseCase) ReconcileAllAccounts(ctx context.Context) ([]*ReconciliationResult, error) {
	var results []*ReconciliationResult

	for offset := 0; ; offset += ReconcileBatchSize {
		accounts, err := uc.accountRepo.List(ctx, ReconcileBatchSize, offset)
		if err != nil {
			return nil, internalError("list accounts", err)
		}

		for _, account := range accounts {
			result, err := uc.ReconcileAccount(ctx, account.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to reconcile account %s: %w", account.ID, err)
			}
			results = append(results, result)
		}

		if len(accounts) < ReconcileBatchSize {
			return results, nil
		}
	}
}

// CheckLedgerConsistency verifies that all stored balances together equal all
// entries together.
func (uc *ReconciliationUseCase) CheckLedgerConsistency(ctx context.Context) error {
	totalBalance, totalEntries, err := uc.ledgerRepo.Totals(ctx)
	if err != nil {
		return internalError("ledger totals", err)
	}

	if !totalBalance.Equal(totalEntries) {
		return fmt.Errorf(
			"ledger inconsistency detected: balances=%s entries=%s difference=%s",
			totalBalance.String(),
			totalEntries.String(),
			totalBalance.Sub(totalEntries).String(),
		)
	}

	return nil
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	TotalAccounts      int
	ReconciledAccounts int
	Discrepancies      []*ReconciliationResult
	LedgerConsistent   bool
	CheckedAt          time.Time
}

// GenerateReconciliationReport generates a comprehensive reconciliation report
func (uc *ReconciliationUseCase) GenerateReconciliationReport(ctx context.Context) (*ReconciliationReport, error) {
	results, err := uc.ReconcileAllAccounts(ctx)
	if err != nil {
		return nil, err
	}

	ledgerErr := uc.CheckLedgerConsistency(ctx)
	if ledgerErr != nil {
		uc.logger.Warn().Err(ledgerErr).Msg("ledger consistency check failed")
	}

	report := &ReconciliationReport{
		TotalAccounts:    len(results),
		Discrepancies:    make([]*ReconciliationResult, 0),
		LedgerConsistent: ledgerErr == nil,
		CheckedAt:        time.Now().UTC(),
	}

	for _, result := range results {
		if result.IsReconciled {
			report.ReconciledAccounts++
		} else {
			report.Discrepancies = append(report.Discrepancies, result)
		}
	}

	return report, nil
}

package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/simplebank/internal/domain"
)

// accountStoreError converts a repository failure on one account into the
// domain error a caller should see.
func accountStoreError(err error, accountID uuid.UUID, amount decimal.Decimal) error {
	var domainErr *domain.Error
	switch {
	case errors.As(err, &domainErr):
		return domainErr
	case errors.Is(err, domain.ErrAccountNotFound):
		return domain.NewAccountNotFoundError(accountID)
	case errors.Is(err, domain.ErrInsufficientBalance):
		return domain.NewInsufficientBalanceError(accountID, amount)
	default:
		return domain.NewInternalError(fmt.Errorf("account %s: %w", accountID, err))
	}
}

func internalError(op string, err error) error {
	return domain.NewInternalError(fmt.Errorf("%s: %w", op, err))
}

// logFailure logs domain rejections at debug and everything else at error.
func logFailure(logger zerolog.Logger, op string, err error) {
	if domainErr := domain.AsError(err); domainErr != nil && domainErr.Expected() {
		logger.Debug().Err(err).Str("op", op).Str("kind", string(domainErr.Kind)).Msg("request rejected")
		return
	}
	logger.Error().Err(err).Str("op", op).Msg("operation failed")
}

// invalidateAccounts drops committed accounts from the cache. It runs after
// commit, so it ignores cancellation of the request. Failures are logged only;
// entries also expire on their TTL.
func invalidateAccounts(ctx context.Context, cache AccountCache, logger zerolog.Logger, ids ...uuid.UUID) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(context.WithoutCancel(ctx), ids...); err != nil {
		logger.Warn().Err(err).Msg("failed to invalidate account cache")
	}
}

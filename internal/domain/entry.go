package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceAdjustmentDescription tags entries created by direct balance changes.
const BalanceAdjustmentDescription = "Balance modification from API"

// Entry is an immutable signed balance change on one account.
type Entry struct {
	ID          uuid.UUID
	AccountID   uuid.UUID
	Amount      decimal.Decimal
	Description string
	CreatedAt   time.Time
}

// TransferEntryDescription returns the description that correlates an entry
// with the transfer that produced it.
func TransferEntryDescription(transferID uuid.UUID) string {
	return fmt.Sprintf("Transfer ID %s", transferID)
}

package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iho/simplebank/internal/domain"
	"github.com/iho/simplebank/internal/usecase"
	"github.com/iho/simplebank/internal/usecase/mocks"
)

func TestEntryUseCase_ListEntries(t *testing.T) {
	owner := uuid.New()
	acc := &domain.Account{ID: uuid.New(), OwnerID: owner, Currency: "USD"}

	accounts := mocks.NewMockAccountRepository(acc)
	entries := mocks.NewMockEntryRepository()

	base := time.Now().UTC()
	for i := 0; i < 12; i++ {
		_, _ = entries.Create(context.Background(), nil, &domain.Entry{
			ID:        uuid.New(),
			AccountID: acc.ID,
			Amount:    decimal.NewFromInt(int64(i + 1)),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
	}

	uc := usecase.NewEntryUseCase(accounts, entries)

	tests := []struct {
		name      string
		input     usecase.ListEntriesInput
		wantCount int
		wantFirst int64
		kind      domain.Kind
	}{
		{
			name:      "first page newest first",
			input:     usecase.ListEntriesInput{ActorID: owner, AccountID: acc.ID, Page: 1, PerPage: 5},
			wantCount: 5,
			wantFirst: 12,
		},
		{
			name:      "last partial page",
			input:     usecase.ListEntriesInput{ActorID: owner, AccountID: acc.ID, Page: 3, PerPage: 5},
			wantCount: 2,
			wantFirst: 2,
		},
		{
			name:      "defaults",
			input:     usecase.ListEntriesInput{ActorID: owner, AccountID: acc.ID},
			wantCount: 12,
			wantFirst: 12,
		},
		{
			name:  "page size below minimum",
			input: usecase.ListEntriesInput{ActorID: owner, AccountID: acc.ID, Page: 1, PerPage: 4},
			kind:  domain.KindValidation,
		},
		{
			name:  "not owner",
			input: usecase.ListEntriesInput{ActorID: uuid.New(), AccountID: acc.ID, Page: 1, PerPage: 5},
			kind:  domain.KindAccountNotOwned,
		},
		{
			name:  "missing account",
			input: usecase.ListEntriesInput{ActorID: owner, AccountID: uuid.New(), Page: 1, PerPage: 5},
			kind:  domain.KindAccountNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := uc.ListEntries(context.Background(), tt.input)

			if tt.kind != "" {
				if k := domain.KindOf(err); k != tt.kind {
					t.Fatalf("expected kind %s, got %s (%v)", tt.kind, k, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != tt.wantCount {
				t.Fatalf("expected %d entries, got %d", tt.wantCount, len(got))
			}
			if !got[0].Amount.Equal(decimal.NewFromInt(tt.wantFirst)) {
				t.Errorf("expected first entry amount %d, got %s", tt.wantFirst, got[0].Amount)
			}
		})
	}
}

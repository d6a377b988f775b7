package ledger

import (
	"context"
	"errors"

	"github.com/questx-lab/ledger/internal/entity"
	"github.com/questx-lab/ledger/internal/repository"
	"gorm.io/gorm"
)

// IdempotencyStore remembers the result of every grant operation of a user. Both methods must run
// inside the grant transaction.
type IdempotencyStore struct {
	receiptRepo repository.GrantReceiptRepository
}

func NewIdempotencyStore(receiptRepo repository.GrantReceiptRepository) *IdempotencyStore {
	return &IdempotencyStore{receiptRepo: receiptRepo}
}

// Check returns the stored result of the operation, or nil if it was never applied.
func (s *IdempotencyStore) Check(ctx context.Context, userID, operationID string) (*GrantResult, error) {
	receipt, err := s.receiptRepo.Get(ctx, userID, operationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &GrantResult{
		Admitted:       receipt.Admitted,
		Day:            receipt.Day,
		Multiplier:     receipt.Multiplier,
		AlreadyApplied: true,
	}, nil
}

// Record fails with a duplicated key error if a concurrent transaction recorded the same
// operation first; the caller retries and then finds the stored result.
func (s *IdempotencyStore) Record(
	ctx context.Context, userID, operationID, source string, result GrantResult,
) error {
	return s.receiptRepo.Create(ctx, &entity.GrantReceipt{
		UserID:      userID,
		OperationID: operationID,
		Admitted:    result.Admitted,
		Multiplier:  result.Multiplier,
		Day:         result.Day,
		Source:      source,
	})
}

package repository

import (
	"context"

	"touristiq/iqhub/internal/model"
)

type RecoveryRepository interface {
	// Create stores the key and its reverse index entry in one transaction.
	Create(ctx context.Context, key *model.RecoveryKey, index *model.RecoveryCodeIndex) error
	// Update overwrites the secret-word and birth-date digests of an existing key.
	Update(ctx context.Context, key *model.RecoveryKey) error
	GetByIQCodeHash(ctx context.Context, iqCodeHash string) (*model.RecoveryKey, error)
	FindByPair(ctx context.Context, secretWordHash, birthDateHash string) (*model.RecoveryKey, error)
	GetIndex(ctx context.Context, iqCodeHash string) (*model.RecoveryCodeIndex, error)
}

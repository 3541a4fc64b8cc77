package repository

import (
	"context"

	"touristiq/iqhub/internal/model"
)

type IQCodeFilter struct {
	Role   model.Role
	Status model.CodeStatus
}

type IQCodeRepository interface {
	Create(ctx context.Context, code *model.IQCode) error
	// CreateCharged debits one credit from chargeTo and inserts code atomically.
	CreateCharged(ctx context.Context, code *model.IQCode, chargeTo string) (int, error)
	GetByCode(ctx context.Context, code string) (*model.IQCode, error)
	// Exists also sees soft-deleted rows: codes are never reissued.
	Exists(ctx context.Context, code string) (bool, error)
	List(ctx context.Context, filter IQCodeFilter) ([]model.IQCode, error)
	UpdateStatus(ctx context.Context, code string, status model.CodeStatus) error
	SetExcluded(ctx context.Context, code string, excluded bool) error
	SoftDelete(ctx context.Context, code string) error
	Restore(ctx context.Context, code string) error
	ListDeleted(ctx context.Context) ([]model.IQCode, error)
	// PurgeDeleted hard-deletes soft-deleted codes together with their
	// recovery key and index rows.
	PurgeDeleted(ctx context.Context) (int64, error)
}

type CreditRepository interface {
	Create(ctx context.Context, pkg *model.CreditPackage) error
	List(ctx context.Context) ([]model.CreditPackage, error)
	ListByRecipient(ctx context.Context, recipient string) ([]model.CreditPackage, error)
	// Decrement consumes one credit from the oldest package with a balance
	// and returns the recipient's total remaining credits.
	Decrement(ctx context.Context, recipient string) (int, error)
}

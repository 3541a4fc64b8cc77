package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"touristiq/iqhub/internal/model"
	"touristiq/iqhub/pkg/crypto"
)

type pgIQCodeRepository struct {
	db *gorm.DB
}

func NewPGIQCodeRepository(db *gorm.DB) IQCodeRepository {
	return &pgIQCodeRepository{db: db}
}

func (r *pgIQCodeRepository) Create(ctx context.Context, code *model.IQCode) error {
	return translateError(r.db.WithContext(ctx).Create(code).Error)
}

func (r *pgIQCodeRepository) CreateCharged(ctx context.Context, code *model.IQCode, chargeTo string) (int, error) {
	var remaining int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if remaining, err = decrementCredits(tx, chargeTo); err != nil {
			return err
		}
		return translateError(tx.Create(code).Error)
	})
	if err != nil {
		return 0, err
	}
	return remaining, nil
}

func (r *pgIQCodeRepository) GetByCode(ctx context.Context, code string) (*model.IQCode, error) {
	var iq model.IQCode
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&iq).Error; err != nil {
		return nil, translateError(err)
	}
	return &iq, nil
}

func (r *pgIQCodeRepository) Exists(ctx context.Context, code string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Unscoped().Model(&model.IQCode{}).Where("code = ?", code).Count(&n).Error
	return n > 0, err
}

func (r *pgIQCodeRepository) List(ctx context.Context, filter IQCodeFilter) ([]model.IQCode, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if filter.Role != "" {
		q = q.Where("role = ?", filter.Role)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	var codes []model.IQCode
	err := q.Find(&codes).Error
	return codes, err
}

func (r *pgIQCodeRepository) UpdateStatus(ctx context.Context, code string, status model.CodeStatus) error {
	return r.updateColumn(ctx, code, "status", status)
}

func (r *pgIQCodeRepository) SetExcluded(ctx context.Context, code string, excluded bool) error {
	return r.updateColumn(ctx, code, "is_excluded", excluded)
}

func (r *pgIQCodeRepository) updateColumn(ctx context.Context, code, column string, value interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.IQCode{}).Where("code = ?", code).Update(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgIQCodeRepository) SoftDelete(ctx context.Context, code string) error {
	res := r.db.WithContext(ctx).Where("code = ?", code).Delete(&model.IQCode{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgIQCodeRepository) Restore(ctx context.Context, code string) error {
	res := r.db.WithContext(ctx).Unscoped().Model(&model.IQCode{}).
		Where("code = ? AND deleted_at IS NOT NULL", code).
		Update("deleted_at", nil)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgIQCodeRepository) ListDeleted(ctx context.Context) ([]model.IQCode, error) {
	var codes []model.IQCode
	err := r.db.WithContext(ctx).Unscoped().
		Where("deleted_at IS NOT NULL").
		Order("deleted_at DESC").
		Find(&codes).Error
	return codes, err
}

func (r *pgIQCodeRepository) PurgeDeleted(ctx context.Context) (int64, error) {
	var purged int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var codes []string
		err := tx.Unscoped().Model(&model.IQCode{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("deleted_at IS NOT NULL").
			Pluck("code", &codes).Error
		if err != nil || len(codes) == 0 {
			return err
		}
		hashes := recoveryHashesOf(codes)
		if err := tx.Where("iq_code_hash IN ?", hashes).Delete(&model.RecoveryKey{}).Error; err != nil {
			return err
		}
		if err := tx.Where("iq_code_hash IN ?", hashes).Delete(&model.RecoveryCodeIndex{}).Error; err != nil {
			return err
		}
		res := tx.Unscoped().Where("code IN ?", codes).Delete(&model.IQCode{})
		purged = res.RowsAffected
		return res.Error
	})
	return purged, err
}

// recoveryHashesOf returns the recovery-key digests of codes.
func recoveryHashesOf(codes []string) []string {
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = crypto.SHA256Hex(c)
	}
	return out
}

type pgCreditRepository struct {
	db *gorm.DB
}

func NewPGCreditRepository(db *gorm.DB) CreditRepository {
	return &pgCreditRepository{db: db}
}

func (r *pgCreditRepository) Create(ctx context.Context, pkg *model.CreditPackage) error {
	if pkg.AssignedAt.IsZero() {
		pkg.AssignedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(pkg).Error
}

func (r *pgCreditRepository) List(ctx context.Context) ([]model.CreditPackage, error) {
	var pkgs []model.CreditPackage
	err := r.db.WithContext(ctx).Order("assigned_at DESC").Find(&pkgs).Error
	return pkgs, err
}

func (r *pgCreditRepository) ListByRecipient(ctx context.Context, recipient string) ([]model.CreditPackage, error) {
	var pkgs []model.CreditPackage
	err := r.db.WithContext(ctx).
		Where("recipient_code = ?", recipient).
		Order("assigned_at ASC").
		Find(&pkgs).Error
	return pkgs, err
}

func (r *pgCreditRepository) Decrement(ctx context.Context, recipient string) (int, error) {
	var remaining int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		remaining, err = decrementCredits(tx, recipient)
		return err
	})
	return remaining, err
}

// decrementCredits locks the oldest package with a balance and debits it.
// Must run inside a transaction.
func decrementCredits(tx *gorm.DB, recipient string) (int, error) {
	var pkg model.CreditPackage
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("recipient_code = ? AND credits_remaining > 0", recipient).
		Order("assigned_at ASC").
		First(&pkg).Error
	if err != nil {
		if translateError(err) == ErrNotFound {
			return 0, ErrInsufficientCredits
		}
		return 0, err
	}

	res := tx.Model(&model.CreditPackage{}).
		Where("id = ? AND credits_remaining > 0", pkg.ID).
		Updates(map[string]interface{}{
			"credits_remaining": gorm.Expr("credits_remaining - 1"),
			"credits_used":      gorm.Expr("credits_used + 1"),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrInsufficientCredits
	}

	var total int64
	if err := tx.Model(&model.CreditPackage{}).
		Where("recipient_code = ?", recipient).
		Select("COALESCE(SUM(credits_remaining), 0)").
		Row().Scan(&total); err != nil {
		return 0, err
	}
	return int(total), nil
}

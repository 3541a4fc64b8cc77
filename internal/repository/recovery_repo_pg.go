package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"touristiq/iqhub/internal/model"
)

type pgRecoveryRepository struct {
	db *gorm.DB
}

func NewPGRecoveryRepository(db *gorm.DB) RecoveryRepository {
	return &pgRecoveryRepository{db: db}
}

func (r *pgRecoveryRepository) Create(ctx context.Context, key *model.RecoveryKey, index *model.RecoveryCodeIndex) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(key).Error; err != nil {
			return translateError(err)
		}
		// The index row may survive from an earlier activation of the same code.
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "iq_code_hash"}},
			DoUpdates: clause.AssignmentColumns([]string{"sealed_code"}),
		}).Create(index).Error
	})
}

func (r *pgRecoveryRepository) Update(ctx context.Context, key *model.RecoveryKey) error {
	res := r.db.WithContext(ctx).Model(&model.RecoveryKey{}).
		Where("iq_code_hash = ?", key.IQCodeHash).
		Updates(map[string]interface{}{
			"secret_word_hash": key.SecretWordHash,
			"birth_date_hash":  key.BirthDateHash,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgRecoveryRepository) GetByIQCodeHash(ctx context.Context, iqCodeHash string) (*model.RecoveryKey, error) {
	var key model.RecoveryKey
	if err := r.db.WithContext(ctx).Where("iq_code_hash = ?", iqCodeHash).First(&key).Error; err != nil {
		return nil, translateError(err)
	}
	return &key, nil
}

func (r *pgRecoveryRepository) FindByPair(ctx context.Context, secretWordHash, birthDateHash string) (*model.RecoveryKey, error) {
	var key model.RecoveryKey
	err := r.db.WithContext(ctx).
		Where("secret_word_hash = ? AND birth_date_hash = ?", secretWordHash, birthDateHash).
		Order("updated_at DESC").
		First(&key).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &key, nil
}

func (r *pgRecoveryRepository) GetIndex(ctx context.Context, iqCodeHash string) (*model.RecoveryCodeIndex, error) {
	var idx model.RecoveryCodeIndex
	if err := r.db.WithContext(ctx).Where("iq_code_hash = ?", iqCodeHash).First(&idx).Error; err != nil {
		return nil, translateError(err)
	}
	return &idx, nil
}

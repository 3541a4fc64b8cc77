package model

import "gorm.io/gorm"

// AutoMigrate runs GORM auto-migration for all models and creates custom indexes.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&IQCode{},
		&CreditPackage{},
		&OneTimeCode{},
		&RecoveryKey{},
		&RecoveryCodeIndex{},
		&PartnerFeedback{},
		&PartnerRating{},
		&PartnerProfile{},
		&PartnerOffer{},
	); err != nil {
		return err
	}

	// Ledger invariant enforced by the database as well.
	if err := db.Exec(
		"DO $$ BEGIN " +
			"ALTER TABLE credit_packages ADD CONSTRAINT chk_credit_packages_balance " +
			"CHECK (credits_remaining >= 0 AND credits_used + credits_remaining = package_size); " +
			"EXCEPTION WHEN duplicate_object THEN NULL; END $$",
	).Error; err != nil {
		return err
	}

	if err := db.Exec(
		"DO $$ BEGIN " +
			"ALTER TABLE iq_codes ADD CONSTRAINT chk_iq_codes_uses " +
			"CHECK (available_one_time_uses >= 0); " +
			"EXCEPTION WHEN duplicate_object THEN NULL; END $$",
	).Error; err != nil {
		return err
	}

	// Plafond sums scan used codes per tourist.
	return db.Exec(
		"CREATE INDEX IF NOT EXISTS idx_one_time_codes_tourist_used " +
			"ON one_time_codes (tourist_code) WHERE is_used",
	).Error
}

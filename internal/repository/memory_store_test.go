package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"touristiq/iqhub/internal/model"
	"touristiq/iqhub/pkg/crypto"
)

func seedTourist(t *testing.T, db *MemoryDB, code string, uses int) {
	t.Helper()
	err := NewMemoryIQCodeRepository(db).Create(context.Background(), &model.IQCode{
		Code:                 code,
		Role:                 model.RoleTourist,
		IsActive:             true,
		Status:               model.CodeStatusApproved,
		AvailableOneTimeUses: uses,
	})
	if err != nil {
		t.Fatalf("seed %s: %v", code, err)
	}
}

func TestMemoryIQCodeLifecycle(t *testing.T) {
	ctx := context.Background()
	db := NewMemoryDB()
	repo := NewMemoryIQCodeRepository(db)
	seedTourist(t, db, "TIQ-IT-ROMA", 10)

	if err := repo.Create(ctx, &model.IQCode{Code: "TIQ-IT-ROMA"}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate create err = %v", err)
	}
	if err := repo.SoftDelete(ctx, "TIQ-IT-ROMA"); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if _, err := repo.GetByCode(ctx, "TIQ-IT-ROMA"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted code still visible: %v", err)
	}
	if ok, _ := repo.Exists(ctx, "TIQ-IT-ROMA"); !ok {
		t.Fatal("Exists must include trashed codes")
	}
	trash, _ := repo.ListDeleted(ctx)
	if len(trash) != 1 {
		t.Fatalf("trash size = %d", len(trash))
	}
	if err := repo.Restore(ctx, "TIQ-IT-ROMA"); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if err := repo.Restore(ctx, "TIQ-IT-ROMA"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("restoring a live code err = %v", err)
	}
	if err := repo.UpdateStatus(ctx, "TIQ-IT-ROMA", model.CodeStatusBlocked); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	got, _ := repo.GetByCode(ctx, "TIQ-IT-ROMA")
	if got.Status != model.CodeStatusBlocked {
		t.Fatalf("status = %s", got.Status)
	}

	_ = repo.SoftDelete(ctx, "TIQ-IT-ROMA")
	n, _ := repo.PurgeDeleted(ctx)
	if n != 1 {
		t.Fatalf("purged = %d", n)
	}
	if ok, _ := repo.Exists(ctx, "TIQ-IT-ROMA"); ok {
		t.Fatal("purged code still exists")
	}
}

func TestMemoryIQCodeListFilter(t *testing.T) {
	ctx := context.Background()
	db := NewMemoryDB()
	repo := NewMemoryIQCodeRepository(db)
	seedTourist(t, db, "TIQ-IT-ROMA", 10)
	_ = repo.Create(ctx, &model.IQCode{Code: "TIQ-VR-PRT-0001", Role: model.RolePartner, Status: model.CodeStatusPending})

	partners, _ := repo.List(ctx, IQCodeFilter{Role: model.RolePartner})
	if len(partners) != 1 || partners[0].Code != "TIQ-VR-PRT-0001" {
		t.Fatalf("partners = %+v", partners)
	}
	approved, _ := repo.List(ctx, IQCodeFilter{Status: model.CodeStatusApproved})
	if len(approved) != 1 || approved[0].Code != "TIQ-IT-ROMA" {
		t.Fatalf("approved = %+v", approved)
	}
}

func TestMemoryCreditDecrement(t *testing.T) {
	ctx := context.Background()
	credits := NewMemoryCreditRepository(NewMemoryDB())

	if _, err := credits.Decrement(ctx, "TIQ-VR-STT-0001"); !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("no packages err = %v", err)
	}

	_ = credits.Create(ctx, &model.CreditPackage{RecipientCode: "TIQ-VR-STT-0001", PackageSize: 25, CreditsRemaining: 1})
	_ = credits.Create(ctx, &model.CreditPackage{RecipientCode: "TIQ-VR-STT-0001", PackageSize: 50, CreditsRemaining: 50})

	remaining, err := credits.Decrement(ctx, "TIQ-VR-STT-0001")
	if err != nil || remaining != 50 {
		t.Fatalf("Decrement = %d, %v", remaining, err)
	}
	pkgs, _ := credits.ListByRecipient(ctx, "TIQ-VR-STT-0001")
	if pkgs[0].CreditsRemaining != 0 || pkgs[0].CreditsUsed != 1 {
		t.Fatalf("oldest package not consumed first: %+v", pkgs[0])
	}
	if pkgs[1].CreditsRemaining != 50 {
		t.Fatalf("second package touched: %+v", pkgs[1])
	}
}

func TestMemoryCreditDecrementLeavesExhaustedPackageUntouched(t *testing.T) {
	ctx := context.Background()
	credits := NewMemoryCreditRepository(NewMemoryDB())
	_ = credits.Create(ctx, &model.CreditPackage{RecipientCode: "P", PackageSize: 25, CreditsRemaining: 0, CreditsUsed: 25})

	if _, err := credits.Decrement(ctx, "P"); !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("err = %v", err)
	}
	pkgs, _ := credits.ListByRecipient(ctx, "P")
	if pkgs[0].CreditsUsed != 25 || pkgs[0].CreditsRemaining != 0 {
		t.Fatalf("package mutated: %+v", pkgs[0])
	}
}

func TestMemoryCreateChargedRollsBackOnNoCredits(t *testing.T) {
	ctx := context.Background()
	db := NewMemoryDB()
	codes := NewMemoryIQCodeRepository(db)

	_, err := codes.CreateCharged(ctx, &model.IQCode{Code: "TIQ-IT-LUNA"}, "TIQ-VR-STT-0001")
	if !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("err = %v", err)
	}
	if ok, _ := codes.Exists(ctx, "TIQ-IT-LUNA"); ok {
		t.Fatal("code created without a credit")
	}
}

func TestMemoryIssueConsumesUses(t *testing.T) {
	ctx := context.Background()
	db := NewMemoryDB()
	seedTourist(t, db, "TIQ-IT-ROMA", 1)
	otcs := NewMemoryOneTimeCodeRepository(db)

	left, err := otcs.Issue(ctx, &model.OneTimeCode{Code: "TIQ-OTC-00001", TouristCode: "TIQ-IT-ROMA"})
	if err != nil || left != 0 {
		t.Fatalf("Issue = %d, %v", left, err)
	}
	if _, err := otcs.Issue(ctx, &model.OneTimeCode{Code: "TIQ-OTC-00002", TouristCode: "TIQ-IT-ROMA"}); !errors.Is(err, ErrNoUsesRemaining) {
		t.Fatalf("second issue err = %v", err)
	}
	if ok, _ := otcs.Exists(ctx, "TIQ-OTC-00002"); ok {
		t.Fatal("code inserted without a use")
	}
}

func redeemWith(amount string) RedeemFunc {
	return func(_ *model.OneTimeCode, _ decimal.Decimal) (model.Redemption, error) {
		return model.Redemption{
			PartnerCode:    "TIQ-VR-PRT-0001",
			PartnerName:    "Trattoria",
			DiscountAmount: decimal.RequireFromString(amount),
			UsedAt:         time.Now(),
		}, nil
	}
}

func TestMemoryRedeemOnce(t *testing.T) {
	ctx := context.Background()
	db := NewMemoryDB()
	seedTourist(t, db, "TIQ-IT-ROMA", 10)
	otcs := NewMemoryOneTimeCodeRepository(db)
	_, _ = otcs.Issue(ctx, &model.OneTimeCode{Code: "TIQ-OTC-00001", TouristCode: "TIQ-IT-ROMA"})

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := otcs.Redeem(ctx, "TIQ-OTC-00001", redeemWith("10.00")); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("redeemed %d times", wins)
	}
	total, _ := otcs.SumDiscounts(ctx, "TIQ-IT-ROMA")
	if !total.Equal(decimal.RequireFromString("10")) {
		t.Fatalf("sum = %s", total)
	}
}

func TestMemoryRedeemAbortLeavesCodeUnused(t *testing.T) {
	ctx := context.Background()
	db := NewMemoryDB()
	seedTourist(t, db, "TIQ-IT-ROMA", 10)
	otcs := NewMemoryOneTimeCodeRepository(db)
	_, _ = otcs.Issue(ctx, &model.OneTimeCode{Code: "TIQ-OTC-00001", TouristCode: "TIQ-IT-ROMA"})

	boom := errors.New("boom")
	_, err := otcs.Redeem(ctx, "TIQ-OTC-00001", func(*model.OneTimeCode, decimal.Decimal) (model.Redemption, error) {
		return model.Redemption{}, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	got, _ := otcs.GetByCode(ctx, "TIQ-OTC-00001")
	if got.IsUsed {
		t.Fatal("aborted redemption marked code used")
	}
}

func TestMemoryFindRecentRedemption(t *testing.T) {
	ctx := context.Background()
	db := NewMemoryDB()
	seedTourist(t, db, "TIQ-IT-ROMA", 10)
	otcs := NewMemoryOneTimeCodeRepository(db)
	_, _ = otcs.Issue(ctx, &model.OneTimeCode{Code: "TIQ-OTC-00001", TouristCode: "TIQ-IT-ROMA"})
	_, _ = otcs.Redeem(ctx, "TIQ-OTC-00001", redeemWith("5"))

	if _, err := otcs.FindRecentRedemption(ctx, "TIQ-IT-ROMA", "TIQ-VR-PRT-0001", time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("recent redemption not found: %v", err)
	}
	if _, err := otcs.FindRecentRedemption(ctx, "TIQ-IT-ROMA", "TIQ-VR-PRT-0001", time.Now().Add(time.Hour)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("window not honored: %v", err)
	}
	list, _ := otcs.ListByPartner(ctx, "TIQ-VR-PRT-0001")
	if len(list) != 1 {
		t.Fatalf("partner redemptions = %d", len(list))
	}
}

func TestMemoryRecoveryPairLookup(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRecoveryRepository(NewMemoryDB())

	key := &model.RecoveryKey{IQCodeHash: "h1", SecretWordHash: "w", BirthDateHash: "d"}
	if err := repo.Create(ctx, key, &model.RecoveryCodeIndex{IQCodeHash: "h1", SealedCode: "sealed"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, key, &model.RecoveryCodeIndex{IQCodeHash: "h1"}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("second create err = %v", err)
	}
	found, err := repo.FindByPair(ctx, "w", "d")
	if err != nil || found.IQCodeHash != "h1" {
		t.Fatalf("FindByPair = %+v, %v", found, err)
	}
	if err := repo.Update(ctx, &model.RecoveryKey{IQCodeHash: "h1", SecretWordHash: "w2", BirthDateHash: "d2"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if _, err := repo.FindByPair(ctx, "w", "d"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("old pair still matches: %v", err)
	}
	idx, _ := repo.GetIndex(ctx, "h1")
	if idx.SealedCode != "sealed" {
		t.Fatalf("index = %+v", idx)
	}
}

func TestMemoryFeedbackCounts(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryFeedbackRepository(NewMemoryDB())
	_ = repo.Create(ctx, &model.PartnerFeedback{PartnerCode: "P", OTCCode: "A", Rating: model.FeedbackPositive})
	_ = repo.Create(ctx, &model.PartnerFeedback{PartnerCode: "P", OTCCode: "B", Rating: model.FeedbackNegative})
	if err := repo.Create(ctx, &model.PartnerFeedback{PartnerCode: "P", OTCCode: "A", Rating: model.FeedbackNegative}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate feedback err = %v", err)
	}
	counted := func(positive, total int) model.PartnerRating {
		return model.PartnerRating{Positive: positive, Total: total}
	}
	rating, previous, err := repo.RecomputeRating(ctx, "P", counted)
	if err != nil || previous != nil {
		t.Fatalf("first recompute = %+v, %+v, %v", rating, previous, err)
	}
	if rating.Positive != 1 || rating.Total != 2 || rating.PartnerCode != "P" {
		t.Fatalf("rating = %+v", rating)
	}
	_ = repo.Create(ctx, &model.PartnerFeedback{PartnerCode: "P", OTCCode: "C", Rating: model.FeedbackPositive})
	rating, previous, _ = repo.RecomputeRating(ctx, "P", counted)
	if previous == nil || previous.Total != 2 || rating.Total != 3 {
		t.Fatalf("second recompute = %+v, previous %+v", rating, previous)
	}
	stored, _ := repo.GetRating(ctx, "P")
	if stored.Positive != 2 || stored.Total != 3 {
		t.Fatalf("stored = %+v", stored)
	}
}

func TestMemoryAvailableOffersSkipExcludedPartners(t *testing.T) {
	ctx := context.Background()
	db := NewMemoryDB()
	codes := NewMemoryIQCodeRepository(db)
	partners := NewMemoryPartnerRepository(db)
	_ = codes.Create(ctx, &model.IQCode{Code: "P1", Role: model.RolePartner, IsActive: true})
	_ = codes.Create(ctx, &model.IQCode{Code: "P2", Role: model.RolePartner, IsActive: true})
	_ = codes.SetExcluded(ctx, "P2", true)
	_ = partners.CreateOffer(ctx, &model.PartnerOffer{PartnerCode: "P1", Title: "a", IsActive: true})
	_ = partners.CreateOffer(ctx, &model.PartnerOffer{PartnerCode: "P2", Title: "b", IsActive: true})

	offers, _ := partners.ListAvailableOffers(ctx, time.Now())
	if len(offers) != 1 || offers[0].PartnerCode != "P1" {
		t.Fatalf("offers = %+v", offers)
	}
}

func TestMemorySessionStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore().(*memorySessionStore)
	now := time.Now()
	store.now = func() time.Time { return now }

	_ = store.Register(ctx, "jti-1", "TIQ-IT-ROMA", time.Minute)
	if code, err := store.Lookup(ctx, "jti-1"); err != nil || code != "TIQ-IT-ROMA" {
		t.Fatalf("Lookup = %q, %v", code, err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := store.Lookup(ctx, "jti-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired session err = %v", err)
	}

	_ = store.Register(ctx, "jti-2", "TIQ-IT-ROMA", time.Minute)
	_ = store.Revoke(ctx, "jti-2")
	if _, err := store.Lookup(ctx, "jti-2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("revoked session err = %v", err)
	}
}

func TestMemoryPurgeDropsRecoveryRows(t *testing.T) {
	ctx := context.Background()
	db := NewMemoryDB()
	codes := NewMemoryIQCodeRepository(db)
	recovery := NewMemoryRecoveryRepository(db)
	seedTourist(t, db, "TIQ-IT-ROMA", 10)
	seedTourist(t, db, "TIQ-IT-LUNA", 10)

	for _, code := range []string{"TIQ-IT-ROMA", "TIQ-IT-LUNA"} {
		h := crypto.SHA256Hex(code)
		key := &model.RecoveryKey{IQCodeHash: h, SecretWordHash: "w-" + code, BirthDateHash: "d"}
		if err := recovery.Create(ctx, key, &model.RecoveryCodeIndex{IQCodeHash: h, SealedCode: "sealed"}); err != nil {
			t.Fatalf("Create %s: %v", code, err)
		}
	}
	_ = codes.SoftDelete(ctx, "TIQ-IT-ROMA")

	n, err := codes.PurgeDeleted(ctx)
	if err != nil || n != 1 {
		t.Fatalf("PurgeDeleted = %d, %v", n, err)
	}
	purged := crypto.SHA256Hex("TIQ-IT-ROMA")
	if _, err := recovery.GetByIQCodeHash(ctx, purged); !errors.Is(err, ErrNotFound) {
		t.Fatalf("recovery key survived purge: %v", err)
	}
	if _, err := recovery.GetIndex(ctx, purged); !errors.Is(err, ErrNotFound) {
		t.Fatalf("recovery index survived purge: %v", err)
	}
	if _, err := recovery.GetByIQCodeHash(ctx, crypto.SHA256Hex("TIQ-IT-LUNA")); err != nil {
		t.Fatalf("live code lost its recovery key: %v", err)
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"touristiq/iqhub/internal/codegen"
	"touristiq/iqhub/internal/events"
	"touristiq/iqhub/internal/model"
	"touristiq/iqhub/internal/repository"
	"touristiq/iqhub/pkg/crypto"
)

// TOURISTIQ_TEST_DSN points the tests below at a disposable PostgreSQL
// database, e.g. "host=localhost user=touristiq password=touristiq dbname=touristiq_test sslmode=disable".
const testDSNEnv = "TOURISTIQ_TEST_DSN"

func newPGFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := os.Getenv(testDSNEnv)
	if dsn == "" {
		t.Skipf("%s not set", testDSNEnv)
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(20)
	t.Cleanup(func() { _ = sqlDB.Close() })

	f := &fixture{
		codes:   repository.NewPGIQCodeRepository(db),
		credits: repository.NewPGCreditRepository(db),
		otcs:    repository.NewPGOneTimeCodeRepository(db),
		events:  &events.Recorder{},
	}
	partners := repository.NewPGPartnerRepository(db)
	feedback := repository.NewPGFeedbackRepository(db)
	gen := codegen.NewWithSource(rand.NewPCG(uint64(time.Now().UnixNano()), 7))
	log := zap.NewNop()

	sealer, err := crypto.NewSealer(testSealKey)
	if err != nil {
		t.Fatalf("NewSealer: %v", err)
	}
	f.code = NewCodeService(f.codes, gen, 10, log)
	f.credit = NewCreditService(f.codes, f.credits, log)
	f.otc = NewOTCService(f.otcs, f.codes, partners, gen, f.events, log)
	f.recovery = NewRecoveryService(repository.NewPGRecoveryRepository(db), sealer, log)
	f.feedback = NewFeedbackService(feedback, f.otcs, f.events, log)
	f.partner = NewPartnerService(partners, f.codes, feedback)
	return f
}

// runSuffix keeps codes from different runs apart in a shared database.
func runSuffix() string {
	return strings.ToUpper(strconv.FormatInt(time.Now().UnixNano(), 36))
}

// race starts n callers together and collects their errors.
func race(n int, fn func(i int) error) []error {
	errs := make([]error, n)
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = fn(i)
		}(i)
	}
	close(start)
	wg.Wait()
	return errs
}

func TestPGConcurrentRedeemOfOneCode(t *testing.T) {
	ctx := context.Background()
	f := newPGFixture(t)
	suffix := runSuffix()
	tourist, partner := "TIQ-IT-PG"+suffix, "TIQ-VR-PRT-"+suffix
	f.seed(t, tourist, model.RoleTourist, 1)
	f.seed(t, partner, model.RolePartner, 0)

	issued, err := f.otc.Issue(ctx, tourist)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	const callers = 20
	errs := race(callers, func(int) error {
		_, err := f.otc.Redeem(ctx, partner, RedeemRequest{
			Code: issued.Code, OriginalAmount: dec("100"), DiscountPercentage: dec("10"),
		})
		return err
	})

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrAlreadyUsed):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("%d redemptions succeeded, want 1", succeeded)
	}
	used, _ := f.otcs.SumDiscounts(ctx, tourist)
	if !used.Equal(dec("10")) {
		t.Fatalf("discount total = %s, want 10", used)
	}
}

func TestPGConcurrentRedeemsStayWithinPlafond(t *testing.T) {
	ctx := context.Background()
	f := newPGFixture(t)
	suffix := runSuffix()
	tourist, partner := "TIQ-IT-PG"+suffix, "TIQ-VR-PRT-"+suffix

	const codes = 10
	f.seed(t, tourist, model.RoleTourist, codes)
	f.seed(t, partner, model.RolePartner, 0)
	otcs := make([]string, codes)
	for i := range otcs {
		issued, err := f.otc.Issue(ctx, tourist)
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}
		otcs[i] = issued.Code
	}

	var (
		mu      sync.Mutex
		applied = decimal.Zero
	)
	errs := race(codes, func(i int) error {
		res, err := f.otc.Redeem(ctx, partner, RedeemRequest{
			Code: otcs[i], OriginalAmount: dec("100"), DiscountPercentage: dec("40"),
		})
		if err == nil {
			mu.Lock()
			applied = applied.Add(res.AppliedDiscount)
			mu.Unlock()
		}
		return err
	})

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrPlafondExhausted):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	// 40 + 40 + 40 + 30 (clamped)
	if succeeded != 4 {
		t.Fatalf("%d redemptions succeeded, want 4", succeeded)
	}
	if !applied.Equal(PlafondLimit) {
		t.Fatalf("applied total = %s, want %s", applied, PlafondLimit)
	}
	used, err := f.otcs.SumDiscounts(ctx, tourist)
	if err != nil {
		t.Fatalf("SumDiscounts: %v", err)
	}
	if used.GreaterThan(PlafondLimit) || !used.Equal(applied) {
		t.Fatalf("stored total = %s, applied = %s", used, applied)
	}
}

func TestPGConcurrentGenerateAtLastCredit(t *testing.T) {
	ctx := context.Background()
	f := newPGFixture(t)
	structure := "TIQ-VR-STT-" + runSuffix()
	f.seed(t, structure, model.RoleStructure, 0)
	if err := f.credit.Seed(ctx, structure, 1); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	const callers = 10
	errs := race(callers, func(int) error {
		_, err := f.code.GenerateTouristCode(ctx, structure, "IT", "")
		return err
	})

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrInsufficientCredits):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("%d codes generated, want 1", succeeded)
	}
	summary, err := f.credit.Credits(ctx, structure)
	if err != nil {
		t.Fatalf("Credits: %v", err)
	}
	if summary.CreditsRemaining != 0 || summary.CreditsUsed != 1 {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestPGConcurrentFeedbackKeepsRatingCurrent(t *testing.T) {
	ctx := context.Background()
	f := newPGFixture(t)
	suffix := runSuffix()
	partner := "TIQ-VR-PRT-" + suffix
	f.seed(t, partner, model.RolePartner, 0)

	const tourists = 12
	codes := make([]string, tourists)
	for i := range codes {
		tourist := fmt.Sprintf("TIQ-IT-PG%s%02d", suffix, i)
		f.seed(t, tourist, model.RoleTourist, 1)
		issued, err := f.otc.Issue(ctx, tourist)
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}
		if _, err := f.otc.Redeem(ctx, partner, RedeemRequest{
			Code: issued.Code, OriginalAmount: dec("10"), DiscountPercentage: dec("10"),
		}); err != nil {
			t.Fatalf("Redeem: %v", err)
		}
		codes[i] = tourist
	}

	errs := race(tourists, func(i int) error {
		rating := model.FeedbackPositive
		if i%4 == 0 {
			rating = model.FeedbackNegative
		}
		_, err := f.feedback.Record(ctx, codes[i], FeedbackRequest{PartnerCode: partner, Rating: rating})
		return err
	})
	for _, err := range errs {
		if err != nil {
			t.Errorf("Record: %v", err)
		}
	}

	got, err := f.feedback.Rating(ctx, partner)
	if err != nil {
		t.Fatalf("Rating: %v", err)
	}
	if got.Total != tourists || got.Positive != 9 || got.Percentage != 75 {
		t.Fatalf("rating = %+v", got)
	}
}

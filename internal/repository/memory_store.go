package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"touristiq/iqhub/internal/model"
	"touristiq/iqhub/pkg/crypto"
)

// MemoryDB backs the in-memory repositories (local dev / tests). A single
// mutex stands in for the transactions and row locks of the postgres store.
type MemoryDB struct {
	mu            sync.Mutex
	codes         map[string]*model.IQCode
	packages      []*model.CreditPackage
	otcs          map[string]*model.OneTimeCode
	recoveryKeys  map[string]*model.RecoveryKey
	recoveryIndex map[string]*model.RecoveryCodeIndex
	feedback      map[string]*model.PartnerFeedback
	ratings       map[string]*model.PartnerRating
	profiles      map[string]*model.PartnerProfile
	offers        map[uuid.UUID]*model.PartnerOffer
}

func NewMemoryDB() *MemoryDB {
	return &MemoryDB{
		codes:         make(map[string]*model.IQCode),
		otcs:          make(map[string]*model.OneTimeCode),
		recoveryKeys:  make(map[string]*model.RecoveryKey),
		recoveryIndex: make(map[string]*model.RecoveryCodeIndex),
		feedback:      make(map[string]*model.PartnerFeedback),
		ratings:       make(map[string]*model.PartnerRating),
		profiles:      make(map[string]*model.PartnerProfile),
		offers:        make(map[uuid.UUID]*model.PartnerOffer),
	}
}

// ---- IQ codes ----

type memoryIQCodeRepository struct {
	db *MemoryDB
}

func NewMemoryIQCodeRepository(db *MemoryDB) IQCodeRepository {
	return &memoryIQCodeRepository{db: db}
}

func (r *memoryIQCodeRepository) Create(_ context.Context, code *model.IQCode) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.insertCode(code)
}

func (db *MemoryDB) insertCode(code *model.IQCode) error {
	if _, ok := db.codes[code.Code]; ok {
		return ErrDuplicate
	}
	if code.ID == uuid.Nil {
		code.ID = uuid.New()
	}
	now := time.Now()
	code.CreatedAt, code.UpdatedAt = now, now
	cp := *code
	db.codes[code.Code] = &cp
	return nil
}

func (r *memoryIQCodeRepository) CreateCharged(_ context.Context, code *model.IQCode, chargeTo string) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.codes[code.Code]; ok {
		return 0, ErrDuplicate
	}
	remaining, err := r.db.decrementCredits(chargeTo)
	if err != nil {
		return 0, err
	}
	return remaining, r.db.insertCode(code)
}

func (r *memoryIQCodeRepository) GetByCode(_ context.Context, code string) (*model.IQCode, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.codes[code]
	if !ok || c.DeletedAt.Valid {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memoryIQCodeRepository) Exists(_ context.Context, code string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	_, ok := r.db.codes[code]
	return ok, nil
}

func (r *memoryIQCodeRepository) List(_ context.Context, filter IQCodeFilter) ([]model.IQCode, error) {
	return r.collect(func(c *model.IQCode) bool {
		if c.DeletedAt.Valid {
			return false
		}
		if filter.Role != "" && c.Role != filter.Role {
			return false
		}
		return filter.Status == "" || c.Status == filter.Status
	}), nil
}

func (r *memoryIQCodeRepository) collect(keep func(*model.IQCode) bool) []model.IQCode {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []model.IQCode
	for _, c := range r.db.codes {
		if keep(c) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *memoryIQCodeRepository) mutate(code string, deleted bool, fn func(*model.IQCode)) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.codes[code]
	if !ok || c.DeletedAt.Valid != deleted {
		return ErrNotFound
	}
	fn(c)
	c.UpdatedAt = time.Now()
	return nil
}

func (r *memoryIQCodeRepository) UpdateStatus(_ context.Context, code string, status model.CodeStatus) error {
	return r.mutate(code, false, func(c *model.IQCode) { c.Status = status })
}

func (r *memoryIQCodeRepository) SetExcluded(_ context.Context, code string, excluded bool) error {
	return r.mutate(code, false, func(c *model.IQCode) { c.IsExcluded = excluded })
}

func (r *memoryIQCodeRepository) SoftDelete(_ context.Context, code string) error {
	return r.mutate(code, false, func(c *model.IQCode) {
		c.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	})
}

func (r *memoryIQCodeRepository) Restore(_ context.Context, code string) error {
	return r.mutate(code, true, func(c *model.IQCode) { c.DeletedAt = gorm.DeletedAt{} })
}

func (r *memoryIQCodeRepository) ListDeleted(_ context.Context) ([]model.IQCode, error) {
	return r.collect(func(c *model.IQCode) bool { return c.DeletedAt.Valid }), nil
}

func (r *memoryIQCodeRepository) PurgeDeleted(_ context.Context) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for k, c := range r.db.codes {
		if c.DeletedAt.Valid {
			h := crypto.SHA256Hex(c.Code)
			delete(r.db.recoveryKeys, h)
			delete(r.db.recoveryIndex, h)
			delete(r.db.codes, k)
			n++
		}
	}
	return n, nil
}

// ---- credits ----

type memoryCreditRepository struct {
	db *MemoryDB
}

func NewMemoryCreditRepository(db *MemoryDB) CreditRepository {
	return &memoryCreditRepository{db: db}
}

func (r *memoryCreditRepository) Create(_ context.Context, pkg *model.CreditPackage) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if pkg.ID == uuid.Nil {
		pkg.ID = uuid.New()
	}
	if pkg.AssignedAt.IsZero() {
		pkg.AssignedAt = time.Now()
	}
	cp := *pkg
	r.db.packages = append(r.db.packages, &cp)
	return nil
}

func (r *memoryCreditRepository) List(_ context.Context) ([]model.CreditPackage, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]model.CreditPackage, 0, len(r.db.packages))
	for i := len(r.db.packages) - 1; i >= 0; i-- {
		out = append(out, *r.db.packages[i])
	}
	return out, nil
}

func (r *memoryCreditRepository) ListByRecipient(_ context.Context, recipient string) ([]model.CreditPackage, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []model.CreditPackage
	for _, p := range r.db.packages {
		if p.RecipientCode == recipient {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memoryCreditRepository) Decrement(_ context.Context, recipient string) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.decrementCredits(recipient)
}

// decrementCredits expects db.mu to be held. Packages are kept in assignment order.
func (db *MemoryDB) decrementCredits(recipient string) (int, error) {
	var target *model.CreditPackage
	total := 0
	for _, p := range db.packages {
		if p.RecipientCode != recipient {
			continue
		}
		if target == nil && p.CreditsRemaining > 0 {
			target = p
		}
		total += p.CreditsRemaining
	}
	if target == nil {
		return 0, ErrInsufficientCredits
	}
	target.CreditsRemaining--
	target.CreditsUsed++
	return total - 1, nil
}

// ---- one-time codes ----

type memoryOneTimeCodeRepository struct {
	db *MemoryDB
}

func NewMemoryOneTimeCodeRepository(db *MemoryDB) OneTimeCodeRepository {
	return &memoryOneTimeCodeRepository{db: db}
}

func (r *memoryOneTimeCodeRepository) Exists(_ context.Context, code string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	_, ok := r.db.otcs[code]
	return ok, nil
}

func (r *memoryOneTimeCodeRepository) Issue(_ context.Context, otc *model.OneTimeCode) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	tourist, ok := r.db.codes[otc.TouristCode]
	if !ok || tourist.DeletedAt.Valid || tourist.AvailableOneTimeUses <= 0 {
		return 0, ErrNoUsesRemaining
	}
	if _, dup := r.db.otcs[otc.Code]; dup {
		return 0, ErrDuplicate
	}
	tourist.AvailableOneTimeUses--
	if otc.ID == uuid.Nil {
		otc.ID = uuid.New()
	}
	otc.CreatedAt = time.Now()
	cp := *otc
	r.db.otcs[otc.Code] = &cp
	return tourist.AvailableOneTimeUses, nil
}

func (r *memoryOneTimeCodeRepository) GetByCode(_ context.Context, code string) (*model.OneTimeCode, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	otc, ok := r.db.otcs[code]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *otc
	return &cp, nil
}

func (r *memoryOneTimeCodeRepository) Redeem(_ context.Context, code string, fn RedeemFunc) (*model.OneTimeCode, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	otc, ok := r.db.otcs[code]
	if !ok {
		return nil, ErrNotFound
	}
	if otc.IsUsed {
		return nil, ErrAlreadyUsed
	}
	working := *otc
	redemption, err := fn(&working, r.db.sumDiscounts(otc.TouristCode))
	if err != nil {
		return nil, err
	}
	working.Apply(redemption)
	*otc = working
	cp := working
	return &cp, nil
}

func (r *memoryOneTimeCodeRepository) ListByTourist(_ context.Context, tourist string) ([]model.OneTimeCode, error) {
	return r.collect(func(o *model.OneTimeCode) bool { return o.TouristCode == tourist }, false), nil
}

func (r *memoryOneTimeCodeRepository) ListByPartner(_ context.Context, partner string) ([]model.OneTimeCode, error) {
	return r.collect(func(o *model.OneTimeCode) bool {
		return o.IsUsed && o.PartnerCode != nil && *o.PartnerCode == partner
	}, true), nil
}

func (r *memoryOneTimeCodeRepository) collect(keep func(*model.OneTimeCode) bool, byUsedAt bool) []model.OneTimeCode {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []model.OneTimeCode
	for _, o := range r.db.otcs {
		if keep(o) {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if byUsedAt && out[i].UsedAt != nil && out[j].UsedAt != nil {
			return out[i].UsedAt.After(*out[j].UsedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *memoryOneTimeCodeRepository) SumDiscounts(_ context.Context, tourist string) (decimal.Decimal, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.sumDiscounts(tourist), nil
}

func (db *MemoryDB) sumDiscounts(tourist string) decimal.Decimal {
	total := decimal.Zero
	for _, o := range db.otcs {
		if o.TouristCode == tourist && o.IsUsed && o.DiscountAmount != nil {
			total = total.Add(*o.DiscountAmount)
		}
	}
	return total
}

func (r *memoryOneTimeCodeRepository) FindRecentRedemption(_ context.Context, tourist, partner string, since time.Time) (*model.OneTimeCode, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var best *model.OneTimeCode
	for _, o := range r.db.otcs {
		if o.TouristCode != tourist || !o.IsUsed || o.PartnerCode == nil || *o.PartnerCode != partner {
			continue
		}
		if o.UsedAt == nil || o.UsedAt.Before(since) {
			continue
		}
		if best == nil || o.UsedAt.After(*best.UsedAt) {
			best = o
		}
	}
	if best == nil {
		return nil, ErrNotFound
	}
	cp := *best
	return &cp, nil
}

// ---- recovery ----

type memoryRecoveryRepository struct {
	db *MemoryDB
}

func NewMemoryRecoveryRepository(db *MemoryDB) RecoveryRepository {
	return &memoryRecoveryRepository{db: db}
}

func (r *memoryRecoveryRepository) Create(_ context.Context, key *model.RecoveryKey, index *model.RecoveryCodeIndex) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.recoveryKeys[key.IQCodeHash]; ok {
		return ErrDuplicate
	}
	now := time.Now()
	if key.ID == uuid.Nil {
		key.ID = uuid.New()
	}
	key.CreatedAt, key.UpdatedAt = now, now
	k := *key
	r.db.recoveryKeys[key.IQCodeHash] = &k
	index.CreatedAt = now
	idx := *index
	r.db.recoveryIndex[index.IQCodeHash] = &idx
	return nil
}

func (r *memoryRecoveryRepository) Update(_ context.Context, key *model.RecoveryKey) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	existing, ok := r.db.recoveryKeys[key.IQCodeHash]
	if !ok {
		return ErrNotFound
	}
	existing.SecretWordHash = key.SecretWordHash
	existing.BirthDateHash = key.BirthDateHash
	existing.UpdatedAt = time.Now()
	return nil
}

func (r *memoryRecoveryRepository) GetByIQCodeHash(_ context.Context, iqCodeHash string) (*model.RecoveryKey, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	k, ok := r.db.recoveryKeys[iqCodeHash]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *k
	return &cp, nil
}

func (r *memoryRecoveryRepository) FindByPair(_ context.Context, secretWordHash, birthDateHash string) (*model.RecoveryKey, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var best *model.RecoveryKey
	for _, k := range r.db.recoveryKeys {
		if k.SecretWordHash != secretWordHash || k.BirthDateHash != birthDateHash {
			continue
		}
		if best == nil || k.UpdatedAt.After(best.UpdatedAt) {
			best = k
		}
	}
	if best == nil {
		return nil, ErrNotFound
	}
	cp := *best
	return &cp, nil
}

func (r *memoryRecoveryRepository) GetIndex(_ context.Context, iqCodeHash string) (*model.RecoveryCodeIndex, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	idx, ok := r.db.recoveryIndex[iqCodeHash]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *idx
	return &cp, nil
}

// ---- feedback ----

type memoryFeedbackRepository struct {
	db *MemoryDB
}

func NewMemoryFeedbackRepository(db *MemoryDB) FeedbackRepository {
	return &memoryFeedbackRepository{db: db}
}

func (r *memoryFeedbackRepository) Create(_ context.Context, fb *model.PartnerFeedback) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.feedback[fb.OTCCode]; ok {
		return ErrDuplicate
	}
	if fb.ID == uuid.Nil {
		fb.ID = uuid.New()
	}
	fb.CreatedAt = time.Now()
	cp := *fb
	r.db.feedback[fb.OTCCode] = &cp
	return nil
}

func (r *memoryFeedbackRepository) RecomputeRating(_ context.Context, partner string, fn RatingFunc) (*model.PartnerRating, *model.PartnerRating, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	positive, total := 0, 0
	for _, fb := range r.db.feedback {
		if fb.PartnerCode != partner {
			continue
		}
		total++
		if fb.Rating == model.FeedbackPositive {
			positive++
		}
	}

	var previous *model.PartnerRating
	if old, ok := r.db.ratings[partner]; ok {
		cp := *old
		previous = &cp
	}
	next := fn(positive, total)
	next.PartnerCode = partner
	next.UpdatedAt = time.Now()
	stored := next
	r.db.ratings[partner] = &stored
	return &next, previous, nil
}

func (r *memoryFeedbackRepository) GetRating(_ context.Context, partner string) (*model.PartnerRating, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	rating, ok := r.db.ratings[partner]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rating
	return &cp, nil
}

func (r *memoryFeedbackRepository) ListRatings(_ context.Context) ([]model.PartnerRating, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]model.PartnerRating, 0, len(r.db.ratings))
	for _, rating := range r.db.ratings {
		out = append(out, *rating)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Percentage < out[j].Percentage })
	return out, nil
}

// ---- partners ----

type memoryPartnerRepository struct {
	db *MemoryDB
}

func NewMemoryPartnerRepository(db *MemoryDB) PartnerRepository {
	return &memoryPartnerRepository{db: db}
}

func (r *memoryPartnerRepository) CreateOffer(_ context.Context, offer *model.PartnerOffer) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if offer.ID == uuid.Nil {
		offer.ID = uuid.New()
	}
	now := time.Now()
	offer.CreatedAt, offer.UpdatedAt = now, now
	cp := *offer
	r.db.offers[offer.ID] = &cp
	return nil
}

func (r *memoryPartnerRepository) ListOffersByPartner(_ context.Context, partner string) ([]model.PartnerOffer, error) {
	return r.collect(func(o *model.PartnerOffer) bool { return o.PartnerCode == partner }), nil
}

func (r *memoryPartnerRepository) collect(keep func(*model.PartnerOffer) bool) []model.PartnerOffer {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []model.PartnerOffer
	for _, o := range r.db.offers {
		if keep(o) {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *memoryPartnerRepository) DeleteOffer(_ context.Context, partner string, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	o, ok := r.db.offers[id]
	if !ok || o.PartnerCode != partner {
		return ErrNotFound
	}
	delete(r.db.offers, id)
	return nil
}

func (r *memoryPartnerRepository) ListAvailableOffers(_ context.Context, now time.Time) ([]model.PartnerOffer, error) {
	return r.collect(func(o *model.PartnerOffer) bool {
		partner, ok := r.db.codes[o.PartnerCode]
		if !ok || partner.DeletedAt.Valid || partner.IsExcluded || !partner.IsActive {
			return false
		}
		return o.AvailableAt(now)
	}), nil
}

func (r *memoryPartnerRepository) SaveProfile(_ context.Context, profile *model.PartnerProfile) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := time.Now()
	if existing, ok := r.db.profiles[profile.PartnerCode]; ok {
		profile.CreatedAt = existing.CreatedAt
	} else {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now
	cp := *profile
	r.db.profiles[profile.PartnerCode] = &cp
	return nil
}

func (r *memoryPartnerRepository) GetProfile(_ context.Context, partner string) (*model.PartnerProfile, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.profiles[partner]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

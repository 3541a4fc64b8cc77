// Package codegen builds the identifier formats used for IQCodes and one-time codes.
package codegen

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"sync"
	"time"

	"touristiq/iqhub/internal/model"
)

// MaxAttempts bounds the uniqueness loop for every code kind.
const MaxAttempts = 50

var (
	ErrGenerationExhausted   = errors.New("no unique code found within attempt budget")
	ErrUnsupportedLocation   = errors.New("no word list for location")
	ErrInvalidLocationFormat = errors.New("location must be 2-3 uppercase letters")
	ErrInvalidRole           = errors.New("professional codes are only for structures and partners")
)

var provincePattern = regexp.MustCompile(`^[A-Z]{2,3}$`)

const base36 = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// ExistsFunc reports whether a candidate code is already taken.
type ExistsFunc func(ctx context.Context, code string) (bool, error)

type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func New() *Generator {
	seed := uint64(time.Now().UnixNano())
	return NewWithSource(rand.NewPCG(seed, seed>>1|1))
}

// NewWithSource is used by tests that need a deterministic sequence.
func NewWithSource(src rand.Source) *Generator {
	return &Generator{rnd: rand.New(src)}
}

func (g *Generator) intN(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rnd.IntN(n)
}

// Emotional returns TIQ-<COUNTRY>-<WORD> where WORD is a noun and a qualifier.
func (g *Generator) Emotional(ctx context.Context, country string, exists ExistsFunc) (string, error) {
	country = strings.ToUpper(strings.TrimSpace(country))
	vocab, ok := emotionalWords[country]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLocation, country)
	}
	return g.unique(ctx, exists, func() string {
		noun := vocab.nouns[g.intN(len(vocab.nouns))]
		qualifier := vocab.qualifiers[g.intN(len(vocab.qualifiers))]
		return fmt.Sprintf("TIQ-%s-%s%s", country, noun, qualifier)
	})
}

// Professional returns TIQ-<PROVINCE>-<PRT|STT>-<4 digits>. Credits are never charged.
func (g *Generator) Professional(ctx context.Context, province string, role model.Role, exists ExistsFunc) (string, error) {
	province = strings.ToUpper(strings.TrimSpace(province))
	if !provincePattern.MatchString(province) {
		return "", fmt.Errorf("%w: %q", ErrInvalidLocationFormat, province)
	}
	var kind string
	switch role {
	case model.RolePartner:
		kind = "PRT"
	case model.RoleStructure:
		kind = "STT"
	default:
		return "", ErrInvalidRole
	}
	return g.unique(ctx, exists, func() string {
		return fmt.Sprintf("TIQ-%s-%s-%04d", province, kind, g.intN(10000))
	})
}

// Temporary returns IQCODE-PRIMOACCESSO-<5 base36 chars>.
func (g *Generator) Temporary(ctx context.Context, exists ExistsFunc) (string, error) {
	return g.unique(ctx, exists, func() string {
		var b strings.Builder
		b.WriteString("IQCODE-PRIMOACCESSO-")
		for i := 0; i < 5; i++ {
			b.WriteByte(base36[g.intN(len(base36))])
		}
		return b.String()
	})
}

// OneTime returns TIQ-OTC-<5 digits>.
func (g *Generator) OneTime(ctx context.Context, exists ExistsFunc) (string, error) {
	return g.unique(ctx, exists, func() string {
		return fmt.Sprintf("TIQ-OTC-%05d", g.intN(100000))
	})
}

func (g *Generator) unique(ctx context.Context, exists ExistsFunc, candidate func() string) (string, error) {
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		code := candidate()
		taken, err := exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check code uniqueness: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrGenerationExhausted
}

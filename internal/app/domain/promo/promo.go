package promo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/queska/queska-go/internal/app/models"
)

// Code is a promotional discount applied at checkout.
type Code struct {
	Code       string  `json:"code"`
	Percentage float64 `json:"percentage"`
}

// Lookup resolves promo codes.
type Lookup interface {
	Resolve(ctx context.Context, code string) (*Code, error)
}

// Ensure InMemoryLookup implements the Lookup interface
var _ Lookup = (*InMemoryLookup)(nil)

// InMemoryLookup keeps promo codes in a local cache. Codes are seeded at
// construction and never expire; the cache still gives us a place to add
// short-lived campaign codes later.
type InMemoryLookup struct {
	logger *zap.Logger
	codes  *cache.Cache
}

func NewInMemoryLookup(logger *zap.Logger) *InMemoryLookup {
	l := &InMemoryLookup{
		logger: logger,
		codes:  cache.New(cache.NoExpiration, 10*time.Minute),
	}
	l.Seed(Code{Code: "WELCOME10", Percentage: 10})
	l.Seed(Code{Code: "SUMMER20", Percentage: 20})
	return l
}

// Seed registers a promo code, replacing any existing entry.
func (l *InMemoryLookup) Seed(code Code) {
	l.codes.Set(strings.ToUpper(code.Code), code, cache.NoExpiration)
}

func (l *InMemoryLookup) Resolve(_ context.Context, code string) (*Code, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, fmt.Errorf("promo code is required: %w", models.ErrBadRequest)
	}

	entry, found := l.codes.Get(normalized)
	if !found {
		l.logger.Debug("Unknown promo code", zap.String("code", normalized))
		return nil, fmt.Errorf("promo code %s: %w", normalized, models.ErrNotFound)
	}

	promo := entry.(Code)
	return &promo, nil
}

// Package service contains the trust cache ingestion engine and read side
package service

import (
	"context"
	"time"

	"circlesync/internal/adapters/ingest/circles"
	"circlesync/internal/core/verify"
	"circlesync/internal/services/trustcache/domain"
	"circlesync/internal/services/trustcache/metrics"
	"circlesync/internal/services/trustcache/repo"

	"github.com/google/uuid"
)

// Service is the full trust cache contract
type Service interface {
	domain.RefresherPort
	domain.LookupPort
}

// Querier is the remote paginated query seam, satisfied by *circles.Client
type Querier interface {
	Query(ctx context.Context, q circles.QueryRequest) (circles.Page, error)
}

// Config carries the remote layout and the run limits
type Config struct {
	Namespace   string
	AvatarTable string
	AvatarType  string
	TrustTable  string

	Threshold       int
	BatchSize       int
	MaxUsers        int
	NewUserCap      int
	TrustQueryLimit int
	MaxEmptyBatches int

	EnrichDelay    time.Duration
	PageDelay      time.Duration
	UpdateInterval time.Duration
}

// DefaultConfig mirrors the production Circles V2 layout
func DefaultConfig() Config {
	return Config{
		Namespace:       "V_CrcV2",
		AvatarTable:     "Avatars",
		AvatarType:      "CrcV2_RegisterHuman",
		TrustTable:      "TrustRelations",
		Threshold:       verify.DefaultThreshold,
		BatchSize:       1000,
		MaxUsers:        50000,
		NewUserCap:      5000,
		TrustQueryLimit: 1000,
		MaxEmptyBatches: 3,
		EnrichDelay:     50 * time.Millisecond,
		PageDelay:       100 * time.Millisecond,
		UpdateInterval:  24 * time.Hour,
	}
}

// withDefaults fills zero fields from DefaultConfig; a negative delay disables that pause
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Namespace == "" {
		c.Namespace = d.Namespace
	}
	if c.AvatarTable == "" {
		c.AvatarTable = d.AvatarTable
	}
	if c.AvatarType == "" {
		c.AvatarType = d.AvatarType
	}
	if c.TrustTable == "" {
		c.TrustTable = d.TrustTable
	}
	if c.Threshold <= 0 {
		c.Threshold = d.Threshold
	}
	if c.BatchSize <= 0 {
		c.BatchSize = d.BatchSize
	}
	if c.MaxUsers <= 0 {
		c.MaxUsers = d.MaxUsers
	}
	if c.NewUserCap <= 0 {
		c.NewUserCap = d.NewUserCap
	}
	if c.TrustQueryLimit <= 0 {
		c.TrustQueryLimit = d.TrustQueryLimit
	}
	if c.MaxEmptyBatches <= 0 {
		c.MaxEmptyBatches = d.MaxEmptyBatches
	}
	if c.EnrichDelay == 0 {
		c.EnrichDelay = d.EnrichDelay
	} else if c.EnrichDelay < 0 {
		c.EnrichDelay = 0
	}
	if c.PageDelay == 0 {
		c.PageDelay = d.PageDelay
	} else if c.PageDelay < 0 {
		c.PageDelay = 0
	}
	if c.UpdateInterval <= 0 {
		c.UpdateInterval = d.UpdateInterval
	}
	return c
}

// Svc implements Service
type Svc struct {
	q       Querier
	cache   *repo.Cache
	cls     verify.Classifier
	cfg     Config
	metrics *metrics.Metrics

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
	newID func() string
}

// New constructs the trust cache service; m may be nil
func New(q Querier, cache *repo.Cache, cfg Config, m *metrics.Metrics) *Svc {
	if q == nil || cache == nil {
		panic("trustcache.Service requires a querier and a cache")
	}
	cfg = cfg.withDefaults()
	return &Svc{
		q:       q,
		cache:   cache,
		cls:     verify.Classifier{Threshold: cfg.Threshold},
		cfg:     cfg,
		metrics: m,
		now:     time.Now,
		sleep:   sleepCtx,
		newID:   uuid.NewString,
	}
}

// Config returns the effective configuration
func (s *Svc) Config() Config { return s.cfg }

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

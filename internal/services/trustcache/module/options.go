package module

import (
	"time"

	"circlesync/internal/platform/config"
	"circlesync/internal/services/trustcache/service"
)

// Store kinds accepted by Options.Store
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StorePG     = "pg"
)

// Options controls the trust cache module
type Options struct {
	RPCURL     string
	RPCTimeout time.Duration
	RPCRetries int

	Service service.Config

	KeyPrefix    string
	Store        string
	CacheTTL     time.Duration
	RefreshEvery time.Duration
}

// FromConfig reads with the CIRCLES_ prefix under cfg
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("CIRCLES_")
	d := service.DefaultConfig()
	return Options{
		RPCURL:     c.MayString("RPC_URL", "https://rpc.aboutcircles.com/"),
		RPCTimeout: c.MayDuration("RPC_TIMEOUT", 30*time.Second),
		RPCRetries: c.MayInt("RPC_RETRIES", 3),
		Service: service.Config{
			Namespace:       c.MayString("NAMESPACE", d.Namespace),
			AvatarTable:     c.MayString("AVATAR_TABLE", d.AvatarTable),
			AvatarType:      c.MayString("AVATAR_TYPE", d.AvatarType),
			TrustTable:      c.MayString("TRUST_TABLE", d.TrustTable),
			Threshold:       c.MayInt("THRESHOLD", d.Threshold),
			BatchSize:       c.MayInt("BATCH_SIZE", d.BatchSize),
			MaxUsers:        c.MayInt("MAX_USERS", d.MaxUsers),
			NewUserCap:      c.MayInt("NEW_USER_CAP", d.NewUserCap),
			TrustQueryLimit: c.MayInt("TRUST_LIMIT", d.TrustQueryLimit),
			MaxEmptyBatches: c.MayInt("EMPTY_BATCHES", d.MaxEmptyBatches),
			EnrichDelay:     c.MayDuration("ENRICH_DELAY", d.EnrichDelay),
			PageDelay:       c.MayDuration("PAGE_DELAY", d.PageDelay),
			UpdateInterval:  c.MayDuration("UPDATE_INTERVAL", d.UpdateInterval),
		},
		KeyPrefix:    c.MayString("KEY_PREFIX", "circles"),
		Store:        c.MayEnum("STORE", StoreMemory, StoreMemory, StoreRedis, StorePG),
		CacheTTL:     c.MayDuration("CACHE_TTL", 0),
		RefreshEvery: c.MayDuration("REFRESH_EVERY", 0),
	}
}

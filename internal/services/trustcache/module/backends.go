package module

import (
	"circlesync/internal/platform/config"
	"circlesync/internal/platform/store"
)

// StoreConfig enables only the backend that kind needs
// pg reads SERVICE_PGSQL_* and redis reads SERVICE_REDIS_* under root
func StoreConfig(root config.Conf, app, kind string) store.Config {
	cfg := store.Config{AppName: app}
	switch kind {
	case StorePG:
		pg := root.Prefix("SERVICE_PGSQL_")
		cfg.PG = store.PGConfig{
			Enabled:     true,
			URL:         pg.MustString("DBURL"),
			MaxConns:    int32(pg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pg.MayInt("SLOW_MS", 500),
			LogSQL:      pg.MayBool("LOG_SQL", false),
		}
	case StoreRedis:
		r := root.Prefix("SERVICE_REDIS_")
		cfg.RDS = store.RedisConfig{
			Enabled:  true,
			URL:      r.MustString("URL"),
			PoolSize: r.MayInt("POOL_SIZE", 0),
		}
	}
	return cfg
}

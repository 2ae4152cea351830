// Package modkit provides module wiring and core deps
package modkit

import (
	"circlesync/internal/platform/config"
	"circlesync/internal/platform/logger"
	"circlesync/internal/platform/store"
	"circlesync/internal/platform/store/rds"

	"github.com/prometheus/client_golang/prometheus"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log logger.Logger
	Cfg config.Conf

	// PG and RDS are nil when the backend is disabled
	PG  store.TxRunner
	RDS *rds.Client

	// Metrics is where modules register collectors, nil means prometheus.DefaultRegisterer
	Metrics prometheus.Registerer
}

// FromStore copies the enabled backends of st into a Deps
func FromStore(cfg config.Conf, st *store.Store) Deps {
	d := Deps{Cfg: cfg}
	if st != nil {
		d.Log = st.Log
		d.PG = st.PG
		d.RDS = st.RDS
	}
	return d
}

// Registerer returns Metrics or the process default
func (d Deps) Registerer() prometheus.Registerer {
	if d.Metrics != nil {
		return d.Metrics
	}
	return prometheus.DefaultRegisterer
}

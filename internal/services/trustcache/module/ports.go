package module

import (
	"circlesync/internal/services/trustcache/domain"
	"circlesync/internal/services/trustcache/service"
)

// Ports holds the ports exposed by the trust cache module
// Refresher is the scheduler so every caller shares one run lock
type Ports struct {
	Refresher domain.RunnerPort
	Lookup    domain.LookupPort
	Scheduler *service.Scheduler
}

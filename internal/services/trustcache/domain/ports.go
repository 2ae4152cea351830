package domain

import "context"

// Store is the namespaced key value persistence the cache lives in
// Get reports ok=false for a missing key without an error
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// RefresherPort runs ingestion
type RefresherPort interface {
	Refresh(ctx context.Context, req RefreshRequest) (IngestionResult, error)
	ClearCursor(ctx context.Context) error
}

// RunnerPort is a RefresherPort that can also launch a run detached from the caller
// Start returns the run id once the run holds the lock
type RunnerPort interface {
	RefresherPort
	Start(ctx context.Context, req RefreshRequest) (runID string, err error)
}

// LookupPort answers read side questions from the cache only
type LookupPort interface {
	CheckStatus(ctx context.Context, address string) StatusCheck
	CachedUsers(ctx context.Context) ([]Participant, error)
	Statistics(ctx context.Context) Statistics
	NeedsRefresh(ctx context.Context) bool
}

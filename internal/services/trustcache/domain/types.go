// Package domain defines the trust cache data model and ports
package domain

import (
	"strings"
	"time"

	"circlesync/internal/core/verify"
	perr "circlesync/internal/platform/errors"
	pstrings "circlesync/internal/platform/strings"
)

// Participant is one cached user built from a registration event
type Participant struct {
	Address            string        `json:"address"`
	IncomingTrustCount int           `json:"incoming_trust_count"`
	OutgoingTrustCount int           `json:"outgoing_trust_count"`
	Verified           bool          `json:"verified"`
	Status             verify.Status `json:"status"`
	ObservedAt         time.Time     `json:"observed_at"`
}

// Key returns the case-folded identity of the participant
func (p Participant) Key() string { return Key(p.Address) }

// Key folds an address into the form used for identity comparisons
func Key(address string) string { return pstrings.Fold(address) }

// Snapshot is the full cached user set, always written in one piece
type Snapshot struct {
	Users      []Participant `json:"users"`
	TotalCount int           `json:"total_count"`
	LastUpdate time.Time     `json:"last_update"`
}

// NewSnapshot builds a snapshot whose count matches its users
func NewSnapshot(users []Participant, at time.Time) Snapshot {
	if users == nil {
		users = []Participant{}
	}
	return Snapshot{Users: users, TotalCount: len(users), LastUpdate: at}
}

// Cursor is the block, tx, log position of the last processed registration event
type Cursor struct {
	BlockNumber      int64 `json:"block_number"`
	TransactionIndex int64 `json:"transaction_index"`
	LogIndex         int64 `json:"log_index"`
}

// CursorState is the persisted resume point
type CursorState struct {
	Cursor     Cursor    `json:"cursor"`
	UsersCount int       `json:"users_count"`
	Timestamp  time.Time `json:"timestamp"`
}

// LastUpdate is written after every successful snapshot write
type LastUpdate struct {
	Timestamp  time.Time `json:"timestamp"`
	UsersCount int       `json:"users_count"`
}

// Mode selects how a refresh walks the remote stream
type Mode string

const (
	// ModeFull rebuilds the snapshot from the newest event backwards
	ModeFull Mode = "full"
	// ModeIncremental resumes from the persisted cursor and merges into the snapshot
	ModeIncremental Mode = "incremental"
	// ModeAuto picks incremental when a cursor and a non empty snapshot exist
	ModeAuto Mode = "auto"
)

// ParseMode reads a mode case-insensitively, empty means auto
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeAuto, nil
	case ModeFull, ModeIncremental, ModeAuto:
		return m, nil
	}
	return "", perr.InvalidArgf("unknown refresh mode %q", s)
}

// RefreshRequest parameterizes one ingestion run
// zero BatchSize and MaxUsers fall back to the service defaults, an empty RunID is generated
type RefreshRequest struct {
	Mode      Mode   `json:"mode"`
	BatchSize int    `json:"batch_size"`
	MaxUsers  int    `json:"max_users"`
	RunID     string `json:"run_id,omitempty"`
}

// IngestionResult reports the outcome of one run
type IngestionResult struct {
	RunID        string `json:"run_id"`
	Success      bool   `json:"success"`
	Mode         Mode   `json:"mode"`
	TotalCount   int    `json:"total_count"`
	NewCount     int    `json:"new_count"`
	UpdatedCount int    `json:"updated_count"`
	Pages        int    `json:"pages"`
	Error        string `json:"error,omitempty"`
}

// StatusCheck answers whether an address is known and verified
type StatusCheck struct {
	Found        bool `json:"found"`
	Verified     bool `json:"verified"`
	Registered   bool `json:"registered"`
	TrustCount   int  `json:"trust_count"`
	NeededTrusts int  `json:"needed_trusts"`
}

// Statistics summarizes the cached snapshot
type Statistics struct {
	TotalUsers      int          `json:"total_users"`
	VerifiedUsers   int          `json:"verified_users"`
	RegisteredUsers int          `json:"registered_users"`
	LastUpdate      *time.Time   `json:"last_update,omitempty"`
	CacheAgeSeconds int64        `json:"cache_age_seconds"`
	Cursor          *CursorState `json:"cursor,omitempty"`
}

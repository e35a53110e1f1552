package auth

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	cron "github.com/netresearch/go-cron"

	"github.com/taskfolk/tasklistd/internal/kv"
)

// Sweeper periodically removes expired entries from the token blacklist.
// Revoked tokens only need to stay listed until they would have expired on
// their own; after that the record is dead weight.
type Sweeper struct {
	store kv.Store
	cron  *cron.Cron
	now   func() time.Time
}

// NewSweeper creates a sweeper that runs on the given cron schedule
// (standard 5-field expression, e.g. "*/10 * * * *").
func NewSweeper(store kv.Store, schedule string) (*Sweeper, error) {
	s := &Sweeper{store: store, cron: cron.New(), now: time.Now}
	if _, err := s.cron.AddFunc(schedule, s.sweep); err != nil {
		return nil, fmt.Errorf("parse sweep schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start begins the schedule. Call Stop to halt it.
func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop halts the schedule; a sweep already running finishes.
func (s *Sweeper) Stop() {
	s.cron.Stop()
}

func (s *Sweeper) sweep() {
	removed, err := s.SweepOnce()
	if err != nil {
		slog.Error("blacklist sweep failed", "error", err)
		return
	}
	if removed > 0 {
		slog.Debug("blacklist swept", "removed", removed)
	}
}

// SweepOnce removes expired blacklist entries and returns how many went.
func (s *Sweeper) SweepOnce() (int, error) {
	entries, err := s.store.ScanPrefix(blacklistSpace)
	if err != nil {
		return 0, fmt.Errorf("scan blacklist: %w", err)
	}

	now := s.now()
	removed := 0
	for _, e := range entries {
		expiry, err := time.Parse(time.RFC3339, strings.TrimSpace(e.Value))
		if err != nil {
			// Unparseable entries are dropped rather than kept forever.
			expiry = now
		}
		if !expiry.After(now) {
			if err := s.store.Delete(e.Key); err != nil {
				continue
			}
			removed++
		}
	}
	return removed, nil
}

// Package scheduler runs periodic maintenance jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/storefront/storefront-api/internal/core/ports"
)

// FileSweeper removes uploaded files older than the retention window.
type FileSweeper struct {
	store     ports.FileStore
	retention time.Duration
	log       zerolog.Logger
	now       func() time.Time
	cron      *cron.Cron
}

func NewFileSweeper(store ports.FileStore, retention time.Duration, log zerolog.Logger) *FileSweeper {
	return &FileSweeper{
		store:     store,
		retention: retention,
		log:       log,
		now:       time.Now,
	}
}

// Sweep deletes every file whose modification time is past the retention
// window and returns how many were removed. A failed delete is logged and the
// sweep moves on.
func (s *FileSweeper) Sweep(ctx context.Context) (int, error) {
	files, err := s.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list files: %w", err)
	}

	cutoff := s.now().Add(-s.retention)
	removed := 0
	for _, f := range files {
		if !f.ModifiedAt.Before(cutoff) {
			continue
		}
		if err := s.store.Delete(ctx, f.Name); err != nil {
			s.log.Warn().Err(err).Str("file", f.Name).Msg("retention sweep: delete failed")
			continue
		}
		removed++
	}
	return removed, nil
}

// Start schedules Sweep with the given cron spec. Call Stop to halt it.
func (s *FileSweeper) Start(spec string) error {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		n, err := s.Sweep(ctx)
		if err != nil {
			s.log.Error().Err(err).Msg("retention sweep failed")
			return
		}
		s.log.Info().Int("removed", n).Dur("retention", s.retention).Msg("retention sweep completed")
	})
	if err != nil {
		return fmt.Errorf("schedule retention sweep: %w", err)
	}
	s.cron = c
	c.Start()
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *FileSweeper) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

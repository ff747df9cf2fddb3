package app

import (
	"context"
	"time"
)

// StartDigestScheduler launches the weekly digest loop in the background.
// The loop fires at the configured UTC weekday and hour and runs the
// full digest batch.
func (a *App) StartDigestScheduler() {
	ctx, cancel := context.WithCancel(context.Background())
	a.schedulerCancel = cancel

	weekday := a.Config.Digest.GetWeekday()
	hour := a.Config.Digest.HourUTC

	a.Logger.Info().
		Str("weekday", weekday.String()).
		Int("hour_utc", hour).
		Msg("Digest scheduler started")

	go a.runDigestLoop(ctx, weekday, hour)
}

// StopDigestScheduler stops the weekly loop if it is running.
func (a *App) StopDigestScheduler() {
	if a.schedulerCancel != nil {
		a.schedulerCancel()
		a.schedulerCancel = nil
	}
}

func (a *App) runDigestLoop(ctx context.Context, weekday time.Weekday, hour int) {
	for {
		next := nextRun(time.Now().UTC(), weekday, hour)
		a.Logger.Info().Time("next_run", next).Msg("Digest scheduler: next run scheduled")

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			a.Logger.Info().Msg("Digest scheduler: stopped")
			return
		case <-timer.C:
			start := time.Now()
			sent, failed := a.DigestService.RunDigestBatch(ctx)
			a.Logger.Info().
				Int("sent", sent).
				Int("failed", failed).
				Dur("elapsed", time.Since(start)).
				Msg("Digest scheduler: batch complete")
		}
	}
}

// nextRun returns the next occurrence of weekday at hour UTC strictly
// after now.
func nextRun(now time.Time, weekday time.Weekday, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, time.UTC)
	days := (int(weekday) - int(now.Weekday()) + 7) % 7
	next = next.AddDate(0, 0, days)
	if !next.After(now) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}

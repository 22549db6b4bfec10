// Package monitoring hosts the optional background jobs of the server.
package monitoring

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/fintrack/fintrack-be/internal/services"
)

// Rollover copies each user's budgets into the new month on a cron schedule,
// so limits carry forward without re-entering them every month. Budgets the
// user already created for the new month are left alone.
type Rollover struct {
	budgets  services.BudgetServiceProvider
	schedule cron.Schedule
	ticker   *time.Ticker
	done     chan bool
	nextRun  time.Time
}

// NewRollover creates a rollover job from a standard cron expression
// (typically "@monthly"). Returns an error for unparseable expressions.
func NewRollover(budgets services.BudgetServiceProvider, cronExpr string) (*Rollover, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, err
	}
	return &Rollover{
		budgets:  budgets,
		schedule: schedule,
		done:     make(chan bool),
		nextRun:  schedule.Next(time.Now()),
	}, nil
}

// Run starts the job's ticking loop. Call Stop to end it.
func (r *Rollover) Run() {
	log.Info().Time("next_run", r.nextRun).Msg("Starting budget rollover job")
	r.ticker = time.NewTicker(1 * time.Minute)
	defer r.ticker.Stop()

	for {
		select {
		case <-r.done:
			log.Info().Msg("Stopping budget rollover job")
			return
		case now := <-r.ticker.C:
			if now.After(r.nextRun) {
				r.runOnce(now)
				r.nextRun = r.schedule.Next(now)
			}
		}
	}
}

// Stop halts the job.
func (r *Rollover) Stop() {
	r.done <- true
}

func (r *Rollover) runOnce(now time.Time) {
	toMonth := now.Format("2006-01")
	fromMonth := now.AddDate(0, -1, 0).Format("2006-01")

	created, err := r.budgets.CopyForward(fromMonth, toMonth)
	if err != nil {
		log.Error().Err(err).Str("month", toMonth).Msg("Budget rollover failed")
		return
	}
	log.Info().Int("created", created).Str("from", fromMonth).Str("to", toMonth).Msg("Budget rollover complete")
}

package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// PurgeFunc removes stale rows and reports how many went.
type PurgeFunc func(ctx context.Context) (int64, error)

type purgeTask struct {
	name string
	fn   PurgeFunc
}

// Purger runs a fixed list of purge tasks once. Nothing schedules it inside
// the server; operators run it from cmd/purge-sessions.
type Purger struct {
	tasks   []purgeTask
	timeout time.Duration
}

func NewPurger(timeout time.Duration) *Purger {
	return &Purger{timeout: timeout}
}

// Add registers a task. Tasks run in registration order.
func (p *Purger) Add(name string, fn PurgeFunc) *Purger {
	p.tasks = append(p.tasks, purgeTask{name: name, fn: fn})
	return p
}

// Run executes every task, even after one fails, and returns the per-task
// counts along with the joined errors.
func (p *Purger) Run(ctx context.Context) (map[string]int64, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	counts := make(map[string]int64, len(p.tasks))
	var errs []error

	for _, task := range p.tasks {
		count, err := task.fn(ctx)
		if err != nil {
			log.Error().Err(err).Msgf("failed to purge %s", task.name)
			errs = append(errs, fmt.Errorf("purge %s: %w", task.name, err))
			continue
		}

		counts[task.name] = count
		if count > 0 {
			log.Info().Int64("count", count).Msgf("purged %s", task.name)
		} else {
			log.Debug().Msgf("nothing to purge for %s", task.name)
		}
	}

	return counts, errors.Join(errs...)
}

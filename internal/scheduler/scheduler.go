// Package scheduler drives the recurring background sweep. One named task on
// one fixed interval is all the engine needs; anything fancier belongs in cron.
package scheduler

import (
	"context"
	"log"
	"time"
)

// Task is one scheduled unit of work, typically a full trawl sweep.
type Task func(ctx context.Context) error

// Every fires task immediately and then on every interval tick until ctx is
// cancelled. Errors are logged and the loop keeps ticking; a sweep still in
// flight when the next tick lands simply refuses the overlapping start.
func Every(ctx context.Context, interval time.Duration, name string, task Task) {
	t := time.NewTicker(interval)
	defer t.Stop()

	// first sweep straight away, off the ticker goroutine so a long run
	// cannot delay tick delivery
	go func() {
		if err := task(ctx); err != nil {
			log.Printf("[scheduler] %s: %v", name, err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := task(ctx); err != nil {
				log.Printf("[scheduler] %s: %v", name, err)
			}
		}
	}
}

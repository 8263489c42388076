package app

import (
	"context"
	"log"
	"time"

	"github.com/shelfhand/shelfhand/internal/event"
	"github.com/shelfhand/shelfhand/internal/library"
	"github.com/shelfhand/shelfhand/internal/shelfd"
	"github.com/shelfhand/shelfhand/internal/state"
)

const (
	defaultRefreshInterval = 45 * time.Second
	maxBackoff             = 4 * time.Minute
)

// StartRefresher launches a background goroutine that keeps the library list
// current: it refetches on a fixed cadence and immediately on any
// library-changed or item-removed broadcast (an import, a merge, a removal
// elsewhere in the app). It returns immediately.
//
// query resolves the list parameters at refresh time so the active sort and
// filters are honored without the refresher knowing about view state.
func StartRefresher(ctx context.Context, store *state.Store, loader *library.Loader, bus *event.Bus, interval time.Duration, query func() shelfd.ListQuery) {
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	events, cancelSub := bus.Subscribe()

	go func() {
		defer cancelSub()

		failures := 0
		timer := time.NewTimer(interval)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-events:
				switch ev.Kind {
				case event.LibraryChanged, event.ItemRemoved:
					loader.LoadList(ctx, query())
					failures = 0
					resetTimer(timer, interval)
				case event.ProgressLogged:
					// Statistics refresh after a log is the detail
					// view's job; the list is unaffected.
				}
			case <-timer.C:
				loader.LoadList(ctx, query())
				if errMsg := store.Snapshot().ListErr; errMsg != "" {
					failures++
					log.Printf("library refresh failed: %s", errMsg)
				} else {
					failures = 0
				}
				resetTimer(timer, calculateBackoff(failures, interval))
			}
		}
	}()
}

// calculateBackoff doubles the base interval per consecutive failure, capped
// at maxBackoff so a flapping daemon is retried at a sane pace.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	backoff := base
	for i := 0; i < failures; i++ {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}

func resetTimer(timer *time.Timer, d time.Duration) {
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	timer.Reset(d)
}

// Package app provides the orchestration layer for the shelfhand application.
//
// # Overview
//
// This package wires together configuration, the shelfd client, state
// management, the synchronization services, and the UI to create the
// complete shelfhand TUI experience. It serves as the composition root
// where all dependencies are initialized and connected; every service
// receives its collaborators explicitly, and no package-level state exists.
//
// # Architecture
//
// The app package follows a simple initialization pattern:
//
//  1. Load shelfhand configuration from ~/.config/shelfhand/config.toml
//  2. Load user preferences (theme, sort, filters)
//  3. Initialize HTTP client for shelfd API communication
//  4. Create the shared state.Store and the event.Bus
//  5. Build the library loader/mutator, merge workflow, and progress recorder
//  6. Launch the background list refresher goroutine
//  7. Start the TUI and block until user exits or context cancels
//
// # Refresh Behavior
//
// The refresher keeps the catalogue list current in the background. It
// refetches on a fixed cadence (default: 45 seconds) and immediately when a
// library-changed or item-removed broadcast arrives on the event bus (an
// import, a merge apply, or a removal noticed elsewhere in the app). On each
// consecutive failed refetch the interval doubles, capped at four minutes,
// so a stopped daemon is retried at a sane pace.
//
// Progress-logged broadcasts do not touch the list; the detail view owns
// the statistics and session refresh for the item being read.
//
// # Error Handling
//
// The app package distinguishes between fatal and recoverable errors:
//
// Fatal errors (returned from Run):
//   - Configuration file invalid
//   - shelfd client initialization failure
//
// Recoverable errors (logged, refreshing continues):
//   - Periodic list fetch failures
//   - Network timeouts during refresh
//
// # Configuration
//
// The Options struct allows callers to customize:
//
//   - ConfigPath: Path to shelfhand config.toml (default: ~/.config/shelfhand/config.toml)
//   - PrefsPath: Path to prefs.toml (default: ~/.config/shelfhand/prefs.toml)
//   - RefreshEvery: Background refresh interval in seconds (default: 45)
//
// # Usage Example
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//
//	if err := app.Run(ctx, app.Options{}); err != nil {
//		log.Fatalf("shelfhand failed: %v", err)
//	}
package app

package aggregator

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"arcfeed/internal/feed"

	"github.com/google/uuid"
)

const DefaultRefreshInterval = 10 * time.Minute

type Loader interface {
	LoadFeed(ctx context.Context) (feed.Home, error)
}

// Notifier is told about every snapshot that becomes the visible state.
type Notifier interface {
	PublishFeedRefreshed(ctx context.Context, snap Snapshot) error
}

// Snapshot is the outcome of one refresh. Exactly one of Home and Err is meaningful.
type Snapshot struct {
	Seq         uint64
	LoadID      uuid.UUID
	StartedAt   time.Time
	CompletedAt time.Time
	Home        feed.Home
	Err         *LoadError
}

// ticker is an interface so we can swap out time.Ticker in tests.
type ticker interface {
	C() <-chan time.Time
	Stop()
}

type tickerFactory func(d time.Duration) ticker

type timeTicker struct {
	*time.Ticker
}

func (t *timeTicker) C() <-chan time.Time {
	return t.Ticker.C
}

// Refresher owns the visible home state. Refreshes may overlap; each is
// tagged with a sequence number and a result is only kept if no later-started
// refresh has already been applied.
type Refresher struct {
	loader    Loader
	notifier  Notifier
	logger    *log.Logger
	newTicker tickerFactory
	now       func() time.Time

	seq    atomic.Uint64
	mu     sync.RWMutex
	latest *Snapshot
}

func NewRefresher(loader Loader, notifier Notifier, logger *log.Logger) *Refresher {
	if logger == nil {
		logger = log.Default()
	}

	return &Refresher{
		loader:   loader,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
		newTicker: func(d time.Duration) ticker {
			return &timeTicker{time.NewTicker(d)}
		},
	}
}

// Refresh runs one load and returns its snapshot, whether or not it was applied.
// A refresh whose ctx is done by the time the load returns is never applied.
func (r *Refresher) Refresh(ctx context.Context) Snapshot {
	snap := Snapshot{
		Seq:       r.seq.Add(1),
		LoadID:    uuid.New(),
		StartedAt: r.now(),
	}

	home, err := r.loader.LoadFeed(ctx)
	snap.CompletedAt = r.now()

	if ctxErr := ctx.Err(); ctxErr != nil {
		snap.Err = &LoadError{Message: "refresh cancelled: " + ctxErr.Error()}
		r.logger.Printf("refresh #%d (%s) cancelled, keeping current state", snap.Seq, snap.LoadID)
		return snap
	}

	if err != nil {
		var loadErr *LoadError
		if !errors.As(err, &loadErr) {
			loadErr = &LoadError{Message: err.Error()}
		}
		snap.Err = loadErr
		r.logger.Printf("refresh #%d (%s) failed: %v", snap.Seq, snap.LoadID, loadErr)
	} else {
		snap.Home = home
	}

	if !r.apply(snap) {
		r.logger.Printf("refresh #%d (%s) is stale, discarding", snap.Seq, snap.LoadID)
		return snap
	}

	if snap.Err == nil {
		r.logger.Printf("refresh #%d (%s) applied: feed live=%t variety=%t random live=%t",
			snap.Seq, snap.LoadID, home.Origin.FeedLive, home.Origin.VarietyApplied, home.Origin.RandomLive)
	}

	if r.notifier != nil {
		if err := r.notifier.PublishFeedRefreshed(ctx, snap); err != nil {
			r.logger.Printf("refresh #%d: failed to publish: %v", snap.Seq, err)
		}
	}

	return snap
}

func (r *Refresher) apply(snap Snapshot) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.latest != nil && r.latest.Seq >= snap.Seq {
		return false
	}
	r.latest = &snap
	return true
}

// Latest returns the visible snapshot; false until the first refresh completes.
func (r *Refresher) Latest() (Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.latest == nil {
		return Snapshot{}, false
	}
	return *r.latest, true
}

// StartPolling refreshes immediately and then on every tick until ctx is done.
func (r *Refresher) StartPolling(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}

	t := r.newTicker(interval)
	defer t.Stop()

	r.logger.Printf("refreshing every %v...", interval)
	r.Refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			r.logger.Println("refresher stopping, context cancelled")
			return

		case <-t.C():
			r.Refresh(ctx)
		}
	}
}

package aggregator

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"
	"time"

	"arcfeed/internal/feed"

	"golang.org/x/sync/errgroup"
)

const DefaultMaxPastDays = 30 // variety date is drawn from the previous 1..30 days

// FeedSource is the remote content API.
type FeedSource interface {
	FetchFeatured(ctx context.Context, day time.Time) (feed.FeaturedBundle, error)
	FetchRandomArticle(ctx context.Context) (feed.RandomArticle, error)
}

// LoadError is the only failure LoadFeed reports. It signals a logic error,
// never an upstream outage.
type LoadError struct {
	Message string
}

func (e *LoadError) Error() string {
	return e.Message
}

type Service struct {
	source      FeedSource
	maxPastDays int
	logger      *log.Logger
	now         func() time.Time
	intN        feed.IntN
}

func NewService(source FeedSource, maxPastDays int, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	if maxPastDays <= 0 {
		maxPastDays = DefaultMaxPastDays
	}

	return &Service{
		source:      source,
		maxPastDays: maxPastDays,
		logger:      logger,
		now:         time.Now,
		intN:        feed.DefaultIntN,
	}
}

type bundleResult struct {
	bundle feed.FeaturedBundle
	err    error
}

type randomResult struct {
	article feed.RandomArticle
	err     error
}

// LoadFeed assembles one Home. Upstream failures are absorbed into fallback
// content; a panic during assembly comes back as *LoadError and a cancelled
// ctx as ctx.Err().
func (s *Service) LoadFeed(ctx context.Context) (home feed.Home, err error) {
	defer func() {
		if r := recover(); r != nil {
			home = feed.Home{}
			err = s.loadError(r)
		}
	}()

	today := s.now()
	past := today.AddDate(0, 0, -(1 + s.intN(s.maxPastDays)))

	var (
		primary bundleResult
		variety bundleResult
		random  randomResult
	)

	// Every goroutine settles into its own slot and returns nil, so one
	// failing fetch never cancels or blanks out the others. A non-nil error
	// here is a recovered panic.
	var g errgroup.Group
	g.Go(s.guard(func() {
		primary.bundle, primary.err = s.source.FetchFeatured(ctx, today)
	}))
	g.Go(s.guard(func() {
		variety.bundle, variety.err = s.source.FetchFeatured(ctx, past)
	}))
	g.Go(s.guard(func() {
		random.article, random.err = s.source.FetchRandomArticle(ctx)
	}))
	if err := g.Wait(); err != nil {
		return feed.Home{}, err
	}

	// A cancelled caller gets no home at all; fallback content is only for
	// upstream failures.
	if err := ctx.Err(); err != nil {
		return feed.Home{}, err
	}

	if primary.err != nil {
		s.logger.Printf("primary feed for %s unavailable, using fallback: %v", today.Format("2006-01-02"), primary.err)
		home.Bundle = feed.FallbackBundle(s.intN)
	} else {
		home.Origin.FeedLive = true
		home.Bundle = primary.bundle

		if variety.err == nil {
			home.Bundle = feed.OverlayVariety(home.Bundle, variety.bundle)
			home.Origin.VarietyApplied = true
		} else {
			s.logger.Printf("variety feed for %s unavailable: %v", past.Format("2006-01-02"), variety.err)
		}

		home.Bundle = feed.Reorder(home.Bundle, s.intN)
	}

	if random.err != nil {
		s.logger.Printf("random article unavailable, using fallback: %v", random.err)
		home.Random = feed.FallbackRandomArticle()
	} else {
		home.Origin.RandomLive = true
		home.Random = random.article
	}

	return home, nil
}

func (s *Service) guard(fn func()) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = s.loadError(r)
			}
		}()
		fn()
		return nil
	}
}

func (s *Service) loadError(r any) *LoadError {
	s.logger.Printf("feed load aborted: %v\n%s", r, debug.Stack())
	return &LoadError{Message: fmt.Sprintf("failed to load content: %v", r)}
}

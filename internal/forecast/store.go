// Package forecast holds the forecast state shared by every renderer: the
// requested point, the fetched series, the hour cursor and the request status.
package forecast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/mekedron/airq-cli/internal/domain"
)

// ErrMalformedSeries is recorded when a fetched series breaks the horizon invariant.
var ErrMalformedSeries = errors.New("forecast series is malformed")

// DefaultLocation is the requested point before the first pick.
var DefaultLocation = domain.Location{Lat: 37.7749, Lon: -122.4194}

// Fetcher performs the forecast round trip for a point.
type Fetcher interface {
	FetchForecast(ctx context.Context, location domain.Location) (domain.ForecastSeries, error)
}

// Listener receives every committed snapshot in commit order. Listeners run
// synchronously and must not call store mutators.
type Listener func(Snapshot)

// Store is the single source of truth for a dashboard session.
type Store struct {
	fetcher Fetcher
	logger  *slog.Logger
	timeout time.Duration

	mu        sync.Mutex
	st        state
	cancel    context.CancelFunc
	listeners []subscription
	nextID    int

	// notifyM serializes commit+notify so listeners observe commit order.
	notifyM sync.Mutex
}

// Option applies Store options.
type Option func(*Store)

// WithLogger sets the logger used for request lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRequestTimeout bounds every fetch. Zero disables the bound.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(s *Store) {
		if timeout < 0 {
			timeout = 0
		}
		s.timeout = timeout
	}
}

// WithInitialLocation sets the requested point shown before the first fetch.
func WithInitialLocation(location domain.Location) Option {
	return func(s *Store) {
		s.st.requested = location
	}
}

// NewStore creates an idle store.
func NewStore(fetcher Fetcher, opts ...Option) *Store {
	s := &Store{
		fetcher: fetcher,
		logger:  slog.Default(),
		st:      state{status: StatusIdle, requested: DefaultLocation},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "forecast-store")
	return s
}

// Request is an issued location request.
type Request struct {
	Seq      uint64
	Location domain.Location
	done     chan struct{}
}

// Done is closed once the request resolved, whether or not it committed.
func (r *Request) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the request resolved or ctx ends.
func (r *Request) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FetchForecast records lat/lon as the requested point, switches to loading and
// starts the fetch. Any earlier request is superseded: its outcome is dropped.
func (s *Store) FetchForecast(ctx context.Context, lat, lon float64) (*Request, error) {
	location, err := domain.NewLocation(lat, lon)
	if err != nil {
		return nil, err
	}

	reqCtx, cancel := s.requestContext(ctx)
	req := &Request{Location: location, done: make(chan struct{})}

	s.commit(func(st *state) bool {
		if s.cancel != nil {
			s.cancel()
		}
		s.cancel = cancel
		st.seq++
		req.Seq = st.seq
		st.requested = location
		st.series = nil
		st.status = StatusLoading
		st.err = ""
		return true
	})

	s.logger.Debug("forecast requested", "seq", req.Seq, "latitude", lat, "longitude", lon)
	go s.run(reqCtx, cancel, req)
	return req, nil
}

// Load issues a request and waits for it to resolve.
func (s *Store) Load(ctx context.Context, lat, lon float64) (Snapshot, error) {
	req, err := s.FetchForecast(ctx, lat, lon)
	if err != nil {
		return Snapshot{}, err
	}
	if err := req.Wait(ctx); err != nil {
		return s.Snapshot(), err
	}
	return s.Snapshot(), nil
}

// SetActiveHour moves the cursor, clamped to the selectable range, and returns
// the applied index.
func (s *Store) SetActiveHour(index int) int {
	var applied int
	s.commit(func(st *state) bool {
		applied = ClampHour(index, horizonOf(st.series))
		if applied == st.cursor {
			return false
		}
		st.cursor = applied
		return true
	})
	return applied
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.snapshot()
}

// Markers returns per-hour map markers for the current series.
func (s *Store) Markers() []domain.Marker {
	s.mu.Lock()
	series := s.st.series
	s.mu.Unlock()
	return Markers(series)
}

type subscription struct {
	id       int
	listener Listener
}

// Subscribe registers a listener and returns its cancel function. Listeners
// are called in subscription order.
func (s *Store) Subscribe(listener Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, subscription{id: id, listener: listener})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.listeners {
			if sub.id == id {
				s.listeners = slices.Delete(s.listeners, i, i+1)
				return
			}
		}
	}
}

// Close cancels the in-flight request, if any. Its outcome is still guarded by
// the sequence check.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Store) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(ctx, s.timeout)
	}
	return context.WithCancel(ctx)
}

func (s *Store) run(ctx context.Context, cancel context.CancelFunc, req *Request) {
	defer close(req.done)
	defer cancel()

	series, err := s.fetcher.FetchForecast(ctx, req.Location)
	if err == nil {
		err = validateSeries(series)
	}
	s.resolve(req, series, err)
}

func (s *Store) resolve(req *Request, series domain.ForecastSeries, fetchErr error) {
	var latest uint64
	committed := false
	s.commit(func(st *state) bool {
		latest = st.seq
		if st.seq != req.Seq {
			return false
		}
		s.cancel = nil
		if fetchErr != nil {
			st.status = StatusFailed
			st.err = FailedMessage
			st.series = nil
		} else {
			installed := series
			st.status = StatusSuccess
			st.err = ""
			st.series = &installed
			st.cursor = 0
		}
		committed = true
		return true
	})

	switch {
	case !committed:
		s.logger.Debug("discarding superseded forecast response",
			"seq", req.Seq,
			"latest_seq", latest,
			"failed", fetchErr != nil,
		)
	case fetchErr != nil:
		s.logger.Error("forecast fetch failed",
			"seq", req.Seq,
			"latitude", req.Location.Lat,
			"longitude", req.Location.Lon,
			"error", fetchErr,
		)
	default:
		s.logger.Info("forecast loaded",
			"seq", req.Seq,
			"latitude", series.Latitude,
			"longitude", series.Longitude,
		)
	}
}

// commit applies mutate under the state lock and, when it reports a change,
// publishes the new snapshot to listeners.
func (s *Store) commit(mutate func(st *state) bool) {
	s.notifyM.Lock()
	defer s.notifyM.Unlock()

	s.mu.Lock()
	if !mutate(&s.st) {
		s.mu.Unlock()
		return
	}
	snap := s.st.snapshot()
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	for _, sub := range listeners {
		sub.listener(snap)
	}
}

func validateSeries(series domain.ForecastSeries) error {
	if len(series.AirQuality) != domain.HorizonHours {
		return fmt.Errorf("%w: air quality series has %d steps, want %d", ErrMalformedSeries, len(series.AirQuality), domain.HorizonHours)
	}
	if len(series.Allergen) != domain.HorizonHours {
		return fmt.Errorf("%w: allergen series has %d steps, want %d", ErrMalformedSeries, len(series.Allergen), domain.HorizonHours)
	}
	return nil
}

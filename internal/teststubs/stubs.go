package teststubs

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/PablitoTheChicken/ForReal-Server/internal/domain/fixtures"
	"github.com/PablitoTheChicken/ForReal-Server/internal/providers"
)

// StubFixtureProvider is a test double for providers.FixtureProvider.
type StubFixtureProvider struct {
	Page    providers.FixturePage
	Err     error
	ByID    map[string]fixtures.Event
	ByIDErr map[string]error

	Calls     atomic.Int32
	ByIDCalls atomic.Int32
	Notify    chan struct{}

	notifyOnce sync.Once
	mu         sync.Mutex
	lastDate   string
	lastTZ     string
}

// FetchFixtures returns the configured page and error while tracking calls.
// The first call closes Notify.
func (s *StubFixtureProvider) FetchFixtures(ctx context.Context, date, tz string) (providers.FixturePage, error) {
	_ = ctx
	if s.Notify != nil {
		s.notifyOnce.Do(func() { close(s.Notify) })
	}
	s.Calls.Add(1)
	s.mu.Lock()
	s.lastDate, s.lastTZ = date, tz
	s.mu.Unlock()
	return s.Page, s.Err
}

// FetchFixture returns the event registered for id, or ErrNotFound.
func (s *StubFixtureProvider) FetchFixture(ctx context.Context, id string) (fixtures.Event, error) {
	_ = ctx
	s.ByIDCalls.Add(1)
	if err, ok := s.ByIDErr[id]; ok {
		return fixtures.Event{}, err
	}
	ev, ok := s.ByID[id]
	if !ok {
		return fixtures.Event{}, providers.ErrNotFound
	}
	return ev, nil
}

// LastRequest returns the date and timezone of the most recent fetch.
func (s *StubFixtureProvider) LastRequest() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastDate, s.lastTZ
}

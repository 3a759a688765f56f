package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/PablitoTheChicken/ForReal-Server/internal/config"
	"github.com/PablitoTheChicken/ForReal-Server/internal/domain/fixtures"
	"github.com/PablitoTheChicken/ForReal-Server/internal/providers"
	"github.com/PablitoTheChicken/ForReal-Server/internal/providers/roblox"
	"github.com/PablitoTheChicken/ForReal-Server/internal/teststubs"
	"github.com/PablitoTheChicken/ForReal-Server/internal/testutil"
)

func configuredConfig() config.Config {
	return config.Config{
		Port:        "0",
		APIFootball: config.APIFootballConfig{APIKey: "test-key"},
		Cache: config.CacheConfig{
			FixtureTTL: time.Minute,
			ScoreTTL:   time.Minute,
			EntityTTL:  time.Minute,
			MaxEntries: 10,
		},
	}
}

func TestServerServesHealthAndFixtures(t *testing.T) {
	provider := &teststubs.StubFixtureProvider{
		Page: providers.FixturePage{Events: []fixtures.Event{
			testutil.SampleEvent(1, 39, "Arsenal", "Chelsea"),
			testutil.SampleEvent(2, 140, "Sevilla", "Betis"),
		}},
	}

	srv := newServerWithComponents(configuredConfig(), nil, components{fixtures: provider})
	router := srv.Handler()

	testutil.AssertStatus(t, testutil.Serve(router, http.MethodGet, "/health", nil), http.StatusOK)

	rr := testutil.Serve(router, http.MethodGet, "/football/fixtures?date=2024-05-01&leagues=39", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var env fixtures.Envelope
	testutil.DecodeJSON(t, rr, &env)
	if env.Results != 1 || len(env.Response) != 1 {
		t.Fatalf("expected one filtered fixture, got %d", env.Results)
	}
	if env.Response[0].Fixture.ID != 1 {
		t.Fatalf("unexpected fixture id %d", env.Response[0].Fixture.ID)
	}
}

func TestServerCachesFixtureQueries(t *testing.T) {
	provider := &teststubs.StubFixtureProvider{
		Page: providers.FixturePage{Events: []fixtures.Event{testutil.SampleEvent(1, 39, "Arsenal", "Chelsea")}},
	}

	srv := newServerWithComponents(configuredConfig(), nil, components{fixtures: provider})
	router := srv.Handler()

	for i := 0; i < 3; i++ {
		testutil.AssertStatus(t, testutil.Serve(router, http.MethodGet, "/football/fixtures?date=2024-05-01", nil), http.StatusOK)
	}
	if got := provider.Calls.Load(); got != 1 {
		t.Fatalf("expected one upstream call, got %d", got)
	}
	if srv.caches.fixtures.Len() != 1 {
		t.Fatalf("expected one cached envelope, got %d", srv.caches.fixtures.Len())
	}
}

func TestServerReportsMissingCredential(t *testing.T) {
	provider := &teststubs.StubFixtureProvider{}
	cfg := configuredConfig()
	cfg.APIFootball.APIKey = ""

	srv := newServerWithComponents(cfg, nil, components{fixtures: provider})
	rr := testutil.Serve(srv.Handler(), http.MethodGet, "/football/fixtures?date=2024-05-01", nil)
	testutil.AssertStatus(t, rr, http.StatusInternalServerError)

	var body map[string]string
	testutil.DecodeJSON(t, rr, &body)
	if body["error"] != "API_FOOTBALL_KEY not set on server" {
		t.Fatalf("unexpected error body %v", body)
	}
	if provider.Calls.Load() != 0 {
		t.Fatalf("expected no upstream call without credential")
	}
}

func TestNewConstructsServer(t *testing.T) {
	cfg := config.Config{
		Port: "0",
		Metrics: config.MetricsConfig{
			Enabled: false,
		},
	}
	srv := New(cfg, nil)
	if srv == nil || srv.Handler() == nil {
		t.Fatalf("expected server with handler")
	}
	if _, ok := srv.sweeper.(interface{ SweepOnce() int }); !ok {
		t.Fatalf("expected cache sweeper to be wired")
	}
}

func TestProviderFactoryBuildsClients(t *testing.T) {
	f := newProviderFactory(configuredConfig(), nil, nil)
	if f.fixtureProvider() == nil {
		t.Fatalf("expected fixture provider")
	}
	var src interface{} = f.entitySource()
	if _, ok := src.(*roblox.Client); !ok {
		t.Fatalf("expected roblox client")
	}
	if f.predictor() != nil {
		t.Fatalf("expected no predictor without inference credential")
	}

	cfg := configuredConfig()
	cfg.Inference = config.InferenceConfig{APIKey: "sk-test", Model: "gpt-4o-mini"}
	if newProviderFactory(cfg, nil, nil).predictor() == nil {
		t.Fatalf("expected predictor when inference is configured")
	}
}

func TestGracefulShutdownCallsStopAndShutdown(t *testing.T) {
	sw := &testutil.StubSweeper{}
	httpSrv := &testutil.StubHTTPServer{}

	srv := newServerWithDeps(config.Config{}, nil, httpSrv, sw)
	srv.gracefulShutdown()

	if sw.StopCalls != 1 {
		t.Fatalf("expected sweeper Stop to be called once, got %d", sw.StopCalls)
	}
	if httpSrv.ShutdownCalls != 1 {
		t.Fatalf("expected server Shutdown to be called once, got %d", httpSrv.ShutdownCalls)
	}
}

func TestGracefulShutdownTimesOutLongRunningShutdown(t *testing.T) {
	sw := &testutil.StubSweeper{}
	blocking := &testutil.BlockingHTTPServer{
		AddrVal:    ":0",
		HandlerVal: http.NewServeMux(),
		Unblock:    make(chan struct{}),
	}

	original := shutdownTimeout
	shutdownTimeout = 5 * time.Millisecond
	defer func() { shutdownTimeout = original }()

	srv := newServerWithDeps(config.Config{}, nil, blocking, sw)

	start := time.Now()
	srv.gracefulShutdown()
	elapsed := time.Since(start)

	if blocking.ShutdownCalls != 1 {
		t.Fatalf("expected server Shutdown to be called once, got %d", blocking.ShutdownCalls)
	}
	if sw.StopCalls != 1 {
		t.Fatalf("expected sweeper Stop to be called once, got %d", sw.StopCalls)
	}
	if elapsed > 200*time.Millisecond {
		t.Fatalf("shutdown took too long: %s", elapsed)
	}
}

func TestGracefulShutdownContinuesWhenSweeperStopErrors(t *testing.T) {
	sw := &testutil.StubSweeper{Err: errors.New("stop failure")}
	httpSrv := &testutil.StubHTTPServer{}

	srv := newServerWithDeps(config.Config{}, nil, httpSrv, sw)
	srv.gracefulShutdown()

	if httpSrv.ShutdownCalls != 1 {
		t.Fatalf("expected server Shutdown despite sweeper error, got %d", httpSrv.ShutdownCalls)
	}
}

func TestServerStartHandlesListenErrorAndStops(t *testing.T) {
	srv := newServerWithDeps(config.Config{}, nil, &testutil.ErrHTTPServer{}, &testutil.StubSweeper{})

	var wg sync.WaitGroup
	wg.Add(1)
	stopCalled := make(chan struct{})
	stop := func() {
		close(stopCalled)
		wg.Done()
	}

	srv.startServer(stop)

	select {
	case <-stopCalled:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("expected stop to be called on listen failure")
	}

	wg.Wait()
}

func TestRunCancelsAndStopsComponents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sw := &testutil.StubSweeper{}
	httpSrv := &testutil.CloseableHTTPServer{}

	srv := newServerWithDeps(config.Config{}, nil, httpSrv, sw)

	done := make(chan struct{})
	go func() {
		srv.Run(ctx, cancel)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("run did not return after cancel")
	}

	if sw.StartCalls != 1 {
		t.Fatalf("expected sweeper Start called once, got %d", sw.StartCalls)
	}
	if sw.StopCalls != 1 {
		t.Fatalf("expected sweeper Stop called once, got %d", sw.StopCalls)
	}
	if httpSrv.ShutdownCalls != 1 {
		t.Fatalf("expected server Shutdown called once, got %d", httpSrv.ShutdownCalls)
	}
}

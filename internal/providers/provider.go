package providers

import (
	"context"
	"encoding/json"

	"github.com/PablitoTheChicken/ForReal-Server/internal/domain/fixtures"
)

// FixturePage is one upstream fixtures response. Errors echoes the upstream
// error list verbatim.
type FixturePage struct {
	Events []fixtures.Event
	Errors json.RawMessage
}

// FixtureProvider fetches normalized fixtures from an upstream source.
// FetchFixtures receives only the date (YYYY-MM-DD) and timezone; all other
// filtering happens locally. FetchFixture returns ErrNotFound when the id is
// unknown upstream.
type FixtureProvider interface {
	FetchFixtures(ctx context.Context, date, tz string) (FixturePage, error)
	FetchFixture(ctx context.Context, id string) (fixtures.Event, error)
}

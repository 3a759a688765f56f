package testutil

import "github.com/PablitoTheChicken/ForReal-Server/internal/domain/fixtures"

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}

// SampleEvent returns a scheduled fixture between home and away in league.
func SampleEvent(id int64, league int64, home, away string) fixtures.Event {
	return fixtures.Event{
		Fixture: fixtures.Fixture{
			ID:       id,
			Timezone: "UTC",
			Date:     "2024-05-01T19:00:00+00:00",
			Status:   fixtures.Status{Long: "Not Started", Short: "NS"},
		},
		League: fixtures.League{ID: league, Name: "League", Country: "England", Season: IntPtr(2023), Round: "Regular Season - 1"},
		Teams: fixtures.Teams{
			Home: fixtures.Team{ID: id*10 + 1, Name: home},
			Away: fixtures.Team{ID: id*10 + 2, Name: away},
		},
	}
}

// FinishedEvent returns SampleEvent with a full-time result.
func FinishedEvent(id int64, league int64, home, away string, homeGoals, awayGoals int) fixtures.Event {
	ev := SampleEvent(id, league, home, away)
	ev.Fixture.Status = fixtures.Status{Long: "Match Finished", Short: "FT", Elapsed: IntPtr(90)}
	ev.Goals = fixtures.Pair{Home: IntPtr(homeGoals), Away: IntPtr(awayGoals)}
	ev.Score.Fulltime = fixtures.Pair{Home: IntPtr(homeGoals), Away: IntPtr(awayGoals)}
	return ev
}

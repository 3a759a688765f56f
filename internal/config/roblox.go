package config

const (
	envRobloxGamesURL      = "ROBLOX_GAMES_BASE_URL"
	envRobloxThumbnailsURL = "ROBLOX_THUMBNAILS_BASE_URL"
	envRobloxUsersURL      = "ROBLOX_USERS_BASE_URL"

	defaultRobloxGamesURL      = "https://games.roblox.com"
	defaultRobloxThumbnailsURL = "https://thumbnails.roblox.com"
	defaultRobloxUsersURL      = "https://users.roblox.com"
)

// RobloxConfig points the entity lookups at the Roblox web APIs.
type RobloxConfig struct {
	GamesBaseURL      string
	ThumbnailsBaseURL string
	UsersBaseURL      string
}

func loadRoblox() RobloxConfig {
	return RobloxConfig{
		GamesBaseURL:      envOrDefault(envRobloxGamesURL, defaultRobloxGamesURL),
		ThumbnailsBaseURL: envOrDefault(envRobloxThumbnailsURL, defaultRobloxThumbnailsURL),
		UsersBaseURL:      envOrDefault(envRobloxUsersURL, defaultRobloxUsersURL),
	}
}

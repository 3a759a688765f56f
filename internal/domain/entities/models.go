package entities

// GameDetails is the core record for a universe.
type GameDetails struct {
	Name    string
	Visits  int64
	Playing int64
}

// Votes are the up/down counts for a universe.
type Votes struct {
	Up   int64
	Down int64
}

// LikeRatio is up/(up+down), or 0 without votes.
func (v Votes) LikeRatio() float64 {
	total := v.Up + v.Down
	if total <= 0 {
		return 0
	}
	return float64(v.Up) / float64(total)
}

// Game is the payload returned by /game/{universeId}. Image URLs are null
// when the thumbnail service has not finished rendering them.
type Game struct {
	Name         string  `json:"name"`
	Visits       int64   `json:"visits"`
	Playing      int64   `json:"playing"`
	LikeRatio    float64 `json:"likeRatio"`
	IconURL      *string `json:"iconUrl"`
	ThumbnailURL *string `json:"thumbnailUrl"`
}

// NewGame assembles a Game from its parts.
func NewGame(details GameDetails, votes Votes, icon, thumbnail *string) Game {
	return Game{
		Name:         details.Name,
		Visits:       details.Visits,
		Playing:      details.Playing,
		LikeRatio:    votes.LikeRatio(),
		IconURL:      icon,
		ThumbnailURL: thumbnail,
	}
}

// UserProfile is the core record for a user account.
type UserProfile struct {
	ID          int64
	Username    string
	DisplayName string
}

// User is the payload returned by /user/{userId}.
type User struct {
	UserID      int64   `json:"userId"`
	Username    string  `json:"username"`
	DisplayName string  `json:"displayName"`
	AvatarURL   *string `json:"avatarUrl"`
}

// NewUser assembles a User from its profile and avatar.
func NewUser(profile UserProfile, avatar *string) User {
	return User{
		UserID:      profile.ID,
		Username:    profile.Username,
		DisplayName: profile.DisplayName,
		AvatarURL:   avatar,
	}
}

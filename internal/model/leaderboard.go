package model

// WinCount is one aggregated row: how many winning submissions an email holds.
type WinCount struct {
	Email  string `json:"email" bson:"_id"`
	Points int    `json:"points" bson:"points"`
}

// LeaderboardEntry is a WinCount joined to the winner's profile.
type LeaderboardEntry struct {
	Email  string `json:"email"`
	Name   string `json:"name"`
	Photo  string `json:"photo,omitempty"`
	Role   Role   `json:"role,omitempty"`
	Points int    `json:"points"`
}

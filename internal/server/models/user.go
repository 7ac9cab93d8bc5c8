// Package models holds the records persisted by every storage backend.
// JSON tags define the on-disk layout of the file backend.
package models

import "time"

// User modes.
const (
	ModeIndividual = "individual"
	ModeTeam       = "team"
)

type User struct {
	ID           string    `json:"id"`
	Login        string    `json:"login"`
	PasswordSalt []byte    `json:"password_salt"`
	PasswordHash []byte    `json:"password_hash"`
	DisplayName  string    `json:"display_name"`
	Affiliation  string    `json:"affiliation"`
	TeamID       string    `json:"team_id"`
	Mode         string    `json:"mode"`
	CreatedAt    time.Time `json:"created_at"`
}

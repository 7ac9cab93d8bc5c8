package models

import "time"

// Avatar is a user's profile picture. Either Data holds the PNG bytes inline
// or StorageKey names the object in the blob store.
type Avatar struct {
	UserID      string    `json:"user_id"`
	ContentType string    `json:"content_type"`
	Data        []byte    `json:"data"`
	StorageKey  string    `json:"storage_key"`
	UpdatedAt   time.Time `json:"updated_at"`
}

package model

import "time"

// LibraryEntry is a stored mapping from an NFC tag to playable content. The
// entry id (a UUID) is what gets written onto the physical tag.
type LibraryEntry struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Content      Content   `json:"content"`
	CoverArtPath string    `json:"coverArtPath,omitempty"` // object path under the covers/ prefix
	State        int8      `json:"state"`                  // 0=soft deleted, 1=normal
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

package model

import "time"

// Item is a single entry in a list. Checked is only meaningful on items
// belonging to an ethereal list.
type Item struct {
	ID       string    `json:"id"`
	Text     string    `json:"text"`
	Quantity int       `json:"quantity"`
	Checked  bool      `json:"checked"`
	Section  string    `json:"section,omitempty"`
	AddedAt  time.Time `json:"added_at"`
}

// List is the aggregate: an ordered item collection plus, for ethereal lists,
// the original template collection items are restored from.
type List struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	OwnerID       int64     `json:"owner_id"`
	ThumbnailURL  string    `json:"thumbnail_url"`
	IsPublic      bool      `json:"is_public"`
	IsEthereal    bool      `json:"is_ethereal"`
	Tags          []string  `json:"tags"`
	Collaborators []int64   `json:"collaborators"`
	Items         []Item    `json:"items"`
	OriginalItems []Item    `json:"original_items,omitempty"`
	ParentID      *int64    `json:"parent_id"`
	CloneCount    int64     `json:"clone_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

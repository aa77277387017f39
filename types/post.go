package types

import "time"

// Post represents a blog post authored by a user.
type Post struct {
	// ID is the unique identifier of the post.
	ID int `json:"id" db:"id"`

	// Title is the human-readable headline of the post.
	Title string `json:"title" db:"title"`

	// Category is a free-form label grouping related posts.
	Category string `json:"category" db:"category"`

	// Content is the body of the post.
	Content string `json:"content" db:"content"`

	// Image is an optional reference to a cover image. The server stores
	// only the reference string; it does not host the image itself.
	Image *string `json:"image" db:"image"`

	// OwnerID is the identifier of the user who created the post. Only
	// the owner may update or delete it.
	OwnerID int `json:"owner_id" db:"owner_id"`

	// CreatedAt is the timestamp at which the post was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the post.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

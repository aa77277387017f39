package types

import "time"

// Comment represents a user comment attached to a post. Deleting the
// parent post deletes its comments with it.
type Comment struct {
	ID      int    `json:"id" db:"id"`
	Content string `json:"content" db:"content"`
	PostID  int    `json:"post_id" db:"post_id"`
	OwnerID int    `json:"owner_id" db:"owner_id"`

	// OwnerUsername is the username of the comment's author, joined from
	// the users table on every read. It is never stored on the comment row.
	OwnerUsername string `json:"owner_username" db:"owner_username"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

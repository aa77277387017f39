package services

import "github.com/goblog/apiserver/types"

// Authorization rules for resource mutation. Each predicate is pure:
// callers resolve the actor and the resource first, so existence (404)
// is always decided before ownership (403).

// CanModifyPost reports whether the actor may update or delete the post.
// Only the owner qualifies; the admin flag carries no override for posts.
func CanModifyPost(actor types.User, post types.Post) bool {
	return post.OwnerID == actor.ID
}

// CanModifyComment reports whether the actor may update or delete the
// comment. The owner always may; admins may moderate any comment.
func CanModifyComment(actor types.User, comment types.Comment) bool {
	return comment.OwnerID == actor.ID || actor.IsAdmin
}

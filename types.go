package liveboard

import (
	"encoding/json"
	"time"
)

// Post is the canonical wire representation of a shared post. Likes carry
// full membership (principal IDs), never a count.
type Post struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	Likes      []string  `json:"likes"`
	Comments   []Comment `json:"comments"`
}

// Comment is an element of a post's ordered comment sequence.
type Comment struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Room event types pushed to members of a post's room.
const (
	EventCommentAdded   = "commentAdded"
	EventCommentUpdated = "commentUpdated"
	EventLikeUpdated    = "likeUpdated"
)

// Event is a room-scoped realtime message. Body shape depends on Type:
// commentAdded carries a Comment, commentUpdated a CommentUpdatedBody,
// likeUpdated the full like membership ([]string).
type Event struct {
	Type   string          `json:"type"`
	PostID string          `json:"postId"`
	Body   json.RawMessage `json:"body"`
}

type CommentUpdatedBody struct {
	CommentID string `json:"commentId"`
	Text      string `json:"text"`
}

// Realtime request types sent by clients over the socket.
const (
	RealtimeJoinPost   = "joinPost"
	RealtimeNewComment = "newComment"
	RealtimeNewLike    = "newLike"
	RealtimeHeartbeat  = "h"
)

// RealtimeRequest is a client-to-server socket message. newComment and
// newLike relay a change the client already committed over REST.
type RealtimeRequest struct {
	Type    string   `json:"type"`
	PostID  string   `json:"postId,omitempty"`
	Comment *Comment `json:"comment,omitempty"`
	Likes   []string `json:"likes,omitempty"`
}

type PostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type CommentRequest struct {
	Text string `json:"text"`
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type PostResponse struct {
	Message string `json:"message"`
	Post    *Post  `json:"post,omitempty"`
}

type PostListResponse struct {
	Posts []Post `json:"posts"`
	Total int64  `json:"total"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
}

type AuthResponse struct {
	Message string `json:"message"`
	User    *User  `json:"user,omitempty"`
	Token   string `json:"token,omitempty"`
}

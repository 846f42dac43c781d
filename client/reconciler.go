package client

import (
	"encoding/json"
	"sync"

	"github.com/totegamma/liveboard"
)

// State of a viewing client.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateViewing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateLoading:
		return "Loading"
	case StateViewing:
		return "Viewing"
	default:
		return "Unknown"
	}
}

// Reconciler holds the local copy of the post a client is viewing and
// merges the two delivery paths into it: direct mutation responses and
// asynchronous room events. Merging is by identity, so an echo of the
// client's own change is a no-op and response/event arrival order does not
// matter.
type Reconciler struct {
	mu     sync.Mutex
	state  State
	postID string
	post   liveboard.Post
}

func NewReconciler() *Reconciler {
	return &Reconciler{state: StateIdle}
}

func (r *Reconciler) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Post returns a copy of the local document. Valid only while Viewing.
func (r *Reconciler) Post() (liveboard.Post, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateViewing {
		return liveboard.Post{}, false
	}
	return copyPost(r.post), true
}

// BeginLoad enters Loading for the given post.
func (r *Reconciler) BeginLoad(postID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = StateLoading
	r.postID = postID
	r.post = liveboard.Post{}
}

// SetSnapshot installs the fetched snapshot and enters Viewing.
func (r *Reconciler) SetSnapshot(post liveboard.Post) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateLoading || post.ID != r.postID {
		return
	}
	r.post = copyPost(post)
	r.state = StateViewing
}

// Fail aborts a load and returns to Idle.
func (r *Reconciler) Fail() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = StateIdle
	r.postID = ""
	r.post = liveboard.Post{}
}

// Leave discards the local copy and returns to Idle.
func (r *Reconciler) Leave() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = StateIdle
	r.postID = ""
	r.post = liveboard.Post{}
}

// ApplyResponse replaces the local copy with the authoritative post
// returned by a direct mutation call.
func (r *Reconciler) ApplyResponse(post liveboard.Post) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateViewing || post.ID != r.postID {
		return
	}
	r.post = copyPost(post)
}

// ApplyEvent merges an inbound room event into the local copy. Comment
// events match by comment ID; like events replace the whole membership
// set. Applying the same event twice yields the same state.
func (r *Reconciler) ApplyEvent(event liveboard.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateViewing || event.PostID != r.postID {
		return
	}

	switch event.Type {
	case liveboard.EventCommentAdded:
		var comment liveboard.Comment
		if err := json.Unmarshal(event.Body, &comment); err != nil || comment.ID == "" {
			return
		}
		for i := range r.post.Comments {
			if r.post.Comments[i].ID == comment.ID {
				r.post.Comments[i] = comment
				return
			}
		}
		r.post.Comments = append(r.post.Comments, comment)

	case liveboard.EventCommentUpdated:
		var body liveboard.CommentUpdatedBody
		if err := json.Unmarshal(event.Body, &body); err != nil {
			return
		}
		for i := range r.post.Comments {
			if r.post.Comments[i].ID == body.CommentID {
				r.post.Comments[i].Text = body.Text
				return
			}
		}

	case liveboard.EventLikeUpdated:
		var likes []string
		if err := json.Unmarshal(event.Body, &likes); err != nil {
			return
		}
		if likes == nil {
			likes = []string{}
		}
		r.post.Likes = likes
	}
}

func copyPost(post liveboard.Post) liveboard.Post {
	out := post
	out.Likes = append([]string(nil), post.Likes...)
	out.Comments = append([]liveboard.Comment(nil), post.Comments...)
	return out
}

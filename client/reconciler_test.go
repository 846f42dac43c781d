package client

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/totegamma/liveboard"
)

func mustEvent(t *testing.T, eventType, postID string, body any) liveboard.Event {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return liveboard.Event{Type: eventType, PostID: postID, Body: payload}
}

func viewingReconciler(t *testing.T, post liveboard.Post) *Reconciler {
	t.Helper()
	rec := NewReconciler()
	rec.BeginLoad(post.ID)
	rec.SetSnapshot(post)
	if rec.State() != StateViewing {
		t.Fatalf("expected Viewing, got %s", rec.State())
	}
	return rec
}

func TestStateTransitions(t *testing.T) {
	rec := NewReconciler()
	if rec.State() != StateIdle {
		t.Fatalf("expected Idle, got %s", rec.State())
	}

	rec.BeginLoad("post1")
	if rec.State() != StateLoading {
		t.Fatalf("expected Loading, got %s", rec.State())
	}
	if _, ok := rec.Post(); ok {
		t.Fatalf("post readable while loading")
	}

	rec.SetSnapshot(liveboard.Post{ID: "post1"})
	if rec.State() != StateViewing {
		t.Fatalf("expected Viewing, got %s", rec.State())
	}

	rec.Leave()
	if rec.State() != StateIdle {
		t.Fatalf("expected Idle after leave, got %s", rec.State())
	}
	if _, ok := rec.Post(); ok {
		t.Fatalf("post readable after leave")
	}
}

func TestSnapshotIgnoredForOtherPost(t *testing.T) {
	rec := NewReconciler()
	rec.BeginLoad("post1")
	rec.SetSnapshot(liveboard.Post{ID: "post2"})
	if rec.State() != StateLoading {
		t.Fatalf("snapshot for wrong post accepted")
	}
}

func TestFailReturnsToIdle(t *testing.T) {
	rec := NewReconciler()
	rec.BeginLoad("post1")
	rec.Fail()
	if rec.State() != StateIdle {
		t.Fatalf("expected Idle after failed load, got %s", rec.State())
	}
}

func TestLikeEventIdempotent(t *testing.T) {
	rec := viewingReconciler(t, liveboard.Post{ID: "post1", Likes: []string{}})

	event := mustEvent(t, liveboard.EventLikeUpdated, "post1", []string{"userA", "userB"})
	rec.ApplyEvent(event)
	rec.ApplyEvent(event)

	post, _ := rec.Post()
	if !reflect.DeepEqual(post.Likes, []string{"userA", "userB"}) {
		t.Fatalf("unexpected likes: %v", post.Likes)
	}
}

func TestCommentEchoNotDuplicated(t *testing.T) {
	comment := liveboard.Comment{ID: "c1", Text: "hello", AuthorID: "userA"}
	rec := viewingReconciler(t, liveboard.Post{ID: "post1", Comments: []liveboard.Comment{comment}})

	// the room echo of a comment the response already delivered
	rec.ApplyEvent(mustEvent(t, liveboard.EventCommentAdded, "post1", comment))

	post, _ := rec.Post()
	if len(post.Comments) != 1 {
		t.Fatalf("echo duplicated the comment: %+v", post.Comments)
	}
}

func TestResponseAndEventCommute(t *testing.T) {
	base := liveboard.Post{ID: "post1", Comments: []liveboard.Comment{}}
	comment := liveboard.Comment{ID: "c1", Text: "hello", AuthorID: "userA"}
	response := liveboard.Post{ID: "post1", Comments: []liveboard.Comment{comment}}
	event := mustEvent(t, liveboard.EventCommentAdded, "post1", comment)

	first := viewingReconciler(t, base)
	first.ApplyResponse(response)
	first.ApplyEvent(event)

	second := viewingReconciler(t, base)
	second.ApplyEvent(event)
	second.ApplyResponse(response)

	a, _ := first.Post()
	b, _ := second.Post()
	if !reflect.DeepEqual(a.Comments, b.Comments) {
		t.Fatalf("order dependent merge: %+v vs %+v", a.Comments, b.Comments)
	}
	if len(a.Comments) != 1 {
		t.Fatalf("expected single comment, got %+v", a.Comments)
	}
}

func TestCommentUpdatedByIdentity(t *testing.T) {
	rec := viewingReconciler(t, liveboard.Post{ID: "post1", Comments: []liveboard.Comment{
		{ID: "c1", Text: "one"},
		{ID: "c2", Text: "two"},
	}})

	rec.ApplyEvent(mustEvent(t, liveboard.EventCommentUpdated, "post1", liveboard.CommentUpdatedBody{
		CommentID: "c2",
		Text:      "two edited",
	}))

	post, _ := rec.Post()
	if post.Comments[0].Text != "one" || post.Comments[1].Text != "two edited" {
		t.Fatalf("unexpected comments: %+v", post.Comments)
	}

	// an update for an unknown comment is ignored, not invented
	rec.ApplyEvent(mustEvent(t, liveboard.EventCommentUpdated, "post1", liveboard.CommentUpdatedBody{
		CommentID: "c9",
		Text:      "ghost",
	}))
	post, _ = rec.Post()
	if len(post.Comments) != 2 {
		t.Fatalf("phantom comment appeared: %+v", post.Comments)
	}
}

func TestEventForOtherPostIgnored(t *testing.T) {
	rec := viewingReconciler(t, liveboard.Post{ID: "post1", Likes: []string{"userA"}})

	rec.ApplyEvent(mustEvent(t, liveboard.EventLikeUpdated, "post2", []string{}))

	post, _ := rec.Post()
	if len(post.Likes) != 1 {
		t.Fatalf("cross-room event applied: %v", post.Likes)
	}
}

func TestPostReturnsCopy(t *testing.T) {
	rec := viewingReconciler(t, liveboard.Post{ID: "post1", Likes: []string{"userA"}})

	post, _ := rec.Post()
	post.Likes[0] = "mutated"

	again, _ := rec.Post()
	if again.Likes[0] != "userA" {
		t.Fatalf("internal state leaked: %v", again.Likes)
	}
}

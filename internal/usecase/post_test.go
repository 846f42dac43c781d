package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/totegamma/liveboard"
	"github.com/totegamma/liveboard/internal/domain"
)

// --- mocks ---

type memPostRepo struct {
	posts map[string]liveboard.Post
}

func newMemPostRepo() *memPostRepo {
	return &memPostRepo{posts: map[string]liveboard.Post{}}
}

func clonePost(p liveboard.Post) liveboard.Post {
	out := p
	out.Likes = append([]string(nil), p.Likes...)
	out.Comments = append([]liveboard.Comment(nil), p.Comments...)
	return out
}

func (m *memPostRepo) Create(ctx context.Context, post liveboard.Post) (liveboard.Post, error) {
	post.CreatedAt = time.Now().UTC()
	post.Likes = []string{}
	post.Comments = []liveboard.Comment{}
	m.posts[post.ID] = clonePost(post)
	return clonePost(post), nil
}

func (m *memPostRepo) Get(ctx context.Context, postID string) (liveboard.Post, error) {
	post, ok := m.posts[postID]
	if !ok {
		return liveboard.Post{}, domain.NotFoundError{Resource: "Post"}
	}
	return clonePost(post), nil
}

func (m *memPostRepo) List(ctx context.Context, offset, limit int) ([]liveboard.Post, error) {
	posts := []liveboard.Post{}
	for _, post := range m.posts {
		posts = append(posts, clonePost(post))
	}
	return posts, nil
}

func (m *memPostRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(m.posts)), nil
}

func (m *memPostRepo) Update(ctx context.Context, postID, title, content string) (liveboard.Post, error) {
	post, ok := m.posts[postID]
	if !ok {
		return liveboard.Post{}, domain.NotFoundError{Resource: "Post"}
	}
	post.Title = title
	post.Content = content
	m.posts[postID] = post
	return clonePost(post), nil
}

func (m *memPostRepo) Delete(ctx context.Context, postID string) error {
	if _, ok := m.posts[postID]; !ok {
		return domain.NotFoundError{Resource: "Post"}
	}
	delete(m.posts, postID)
	return nil
}

func (m *memPostRepo) ToggleLike(ctx context.Context, postID, userID string) (liveboard.Post, bool, error) {
	post, ok := m.posts[postID]
	if !ok {
		return liveboard.Post{}, false, domain.NotFoundError{Resource: "Post"}
	}
	liked := true
	for i, id := range post.Likes {
		if id == userID {
			post.Likes = append(post.Likes[:i], post.Likes[i+1:]...)
			liked = false
			break
		}
	}
	if liked {
		post.Likes = append(post.Likes, userID)
	}
	m.posts[postID] = post
	return clonePost(post), liked, nil
}

func (m *memPostRepo) AddComment(ctx context.Context, postID string, comment liveboard.Comment) (liveboard.Post, error) {
	post, ok := m.posts[postID]
	if !ok {
		return liveboard.Post{}, domain.NotFoundError{Resource: "Post"}
	}
	post.Comments = append(post.Comments, comment)
	m.posts[postID] = post
	return clonePost(post), nil
}

func (m *memPostRepo) UpdateComment(ctx context.Context, postID, commentID, text string) (liveboard.Post, error) {
	post, ok := m.posts[postID]
	if !ok {
		return liveboard.Post{}, domain.NotFoundError{Resource: "Post"}
	}
	for i := range post.Comments {
		if post.Comments[i].ID == commentID {
			post.Comments[i].Text = text
			m.posts[postID] = post
			return clonePost(post), nil
		}
	}
	return liveboard.Post{}, domain.NotFoundError{Resource: "Comment"}
}

func (m *memPostRepo) DeleteComment(ctx context.Context, postID, commentID string) (liveboard.Post, error) {
	post, ok := m.posts[postID]
	if !ok {
		return liveboard.Post{}, domain.NotFoundError{Resource: "Post"}
	}
	for i := range post.Comments {
		if post.Comments[i].ID == commentID {
			post.Comments = append(post.Comments[:i], post.Comments[i+1:]...)
			m.posts[postID] = post
			return clonePost(post), nil
		}
	}
	return liveboard.Post{}, domain.NotFoundError{Resource: "Comment"}
}

type mockDirectory struct{}

func (m *mockDirectory) Lookup(ctx context.Context, ids []string) (map[string]string, error) {
	names := map[string]string{}
	for _, id := range ids {
		names[id] = "name-" + id
	}
	return names, nil
}

func newPostUsecase() (*PostUsecase, *memPostRepo) {
	repo := newMemPostRepo()
	return NewPostUsecase(repo, &mockDirectory{}), repo
}

// --- tests ---

func TestCreatePostStartsEmpty(t *testing.T) {
	uc, _ := newPostUsecase()

	post, err := uc.Create(context.Background(), "userA", "T", "C")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if len(post.Likes) != 0 || len(post.Comments) != 0 {
		t.Fatalf("expected empty likes/comments, got %v / %v", post.Likes, post.Comments)
	}
	if post.AuthorID != "userA" {
		t.Fatalf("expected author userA got %s", post.AuthorID)
	}
	if post.AuthorName != "name-userA" {
		t.Fatalf("expected decorated author name, got %q", post.AuthorName)
	}
}

func TestCreatePostValidation(t *testing.T) {
	uc, _ := newPostUsecase()

	cases := []struct{ title, content string }{
		{"", "content"},
		{"title", ""},
		{"   ", "content"},
		{"title", "   "},
	}
	for _, c := range cases {
		_, err := uc.Create(context.Background(), "userA", c.title, c.content)
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected validation error for %q/%q, got %v", c.title, c.content, err)
		}
	}
}

func TestToggleLikeRoundTrip(t *testing.T) {
	uc, _ := newPostUsecase()
	post, _ := uc.Create(context.Background(), "userA", "T", "C")

	updated, liked, err := uc.ToggleLike(context.Background(), "userB", post.ID)
	if err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if !liked {
		t.Fatalf("expected liked transition")
	}
	if len(updated.Likes) != 1 || updated.Likes[0] != "userB" {
		t.Fatalf("expected likes [userB], got %v", updated.Likes)
	}

	updated, liked, err = uc.ToggleLike(context.Background(), "userB", post.ID)
	if err != nil {
		t.Fatalf("second toggle failed: %v", err)
	}
	if liked {
		t.Fatalf("expected unliked transition")
	}
	if len(updated.Likes) != 0 {
		t.Fatalf("expected empty likes after round trip, got %v", updated.Likes)
	}
}

func TestToggleLikeUnknownPost(t *testing.T) {
	uc, _ := newPostUsecase()
	_, _, err := uc.ToggleLike(context.Background(), "userB", "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCommentOrdering(t *testing.T) {
	uc, _ := newPostUsecase()
	post, _ := uc.Create(context.Background(), "userA", "T", "C")

	ids := []string{}
	for i := 0; i < 5; i++ {
		updated, comment, err := uc.AddComment(context.Background(), "userA", post.ID, fmt.Sprintf("comment %d", i))
		if err != nil {
			t.Fatalf("add comment %d failed: %v", i, err)
		}
		if len(updated.Comments) != i+1 {
			t.Fatalf("expected %d comments got %d", i+1, len(updated.Comments))
		}
		ids = append(ids, comment.ID)
	}

	updated, err := uc.DeleteComment(context.Background(), "userA", post.ID, ids[2])
	if err != nil {
		t.Fatalf("delete comment failed: %v", err)
	}

	want := []string{ids[0], ids[1], ids[3], ids[4]}
	if len(updated.Comments) != len(want) {
		t.Fatalf("expected %d comments got %d", len(want), len(updated.Comments))
	}
	for i, id := range want {
		if updated.Comments[i].ID != id {
			t.Fatalf("order broken at %d: expected %s got %s", i, id, updated.Comments[i].ID)
		}
	}
}

func TestAddCommentReturnsNewComment(t *testing.T) {
	uc, _ := newPostUsecase()
	post, _ := uc.Create(context.Background(), "userA", "T", "C")

	updated, comment, err := uc.AddComment(context.Background(), "userA", post.ID, "hi")
	if err != nil {
		t.Fatalf("add comment failed: %v", err)
	}
	if comment.Text != "hi" || comment.AuthorID != "userA" {
		t.Fatalf("unexpected comment: %+v", comment)
	}
	if comment.ID == "" || comment.CreatedAt.IsZero() {
		t.Fatalf("expected server-assigned id and timestamp: %+v", comment)
	}
	if len(updated.Comments) != 1 || updated.Comments[0].ID != comment.ID {
		t.Fatalf("comment missing from post: %+v", updated.Comments)
	}
}

func TestAuthorizationInvariance(t *testing.T) {
	uc, _ := newPostUsecase()
	post, _ := uc.Create(context.Background(), "userA", "T", "C")
	_, comment, _ := uc.AddComment(context.Background(), "userA", post.ID, "hi")

	if _, err := uc.Edit(context.Background(), "userC", post.ID, "X", "Y"); !errors.Is(err, domain.ErrAuthorization) {
		t.Fatalf("edit by non-owner: expected authorization error, got %v", err)
	}
	if err := uc.Delete(context.Background(), "userC", post.ID); !errors.Is(err, domain.ErrAuthorization) {
		t.Fatalf("delete by non-owner: expected authorization error, got %v", err)
	}
	if _, err := uc.EditComment(context.Background(), "userC", post.ID, comment.ID, "edited"); !errors.Is(err, domain.ErrAuthorization) {
		t.Fatalf("edit comment by non-author: expected authorization error, got %v", err)
	}
	if _, err := uc.DeleteComment(context.Background(), "userC", post.ID, comment.ID); !errors.Is(err, domain.ErrAuthorization) {
		t.Fatalf("delete comment by non-author: expected authorization error, got %v", err)
	}
}

func TestEditCommentPreservesIdentity(t *testing.T) {
	uc, _ := newPostUsecase()
	post, _ := uc.Create(context.Background(), "userA", "T", "C")
	_, first, _ := uc.AddComment(context.Background(), "userA", post.ID, "one")
	_, second, _ := uc.AddComment(context.Background(), "userB", post.ID, "two")

	updated, err := uc.EditComment(context.Background(), "userB", post.ID, second.ID, "two edited")
	if err != nil {
		t.Fatalf("edit comment failed: %v", err)
	}

	if updated.Comments[0].ID != first.ID || updated.Comments[1].ID != second.ID {
		t.Fatalf("comment positions changed: %+v", updated.Comments)
	}
	if updated.Comments[1].Text != "two edited" {
		t.Fatalf("expected edited text, got %q", updated.Comments[1].Text)
	}
	if updated.Comments[1].AuthorID != "userB" {
		t.Fatalf("author changed: %+v", updated.Comments[1])
	}
}

func TestDeletePostTwice(t *testing.T) {
	uc, _ := newPostUsecase()
	post, _ := uc.Create(context.Background(), "userA", "T", "C")

	if err := uc.Delete(context.Background(), "userA", post.ID); err != nil {
		t.Fatalf("first delete failed: %v", err)
	}
	if err := uc.Delete(context.Background(), "userA", post.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second delete: expected not found, got %v", err)
	}
}

func TestEmptyCommentRejected(t *testing.T) {
	uc, _ := newPostUsecase()
	post, _ := uc.Create(context.Background(), "userA", "T", "C")

	if _, _, err := uc.AddComment(context.Background(), "userA", post.ID, "  "); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

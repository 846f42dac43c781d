package usecase

import (
	"context"

	"github.com/totegamma/liveboard"
	"github.com/totegamma/liveboard/internal/domain"
)

// PostRepository defines storage operations for posts. Every mutation is
// atomic against the single post document it targets.
type PostRepository interface {
	Create(ctx context.Context, post liveboard.Post) (liveboard.Post, error)
	Get(ctx context.Context, postID string) (liveboard.Post, error)
	List(ctx context.Context, offset, limit int) ([]liveboard.Post, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, postID, title, content string) (liveboard.Post, error)
	Delete(ctx context.Context, postID string) error
	ToggleLike(ctx context.Context, postID, userID string) (liveboard.Post, bool, error)
	AddComment(ctx context.Context, postID string, comment liveboard.Comment) (liveboard.Post, error)
	UpdateComment(ctx context.Context, postID, commentID, text string) (liveboard.Post, error)
	DeleteComment(ctx context.Context, postID, commentID string) (liveboard.Post, error)
}

// UserRepository defines persistence/lookup for accounts.
type UserRepository interface {
	Create(ctx context.Context, account domain.Account) error
	GetByUsername(ctx context.Context, username string) (domain.Account, error)
}

// Directory resolves principal IDs to usernames for read-side joins.
type Directory interface {
	Lookup(ctx context.Context, ids []string) (map[string]string, error)
}

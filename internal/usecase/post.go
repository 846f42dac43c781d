package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/totegamma/liveboard"
	"github.com/totegamma/liveboard/internal/domain"
)

var tracer = otel.Tracer("usecase")

// PostUsecase is the mutation service for posts. All validation and
// ownership checks happen before any write is attempted; atomicity of the
// write itself is the repository's contract.
type PostUsecase struct {
	repo      PostRepository
	directory Directory
}

func NewPostUsecase(repo PostRepository, directory Directory) *PostUsecase {
	return &PostUsecase{
		repo:      repo,
		directory: directory,
	}
}

// decorate fills author usernames on posts and their comments. The join is
// read-side only; usernames are never stored on the post.
func (uc *PostUsecase) decorate(ctx context.Context, posts ...*liveboard.Post) error {
	ids := []string{}
	seen := map[string]bool{}
	for _, post := range posts {
		if !seen[post.AuthorID] {
			seen[post.AuthorID] = true
			ids = append(ids, post.AuthorID)
		}
		for _, comment := range post.Comments {
			if !seen[comment.AuthorID] {
				seen[comment.AuthorID] = true
				ids = append(ids, comment.AuthorID)
			}
		}
	}
	if len(ids) == 0 {
		return nil
	}

	names, err := uc.directory.Lookup(ctx, ids)
	if err != nil {
		return err
	}

	for _, post := range posts {
		post.AuthorName = names[post.AuthorID]
		for i := range post.Comments {
			post.Comments[i].AuthorName = names[post.Comments[i].AuthorID]
		}
	}
	return nil
}

func (uc *PostUsecase) Create(ctx context.Context, principal, title, content string) (liveboard.Post, error) {
	ctx, span := tracer.Start(ctx, "Post.Usecase.Create")
	defer span.End()

	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return liveboard.Post{}, domain.ValidationError{Message: "Title and content are required"}
	}

	post, err := uc.repo.Create(ctx, liveboard.Post{
		ID:       uuid.New().String(),
		Title:    title,
		Content:  content,
		AuthorID: principal,
	})
	if err != nil {
		span.RecordError(err)
		return liveboard.Post{}, err
	}

	if err := uc.decorate(ctx, &post); err != nil {
		span.RecordError(err)
		return liveboard.Post{}, err
	}
	return post, nil
}

func (uc *PostUsecase) Get(ctx context.Context, postID string) (liveboard.Post, error) {
	post, err := uc.repo.Get(ctx, postID)
	if err != nil {
		return liveboard.Post{}, err
	}
	if err := uc.decorate(ctx, &post); err != nil {
		return liveboard.Post{}, err
	}
	return post, nil
}

func (uc *PostUsecase) List(ctx context.Context, page, limit int) ([]liveboard.Post, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	posts, err := uc.repo.List(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := uc.repo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	refs := make([]*liveboard.Post, len(posts))
	for i := range posts {
		refs[i] = &posts[i]
	}
	if err := uc.decorate(ctx, refs...); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (uc *PostUsecase) Edit(ctx context.Context, principal, postID, title, content string) (liveboard.Post, error) {
	ctx, span := tracer.Start(ctx, "Post.Usecase.Edit")
	defer span.End()

	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return liveboard.Post{}, domain.ValidationError{Message: "Title and content are required"}
	}

	post, err := uc.repo.Get(ctx, postID)
	if err != nil {
		return liveboard.Post{}, err
	}
	if post.AuthorID != principal {
		return liveboard.Post{}, domain.AuthorizationError{Message: "You can only edit your own posts"}
	}

	updated, err := uc.repo.Update(ctx, postID, title, content)
	if err != nil {
		span.RecordError(err)
		return liveboard.Post{}, err
	}
	if err := uc.decorate(ctx, &updated); err != nil {
		return liveboard.Post{}, err
	}
	return updated, nil
}

func (uc *PostUsecase) Delete(ctx context.Context, principal, postID string) error {
	ctx, span := tracer.Start(ctx, "Post.Usecase.Delete")
	defer span.End()

	post, err := uc.repo.Get(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != principal {
		return domain.AuthorizationError{Message: "You can only delete your own posts"}
	}

	err = uc.repo.Delete(ctx, postID)
	if err != nil {
		span.RecordError(err)
	}
	return err
}

// ToggleLike flips the principal's membership in the post's like set and
// reports true when the transition was "liked".
func (uc *PostUsecase) ToggleLike(ctx context.Context, principal, postID string) (liveboard.Post, bool, error) {
	ctx, span := tracer.Start(ctx, "Post.Usecase.ToggleLike")
	defer span.End()

	post, liked, err := uc.repo.ToggleLike(ctx, postID, principal)
	if err != nil {
		span.RecordError(err)
		return liveboard.Post{}, false, err
	}
	if err := uc.decorate(ctx, &post); err != nil {
		return liveboard.Post{}, false, err
	}
	return post, liked, nil
}

// AddComment appends a comment and returns both the updated post and the
// new comment alone, so the broadcast payload stays small.
func (uc *PostUsecase) AddComment(ctx context.Context, principal, postID, text string) (liveboard.Post, liveboard.Comment, error) {
	ctx, span := tracer.Start(ctx, "Post.Usecase.AddComment")
	defer span.End()

	if strings.TrimSpace(text) == "" {
		return liveboard.Post{}, liveboard.Comment{}, domain.ValidationError{Message: "Comment text is required"}
	}

	comment := liveboard.Comment{
		ID:        uuid.New().String(),
		Text:      text,
		AuthorID:  principal,
		CreatedAt: time.Now().UTC(),
	}

	post, err := uc.repo.AddComment(ctx, postID, comment)
	if err != nil {
		span.RecordError(err)
		return liveboard.Post{}, liveboard.Comment{}, err
	}
	if err := uc.decorate(ctx, &post); err != nil {
		return liveboard.Post{}, liveboard.Comment{}, err
	}

	for _, c := range post.Comments {
		if c.ID == comment.ID {
			comment = c
			break
		}
	}
	return post, comment, nil
}

func (uc *PostUsecase) EditComment(ctx context.Context, principal, postID, commentID, text string) (liveboard.Post, error) {
	ctx, span := tracer.Start(ctx, "Post.Usecase.EditComment")
	defer span.End()

	if strings.TrimSpace(text) == "" {
		return liveboard.Post{}, domain.ValidationError{Message: "Comment text is required"}
	}

	if err := uc.authorizeComment(ctx, principal, postID, commentID, "You can only edit your own comments"); err != nil {
		return liveboard.Post{}, err
	}

	post, err := uc.repo.UpdateComment(ctx, postID, commentID, text)
	if err != nil {
		span.RecordError(err)
		return liveboard.Post{}, err
	}
	if err := uc.decorate(ctx, &post); err != nil {
		return liveboard.Post{}, err
	}
	return post, nil
}

func (uc *PostUsecase) DeleteComment(ctx context.Context, principal, postID, commentID string) (liveboard.Post, error) {
	ctx, span := tracer.Start(ctx, "Post.Usecase.DeleteComment")
	defer span.End()

	if err := uc.authorizeComment(ctx, principal, postID, commentID, "You can only delete your own comments"); err != nil {
		return liveboard.Post{}, err
	}

	post, err := uc.repo.DeleteComment(ctx, postID, commentID)
	if err != nil {
		span.RecordError(err)
		return liveboard.Post{}, err
	}
	if err := uc.decorate(ctx, &post); err != nil {
		return liveboard.Post{}, err
	}
	return post, nil
}

// authorizeComment verifies the post and comment exist and the principal
// authored the comment. Author IDs are immutable, so the check cannot be
// invalidated between here and the write.
func (uc *PostUsecase) authorizeComment(ctx context.Context, principal, postID, commentID, denied string) error {
	post, err := uc.repo.Get(ctx, postID)
	if err != nil {
		return err
	}
	for _, comment := range post.Comments {
		if comment.ID == commentID {
			if comment.AuthorID != principal {
				return domain.AuthorizationError{Message: denied}
			}
			return nil
		}
	}
	return domain.NotFoundError{Resource: "Comment"}
}

package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/totegamma/liveboard"
	"github.com/totegamma/liveboard/internal/domain"
	"github.com/totegamma/liveboard/internal/infra/database/models"
)

// PostRepository is the document store adapter for posts. Every mutation
// runs in a transaction that locks the post row before touching likes or
// comments, so concurrent mutations of one post serialize per key while
// distinct posts proceed independently.
type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

func wrapStorage(err error) error {
	if err == nil {
		return nil
	}
	if err == gorm.ErrRecordNotFound {
		return domain.NotFoundError{Resource: "Post"}
	}
	if err == context.DeadlineExceeded || err == context.Canceled {
		return err
	}
	return domain.StorageError{Cause: err}
}

func toWirePost(m models.Post) liveboard.Post {
	likes := make([]string, 0, len(m.Likes))
	for _, l := range m.Likes {
		likes = append(likes, l.UserID)
	}
	comments := make([]liveboard.Comment, 0, len(m.Comments))
	for _, c := range m.Comments {
		comments = append(comments, liveboard.Comment{
			ID:        c.ID,
			Text:      c.Text,
			AuthorID:  c.AuthorID,
			CreatedAt: c.CDate,
		})
	}
	return liveboard.Post{
		ID:        m.ID,
		Title:     m.Title,
		Content:   m.Content,
		AuthorID:  m.AuthorID,
		CreatedAt: m.CDate,
		Likes:     likes,
		Comments:  comments,
	}
}

func loadPost(tx *gorm.DB, postID string) (models.Post, error) {
	var post models.Post
	err := tx.
		Preload("Likes", func(db *gorm.DB) *gorm.DB {
			return db.Order("post_likes.c_date ASC")
		}).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.num ASC")
		}).
		Take(&post, "id = ?", postID).Error
	return post, err
}

func (r *PostRepository) Create(ctx context.Context, post liveboard.Post) (liveboard.Post, error) {
	record := models.Post{
		ID:       post.ID,
		Title:    post.Title,
		Content:  post.Content,
		AuthorID: post.AuthorID,
		CDate:    time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return liveboard.Post{}, wrapStorage(err)
	}
	return toWirePost(record), nil
}

func (r *PostRepository) Get(ctx context.Context, postID string) (liveboard.Post, error) {
	post, err := loadPost(r.db.WithContext(ctx), postID)
	if err != nil {
		return liveboard.Post{}, wrapStorage(err)
	}
	return toWirePost(post), nil
}

// List returns posts sorted by creation time descending.
func (r *PostRepository) List(ctx context.Context, offset, limit int) ([]liveboard.Post, error) {
	var records []models.Post
	err := r.db.WithContext(ctx).
		Preload("Likes", func(db *gorm.DB) *gorm.DB {
			return db.Order("post_likes.c_date ASC")
		}).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.num ASC")
		}).
		Order("c_date DESC").
		Offset(offset).
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, wrapStorage(err)
	}
	posts := make([]liveboard.Post, 0, len(records))
	for _, rec := range records {
		posts = append(posts, toWirePost(rec))
	}
	return posts, nil
}

func (r *PostRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&total).Error
	if err != nil {
		return 0, wrapStorage(err)
	}
	return total, nil
}

func (r *PostRepository) Update(ctx context.Context, postID, title, content string) (liveboard.Post, error) {
	var updated models.Post
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Take(&post, "id = ?", postID).Error; err != nil {
			return err
		}

		if err := tx.Model(&post).Updates(map[string]any{
			"title":   title,
			"content": content,
		}).Error; err != nil {
			return err
		}

		var err error
		updated, err = loadPost(tx, postID)
		return err
	})
	if err != nil {
		return liveboard.Post{}, wrapStorage(err)
	}
	return toWirePost(updated), nil
}

func (r *PostRepository) Delete(ctx context.Context, postID string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Take(&post, "id = ?", postID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.PostLike{}, "post_id = ?", postID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Comment{}, "post_id = ?", postID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, "id = ?", postID).Error
	})
	return wrapStorage(err)
}

// ToggleLike flips the principal's membership in the post's like set.
// Returns the updated post and true if the transition was "liked".
func (r *PostRepository) ToggleLike(ctx context.Context, postID, userID string) (liveboard.Post, bool, error) {
	var updated models.Post
	var liked bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Take(&post, "id = ?", postID).Error; err != nil {
			return err
		}

		res := tx.Where("post_id = ? AND user_id = ?", postID, userID).
			Delete(&models.PostLike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			liked = true
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&models.PostLike{
					PostID: postID,
					UserID: userID,
					CDate:  time.Now().UTC(),
				}).Error; err != nil {
				return err
			}
		}

		var err error
		updated, err = loadPost(tx, postID)
		return err
	})
	if err != nil {
		return liveboard.Post{}, false, wrapStorage(err)
	}
	return toWirePost(updated), liked, nil
}

// AddComment appends the comment and returns the updated post.
func (r *PostRepository) AddComment(ctx context.Context, postID string, comment liveboard.Comment) (liveboard.Post, error) {
	var updated models.Post
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Take(&post, "id = ?", postID).Error; err != nil {
			return err
		}

		record := models.Comment{
			ID:       comment.ID,
			PostID:   postID,
			AuthorID: comment.AuthorID,
			Text:     comment.Text,
			CDate:    comment.CreatedAt,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		var err error
		updated, err = loadPost(tx, postID)
		return err
	})
	if err != nil {
		return liveboard.Post{}, wrapStorage(err)
	}
	return toWirePost(updated), nil
}

func (r *PostRepository) UpdateComment(ctx context.Context, postID, commentID, text string) (liveboard.Post, error) {
	var updated models.Post
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Take(&post, "id = ?", postID).Error; err != nil {
			return err
		}

		res := tx.Model(&models.Comment{}).
			Where("id = ? AND post_id = ?", commentID, postID).
			Update("text", text)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.NotFoundError{Resource: "Comment"}
		}

		var err error
		updated, err = loadPost(tx, postID)
		return err
	})
	if err != nil {
		if _, ok := err.(domain.NotFoundError); ok {
			return liveboard.Post{}, err
		}
		return liveboard.Post{}, wrapStorage(err)
	}
	return toWirePost(updated), nil
}

func (r *PostRepository) DeleteComment(ctx context.Context, postID, commentID string) (liveboard.Post, error) {
	var updated models.Post
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Take(&post, "id = ?", postID).Error; err != nil {
			return err
		}

		res := tx.Where("id = ? AND post_id = ?", commentID, postID).
			Delete(&models.Comment{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.NotFoundError{Resource: "Comment"}
		}

		var err error
		updated, err = loadPost(tx, postID)
		return err
	})
	if err != nil {
		if _, ok := err.(domain.NotFoundError); ok {
			return liveboard.Post{}, err
		}
		return liveboard.Post{}, wrapStorage(err)
	}
	return toWirePost(updated), nil
}

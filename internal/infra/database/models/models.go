package models

import (
	"time"
)

type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:text"`
	Username     string    `json:"username" gorm:"type:text;index:user_username,unique"`
	PasswordHash string    `json:"-" gorm:"type:text"`
	CDate        time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type Post struct {
	ID       string     `json:"id" gorm:"primaryKey;type:text"`
	Title    string     `json:"title" gorm:"type:text"`
	Content  string     `json:"content" gorm:"type:text"`
	AuthorID string     `json:"authorId" gorm:"type:text;index"`
	Likes    []PostLike `json:"likes" gorm:"constraint:OnDelete:CASCADE;"`
	Comments []Comment  `json:"comments" gorm:"constraint:OnDelete:CASCADE;"`
	CDate    time.Time  `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp();index"`
}

// PostLike is one principal's membership in a post's like set. The
// composite primary key makes duplicate membership unrepresentable.
type PostLike struct {
	PostID string    `json:"postId" gorm:"type:text;primaryKey"`
	UserID string    `json:"userId" gorm:"type:text;primaryKey"`
	CDate  time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

// Comment rows keep creation order through Num; deleting a row leaves the
// remaining order intact.
type Comment struct {
	ID       string    `json:"id" gorm:"primaryKey;type:text"`
	Num      int64     `json:"-" gorm:"autoIncrement;index"`
	PostID   string    `json:"postId" gorm:"type:text;index"`
	AuthorID string    `json:"authorId" gorm:"type:text"`
	Text     string    `json:"text" gorm:"type:text"`
	CDate    time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

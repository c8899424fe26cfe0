package models

import "time"

// Post is a discussion thread tagged with exactly one language.
type Post struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"userId"`
	User       *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	LanguageID uint      `gorm:"not null;index" json:"languageId"`
	Language   *Language `gorm:"foreignKey:LanguageID;constraint:OnDelete:CASCADE" json:"-"`
	Title      string    `gorm:"size:255;not null" json:"title"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
}

// Reply is a comment on a post.
type Reply struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"userId"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	PostID    uint      `gorm:"not null;index" json:"postId"`
	Post      *Post     `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

// PostSummary is the denormalized listing row: author, language and derived counts.
type PostSummary struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Language  string    `json:"language"`
	Votes     int64     `json:"votes"`
	Comments  int64     `json:"comments"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

// PostDetail is a single post with its body and ownership columns.
type PostDetail struct {
	ID         uint      `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	LanguageID uint      `json:"languageId"`
	Language   string    `json:"language"`
	AuthorID   uint      `json:"authorId"`
	Author     string    `json:"author"`
	Votes      int64     `json:"votes"`
	Comments   int64     `json:"comments"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Comment is a reply joined with its author and net votes.
type Comment struct {
	ID        uint      `json:"id"`
	PostID    uint      `json:"postId"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	Votes     int64     `json:"votes"`
	CreatedAt time.Time `json:"createdAt"`
}

package blogservice

import (
	"database/sql"
	"time"

	"github.com/avrm/blogward/internal/common"
	"github.com/avrm/blogward/internal/readmodel"
)

type Post struct {
	ID         int        `json:"id"`
	Title      string     `json:"title"`
	Slug       string     `json:"url"`
	AuthorID   int        `json:"author_id"`
	CategoryID *int       `json:"category_id"`
	VideoID    *int       `json:"video_id"`
	Body       string     `json:"body"`
	Image      string     `json:"image"`
	Publish    time.Time  `json:"publish"`
	Draft      bool       `json:"draft"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type Comment struct {
	ID       int
	PostID   int
	ParentID *int
	Name     string
	Email    string
	Text     string
}

type postModel struct {
	db  *sql.DB
	now func() time.Time
}

// BlogService is the write path for posts, comments and videos. Every
// mutation drives the read model's invalidator and cleans up orphaned media
// files.
type BlogService struct {
	m     *postModel
	inv   readmodel.Invalidator
	files common.FileStore
}

package blogservice

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/avrm/blogward/internal/common"
)

var (
	ErrDuplicateSlug    = errors.New("duplicate post url")
	ErrAuthorNotFound   = errors.New("author not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrVideoNotFound    = errors.New("video not found")
	ErrVideoTaken       = errors.New("video already attached to another post")
)

// constraintViolation reports whether the error is a unique (23505) or
// foreign key (23503) violation on the named constraint.
func constraintViolation(err error, name string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if (pqErr.Code == "23505" || pqErr.Code == "23503") && pqErr.Constraint == name {
			return true
		}
	}

	return false
}

func postWriteError(err error) error {
	switch {
	case constraintViolation(err, "posts_slug_key"):
		return ErrDuplicateSlug
	case constraintViolation(err, "posts_author_id_fkey"):
		return ErrAuthorNotFound
	case constraintViolation(err, "posts_category_id_fkey"):
		return ErrCategoryNotFound
	case constraintViolation(err, "posts_video_id_fkey"):
		return ErrVideoNotFound
	case constraintViolation(err, "posts_video_id_key"):
		return ErrVideoTaken
	default:
		return err
	}
}

func (m *postModel) insert(ctx context.Context, post *Post) error {
	query := `
		INSERT INTO posts (title, slug, author_id, category_id, video_id, body, image, publish, draft)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	args := []any{post.Title, post.Slug, post.AuthorID, post.CategoryID, post.VideoID, post.Body, post.Image, post.Publish, post.Draft}

	err := m.db.QueryRowContext(ctx, query, args...).Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return postWriteError(err)
	}

	return nil
}

func (m *postModel) getBySlug(ctx context.Context, slug string) (*Post, error) {
	query := `
		SELECT id, title, slug, author_id, category_id, video_id, body, image, publish, draft, created_at, updated_at
		FROM posts
		WHERE slug = $1`

	var (
		post       Post
		categoryID sql.NullInt64
		videoID    sql.NullInt64
	)

	err := m.db.QueryRowContext(ctx, query, slug).Scan(&post.ID, &post.Title, &post.Slug, &post.AuthorID, &categoryID, &videoID, &post.Body, &post.Image, &post.Publish, &post.Draft, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrRecordNotFound
		default:
			return nil, err
		}
	}

	if categoryID.Valid {
		id := int(categoryID.Int64)
		post.CategoryID = &id
	}
	if videoID.Valid {
		id := int(videoID.Int64)
		post.VideoID = &id
	}

	return &post, nil
}

func (m *postModel) update(ctx context.Context, post *Post) error {
	query := `
		UPDATE posts
		SET title = $1, category_id = $2, video_id = $3, body = $4, image = $5, publish = $6, draft = $7, updated_at = now()
		WHERE id = $8
		RETURNING updated_at`

	args := []any{post.Title, post.CategoryID, post.VideoID, post.Body, post.Image, post.Publish, post.Draft, post.ID}

	err := m.db.QueryRowContext(ctx, query, args...).Scan(&post.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return common.ErrRecordNotFound
		default:
			return postWriteError(err)
		}
	}

	return nil
}

func (m *postModel) delete(ctx context.Context, id int) error {
	res, err := m.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return common.ErrRecordNotFound
	}

	return nil
}

// liveID resolves a slug to a post id, visible posts only.
func (m *postModel) liveID(ctx context.Context, slug string) (int, error) {
	var id int
	err := m.db.QueryRowContext(ctx, `
		SELECT id
		FROM posts
		WHERE slug = $1 AND draft = false AND publish <= $2`, slug, m.now()).Scan(&id)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return 0, common.ErrRecordNotFound
		default:
			return 0, err
		}
	}

	return id, nil
}

func (m *postModel) parentComment(ctx context.Context, id int) (postID int, parentID *int, err error) {
	var parent sql.NullInt64
	err = m.db.QueryRowContext(ctx, `
		SELECT post_id, parent_id
		FROM comments
		WHERE id = $1`, id).Scan(&postID, &parent)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return 0, nil, common.ErrRecordNotFound
		default:
			return 0, nil, err
		}
	}

	if parent.Valid {
		p := int(parent.Int64)
		parentID = &p
	}

	return postID, parentID, nil
}

func (m *postModel) insertComment(ctx context.Context, c *Comment) error {
	query := `
		INSERT INTO comments (post_id, parent_id, name, email, text)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := m.db.QueryRowContext(ctx, query, c.PostID, c.ParentID, c.Name, c.Email, c.Text).Scan(&c.ID)
	if err != nil {
		return err
	}

	return nil
}

// deleteVideo removes the video row and returns its file name and the slug of
// the post it was attached to, if any. The post keeps its row: video_id is set
// to NULL by the foreign key.
func (m *postModel) deleteVideo(ctx context.Context, id int) (file, slug string, err error) {
	err = m.db.QueryRowContext(ctx, `
		SELECT v.file, COALESCE(p.slug, '')
		FROM videos v
		LEFT JOIN posts p ON p.video_id = v.id
		WHERE v.id = $1`, id).Scan(&file, &slug)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return "", "", common.ErrRecordNotFound
		default:
			return "", "", err
		}
	}

	_, err = m.db.ExecContext(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return "", "", err
	}

	return file, slug, nil
}

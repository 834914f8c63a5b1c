package blogservice

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/avrm/blogward/internal/common"
	"github.com/avrm/blogward/internal/readmodel"
)

func NewBlogService(db *sql.DB, inv readmodel.Invalidator, files common.FileStore) *BlogService {
	return &BlogService{
		m:     &postModel{db: db, now: time.Now},
		inv:   inv,
		files: files,
	}
}

// NewBlogServiceAt pins the clock used by the liveness checks.
func NewBlogServiceAt(db *sql.DB, inv readmodel.Invalidator, files common.FileStore, now func() time.Time) *BlogService {
	return &BlogService{
		m:     &postModel{db: db, now: now},
		inv:   inv,
		files: files,
	}
}

type CreatePostRequest struct {
	Title      string     `json:"title"`
	Slug       string     `json:"url"`
	AuthorID   int        `json:"author_id"`
	CategoryID *int       `json:"category_id"`
	VideoID    *int       `json:"video_id"`
	Body       string     `json:"body"`
	Image      string     `json:"image"`
	Publish    *time.Time `json:"publish"`
	Draft      bool       `json:"draft"`
}

type UpdatePostRequest struct {
	Title      string     `json:"title"`
	CategoryID *int       `json:"category_id"`
	VideoID    *int       `json:"video_id"`
	Body       string     `json:"body"`
	Image      string     `json:"image"`
	Publish    *time.Time `json:"publish"`
	Draft      bool       `json:"draft"`
}

type AddCommentRequest struct {
	Slug     string `json:"url"`
	ParentID *int   `json:"parent_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Text     string `json:"text"`
}

func (s *BlogService) CreatePost(ctx context.Context, req *CreatePostRequest) (*Post, error) {
	v := common.NewValidator()
	validateTitle(v, req.Title)
	validateSlug(v, req.Slug)
	validateBody(v, req.Body)
	validateInt(v, req.AuthorID, "author_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	post := &Post{
		Title:      req.Title,
		Slug:       req.Slug,
		AuthorID:   req.AuthorID,
		CategoryID: req.CategoryID,
		VideoID:    req.VideoID,
		Body:       sanitizeBody(req.Body),
		Image:      req.Image,
		Publish:    s.m.now(),
		Draft:      req.Draft,
	}
	if req.Publish != nil {
		post.Publish = *req.Publish
	}

	if err := s.m.insert(ctx, post); err != nil {
		return nil, err
	}

	if s.isLive(post) {
		s.inv.PostContentChanged(post.Slug)
	}

	return post, nil
}

func (s *BlogService) UpdatePost(ctx context.Context, slug string, req *UpdatePostRequest) (*Post, error) {
	v := common.NewValidator()
	validateTitle(v, req.Title)
	validateBody(v, req.Body)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	old, err := s.m.getBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	post := &Post{
		ID:         old.ID,
		Title:      req.Title,
		Slug:       old.Slug,
		AuthorID:   old.AuthorID,
		CategoryID: req.CategoryID,
		VideoID:    req.VideoID,
		Body:       sanitizeBody(req.Body),
		Image:      req.Image,
		Publish:    old.Publish,
		Draft:      req.Draft,
		CreatedAt:  old.CreatedAt,
	}
	if req.Publish != nil {
		post.Publish = *req.Publish
	}

	if err := s.m.update(ctx, post); err != nil {
		return nil, err
	}

	// the row has already been updated, so a missing old image is not a
	// reason to fail the request
	if old.Image != "" && old.Image != post.Image {
		_ = s.files.Remove(old.Image)
	}

	if !s.isLive(post) {
		s.inv.PostRemovedFromPublicView(readmodel.PostRef{
			Slug:     post.Slug,
			AuthorID: post.AuthorID,
			HasVideo: old.VideoID != nil,
		})
	} else {
		s.inv.PostContentChanged(post.Slug)
	}

	return post, nil
}

func (s *BlogService) DeletePost(ctx context.Context, slug string) error {
	post, err := s.m.getBySlug(ctx, slug)
	if err != nil {
		return err
	}

	if err := s.m.delete(ctx, post.ID); err != nil {
		return err
	}

	s.inv.PostRemovedFromPublicView(readmodel.PostRef{
		Slug:     post.Slug,
		AuthorID: post.AuthorID,
		HasVideo: post.VideoID != nil,
	})

	_ = s.files.Remove(post.Image)

	return nil
}

// AddComment attaches a comment to a visible post. Replies are allowed one
// level deep and the parent must belong to the same post.
func (s *BlogService) AddComment(ctx context.Context, req *AddCommentRequest) (*Comment, error) {
	v := common.NewValidator()
	v.Check(req.Slug != "", "url", "must be provided")
	validateComment(v, req.Name, req.Email, req.Text)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	postID, err := s.m.liveID(ctx, req.Slug)
	if err != nil {
		return nil, err
	}

	if req.ParentID != nil {
		parentPostID, parentParentID, err := s.m.parentComment(ctx, *req.ParentID)
		switch {
		case err == nil:
		case errors.Is(err, common.ErrRecordNotFound):
			v.AddError("parent_id", "does not exist")
		default:
			return nil, err
		}

		if v.Valid() {
			if parentPostID != postID {
				v.AddError("parent_id", "must belong to the same post")
			}
			if parentParentID != nil {
				v.AddError("parent_id", "replies cannot be nested further")
			}
		}
		if !v.Valid() {
			return nil, v.ValidationError()
		}
	}

	comment := &Comment{
		PostID:   postID,
		ParentID: req.ParentID,
		Name:     req.Name,
		Email:    req.Email,
		Text:     sanitizeComment(req.Text),
	}

	if err := s.m.insertComment(ctx, comment); err != nil {
		return nil, err
	}

	s.inv.CommentAdded(req.Slug)

	return comment, nil
}

func (s *BlogService) DeleteVideo(ctx context.Context, id int) error {
	v := common.NewValidator()
	validateInt(v, id, "id")
	if !v.Valid() {
		return v.ValidationError()
	}

	file, slug, err := s.m.deleteVideo(ctx, id)
	if err != nil {
		return err
	}

	s.inv.VideoRemoved()
	if slug != "" {
		s.inv.PostContentChanged(slug)
	}

	_ = s.files.Remove(file)

	return nil
}

func (s *BlogService) isLive(post *Post) bool {
	return !post.Draft && !post.Publish.After(s.m.now())
}

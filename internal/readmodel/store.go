package readmodel

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/avrm/blogward/internal/common"
)

// Store executes the query shapes of the read model against postgres. All
// post-derived views apply the liveness filter: draft = false and
// publish <= now.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// NewStoreAt pins the clock used by the liveness filter.
func NewStoreAt(db *sql.DB, now func() time.Time) *Store {
	return &Store{db: db, now: now}
}

// Resolve dispatches a logical key to its builder. Unknown keys fail fast.
func (s *Store) Resolve(ctx context.Context, key QueryKey, p Params) (any, error) {
	switch key {
	case KeyPostsList:
		return s.postsList(ctx)
	case KeyPostDetail:
		return s.postDetail(ctx, p.Slug)
	case KeyCategoriesList:
		return s.categoriesList(ctx)
	case KeyVideosList:
		return s.videosList(ctx)
	case KeyAbout:
		return s.about(ctx)
	case KeyAuthorsList:
		return s.authorsList(ctx)
	case KeyAuthorDetail:
		return s.authorDetail(ctx, p.AuthorID)
	case KeyTopPosts:
		return s.topPosts(ctx)
	case KeyLastPosts:
		return s.lastPosts(ctx)
	case KeyAllTags:
		return s.topTags(ctx)
	case KeyPostsCalendar:
		return s.postsCalendar(ctx, p.Year, p.Month)
	case KeyRatingDetail:
		return s.ratingDetail(ctx, p.IP, p.Slug)
	case KeyMarkDetail:
		return s.markDetail(ctx, p.MarkID)
	case KeyCommentsList:
		return s.commentsList(ctx, p.Slug)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownQueryKey, key)
	}
}

const postSummaryQuery = `
	SELECT p.id, p.title, p.slug, p.body, p.image, p.publish, COALESCE(c.name, ''), u.id, u.username,
		(SELECT COUNT(*) FROM comments cm WHERE cm.post_id = p.id AND cm.active)
	FROM posts p
	JOIN users u ON p.author_id = u.id
	LEFT JOIN categories c ON p.category_id = c.id`

func (s *Store) scanPostSummaries(rows *sql.Rows) ([]PostSummary, error) {
	var posts []PostSummary
	for rows.Next() {
		var p PostSummary
		err := rows.Scan(&p.ID, &p.Title, &p.Slug, &p.Body, &p.Image, &p.Publish, &p.Category, &p.Author.ID, &p.Author.Username, &p.CommentCount)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return posts, nil
}

// attachTags fills the Tags field of each summary with a single batched query.
func (s *Store) attachTags(ctx context.Context, posts []PostSummary) error {
	if len(posts) == 0 {
		return nil
	}

	ids := make([]int64, len(posts))
	byID := make(map[int]*PostSummary, len(posts))
	for i := range posts {
		ids[i] = int64(posts[i].ID)
		byID[posts[i].ID] = &posts[i]
	}

	query := `
		SELECT pt.post_id, t.name, t.slug
		FROM post_tags pt
		JOIN tags t ON pt.tag_id = t.id
		WHERE pt.post_id = ANY($1)
		ORDER BY t.name`

	rows, err := s.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var postID int
		var tag TagItem
		if err := rows.Scan(&postID, &tag.Name, &tag.Slug); err != nil {
			return err
		}
		if p, ok := byID[postID]; ok {
			p.Tags = append(p.Tags, tag)
		}
	}

	return rows.Err()
}

func (s *Store) postsList(ctx context.Context) ([]PostSummary, error) {
	query := postSummaryQuery + `
	WHERE p.draft = false AND p.publish <= $1
	ORDER BY p.publish DESC, p.id DESC`

	rows, err := s.db.QueryContext(ctx, query, s.now())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts, err := s.scanPostSummaries(rows)
	if err != nil {
		return nil, err
	}

	if err := s.attachTags(ctx, posts); err != nil {
		return nil, err
	}

	return posts, nil
}

func (s *Store) postDetail(ctx context.Context, slug string) (*PostDetail, error) {
	query := `
		SELECT p.id, p.title, p.slug, p.body, p.image, p.publish, COALESCE(c.name, ''), u.id, u.username,
			v.id, v.title, v.file,
			(SELECT COUNT(*) FROM comments cm WHERE cm.post_id = p.id AND cm.active)
		FROM posts p
		JOIN users u ON p.author_id = u.id
		LEFT JOIN categories c ON p.category_id = c.id
		LEFT JOIN videos v ON p.video_id = v.id
		WHERE p.slug = $1 AND p.draft = false AND p.publish <= $2`

	row := s.db.QueryRowContext(ctx, query, slug, s.now())

	var detail PostDetail
	var videoID sql.NullInt64
	var videoTitle, videoFile sql.NullString

	err := row.Scan(&detail.ID, &detail.Title, &detail.Slug, &detail.Body, &detail.Image, &detail.Publish, &detail.Category,
		&detail.Author.ID, &detail.Author.Username, &videoID, &videoTitle, &videoFile, &detail.CommentCount)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrRecordNotFound
		default:
			return nil, err
		}
	}

	if videoID.Valid {
		detail.Video = &VideoRef{ID: int(videoID.Int64), Title: videoTitle.String, File: videoFile.String}
	}

	detail.BodyHTML, err = renderMarkdown(detail.Body)
	if err != nil {
		return nil, err
	}

	comments, err := s.commentsForPost(ctx, detail.ID)
	if err != nil {
		return nil, err
	}
	detail.Comments = comments

	summaries := []PostSummary{detail.PostSummary}
	if err := s.attachTags(ctx, summaries); err != nil {
		return nil, err
	}
	detail.Tags = summaries[0].Tags

	return &detail, nil
}

func (s *Store) categoriesList(ctx context.Context) ([]CategoryItem, error) {
	query := `
		SELECT id, name, description, slug
		FROM categories
		ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []CategoryItem
	for rows.Next() {
		var c CategoryItem
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Slug); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

func (s *Store) videosList(ctx context.Context) ([]VideoItem, error) {
	query := `
		SELECT v.id, v.title, v.description, v.file, v.created_at, p.slug, p.title, u.id, u.username,
			(SELECT COUNT(*) FROM comments cm WHERE cm.post_id = p.id AND cm.active)
		FROM videos v
		JOIN posts p ON p.video_id = v.id
		JOIN users u ON p.author_id = u.id
		WHERE p.draft = false AND p.publish <= $1
		ORDER BY v.created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, s.now())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []VideoItem
	for rows.Next() {
		var v VideoItem
		err := rows.Scan(&v.ID, &v.Title, &v.Description, &v.File, &v.CreatedAt, &v.PostSlug, &v.PostTitle, &v.Author.ID, &v.Author.Username, &v.CommentCount)
		if err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}

	return videos, rows.Err()
}

// about serves the "about us" singleton.
func (s *Store) about(ctx context.Context) (*AboutInfo, error) {
	query := `
		SELECT description, email_contact, phone1_num, phone2_num, address, latitude, longitude
		FROM about
		ORDER BY id
		LIMIT 1`

	var a AboutInfo
	err := s.db.QueryRowContext(ctx, query).Scan(&a.Description, &a.EmailContact, &a.Phone1, &a.Phone2, &a.Address, &a.Latitude, &a.Longitude)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &a, nil
}

func (s *Store) authorsList(ctx context.Context) ([]AuthorCard, error) {
	query := `
		SELECT id, username, image, description
		FROM users
		ORDER BY username`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var authors []AuthorCard
	for rows.Next() {
		var a AuthorCard
		if err := rows.Scan(&a.ID, &a.Username, &a.Image, &a.Description); err != nil {
			return nil, err
		}
		authors = append(authors, a)
	}

	return authors, rows.Err()
}

// authorDetail includes the live-post count and the author's last three live
// posts.
func (s *Store) authorDetail(ctx context.Context, id int) (*AuthorDetail, error) {
	now := s.now()

	query := `
		SELECT u.id, u.username, u.image, u.description, u.user_rating,
			(SELECT COUNT(*) FROM posts p WHERE p.author_id = u.id AND p.draft = false AND p.publish <= $2)
		FROM users u
		WHERE u.id = $1`

	var detail AuthorDetail
	err := s.db.QueryRowContext(ctx, query, id, now).Scan(&detail.ID, &detail.Username, &detail.Image, &detail.Description, &detail.Rating, &detail.PostCount)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrRecordNotFound
		default:
			return nil, err
		}
	}

	postsQuery := postSummaryQuery + `
	WHERE p.author_id = $1 AND p.draft = false AND p.publish <= $2
	ORDER BY p.publish DESC, p.id DESC
	LIMIT 3`

	rows, err := s.db.QueryContext(ctx, postsQuery, id, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts, err := s.scanPostSummaries(rows)
	if err != nil {
		return nil, err
	}

	if err := s.attachTags(ctx, posts); err != nil {
		return nil, err
	}
	detail.LastPosts = posts

	return &detail, nil
}

// topPosts returns the three live posts with the highest aggregate mark sum.
func (s *Store) topPosts(ctx context.Context) ([]PostSummary, error) {
	query := postSummaryQuery + `
	WHERE p.draft = false AND p.publish <= $1
	ORDER BY COALESCE((SELECT SUM(m.value) FROM ratings r JOIN marks m ON r.mark_id = m.id WHERE r.post_id = p.id), 0) DESC, p.id
	LIMIT 3`

	rows, err := s.db.QueryContext(ctx, query, s.now())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts, err := s.scanPostSummaries(rows)
	if err != nil {
		return nil, err
	}

	if err := s.attachTags(ctx, posts); err != nil {
		return nil, err
	}

	return posts, nil
}

func (s *Store) lastPosts(ctx context.Context) ([]PostSummary, error) {
	query := postSummaryQuery + `
	WHERE p.draft = false AND p.publish <= $1
	ORDER BY p.publish DESC, p.id DESC
	LIMIT 3`

	rows, err := s.db.QueryContext(ctx, query, s.now())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts, err := s.scanPostSummaries(rows)
	if err != nil {
		return nil, err
	}

	if err := s.attachTags(ctx, posts); err != nil {
		return nil, err
	}

	return posts, nil
}

// topTags ranks the ten most used tags among live posts.
func (s *Store) topTags(ctx context.Context) ([]TagCount, error) {
	query := `
		SELECT t.name, t.slug, COUNT(p.id)
		FROM tags t
		LEFT JOIN post_tags pt ON pt.tag_id = t.id
		LEFT JOIN posts p ON p.id = pt.post_id AND p.draft = false AND p.publish <= $1
		GROUP BY t.id
		ORDER BY COUNT(p.id) DESC, t.name
		LIMIT 10`

	rows, err := s.db.QueryContext(ctx, query, s.now())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []TagCount
	for rows.Next() {
		var t TagCount
		if err := rows.Scan(&t.Name, &t.Slug, &t.PostCount); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}

	return tags, rows.Err()
}

// postsCalendar returns the distinct days of the given month that have a live
// publication, formatted as YYYY-MM-DD.
func (s *Store) postsCalendar(ctx context.Context, year, month int) ([]string, error) {
	query := `
		SELECT DISTINCT publish::date AS day
		FROM posts
		WHERE draft = false AND publish <= $1
			AND EXTRACT(YEAR FROM publish) = $2 AND EXTRACT(MONTH FROM publish) = $3
		ORDER BY day`

	rows, err := s.db.QueryContext(ctx, query, s.now(), year, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []string
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return nil, err
		}
		days = append(days, day.Format("2006-01-02"))
	}

	return days, rows.Err()
}

// ratingDetail is the strict per-IP vote lookup used for rating display.
func (s *Store) ratingDetail(ctx context.Context, ip, slug string) (*RatingInfo, error) {
	query := `
		SELECT r.id, m.id, m.nomination, m.value, r.post_id
		FROM ratings r
		JOIN marks m ON r.mark_id = m.id
		JOIN posts p ON r.post_id = p.id
		WHERE r.ip = $1 AND p.slug = $2`

	var info RatingInfo
	err := s.db.QueryRowContext(ctx, query, ip, slug).Scan(&info.ID, &info.Mark.ID, &info.Mark.Nomination, &info.Mark.Value, &info.PostID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &info, nil
}

func (s *Store) markDetail(ctx context.Context, id int) (*MarkInfo, error) {
	query := `
		SELECT id, nomination, value
		FROM marks
		WHERE id = $1`

	var mark MarkInfo
	err := s.db.QueryRowContext(ctx, query, id).Scan(&mark.ID, &mark.Nomination, &mark.Value)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &mark, nil
}

func (s *Store) commentsList(ctx context.Context, slug string) ([]CommentItem, error) {
	query := `
		SELECT id
		FROM posts
		WHERE slug = $1 AND draft = false AND publish <= $2`

	var postID int
	err := s.db.QueryRowContext(ctx, query, slug, s.now()).Scan(&postID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return s.commentsForPost(ctx, postID)
}

// commentsForPost assembles the two-level comment tree of a post. Nesting is
// capped at two levels on the write path, so one pass over the parent ids is
// enough.
func (s *Store) commentsForPost(ctx context.Context, postID int) ([]CommentItem, error) {
	query := `
		SELECT id, parent_id, name, text, created_at
		FROM comments
		WHERE post_id = $1 AND active
		ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type row struct {
		item   CommentItem
		parent sql.NullInt64
	}

	var all []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.item.ID, &r.parent, &r.item.Name, &r.item.Text, &r.item.CreatedAt); err != nil {
			return nil, err
		}
		all = append(all, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	roots := make([]CommentItem, 0, len(all))
	index := make(map[int]int, len(all))
	for _, r := range all {
		if !r.parent.Valid {
			roots = append(roots, r.item)
			index[r.item.ID] = len(roots) - 1
		}
	}
	for _, r := range all {
		if r.parent.Valid {
			if i, ok := index[int(r.parent.Int64)]; ok {
				roots[i].Children = append(roots[i].Children, r.item)
			}
		}
	}

	return roots, nil
}

// PostsByTag filters live posts by tag slug. An empty result is a successful
// no-content outcome, not an error.
func (s *Store) PostsByTag(ctx context.Context, tagSlug string) ([]PostSummary, error) {
	query := postSummaryQuery + `
	WHERE p.draft = false AND p.publish <= $1
		AND EXISTS (
			SELECT 1 FROM post_tags pt
			JOIN tags t ON pt.tag_id = t.id
			WHERE pt.post_id = p.id AND t.slug = $2)
	ORDER BY p.publish DESC, p.id DESC`

	return s.filteredPosts(ctx, query, s.now(), tagSlug)
}

// PostsByDate filters live posts created on the given day.
func (s *Store) PostsByDate(ctx context.Context, date time.Time) ([]PostSummary, error) {
	query := postSummaryQuery + `
	WHERE p.draft = false AND p.publish <= $1 AND p.created_at::date = $2::date
	ORDER BY p.publish DESC, p.id DESC`

	return s.filteredPosts(ctx, query, s.now(), date)
}

func (s *Store) filteredPosts(ctx context.Context, query string, args ...any) ([]PostSummary, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts, err := s.scanPostSummaries(rows)
	if err != nil {
		return nil, err
	}

	if len(posts) == 0 {
		return nil, common.ErrNoContent
	}

	if err := s.attachTags(ctx, posts); err != nil {
		return nil, err
	}

	return posts, nil
}

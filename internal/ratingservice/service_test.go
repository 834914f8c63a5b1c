package ratingservice

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avrm/blogward/internal/common"
)

const (
	likeMarkID    = 1
	dislikeMarkID = 2
)

func setupTestService(t *testing.T) (*RatingService, *sql.DB) {
	db := common.TestDB("file://../../migrations", t)
	return NewRatingService(db), db
}

func createTestAuthor(t *testing.T, db *sql.DB, username string) int {
	t.Helper()

	var id int
	err := db.QueryRow(`
		INSERT INTO users (username, email)
		VALUES ($1, $2)
		RETURNING id`, username, username+"@example.com").Scan(&id)
	require.NoError(t, err)

	return id
}

func createTestPost(t *testing.T, db *sql.DB, authorID int, slug string, draft bool) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO posts (title, slug, author_id, body, draft, publish)
		VALUES ($1, $2, $3, 'body', $4, $5)`, "Post "+slug, slug, authorID, draft, time.Now().Add(-time.Hour))
	require.NoError(t, err)
}

func authorRating(t *testing.T, db *sql.DB, authorID int) int {
	t.Helper()

	var rating int
	err := db.QueryRow(`SELECT user_rating FROM users WHERE id = $1`, authorID).Scan(&rating)
	require.NoError(t, err)

	return rating
}

func voteCount(t *testing.T, db *sql.DB, ip, slug string) int {
	t.Helper()

	var n int
	err := db.QueryRow(`
		SELECT COUNT(*)
		FROM ratings r
		JOIN posts p ON r.post_id = p.id
		WHERE r.ip = $1 AND p.slug = $2`, ip, slug).Scan(&n)
	require.NoError(t, err)

	return n
}

func TestSubmitVote_CreateThenUpdate(t *testing.T) {
	s, db := setupTestService(t)
	ctx := context.Background()

	authorID := createTestAuthor(t, db, "alice")
	createTestPost(t, db, authorID, "live-post", false)

	result, err := s.SubmitVote(ctx, "1.2.3.4", "live-post", likeMarkID)
	require.NoError(t, err)
	assert.True(t, result.Created)
	assert.Equal(t, 1, authorRating(t, db, authorID))

	// the same voter changing their mind replaces the vote: the aggregate
	// reflects only the latest mark
	result, err = s.SubmitVote(ctx, "1.2.3.4", "live-post", dislikeMarkID)
	require.NoError(t, err)
	assert.False(t, result.Created)
	assert.Equal(t, -1, authorRating(t, db, authorID))
	assert.Equal(t, 1, voteCount(t, db, "1.2.3.4", "live-post"))
}

func TestSubmitVote_SameMarkTwice(t *testing.T) {
	s, db := setupTestService(t)
	ctx := context.Background()

	authorID := createTestAuthor(t, db, "alice")
	createTestPost(t, db, authorID, "live-post", false)

	_, err := s.SubmitVote(ctx, "1.2.3.4", "live-post", likeMarkID)
	require.NoError(t, err)

	result, err := s.SubmitVote(ctx, "1.2.3.4", "live-post", likeMarkID)
	require.NoError(t, err)
	assert.False(t, result.Created)
	assert.Equal(t, 1, authorRating(t, db, authorID))
	assert.Equal(t, 1, voteCount(t, db, "1.2.3.4", "live-post"))
}

func TestSubmitVote_DistinctVoters(t *testing.T) {
	s, db := setupTestService(t)
	ctx := context.Background()

	authorID := createTestAuthor(t, db, "alice")
	createTestPost(t, db, authorID, "live-post", false)

	_, err := s.SubmitVote(ctx, "1.2.3.4", "live-post", likeMarkID)
	require.NoError(t, err)

	result, err := s.SubmitVote(ctx, "5.6.7.8", "live-post", likeMarkID)
	require.NoError(t, err)
	assert.True(t, result.Created)
	assert.Equal(t, 2, authorRating(t, db, authorID))
}

func TestSubmitVote_AggregateInvariant(t *testing.T) {
	s, db := setupTestService(t)
	ctx := context.Background()

	authorID := createTestAuthor(t, db, "alice")
	createTestPost(t, db, authorID, "first-post", false)
	createTestPost(t, db, authorID, "second-post", false)

	_, err := s.SubmitVote(ctx, "1.2.3.4", "first-post", likeMarkID)
	require.NoError(t, err)
	_, err = s.SubmitVote(ctx, "1.2.3.4", "second-post", dislikeMarkID)
	require.NoError(t, err)
	_, err = s.SubmitVote(ctx, "5.6.7.8", "first-post", likeMarkID)
	require.NoError(t, err)
	_, err = s.SubmitVote(ctx, "1.2.3.4", "second-post", likeMarkID)
	require.NoError(t, err)

	var sum int
	err = db.QueryRow(`
		SELECT COALESCE(SUM(m.value), 0)
		FROM ratings r
		JOIN marks m ON r.mark_id = m.id
		JOIN posts p ON r.post_id = p.id
		WHERE p.author_id = $1`, authorID).Scan(&sum)
	require.NoError(t, err)

	assert.Equal(t, sum, authorRating(t, db, authorID))
	assert.Equal(t, 3, sum)
}

func TestSubmitVote_MarkNotFound(t *testing.T) {
	s, db := setupTestService(t)
	ctx := context.Background()

	authorID := createTestAuthor(t, db, "alice")
	createTestPost(t, db, authorID, "live-post", false)

	_, err := s.SubmitVote(ctx, "1.2.3.4", "live-post", 99)
	assert.ErrorIs(t, err, ErrMarkNotFound)
	assert.Equal(t, 0, authorRating(t, db, authorID))
}

func TestSubmitVote_DraftPostRejected(t *testing.T) {
	s, db := setupTestService(t)
	ctx := context.Background()

	authorID := createTestAuthor(t, db, "alice")
	createTestPost(t, db, authorID, "draft-post", true)

	_, err := s.SubmitVote(ctx, "1.2.3.4", "draft-post", likeMarkID)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestSubmitVote_Validation(t *testing.T) {
	s, _ := setupTestService(t)
	ctx := context.Background()

	testCases := []struct {
		name   string
		ip     string
		slug   string
		markID int
	}{
		{name: "empty ip", ip: "", slug: "live-post", markID: likeMarkID},
		{name: "empty slug", ip: "1.2.3.4", slug: "", markID: likeMarkID},
		{name: "zero mark", ip: "1.2.3.4", slug: "live-post", markID: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.SubmitVote(ctx, tc.ip, tc.slug, tc.markID)
			assert.ErrorAs(t, err, &common.ValidationError{})
		})
	}
}

func TestGetVote(t *testing.T) {
	s, db := setupTestService(t)
	ctx := context.Background()

	authorID := createTestAuthor(t, db, "alice")
	createTestPost(t, db, authorID, "live-post", false)

	_, err := s.GetVote(ctx, "1.2.3.4", "live-post")
	assert.ErrorIs(t, err, common.ErrRecordNotFound)

	_, err = s.SubmitVote(ctx, "1.2.3.4", "live-post", likeMarkID)
	require.NoError(t, err)

	vote, err := s.GetVote(ctx, "1.2.3.4", "live-post")
	require.NoError(t, err)
	assert.Equal(t, "like", vote.Mark.Nomination)
	assert.Equal(t, 1, vote.Mark.Value)
}

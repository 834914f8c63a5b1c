package ratingservice

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/avrm/blogward/internal/common"
)

var (
	ErrMarkNotFound   = errors.New("mark not found")
	ErrPostNotFound   = errors.New("post not found")
	ErrAuthorNotFound = errors.New("author not found")
	ErrVoteConflict   = errors.New("vote already submitted")
)

const voteUniqueConstraint = "ratings_ip_post_id_key"

func NewRatingService(db *sql.DB) *RatingService {
	return &RatingService{db: db, now: time.Now}
}

// NewRatingServiceAt pins the clock used by the post liveness check.
func NewRatingServiceAt(db *sql.DB, now func() time.Time) *RatingService {
	return &RatingService{db: db, now: now}
}

// UniqueViolation reports whether the error is a unique constraint violation
// on the named constraint.
func UniqueViolation(err error, name string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23505" && pqErr.Constraint == name {
			return true
		}
	}

	return false
}

// GetVote is the strict lookup used for read-only rating display: it fails
// with common.ErrRecordNotFound when the voter has not rated the post.
func (s *RatingService) GetVote(ctx context.Context, ip, slug string) (*Vote, error) {
	query := `
		SELECT r.id, r.ip, r.post_id, m.id, m.nomination, m.value
		FROM ratings r
		JOIN marks m ON r.mark_id = m.id
		JOIN posts p ON r.post_id = p.id
		WHERE r.ip = $1 AND p.slug = $2`

	var vote Vote
	err := s.db.QueryRowContext(ctx, query, ip, slug).Scan(&vote.ID, &vote.IP, &vote.PostID, &vote.Mark.ID, &vote.Mark.Nomination, &vote.Mark.Value)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &vote, nil
}

// SubmitVote upserts the (ip, post) vote and adjusts the post author's
// aggregate score so it stays equal to the sum of mark values across current
// votes on the author's posts. The whole read-modify-write runs in one
// transaction; a concurrent first vote from the same IP loses the insert race
// on the unique constraint and is retried once as an update.
func (s *RatingService) SubmitVote(ctx context.Context, ip, slug string, markID int) (*VoteResult, error) {
	v := common.NewValidator()
	v.Check(ip != "", "ip", "must be provided")
	v.Check(slug != "", "post", "must be provided")
	v.Check(markID > 0, "mark", "must be greater than zero")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	result, err := s.submitVote(ctx, ip, slug, markID)
	if err != nil {
		if UniqueViolation(err, voteUniqueConstraint) {
			result, err = s.submitVote(ctx, ip, slug, markID)
			if err != nil {
				if UniqueViolation(err, voteUniqueConstraint) {
					return nil, ErrVoteConflict
				}
				return nil, err
			}
			return result, nil
		}
		return nil, err
	}

	return result, nil
}

func (s *RatingService) submitVote(ctx context.Context, ip, slug string, markID int) (*VoteResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var mark Mark
	err = tx.QueryRowContext(ctx, `
		SELECT id, nomination, value
		FROM marks
		WHERE id = $1`, markID).Scan(&mark.ID, &mark.Nomination, &mark.Value)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrMarkNotFound
		default:
			return nil, err
		}
	}

	// only live posts accept votes
	var postID, authorID int
	err = tx.QueryRowContext(ctx, `
		SELECT id, author_id
		FROM posts
		WHERE slug = $1 AND draft = false AND publish <= $2`, slug, s.now()).Scan(&postID, &authorID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrPostNotFound
		default:
			return nil, err
		}
	}

	// the voter's existing vote, loaded once and locked for the rest of the
	// transaction
	var existingID, existingValue int
	found := true
	err = tx.QueryRowContext(ctx, `
		SELECT r.id, m.value
		FROM ratings r
		JOIN marks m ON r.mark_id = m.id
		WHERE r.ip = $1 AND r.post_id = $2
		FOR UPDATE OF r`, ip, postID).Scan(&existingID, &existingValue)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			found = false
		default:
			return nil, err
		}
	}

	// undo the previous mark before applying the new one
	delta := mark.Value
	if found {
		delta -= existingValue
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE users
		SET user_rating = user_rating + $1
		WHERE id = $2`, delta, authorID)
	if err != nil {
		return nil, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrAuthorNotFound
	}

	if found {
		_, err = tx.ExecContext(ctx, `
			UPDATE ratings
			SET mark_id = $1
			WHERE id = $2`, mark.ID, existingID)
	} else {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO ratings (ip, mark_id, post_id)
			VALUES ($1, $2, $3)`, ip, mark.ID, postID)
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &VoteResult{Created: !found, Mark: mark}, nil
}

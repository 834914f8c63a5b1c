package ratingservice

import (
	"database/sql"
	"time"
)

// RatingService owns the per-IP vote upsert and the author aggregate score it
// must keep consistent.
type RatingService struct {
	db  *sql.DB
	now func() time.Time
}

type Mark struct {
	ID         int    `json:"id"`
	Nomination string `json:"nomination"`
	Value      int    `json:"value"`
}

type Vote struct {
	ID     int    `json:"id"`
	IP     string `json:"-"`
	PostID int    `json:"post_id"`
	Mark   Mark   `json:"mark"`
}

// VoteResult reports whether the submission created a new vote or replaced
// the voter's previous mark.
type VoteResult struct {
	Created bool
	Mark    Mark
}

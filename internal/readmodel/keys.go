package readmodel

import (
	"errors"
	"fmt"
	"strconv"
)

// QueryKey names one of the fixed query shapes the read model serves. The set
// is closed: resolving any other key fails with ErrUnknownQueryKey.
type QueryKey string

const (
	KeyPostsList      QueryKey = "posts_list"
	KeyPostDetail     QueryKey = "post_detail"
	KeyCategoriesList QueryKey = "categories_list"
	KeyVideosList     QueryKey = "videos_list"
	KeyAbout          QueryKey = "about"
	KeyAuthorsList    QueryKey = "authors_list"
	KeyAuthorDetail   QueryKey = "author_detail"
	KeyTopPosts       QueryKey = "top_posts"
	KeyLastPosts      QueryKey = "last_posts"
	KeyAllTags        QueryKey = "all_tags"
	KeyPostsCalendar  QueryKey = "posts_calendar"
	KeyRatingDetail   QueryKey = "rating_detail"
	KeyMarkDetail     QueryKey = "mark_detail"
	KeyCommentsList   QueryKey = "comments_list"
)

var ErrUnknownQueryKey = errors.New("unknown query key")

// Params carries the disambiguating parameters of a query. Each key reads a
// fixed subset of the fields and ignores the rest.
type Params struct {
	Slug     string
	AuthorID int
	MarkID   int
	Year     int
	Month    int
	IP       string
}

// cacheKey derives the cache key: namespace prefix, logical key, then a
// disambiguator built from the params that identify the entry. Collection
// keys share a single entry and get an empty disambiguator.
func cacheKey(prefix string, key QueryKey, p Params) string {
	var disamb string

	switch key {
	case KeyPostsCalendar:
		disamb = fmt.Sprintf("%d/%d", p.Year, p.Month)
	case KeyPostDetail, KeyCommentsList:
		disamb = p.Slug
	case KeyAuthorDetail:
		disamb = strconv.Itoa(p.AuthorID)
	case KeyMarkDetail:
		disamb = strconv.Itoa(p.MarkID)
	case KeyRatingDetail:
		disamb = p.IP + "/" + p.Slug
	}

	return prefix + string(key) + ":" + disamb
}

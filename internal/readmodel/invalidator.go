package readmodel

import (
	"log/slog"

	"github.com/avrm/blogward/internal/common"
)

// PostRef carries the post fields eviction needs after the row itself may be
// gone.
type PostRef struct {
	Slug     string
	AuthorID int
	HasVideo bool
}

// Invalidator is called from the write path after a mutation commits. Every
// method is a pure delete-if-present side effect and never fails the
// triggering write.
type Invalidator interface {
	// PostRemovedFromPublicView covers deletion and the transition to draft:
	// the post must disappear from all cached listings at once.
	PostRemovedFromPublicView(post PostRef)

	// PostContentChanged covers updates that keep the post visible. Staler
	// tolerant views (top posts, tags, calendar) are left to expire by TTL.
	PostContentChanged(slug string)

	VideoRemoved()

	CommentAdded(slug string)

	VoteChanged(ip, slug string)
}

type CacheInvalidator struct {
	cache  common.Cache
	prefix string
	logger *slog.Logger
}

func NewCacheInvalidator(cache common.Cache, prefix string, logger *slog.Logger) *CacheInvalidator {
	return &CacheInvalidator{cache: cache, prefix: prefix, logger: logger}
}

func (i *CacheInvalidator) evict(key QueryKey, p Params) {
	ck := cacheKey(i.prefix, key, p)
	i.cache.Delete(ck)
	i.logger.Debug("evicted cache entry", slog.String("key", ck))
}

func (i *CacheInvalidator) PostRemovedFromPublicView(post PostRef) {
	i.evict(KeyPostsList, Params{})
	i.evict(KeyLastPosts, Params{})
	i.evict(KeyPostDetail, Params{Slug: post.Slug})
	i.evict(KeyAuthorDetail, Params{AuthorID: post.AuthorID})
	if post.HasVideo {
		i.evict(KeyVideosList, Params{})
	}
}

func (i *CacheInvalidator) PostContentChanged(slug string) {
	i.evict(KeyPostsList, Params{})
	i.evict(KeyPostDetail, Params{Slug: slug})
}

func (i *CacheInvalidator) VideoRemoved() {
	i.evict(KeyVideosList, Params{})
}

func (i *CacheInvalidator) CommentAdded(slug string) {
	i.evict(KeyCommentsList, Params{Slug: slug})
	i.evict(KeyPostDetail, Params{Slug: slug})
}

func (i *CacheInvalidator) VoteChanged(ip, slug string) {
	i.evict(KeyRatingDetail, Params{IP: ip, Slug: slug})
}

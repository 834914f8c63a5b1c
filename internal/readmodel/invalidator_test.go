package readmodel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/avrm/blogward/internal/common"
)

func setupTestInvalidator(t *testing.T) (*CacheInvalidator, *common.MemoryCache) {
	t.Helper()

	cache := common.NewMemoryCache(5*time.Minute, 10*time.Minute)
	inv := NewCacheInvalidator(cache, "blogward:", testLogger())

	t.Cleanup(cache.Flush)

	return inv, cache
}

func seed(cache *common.MemoryCache, key QueryKey, p Params) {
	cache.Set(cacheKey("blogward:", key, p), []byte("cached"), 0)
}

func present(cache *common.MemoryCache, key QueryKey, p Params) bool {
	_, ok := cache.Get(cacheKey("blogward:", key, p))
	return ok
}

func TestPostRemovedFromPublicView(t *testing.T) {
	inv, cache := setupTestInvalidator(t)

	post := PostRef{Slug: "hello-world", AuthorID: 42, HasVideo: true}

	seed(cache, KeyPostsList, Params{})
	seed(cache, KeyLastPosts, Params{})
	seed(cache, KeyPostDetail, Params{Slug: post.Slug})
	seed(cache, KeyAuthorDetail, Params{AuthorID: post.AuthorID})
	seed(cache, KeyVideosList, Params{})
	seed(cache, KeyCategoriesList, Params{})
	seed(cache, KeyPostDetail, Params{Slug: "other-post"})

	inv.PostRemovedFromPublicView(post)

	assert.False(t, present(cache, KeyPostsList, Params{}))
	assert.False(t, present(cache, KeyLastPosts, Params{}))
	assert.False(t, present(cache, KeyPostDetail, Params{Slug: post.Slug}))
	assert.False(t, present(cache, KeyAuthorDetail, Params{AuthorID: post.AuthorID}))
	assert.False(t, present(cache, KeyVideosList, Params{}))

	// unrelated entries survive
	assert.True(t, present(cache, KeyCategoriesList, Params{}))
	assert.True(t, present(cache, KeyPostDetail, Params{Slug: "other-post"}))
}

func TestPostRemovedFromPublicView_NoVideo(t *testing.T) {
	inv, cache := setupTestInvalidator(t)

	seed(cache, KeyVideosList, Params{})

	inv.PostRemovedFromPublicView(PostRef{Slug: "hello-world", AuthorID: 42})

	assert.True(t, present(cache, KeyVideosList, Params{}))
}

func TestPostContentChanged(t *testing.T) {
	inv, cache := setupTestInvalidator(t)

	seed(cache, KeyPostsList, Params{})
	seed(cache, KeyPostDetail, Params{Slug: "hello-world"})
	seed(cache, KeyTopPosts, Params{})

	inv.PostContentChanged("hello-world")

	assert.False(t, present(cache, KeyPostsList, Params{}))
	assert.False(t, present(cache, KeyPostDetail, Params{Slug: "hello-world"}))

	// staler-tolerant views expire by TTL only
	assert.True(t, present(cache, KeyTopPosts, Params{}))
}

func TestVideoRemoved(t *testing.T) {
	inv, cache := setupTestInvalidator(t)

	seed(cache, KeyVideosList, Params{})

	inv.VideoRemoved()

	assert.False(t, present(cache, KeyVideosList, Params{}))
}

func TestCommentAdded(t *testing.T) {
	inv, cache := setupTestInvalidator(t)

	seed(cache, KeyCommentsList, Params{Slug: "hello-world"})
	seed(cache, KeyPostDetail, Params{Slug: "hello-world"})

	inv.CommentAdded("hello-world")

	assert.False(t, present(cache, KeyCommentsList, Params{Slug: "hello-world"}))
	assert.False(t, present(cache, KeyPostDetail, Params{Slug: "hello-world"}))
}

func TestVoteChanged(t *testing.T) {
	inv, cache := setupTestInvalidator(t)

	seed(cache, KeyRatingDetail, Params{IP: "1.2.3.4", Slug: "hello-world"})
	seed(cache, KeyRatingDetail, Params{IP: "5.6.7.8", Slug: "hello-world"})

	inv.VoteChanged("1.2.3.4", "hello-world")

	assert.False(t, present(cache, KeyRatingDetail, Params{IP: "1.2.3.4", Slug: "hello-world"}))
	assert.True(t, present(cache, KeyRatingDetail, Params{IP: "5.6.7.8", Slug: "hello-world"}))
}

func TestEvictMissingEntryIsNoOp(t *testing.T) {
	inv, cache := setupTestInvalidator(t)

	inv.PostRemovedFromPublicView(PostRef{Slug: "never-cached", AuthorID: 1})

	assert.False(t, present(cache, KeyPostDetail, Params{Slug: "never-cached"}))
}

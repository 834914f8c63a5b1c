package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundErrorResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedErrorResponse)

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthCheckHandler)

	// posts
	router.HandlerFunc(http.MethodGet, "/v1/posts", app.listPostsHandler)
	router.HandlerFunc(http.MethodPost, "/v1/posts", app.createPostHandler)
	router.HandlerFunc(http.MethodGet, "/v1/posts/:slug", app.getPostHandler)
	router.HandlerFunc(http.MethodPut, "/v1/posts/:slug", app.updatePostHandler)
	router.HandlerFunc(http.MethodDelete, "/v1/posts/:slug", app.deletePostHandler)
	router.HandlerFunc(http.MethodGet, "/v1/posts/:slug/comments", app.listCommentsHandler)

	// feeds and filters
	router.HandlerFunc(http.MethodGet, "/v1/top", app.topPostsHandler)
	router.HandlerFunc(http.MethodGet, "/v1/last", app.lastPostsHandler)
	router.HandlerFunc(http.MethodGet, "/v1/calendar/:year/:month", app.calendarHandler)
	router.HandlerFunc(http.MethodGet, "/v1/tags", app.listTagsHandler)
	router.HandlerFunc(http.MethodGet, "/v1/tags/:slug/posts", app.postsByTagHandler)
	router.HandlerFunc(http.MethodGet, "/v1/archive/:date", app.postsByDateHandler)

	// comments and ratings
	router.HandlerFunc(http.MethodPost, "/v1/comments", app.addCommentHandler)
	router.HandlerFunc(http.MethodPut, "/v1/ratings", app.submitVoteHandler)
	router.HandlerFunc(http.MethodGet, "/v1/ratings/:slug", app.getRatingHandler)
	router.HandlerFunc(http.MethodGet, "/v1/marks/:id", app.getMarkHandler)

	// catalog
	router.HandlerFunc(http.MethodGet, "/v1/categories", app.listCategoriesHandler)
	router.HandlerFunc(http.MethodGet, "/v1/videos", app.listVideosHandler)
	router.HandlerFunc(http.MethodDelete, "/v1/videos/:id", app.deleteVideoHandler)
	router.HandlerFunc(http.MethodGet, "/v1/authors", app.listAuthorsHandler)
	router.HandlerFunc(http.MethodGet, "/v1/authors/:id", app.getAuthorHandler)

	// company
	router.HandlerFunc(http.MethodGet, "/v1/about", app.aboutHandler)
	router.HandlerFunc(http.MethodPost, "/v1/contact", app.contactHandler)

	router.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(app.metrics, promhttp.HandlerOpts{}))

	return app.recoverPanic(app.logRequest(app.rateLimit(router)))
}

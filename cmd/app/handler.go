package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/avrm/blogward/internal/blogservice"
	"github.com/avrm/blogward/internal/common"
	"github.com/avrm/blogward/internal/companyservice"
	"github.com/avrm/blogward/internal/ratingservice"
	"github.com/avrm/blogward/internal/readmodel"
)

// serveCached answers a read through the cache-aside manager and wraps the
// raw cached JSON in the response envelope.
func (app *application) serveCached(w http.ResponseWriter, r *http.Request, key readmodel.QueryKey, p readmodel.Params, field string) {
	data, err := app.readModel.GetOrCompute(r.Context(), key, p)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{field: json.RawMessage(data)}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) listPostsHandler(w http.ResponseWriter, r *http.Request) {
	app.serveCached(w, r, readmodel.KeyPostsList, readmodel.Params{}, "posts")
}

func (app *application) getPostHandler(w http.ResponseWriter, r *http.Request) {
	slug, err := app.readSlugParam(r, "slug")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	app.serveCached(w, r, readmodel.KeyPostDetail, readmodel.Params{Slug: slug}, "post")
}

func (app *application) listCommentsHandler(w http.ResponseWriter, r *http.Request) {
	slug, err := app.readSlugParam(r, "slug")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	app.serveCached(w, r, readmodel.KeyCommentsList, readmodel.Params{Slug: slug}, "comments")
}

func (app *application) topPostsHandler(w http.ResponseWriter, r *http.Request) {
	app.serveCached(w, r, readmodel.KeyTopPosts, readmodel.Params{}, "posts")
}

func (app *application) lastPostsHandler(w http.ResponseWriter, r *http.Request) {
	app.serveCached(w, r, readmodel.KeyLastPosts, readmodel.Params{}, "posts")
}

func (app *application) calendarHandler(w http.ResponseWriter, r *http.Request) {
	year, err := app.readIDParam(r, "year")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	month, err := app.readIDParam(r, "month")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	if month < 1 || month > 12 {
		app.badRequestErrorResponse(w, r, errors.New("month must be between 1 and 12"))
		return
	}

	app.serveCached(w, r, readmodel.KeyPostsCalendar, readmodel.Params{Year: year, Month: month}, "days")
}

func (app *application) listTagsHandler(w http.ResponseWriter, r *http.Request) {
	app.serveCached(w, r, readmodel.KeyAllTags, readmodel.Params{}, "tags")
}

func (app *application) listCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	app.serveCached(w, r, readmodel.KeyCategoriesList, readmodel.Params{}, "categories")
}

func (app *application) listVideosHandler(w http.ResponseWriter, r *http.Request) {
	app.serveCached(w, r, readmodel.KeyVideosList, readmodel.Params{}, "videos")
}

func (app *application) listAuthorsHandler(w http.ResponseWriter, r *http.Request) {
	app.serveCached(w, r, readmodel.KeyAuthorsList, readmodel.Params{}, "authors")
}

func (app *application) getAuthorHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	app.serveCached(w, r, readmodel.KeyAuthorDetail, readmodel.Params{AuthorID: id}, "author")
}

func (app *application) aboutHandler(w http.ResponseWriter, r *http.Request) {
	app.serveCached(w, r, readmodel.KeyAbout, readmodel.Params{}, "about")
}

func (app *application) getMarkHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	app.serveCached(w, r, readmodel.KeyMarkDetail, readmodel.Params{MarkID: id}, "mark")
}

func (app *application) getRatingHandler(w http.ResponseWriter, r *http.Request) {
	slug, err := app.readSlugParam(r, "slug")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	app.serveCached(w, r, readmodel.KeyRatingDetail, readmodel.Params{IP: app.clientIP(r), Slug: slug}, "rating")
}

// postsByTagHandler serves the tag filter. Filters bypass the cache and an
// empty result is 204, not an empty list.
func (app *application) postsByTagHandler(w http.ResponseWriter, r *http.Request) {
	slug, err := app.readSlugParam(r, "slug")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	posts, err := app.store.PostsByTag(r.Context(), slug)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNoContent):
			w.WriteHeader(http.StatusNoContent)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"posts": posts}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) postsByDateHandler(w http.ResponseWriter, r *http.Request) {
	raw, err := app.readSlugParam(r, "date")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		app.badRequestErrorResponse(w, r, errors.New("date must be in YYYY-MM-DD format"))
		return
	}

	posts, err := app.store.PostsByDate(r.Context(), date)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNoContent):
			w.WriteHeader(http.StatusNoContent)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"posts": posts}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) createPostHandler(w http.ResponseWriter, r *http.Request) {
	var input blogservice.CreatePostRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	post, err := app.blogService.CreatePost(r.Context(), &input)
	if err != nil {
		app.blogWriteErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"post": post}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) updatePostHandler(w http.ResponseWriter, r *http.Request) {
	slug, err := app.readSlugParam(r, "slug")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	var input blogservice.UpdatePostRequest

	err = app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	post, err := app.blogService.UpdatePost(r.Context(), slug, &input)
	if err != nil {
		app.blogWriteErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"post": post}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) deletePostHandler(w http.ResponseWriter, r *http.Request) {
	slug, err := app.readSlugParam(r, "slug")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	err = app.blogService.DeletePost(r.Context(), slug)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "post deleted"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

// blogWriteErrorResponse maps the blog service write errors shared by create
// and update.
func (app *application) blogWriteErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrRecordNotFound):
		app.notFoundErrorResponse(w, r)
	case errors.Is(err, blogservice.ErrDuplicateSlug):
		app.failedValidationErrorResponse(w, r, map[string]string{"url": "a post with this url already exists"})
	case errors.Is(err, blogservice.ErrAuthorNotFound):
		app.failedValidationErrorResponse(w, r, map[string]string{"author_id": "does not exist"})
	case errors.Is(err, blogservice.ErrCategoryNotFound):
		app.failedValidationErrorResponse(w, r, map[string]string{"category_id": "does not exist"})
	case errors.Is(err, blogservice.ErrVideoNotFound):
		app.failedValidationErrorResponse(w, r, map[string]string{"video_id": "does not exist"})
	case errors.Is(err, blogservice.ErrVideoTaken):
		app.failedValidationErrorResponse(w, r, map[string]string{"video_id": "is already attached to another post"})
	case errors.As(err, &common.ValidationError{}):
		validationErr := err.(common.ValidationError)
		app.failedValidationErrorResponse(w, r, validationErr.Errors)
	default:
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) addCommentHandler(w http.ResponseWriter, r *http.Request) {
	var input blogservice.AddCommentRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	comment, err := app.blogService.AddComment(r.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"comment": comment}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

type submitVoteRequest struct {
	Slug   string `json:"url"`
	MarkID int    `json:"mark_id"`
}

func (app *application) submitVoteHandler(w http.ResponseWriter, r *http.Request) {
	var input submitVoteRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	ip := app.clientIP(r)

	result, err := app.ratingService.SubmitVote(r.Context(), ip, input.Slug, input.MarkID)
	if err != nil {
		switch {
		case errors.Is(err, ratingservice.ErrPostNotFound):
			app.notFoundErrorResponse(w, r)
		case errors.Is(err, ratingservice.ErrMarkNotFound):
			app.failedValidationErrorResponse(w, r, map[string]string{"mark_id": "does not exist"})
		case errors.Is(err, ratingservice.ErrVoteConflict):
			app.conflictErrorResponse(w, r)
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	app.invalidator.VoteChanged(ip, input.Slug)

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}

	err = app.writeJSON(w, status, envelope{"rating": result}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) deleteVideoHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	err = app.blogService.DeleteVideo(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "video deleted"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) contactHandler(w http.ResponseWriter, r *http.Request) {
	var input companyservice.SubmitContactRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	_, err = app.companyService.SubmitContact(r.Context(), &input)
	if err != nil {
		switch {
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"message": "message received"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

package blogservice

import "github.com/microcosm-cc/bluemonday"

var (
	// post bodies are markdown and may embed a limited set of HTML tags
	bodyPolicy = bluemonday.UGCPolicy()

	// comments are plain text
	commentPolicy = bluemonday.StrictPolicy()
)

func sanitizeBody(body string) string {
	return bodyPolicy.Sanitize(body)
}

func sanitizeComment(text string) string {
	return commentPolicy.Sanitize(text)
}

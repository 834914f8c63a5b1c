package readmodel

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	markdown  = goldmark.New(goldmark.WithExtensions(extension.GFM))
	ugcPolicy = bluemonday.UGCPolicy()
)

// renderMarkdown converts a post body to sanitized HTML for detail views.
func renderMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", err
	}

	return ugcPolicy.Sanitize(buf.String()), nil
}

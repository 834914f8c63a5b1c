package blogservice

import (
	"regexp"

	"github.com/avrm/blogward/internal/common"
)

var SlugRX = regexp.MustCompile("^[a-z0-9]+(?:-[a-z0-9]+)*$")

func validateTitle(v *common.Validator, title string) {
	v.Check(title != "", "title", "must be provided")
	v.Check(v.CheckStringLength(title, 1, 250), "title", "must not be longer than 250 characters")
}

func validateSlug(v *common.Validator, slug string) {
	v.Check(slug != "", "url", "must be provided")
	v.Check(v.CheckStringLength(slug, 1, 50), "url", "must not be longer than 50 characters")
	v.Check(SlugRX.MatchString(slug), "url", "must only contain lowercase letters, numbers, and hyphens")
}

func validateBody(v *common.Validator, body string) {
	v.Check(body != "", "body", "must be provided")
}

func validateInt(v *common.Validator, num int, name string) {
	v.Check(num > 0, name, "must be greater than zero")
}

func validateComment(v *common.Validator, name, email, text string) {
	v.Check(name != "", "name", "must be provided")
	v.Check(v.CheckStringLength(name, 1, 80), "name", "must not be longer than 80 characters")
	v.Check(email != "", "email", "must be provided")
	v.Check(v.CheckEmail(email), "email", "must be a valid email address")
	v.Check(text != "", "text", "must be provided")
	v.Check(v.CheckStringLength(text, 1, 5000), "text", "must not be longer than 5000 characters")
}

package content

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*(?:/[a-z0-9]+(?:-[a-z0-9]+)*)*$`)

// ErrDuplicateSlug is returned when two content files resolve to the same slug.
var ErrDuplicateSlug = errors.New("duplicate slug")

// SchemaError reports a content file that does not satisfy the post schema.
type SchemaError struct {
	Path string
	Err  error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("content: %s: %v", e.Path, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// frontMatter is the on-disk shape of a post header.
type frontMatter struct {
	Title       string `yaml:"title" toml:"title"`
	Published   Date   `yaml:"published" toml:"published"`
	Updated     *Date  `yaml:"updated" toml:"updated"`
	Description string `yaml:"description" toml:"description"`
	Image       string `yaml:"image" toml:"image"`
	Slug        string `yaml:"slug" toml:"slug"`
}

func (fm frontMatter) post() Post {
	p := Post{
		Title:       strings.TrimSpace(fm.Title),
		Published:   fm.Published.Time,
		Description: strings.TrimSpace(fm.Description),
		Image:       strings.TrimSpace(fm.Image),
	}
	if fm.Updated != nil {
		t := fm.Updated.Time
		p.Updated = &t
	}
	return p
}

// Validate checks the post against the collection schema: title and
// published are required, everything else is optional.
func (p Post) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Required.Error("title is required")),
		validation.Field(&p.Published, validation.Required.Error("published date is required")),
		validation.Field(&p.Updated, validation.NilOrNotEmpty.Error("updated date must not be empty")),
		validation.Field(&p.Slug,
			validation.Required.Error("slug is required"),
			validation.Match(slugPattern).Error("slug must be lowercase words separated by hyphens")),
	)
}

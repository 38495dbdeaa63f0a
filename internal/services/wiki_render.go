package services

import (
	"bytes"
	"fmt"

	"github.com/dimitrije/tandem-api/internal/models"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// WikiRenderer turns page markdown into sanitized HTML. Results are cached per
// page version, so an edit naturally invalidates the cached entry.
type WikiRenderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	cache  *lru.Cache[string, string]
}

func NewWikiRenderer(size int) *WikiRenderer {
	if size <= 0 {
		size = 1
	}
	cache, _ := lru.New[string, string](size)
	return &WikiRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.DefinitionList,
			),
		),
		policy: bluemonday.UGCPolicy(),
		cache:  cache,
	}
}

func (r *WikiRenderer) Render(page *models.WikiPage) (string, error) {
	key := fmt.Sprintf("%s:%d", page.ID, page.Version)
	if html, ok := r.cache.Get(key); ok {
		return html, nil
	}

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(page.Content), &buf); err != nil {
		return "", fmt.Errorf("failed to render wiki page: %w", err)
	}
	html := r.policy.Sanitize(buf.String())

	r.cache.Add(key, html)
	return html, nil
}

// Len reports how many rendered versions are cached.
func (r *WikiRenderer) Len() int {
	return r.cache.Len()
}

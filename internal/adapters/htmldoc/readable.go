package htmldoc

import (
	"fmt"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// Article is the main content extracted from a full web page.
type Article struct {
	Title    string
	Byline   string
	SiteName string
	Content  string // HTML fragment
}

// Readable extracts the article body of page. pageURL resolves relative
// links and may be empty.
func Readable(page, pageURL string) (Article, error) {
	var u *url.URL
	if pageURL != "" {
		parsed, err := url.Parse(pageURL)
		if err != nil {
			return Article{}, fmt.Errorf("parse url: %w", err)
		}
		u = parsed
	}

	article, err := readability.FromReader(strings.NewReader(page), u)
	if err != nil {
		return Article{}, fmt.Errorf("extract article: %w", err)
	}
	return Article{
		Title:    article.Title,
		Byline:   article.Byline,
		SiteName: article.SiteName,
		Content:  article.Content,
	}, nil
}

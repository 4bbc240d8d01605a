package crawler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/fxwire-hq/fxwire-news-harvester/internal/domain"
)

// ErrMissingTitle reports an article page whose body container is present
// but whose title heading is not. The record cannot be built without a
// title, and silently substituting an empty one would corrupt output, so
// the condition is surfaced as its own error.
var ErrMissingTitle = errors.New("article body present but title heading missing")

// Selectors matching investing.com's article-card and article-page markup.
const (
	listingCardSelector  = `article[data-test="article-item"]`
	listingLinkSelector  = `a[data-test="article-title-link"]`
	listingTimeSelector  = `time[data-test="article-publish-date"]`
	articleBodySelector  = "div#article"
	articleTitleSelector = "h1#articleTitle"
)

// extractListingLinks pulls every well-formed article card out of a listing
// page. A card missing its title link or its publish-time element
// contributes nothing; it is not an error. Document order is preserved.
func extractListingLinks(html string) ([]domain.ListingLink, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse listing html: %w", err)
	}

	var links []domain.ListingLink
	doc.Find(listingCardSelector).Each(func(_ int, card *goquery.Selection) {
		href, ok := card.Find(listingLinkSelector).First().Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}

		published, ok := card.Find(listingTimeSelector).First().Attr("datetime")
		if !ok || strings.TrimSpace(published) == "" {
			return
		}

		links = append(links, domain.ListingLink{
			URL:         strings.TrimSpace(href),
			PublishedAt: strings.TrimSpace(published),
		})
	})

	return links, nil
}

// extractArticleContent pulls title and body out of an article page.
// A page without the body container returns (nil, nil): expected for
// non-article pages, not a failure. When the body is present, every
// paragraph inside it is collected in document order, each with a trailing
// newline.
func extractArticleContent(html string) (*domain.ArticleContent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse article html: %w", err)
	}

	body := doc.Find(articleBodySelector).First()
	if body.Length() == 0 {
		return nil, nil
	}

	var sb strings.Builder
	body.Find("p").Each(func(_ int, p *goquery.Selection) {
		sb.WriteString(p.Text())
		sb.WriteString("\n")
	})

	title := strings.TrimSpace(doc.Find(articleTitleSelector).First().Text())
	if title == "" {
		return nil, ErrMissingTitle
	}

	return &domain.ArticleContent{Title: title, Body: sb.String()}, nil
}

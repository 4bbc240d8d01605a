package crawler

import (
	"errors"
	"testing"
)

const listingPageHTML = `
<html><body>
<section>
  <article data-test="article-item">
    <a data-test="article-title-link" href="/news/forex-news/eur-usd-climbs-1">EUR/USD climbs</a>
    <time data-test="article-publish-date" datetime="2024-05-01 12:00:00">1 hour ago</time>
  </article>
  <article data-test="article-item">
    <a data-test="article-title-link" href="/news/forex-news/ecb-holds-rates-2">ECB holds rates</a>
    <time data-test="article-publish-date" datetime="2024-05-01 09:15:00">4 hours ago</time>
  </article>
  <article data-test="article-item">
    <a data-test="article-title-link" href="/news/forex-news/no-time-element-3">No time element</a>
  </article>
  <article data-test="article-item">
    <time data-test="article-publish-date" datetime="2024-05-01 08:00:00">5 hours ago</time>
  </article>
</section>
</body></html>`

func TestExtractListingLinks(t *testing.T) {
	links, err := extractListingLinks(listingPageHTML)
	if err != nil {
		t.Fatalf("extractListingLinks: %v", err)
	}

	want := []struct {
		url         string
		publishedAt string
	}{
		{"/news/forex-news/eur-usd-climbs-1", "2024-05-01 12:00:00"},
		{"/news/forex-news/ecb-holds-rates-2", "2024-05-01 09:15:00"},
	}

	if len(links) != len(want) {
		t.Fatalf("got %d links, want %d (cards missing link or time must contribute nothing)", len(links), len(want))
	}
	for i, w := range want {
		if links[i].URL != w.url {
			t.Errorf("links[%d].URL = %q, want %q", i, links[i].URL, w.url)
		}
		if links[i].PublishedAt != w.publishedAt {
			t.Errorf("links[%d].PublishedAt = %q, want %q", i, links[i].PublishedAt, w.publishedAt)
		}
	}
}

func TestExtractListingLinksNoCards(t *testing.T) {
	links, err := extractListingLinks(`<html><body><p>nothing here</p></body></html>`)
	if err != nil {
		t.Fatalf("extractListingLinks: %v", err)
	}
	if len(links) != 0 {
		t.Fatalf("got %d links from a page without cards, want 0", len(links))
	}
}

func TestExtractArticleContent(t *testing.T) {
	html := `
<html><body>
<h1 id="articleTitle">EUR/USD climbs on soft dollar</h1>
<div id="article">
  <p>First paragraph.</p>
  <div><p>Second paragraph, nested.</p></div>
  <p>Third paragraph.</p>
</div>
</body></html>`

	content, err := extractArticleContent(html)
	if err != nil {
		t.Fatalf("extractArticleContent: %v", err)
	}
	if content == nil {
		t.Fatal("got nil content for a page with an article body")
	}

	if content.Title != "EUR/USD climbs on soft dollar" {
		t.Errorf("Title = %q", content.Title)
	}
	wantBody := "First paragraph.\nSecond paragraph, nested.\nThird paragraph.\n"
	if content.Body != wantBody {
		t.Errorf("Body = %q, want %q", content.Body, wantBody)
	}
}

func TestExtractArticleContentNoBody(t *testing.T) {
	content, err := extractArticleContent(`<html><body><h1 id="articleTitle">Title only</h1></body></html>`)
	if err != nil {
		t.Fatalf("missing body container must not be an error, got %v", err)
	}
	if content != nil {
		t.Fatalf("got content %+v for a page without a body container, want nil", content)
	}
}

func TestExtractArticleContentMissingTitle(t *testing.T) {
	html := `<html><body><div id="article"><p>Body without heading.</p></div></body></html>`

	content, err := extractArticleContent(html)
	if !errors.Is(err, ErrMissingTitle) {
		t.Fatalf("got err %v, want ErrMissingTitle", err)
	}
	if content != nil {
		t.Fatalf("got content %+v alongside the error, want nil", content)
	}
}

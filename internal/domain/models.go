package domain

// Domain contains the core models shared across the harvester.

// ListingLink is one article reference discovered on a listing page: the
// site-relative URL of the article and its publish timestamp exactly as the
// listing markup carries it.
type ListingLink struct {
	URL         string
	PublishedAt string
}

// ArticleContent holds the fields extracted from a single article page.
// Body is the article's paragraph texts in document order, each followed by
// a newline.
type ArticleContent struct {
	Title string
	Body  string
}

// NewsRecord is the final output unit of a crawl: one fully populated
// article for a currency-pair symbol. TimestampMillis is the publish time
// as Unix epoch milliseconds (UTC). The JSON shape is the compatibility
// contract for stores and publishers.
type NewsRecord struct {
	Symbol          string `json:"symbol"`
	URL             string `json:"url"`
	Title           string `json:"title"`
	Content         string `json:"content"`
	TimestampMillis int64  `json:"timestamp"`
}

package datasource

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/fairsight/fairsight/pkg/models"
)

// DefaultNewsFeedURL is the per-ticker RSS feed queried when none is
// configured. The %s verb receives the ticker symbol.
const DefaultNewsFeedURL = "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s"

// News fetches recent headlines for a ticker from an RSS feed. It is
// display-only context for a valuation report and never feeds the engine.
type News struct {
	feedURL string
	cache   *Cache
	limiter *RateLimiter
	parser  *gofeed.Parser
}

// NewNews creates a news fetcher for the given feed URL template. An
// empty template falls back to DefaultNewsFeedURL.
func NewNews(feedURL string) *News {
	if feedURL == "" {
		feedURL = DefaultNewsFeedURL
	}
	return &News{
		feedURL: feedURL,
		cache:   NewCache(10 * time.Minute),
		limiter: NewRateLimiter(2, time.Second), // conservative: 2 req/s
		parser:  gofeed.NewParser(),
	}
}

// GetHeadlines returns the most recent articles for the ticker, newest
// first, capped at limit when limit > 0.
func (n *News) GetHeadlines(ctx context.Context, ticker string, limit int) ([]models.NewsArticle, error) {
	symbol := strings.ToUpper(strings.TrimSpace(ticker))
	cacheKey := fmt.Sprintf("news:%s:%d", symbol, limit)
	if cached, ok := n.cache.Get(cacheKey); ok {
		return cached.([]models.NewsArticle), nil
	}

	if err := n.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	feed, err := n.parser.ParseURLWithContext(fmt.Sprintf(n.feedURL, symbol), ctx)
	if err != nil {
		return nil, fmt.Errorf("parse news feed for %s: %w", symbol, err)
	}

	articles := articlesFromFeed(feed)
	if limit > 0 && len(articles) > limit {
		articles = articles[:limit]
	}

	n.cache.Set(cacheKey, articles)
	return articles, nil
}

// articlesFromFeed converts feed items to articles, sorted newest first.
func articlesFromFeed(feed *gofeed.Feed) []models.NewsArticle {
	source := feed.Title
	articles := make([]models.NewsArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		a := models.NewsArticle{
			Title:   item.Title,
			URL:     item.Link,
			Source:  source,
			Summary: cleanHTML(item.Description),
		}
		if item.PublishedParsed != nil {
			a.PublishedAt = *item.PublishedParsed
		}
		articles = append(articles, a)
	}
	sortArticlesByDate(articles)
	return articles
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}

// sortArticlesByDate sorts articles by published date (newest first).
// Simple insertion sort — fine for small slices.
func sortArticlesByDate(articles []models.NewsArticle) {
	for i := 1; i < len(articles); i++ {
		key := articles[i]
		j := i - 1
		for j >= 0 && articles[j].PublishedAt.Before(key.PublishedAt) {
			articles[j+1] = articles[j]
			j--
		}
		articles[j+1] = key
	}
}

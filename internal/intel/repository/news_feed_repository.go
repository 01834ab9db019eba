package repository

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"golang-market-intel/internal/entity"
	"golang-market-intel/internal/intel/config"
	"golang-market-intel/pkg/logger"
	"golang-market-intel/pkg/utils"

	"github.com/PuerkitoBio/goquery"
	"github.com/mauidude/go-readability"
	"github.com/mmcdole/gofeed"
	"github.com/patrickmn/go-cache"
)

const (
	feedConcurrency = 4
	browserUA       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	maxSummaryChars = 600
)

// NewsFeedRepository collects fresh articles from the configured feeds.
type NewsFeedRepository interface {
	Collect(ctx context.Context) ([]entity.Article, error)
}

// NewNewsFeedRepository creates a gofeed-backed news collector.
func NewNewsFeedRepository(cfg *config.Config, log *logger.Logger) NewsFeedRepository {
	return &newsFeedRepository{
		cfg:    cfg,
		logger: log,
		client: &http.Client{
			Timeout: cfg.News.RequestTimeout,
		},
		seenCache: cache.New(cfg.News.SeenCacheTTL, 2*cfg.News.SeenCacheTTL),
	}
}

type newsFeedRepository struct {
	cfg       *config.Config
	logger    *logger.Logger
	client    *http.Client
	seenCache *cache.Cache
}

// feedURLs expands static feeds plus Google News search queries.
func (r *newsFeedRepository) feedURLs() []string {
	urls := append([]string{}, r.cfg.News.Feeds...)
	for _, term := range r.cfg.News.SearchTerms {
		if term == "" {
			continue
		}
		urls = append(urls, fmt.Sprintf(
			"https://news.google.com/rss/search?q=%s&hl=en-IN&gl=IN&ceid=IN:en",
			url.QueryEscape(term),
		))
	}
	return urls
}

// Collect fetches every feed concurrently and returns fresh, de-duplicated
// articles sorted by published date descending. A failing feed is logged
// and skipped; it never fails the whole collection.
func (r *newsFeedRepository) Collect(ctx context.Context) ([]entity.Article, error) {
	var (
		articles []entity.Article
		seen     = make(map[string]struct{})
		mu       sync.Mutex
		wg       sync.WaitGroup
	)

	semaphore := make(chan struct{}, feedConcurrency)

	for _, feedURL := range r.feedURLs() {
		if !utils.ShouldContinue(ctx, r.logger) {
			break
		}
		wg.Add(1)
		utils.GoSafe(func() {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			items, err := r.fetchFeed(ctx, feedURL)
			if err != nil {
				r.logger.Error("Failed to parse RSS feed",
					logger.ErrorField(err), logger.StringField("url", feedURL))
				return
			}

			mu.Lock()
			defer mu.Unlock()
			for _, a := range items {
				if _, dup := seen[a.HashIdentifier]; dup {
					continue
				}
				seen[a.HashIdentifier] = struct{}{}
				articles = append(articles, a)
			}
		})
	}
	wg.Wait()

	sort.Slice(articles, func(i, j int) bool {
		pi, pj := articles[i].PublishedAt, articles[j].PublishedAt
		if pi == nil || pj == nil {
			return pj == nil && pi != nil
		}
		if !pi.Equal(*pj) {
			return pi.After(*pj)
		}
		return articles[i].HashIdentifier < articles[j].HashIdentifier
	})
	return articles, nil
}

func (r *newsFeedRepository) fetchFeed(ctx context.Context, feedURL string) ([]entity.Article, error) {
	feedCtx, cancel := context.WithTimeout(ctx, r.cfg.News.RequestTimeout)
	defer cancel()

	fp := gofeed.NewParser()
	feed, err := fp.ParseURLWithContext(feedURL, feedCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed %s: %w", feedURL, err)
	}

	sort.Slice(feed.Items, func(i, j int) bool {
		if feed.Items[i].PublishedParsed == nil || feed.Items[j].PublishedParsed == nil {
			return false
		}
		return feed.Items[i].PublishedParsed.After(*feed.Items[j].PublishedParsed)
	})

	cutoff := time.Now().Add(-r.cfg.News.MaxAge)

	var out []entity.Article
	for _, item := range feed.Items {
		if !utils.ShouldContinue(ctx, r.logger) {
			break
		}
		if item.PublishedParsed == nil || item.PublishedParsed.Before(cutoff) {
			continue
		}
		if _, found := r.seenCache.Get(item.Link); found {
			continue
		}

		article := r.buildArticle(ctx, item)
		r.seenCache.Set(item.Link, struct{}{}, cache.DefaultExpiration)
		out = append(out, article)
	}
	return out, nil
}

func (r *newsFeedRepository) buildArticle(ctx context.Context, item *gofeed.Item) entity.Article {
	title := utils.CleanToValidUTF8(strings.TrimSpace(item.Title))
	summary := stripHTML(item.Description)
	link := item.Link
	source := hostnameOf(link)

	if r.cfg.News.EnrichSummaries && len(summary) < r.cfg.News.MinSummaryLen {
		finalURL, content, err := r.fetchReadable(ctx, link)
		if err != nil {
			r.logger.Warn("Failed to enrich article summary, keeping feed summary",
				logger.ErrorField(err), logger.StringField("url", link))
		} else {
			if content != "" {
				summary = utils.Truncate(content, maxSummaryChars)
			}
			if finalURL != "" {
				link = finalURL
				source = hostnameOf(finalURL)
			}
		}
	}

	digest := sha256.Sum256([]byte(source + "|" + title + "|" + link))

	var published *time.Time
	if item.PublishedParsed != nil {
		t := item.PublishedParsed.UTC()
		published = &t
	}

	return entity.Article{
		Title:          title,
		Link:           link,
		Source:         source,
		Summary:        utils.CleanToValidUTF8(summary),
		PublishedAt:    published,
		HashIdentifier: hex.EncodeToString(digest[:])[:16],
	}
}

// fetchReadable downloads the article page, following redirects so Google
// News links land on the publisher, and extracts the readable text.
func (r *newsFeedRepository) fetchReadable(ctx context.Context, link string) (finalURL, content string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", browserUA)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("failed to fetch article: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("failed to fetch article, status code: %d", resp.StatusCode)
	}
	finalURL = resp.Request.URL.String()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", "", fmt.Errorf("failed to read response body: %w", err)
	}

	doc, err := readability.NewDocument(string(body))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse article content: %w", err)
	}

	extracted, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(doc.Content())))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse extracted content: %w", err)
	}

	text := utils.CollapseWhitespace(extracted.Text())
	if text == "" {
		// Fall back to the meta description when readability found nothing.
		if full, qerr := goquery.NewDocumentFromReader(bytes.NewReader(body)); qerr == nil {
			text, _ = full.Find(`meta[name="description"]`).Attr("content")
			text = utils.CollapseWhitespace(text)
		}
	}
	return finalURL, utils.CleanToValidUTF8(text), nil
}

func stripHTML(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return utils.CollapseWhitespace(s)
	}
	return utils.CollapseWhitespace(doc.Text())
}

func hostnameOf(link string) string {
	parsed, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(parsed.Hostname(), "www.")
}

// Package scraper fetches product pages and returns their readable text and metadata.
package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Houeta/pricewatch/internal/models"
	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

// DefaultUserAgent is sent with every page request made by the Collector.
const DefaultUserAgent = "Mozilla/5.0 (compatible; PricewatchBot/1.0)"

// Reasons reported in unsuccessful results. They are shown to end users, so transport
// details stay in the logs.
const (
	ErrMsgFetchFailed = "Could not load the product page."
	ErrMsgNotHTML     = "The product page is not an HTML document."
)

// inlineTags are rendered as part of the surrounding line.
var inlineTags = map[string]bool{
	"a": true, "abbr": true, "b": true, "bdi": true, "bdo": true, "cite": true, "code": true, "data": true,
	"del": true, "em": true, "font": true, "i": true, "ins": true, "kbd": true, "label": true, "mark": true,
	"q": true, "s": true, "small": true, "span": true, "strike": true, "strong": true, "sub": true, "sup": true,
	"time": true, "u": true, "var": true, "wbr": true,
}

// Scraper fetches a page and returns its markdown-like text and metadata.
type Scraper interface {
	Scrape(ctx context.Context, url string) (*models.ScrapeResult, error)
}

// Collector scrapes server-rendered pages directly with colly.
type Collector struct {
	log       *slog.Logger
	timeout   time.Duration
	userAgent string
}

// NewCollector creates a Collector whose requests time out after timeout.
func NewCollector(log *slog.Logger, timeout time.Duration) *Collector {
	return &Collector{log: log, timeout: timeout, userAgent: DefaultUserAgent}
}

// Scrape visits url and converts the returned HTML into text and metadata.
// A page that cannot be fetched yields an unsuccessful result rather than an error.
func (c *Collector) Scrape(ctx context.Context, url string) (*models.ScrapeResult, error) {
	const opn = "scraper.Collector.Scrape"
	log := c.log.With("op", opn, "url", url)

	collector := colly.NewCollector(colly.UserAgent(c.userAgent), colly.AllowURLRevisit())
	collector.Context = ctx
	if c.timeout > 0 {
		collector.SetRequestTimeout(c.timeout)
	}

	var data *models.ScrapeData
	collector.OnHTML("html", func(e *colly.HTMLElement) {
		data = &models.ScrapeData{
			Markdown: pageText(e.DOM),
			Metadata: pageMetadata(e.DOM),
		}
	})

	log.DebugContext(ctx, "Send request")

	if err := collector.Visit(url); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s: %w", opn, ctx.Err())
		}
		log.WarnContext(ctx, "Failed to fetch page", "error", err)
		return &models.ScrapeResult{Success: false, Error: ErrMsgFetchFailed}, nil
	}

	if data == nil {
		log.WarnContext(ctx, "Response is not an HTML document")
		return &models.ScrapeResult{Success: false, Error: ErrMsgNotHTML}, nil
	}

	log.InfoContext(ctx, "Successfully scraped page", "text_length", len(data.Markdown))

	return &models.ScrapeResult{Success: true, Data: data}, nil
}

// pageMetadata collects the title and the Open Graph tags of a document.
func pageMetadata(doc *goquery.Selection) map[string]any {
	metadata := map[string]any{
		"title": strings.TrimSpace(doc.Find("head title").First().Text()),
	}

	doc.Find(`meta[property^="og:"]`).Each(func(_ int, s *goquery.Selection) {
		prop, _ := s.Attr("property")
		content := strings.TrimSpace(s.AttrOr("content", ""))
		if content == "" {
			return
		}
		metadata[prop] = content
		if prop == "og:title" {
			metadata["ogTitle"] = content
		}
	})

	if desc := strings.TrimSpace(doc.Find(`meta[name="description"]`).AttrOr("content", "")); desc != "" {
		metadata["description"] = desc
	}

	return metadata
}

// pageText renders the body as lightweight markdown. Every block element contributes one line
// built from its text and inline children; headings and list items keep their markers.
// Scripts and styles are dropped.
func pageText(doc *goquery.Selection) string {
	body := doc.Find("body").Clone()
	body.Find("script, style, noscript, template, svg").Remove()

	var lines []string
	collectLines(body, &lines)

	if len(lines) == 0 {
		return strings.Join(strings.Fields(body.Text()), " ")
	}

	return strings.Join(lines, "\n")
}

// collectLines walks the children of block. Text runs are flushed as a line whenever a nested
// block element starts, so text around nested blocks keeps its document order.
func collectLines(block *goquery.Selection, lines *[]string) {
	var run strings.Builder

	flush := func() {
		text := strings.Join(strings.Fields(run.String()), " ")
		run.Reset()
		if text != "" {
			*lines = append(*lines, formatLine(goquery.NodeName(block), text))
		}
	}

	block.Contents().Each(func(_ int, child *goquery.Selection) {
		switch name := goquery.NodeName(child); {
		case name == "#text":
			run.WriteString(child.Text())
		case strings.HasPrefix(name, "#"):
			// comments and doctype
		case name == "br":
			run.WriteString(" ")
		case inlineTags[name]:
			run.WriteString(child.Text())
		default:
			flush()
			collectLines(child, lines)
		}
	})

	flush()
}

func formatLine(tag, text string) string {
	switch tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return strings.Repeat("#", int(tag[1]-'0')) + " " + text
	case "li":
		return "- " + text
	default:
		return text
	}
}

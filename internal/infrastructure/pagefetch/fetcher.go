package pagefetch

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
)

const (
	requestTimeout = 10 * time.Second
	maxTextLen     = 20000
)

// Fetcher pulls the visible text of a posting's linked page. Short forum
// comments often just link out to the real job description; the extra text
// gives enrichment more to work with.
type Fetcher struct {
	logger *log.Logger
}

func NewFetcher(logger *log.Logger) *Fetcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Fetcher{logger: logger}
}

// FetchText visits url and returns the page body's visible text, trimmed
// to a sane length. Failures are soft: callers fall back to the raw
// posting text.
func (f *Fetcher) FetchText(url string) (string, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return "", errors.New("empty url")
	}

	c := colly.NewCollector(
		colly.UserAgent("resume-pathways/1.0"),
		colly.MaxDepth(1),
	)
	c.SetRequestTimeout(requestTimeout)

	var text string
	c.OnHTML("body", func(e *colly.HTMLElement) {
		text = collapseWhitespace(e.Text)
	})

	var visitErr error
	c.OnError(func(_ *colly.Response, err error) {
		visitErr = err
	})

	if err := c.Visit(url); err != nil {
		return "", err
	}
	c.Wait()

	if visitErr != nil {
		return "", visitErr
	}
	if text == "" {
		return "", errors.New("no visible text extracted")
	}

	runes := []rune(text)
	if len(runes) > maxTextLen {
		text = string(runes[:maxTextLen])
	}
	return text, nil
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

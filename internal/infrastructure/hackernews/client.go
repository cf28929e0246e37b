package hackernews

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client talks to the Firebase Hacker News API. "Who is hiring" threads are
// regular items whose kids are the individual job postings.
type Client struct {
	http *resty.Client
}

// Item mirrors the HN item payload.
type Item struct {
	ID      int64   `json:"id"`
	Type    string  `json:"type"`
	By      string  `json:"by"`
	Time    int64   `json:"time"`
	Text    string  `json:"text"`
	URL     string  `json:"url"`
	Title   string  `json:"title"`
	Kids    []int64 `json:"kids"`
	Deleted bool    `json:"deleted"`
	Dead    bool    `json:"dead"`
}

var ErrItemNotFound = errors.New("hackernews item not found")

func NewClient(baseURL string) *Client {
	c := resty.New().
		SetBaseURL(strings.TrimRight(strings.TrimSpace(baseURL), "/")).
		SetTimeout(15 * time.Second).
		SetHeader("Accept", "application/json")
	return &Client{http: c}
}

func (c *Client) GetItem(ctx context.Context, id int64) (Item, error) {
	if c == nil || c.http == nil {
		return Item{}, errors.New("nil hackernews client")
	}

	var item Item
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&item).
		Get(fmt.Sprintf("/item/%d.json", id))
	if err != nil {
		return Item{}, fmt.Errorf("hackernews item %d: %w", id, err)
	}
	if resp.StatusCode() != 200 {
		return Item{}, fmt.Errorf("hackernews item %d: status %d", id, resp.StatusCode())
	}
	// Firebase returns the literal "null" for unknown ids.
	if item.ID == 0 {
		return Item{}, ErrItemNotFound
	}
	return item, nil
}

func (i Item) PostedAt() time.Time {
	if i.Time == 0 {
		return time.Time{}
	}
	return time.Unix(i.Time, 0).UTC()
}

// SourceID is the stable external id used as the dedup key.
func (i Item) SourceID() string {
	return strconv.FormatInt(i.ID, 10)
}

func (i Item) PermaLink() string {
	return fmt.Sprintf("https://news.ycombinator.com/item?id=%d", i.ID)
}

var (
	tagRe  = regexp.MustCompile(`<[^>]+>`)
	hrefRe = regexp.MustCompile(`<a[^>]+href="([^"]+)"`)
)

// PlainText strips the HTML markup HN wraps comments in, keeping paragraph
// breaks.
func (i Item) PlainText() string {
	text := strings.ReplaceAll(i.Text, "<p>", "\n\n")
	text = tagRe.ReplaceAllString(text, "")
	text = html.UnescapeString(text)
	return strings.TrimSpace(text)
}

// MarshalPayload returns the raw item as JSON for archival alongside the
// extracted fields.
func (i Item) MarshalPayload() ([]byte, error) {
	return json.Marshal(i)
}

// FirstLink returns the first URL linked in the comment body, if any.
// Postings often link out to a full job description.
func (i Item) FirstLink() string {
	m := hrefRe.FindStringSubmatch(i.Text)
	if len(m) < 2 {
		return ""
	}
	return html.UnescapeString(m[1])
}

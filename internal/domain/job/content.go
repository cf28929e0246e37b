package job

import (
	"encoding/json"
	"errors"
	"strings"
)

// FailedSentinel marks a posting whose enrichment permanently failed. It is
// distinct from NULL (not yet processed) and excludes the row from automatic
// retries until an operator reset.
const FailedSentinel = "FAILED"

// Content is the structured form of a posting produced by enrichment.
type Content struct {
	Title       string   `json:"title"`
	Company     string   `json:"company,omitempty"`
	Location    Location `json:"location,omitempty"`
	Remote      bool     `json:"remote,omitempty"`
	Type        string   `json:"type,omitempty"`
	Salary      Salary   `json:"salary,omitempty"`
	Experience  string   `json:"experience,omitempty"`
	Skills      []string `json:"skills,omitempty"`
	BonusSkills []string `json:"bonusSkills,omitempty"`
	Description string   `json:"description,omitempty"`
	Apply       string   `json:"apply,omitempty"`
}

type Location struct {
	City        string `json:"city,omitempty"`
	Region      string `json:"region,omitempty"`
	CountryCode string `json:"countryCode,omitempty"`
}

type Salary struct {
	Min      float64 `json:"min,omitempty"`
	Max      float64 `json:"max,omitempty"`
	Currency string  `json:"currency,omitempty"`
}

var (
	ErrContentFailed  = errors.New("posting enrichment failed")
	ErrInvalidContent = errors.New("invalid posting content")
)

// ParseContent decodes the stored structured blob. The sentinel yields
// ErrContentFailed so callers can tell "failed" from "malformed".
func ParseContent(raw string) (Content, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Content{}, ErrInvalidContent
	}
	if raw == FailedSentinel {
		return Content{}, ErrContentFailed
	}
	var c Content
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return Content{}, ErrInvalidContent
	}
	if strings.TrimSpace(c.Title) == "" {
		return Content{}, ErrInvalidContent
	}
	return c, nil
}

func SerializeContent(c Content) (string, error) {
	if strings.TrimSpace(c.Title) == "" {
		return "", ErrInvalidContent
	}
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Text renders the structured content as plain text for embedding
// generation.
func (c Content) Text() string {
	var b strings.Builder
	line := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		b.WriteString(s)
		b.WriteString("\n")
	}

	line(c.Title)
	line(c.Company)
	line(strings.TrimSpace(c.Location.City + " " + c.Location.Region + " " + c.Location.CountryCode))
	if c.Remote {
		line("Remote")
	}
	line(c.Type)
	line(c.Experience)
	if len(c.Skills) > 0 {
		line("Skills: " + strings.Join(c.Skills, ", "))
	}
	if len(c.BonusSkills) > 0 {
		line("Nice to have: " + strings.Join(c.BonusSkills, ", "))
	}
	line(c.Description)

	return strings.TrimSpace(b.String())
}

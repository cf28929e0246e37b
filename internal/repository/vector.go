package repository

import (
	"encoding/json"
	"errors"
	"strings"
)

// ParseVectorText decodes a stored vector regardless of representation:
// pgvector's text form and a JSON array are both "[...]", and Postgres
// float arrays come back as "{...}".
func ParseVectorText(raw string) ([]float32, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("empty vector text")
	}
	if strings.HasPrefix(raw, "{") && strings.HasSuffix(raw, "}") {
		raw = "[" + raw[1:len(raw)-1] + "]"
	}

	var out []float32
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	return out, nil
}

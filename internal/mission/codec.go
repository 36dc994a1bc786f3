package mission

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// dateLayouts lists the timestamp shapes the collection store has been seen to emit.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

type wireJob struct {
	ID           json.RawMessage `json:"id"`
	Slug         *string         `json:"slug"`
	Title        *string         `json:"title"`
	Company      *string         `json:"company"`
	Location     *string         `json:"location"`
	Type         *string         `json:"type"`
	Description  *string         `json:"description"`
	Salary       json.RawMessage `json:"salary"`
	SalaryType   *string         `json:"salary_type"`
	Requirements []string        `json:"requirements"`
	Benefits     []string        `json:"benefits"`
	PostedDate   *string         `json:"posted_date"`
	CreatedAt    *string         `json:"created_at"`
	UpdatedAt    *string         `json:"updated_at"`
	Applicants   *int            `json:"applicants"`
	Featured     *bool           `json:"featured"`
}

// UnmarshalJSON accepts the loose row shapes returned by the collection store:
// numeric or string ids and salaries, nullable columns and several date layouts.
func (j *Job) UnmarshalJSON(data []byte) error {
	var w wireJob
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decode job: %w", err)
	}
	id, err := scalarString(w.ID)
	if err != nil {
		return fmt.Errorf("decode job id: %w", err)
	}
	salary, err := scalarString(w.Salary)
	if err != nil {
		return fmt.Errorf("decode job %q salary: %w", id, err)
	}
	out := Job{
		ID:           id,
		Slug:         deref(w.Slug),
		Title:        deref(w.Title),
		Company:      deref(w.Company),
		Location:     deref(w.Location),
		Type:         deref(w.Type),
		Description:  deref(w.Description),
		Salary:       salary,
		SalaryType:   deref(w.SalaryType),
		Requirements: w.Requirements,
		Benefits:     w.Benefits,
	}
	if w.Applicants != nil {
		out.Applicants = *w.Applicants
	}
	if w.Featured != nil {
		out.Featured = *w.Featured
	}
	if out.PostedDate, err = parseOptionalDate(w.PostedDate); err != nil {
		return fmt.Errorf("decode job %q posted_date: %w", id, err)
	}
	if out.CreatedAt, err = parseOptionalDate(w.CreatedAt); err != nil {
		return fmt.Errorf("decode job %q created_at: %w", id, err)
	}
	if out.UpdatedAt, err = parseOptionalDate(w.UpdatedAt); err != nil {
		return fmt.Errorf("decode job %q updated_at: %w", id, err)
	}
	*j = out
	return nil
}

// ParseDate parses a date or timestamp in any of the layouts the store emits.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

func parseOptionalDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := ParseDate(*raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func scalarString(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("expected string or number, got %s", raw)
	}
	return n.String(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

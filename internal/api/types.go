package api

import (
	"encoding/json"
	"fmt"
	"time"
)

// Question is a single practice question as served by the backend, merged
// with the current user's progress on it.
type Question struct {
	ID         int      `json:"id"`
	Title      string   `json:"title,omitempty"`
	URL        string   `json:"url,omitempty"`
	Topic      string   `json:"topic,omitempty"`
	Tags       []string `json:"tags"`
	Difficulty string   `json:"difficulty,omitempty"`
	Companies  []string `json:"companies"`
	TaskText   string   `json:"task_text,omitempty"`
	TaskHTML   string   `json:"task_html,omitempty"`
	Hint       string   `json:"hint,omitempty"`
	Solution   string   `json:"solution,omitempty"`
	Answer     string   `json:"answer,omitempty"`

	IsSolved       bool     `json:"is_solved"`
	Attempts       int      `json:"attempts"`
	AvgTimeSeconds *float64 `json:"avg_time_seconds"`
}

// Body returns the authoritative task body: markup when present, else plain text.
func (q Question) Body() string {
	if q.TaskHTML != "" {
		return q.TaskHTML
	}
	return q.TaskText
}

// PlainBody returns the plain-text task body, which is what search runs over.
func (q Question) PlainBody() string {
	return q.TaskText
}

// HasTag reports whether the question carries the given tag.
func (q Question) HasTag(tag string) bool {
	for _, t := range q.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// HasCompany reports whether the question is attributed to the given company.
func (q Question) HasCompany(company string) bool {
	for _, c := range q.Companies {
		if c == company {
			return true
		}
	}
	return false
}

// DailySolved is one point of the solved-per-day series.
type DailySolved struct {
	Date   string `json:"date"` // YYYY-MM-DD
	Solved int    `json:"solved"`
}

// Stats is the aggregate progress snapshot computed by the backend.
type Stats struct {
	TotalQuestions     int            `json:"total_questions"`
	SolvedQuestions    int            `json:"solved_questions"`
	AvgTimeSeconds     *float64       `json:"avg_time_seconds"`
	SolvedByDifficulty map[string]int `json:"solved_by_difficulty"`
	SolvedByTopic      map[string]int `json:"solved_by_topic"`
	SolvedByCompany    map[string]int `json:"solved_by_company"`
	DailySolved        []DailySolved  `json:"daily_solved"`
}

// User is the authenticated account.
type User struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// createdAtLayouts covers RFC 3339 and the zone-less ISO form the backend
// emits for naive UTC timestamps.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func (u *User) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        int    `json:"id"`
		Username  string `json:"username"`
		CreatedAt string `json:"created_at"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	u.ID = raw.ID
	u.Username = raw.Username
	u.CreatedAt = time.Time{}
	if raw.CreatedAt == "" {
		return nil
	}
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, raw.CreatedAt); err == nil {
			u.CreatedAt = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("parse created_at %q", raw.CreatedAt)
}

// ProgressStatus is the backend's verdict on a progress submission.
type ProgressStatus string

const (
	StatusOK            ProgressStatus = "ok"
	StatusAlreadySolved ProgressStatus = "already_solved"
)

// progressUpdate is the request body of POST /questions/{id}/progress.
type progressUpdate struct {
	TimeSpentSeconds float64 `json:"time_spent_seconds"`
	Solved           bool    `json:"solved"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// normalizeQuestions fills nil slices and enforces attempts >= 0 and
// is_solved => attempts >= 1.
func normalizeQuestions(qs []Question) []Question {
	for i := range qs {
		q := &qs[i]
		if q.Tags == nil {
			q.Tags = []string{}
		}
		if q.Companies == nil {
			q.Companies = []string{}
		}
		if q.Attempts < 0 {
			q.Attempts = 0
		}
		if q.IsSolved && q.Attempts == 0 {
			q.Attempts = 1
		}
	}
	return qs
}

func normalizeStats(s *Stats) *Stats {
	if s.SolvedByDifficulty == nil {
		s.SolvedByDifficulty = map[string]int{}
	}
	if s.SolvedByTopic == nil {
		s.SolvedByTopic = map[string]int{}
	}
	if s.SolvedByCompany == nil {
		s.SolvedByCompany = map[string]int{}
	}
	return s
}

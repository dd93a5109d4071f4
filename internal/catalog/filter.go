// Package catalog holds the question catalog fetched from the backend and
// the pure filtering and facet logic over it.
package catalog

import (
	"strings"

	"github.com/abhisek/quantiz/internal/api"
)

// Filter returns the questions matching every active dimension of c, in
// catalog order. The input is not modified.
func Filter(questions []api.Question, c Criteria) []api.Question {
	out := make([]api.Question, 0, len(questions))
	needle := strings.ToLower(c.Search)
	for _, q := range questions {
		if matches(q, c, needle) {
			out = append(out, q)
		}
	}
	return out
}

// Matches reports whether q satisfies c.
func Matches(q api.Question, c Criteria) bool {
	return matches(q, c, strings.ToLower(c.Search))
}

func matches(q api.Question, c Criteria, needle string) bool {
	if c.Difficulty != "" && q.Difficulty != c.Difficulty {
		return false
	}

	if len(c.Topics) > 0 && !containsString(c.Topics, q.Topic) {
		return false
	}

	if c.Company != "" && !q.HasCompany(c.Company) {
		return false
	}

	for _, tag := range c.Tags {
		if !q.HasTag(tag) {
			return false
		}
	}

	if c.OnlyUnsolved && q.IsSolved {
		return false
	}

	if needle != "" {
		if q.Title == "" && q.PlainBody() == "" {
			return false
		}
		haystack := strings.ToLower(q.Title + "\n" + q.PlainBody())
		if !strings.Contains(haystack, needle) {
			return false
		}
	}

	return true
}

// containsString reports whether v is in set. An absent topic (empty
// string) never matches a non-empty selection.
func containsString(set []string, v string) bool {
	if v == "" {
		return false
	}
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

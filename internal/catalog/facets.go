package catalog

import (
	"slices"

	"github.com/abhisek/quantiz/internal/api"
)

// Facets are the distinct filter values present in a catalog.
type Facets struct {
	Difficulties []string // first-appearance order
	Topics       []string // sorted
	Tags         []string // sorted
	Companies    []string // sorted
}

// FacetsOf derives facets from the unfiltered catalog, so the user can
// always broaden a filter back out.
func FacetsOf(questions []api.Question) Facets {
	var f Facets
	seenDiff := map[string]bool{}
	topics := map[string]bool{}
	tags := map[string]bool{}
	companies := map[string]bool{}

	for _, q := range questions {
		if q.Difficulty != "" && !seenDiff[q.Difficulty] {
			seenDiff[q.Difficulty] = true
			f.Difficulties = append(f.Difficulties, q.Difficulty)
		}
		if q.Topic != "" {
			topics[q.Topic] = true
		}
		for _, t := range q.Tags {
			if t != "" {
				tags[t] = true
			}
		}
		for _, c := range q.Companies {
			if c != "" {
				companies[c] = true
			}
		}
	}

	f.Topics = sortedKeys(topics)
	f.Tags = sortedKeys(tags)
	f.Companies = sortedKeys(companies)
	return f
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quantiz/internal/api"
)

func ids(qs []api.Question) []int {
	out := make([]int, 0, len(qs))
	for _, q := range qs {
		out = append(out, q.ID)
	}
	return out
}

func sampleCatalog() []api.Question {
	return []api.Question{
		{ID: 1, Title: "Coin flips", Topic: "probability", Difficulty: "easy", Tags: []string{"coins", "expectation"}, Companies: []string{"Jane Street"}, TaskText: "Expected number of flips until HH."},
		{ID: 2, Title: "Dice sums", Topic: "probability", Difficulty: "hard", Tags: []string{"dice"}, Companies: []string{"Citadel", "Jane Street"}, IsSolved: true, Attempts: 2},
		{ID: 3, Title: "Brainteaser", Topic: "logic", Difficulty: "medium", Tags: []string{"coins"}, TaskHTML: "<p>only markup</p>"},
		{ID: 4, Topic: "statistics", Tags: []string{"expectation"}, TaskText: "Estimate the variance."},
		{ID: 5, Difficulty: "easy", Tags: []string{}},
	}
}

func TestFilter_Dimensions(t *testing.T) {
	tests := []struct {
		name string
		c    Criteria
		want []int
	}{
		{"no criteria", Criteria{}, []int{1, 2, 3, 4, 5}},
		{"difficulty exact", Criteria{Difficulty: "easy"}, []int{1, 5}},
		{"difficulty missing on question fails", Criteria{Difficulty: "medium"}, []int{3}},
		{"difficulty case sensitive", Criteria{Difficulty: "Easy"}, []int{}},
		{"single topic", Criteria{Topics: []string{"logic"}}, []int{3}},
		{"topics are OR", Criteria{Topics: []string{"logic", "statistics"}}, []int{3, 4}},
		{"company membership", Criteria{Company: "Jane Street"}, []int{1, 2}},
		{"single tag", Criteria{Tags: []string{"coins"}}, []int{1, 3}},
		{"tags are AND", Criteria{Tags: []string{"coins", "expectation"}}, []int{1}},
		{"only unsolved", Criteria{OnlyUnsolved: true}, []int{1, 3, 4, 5}},
		{"search title case insensitive", Criteria{Search: "DICE"}, []int{2}},
		{"search plain body", Criteria{Search: "variance"}, []int{4}},
		{"search ignores markup-only body", Criteria{Search: "markup"}, []int{}},
		{"search without title or text never matches", Criteria{Search: "e"}, []int{1, 2, 3, 4}},
		{"conjunction", Criteria{Difficulty: "easy", Tags: []string{"coins"}, Search: "flips"}, []int{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(sampleCatalog(), tt.c)))
		})
	}
}

func TestFilter_ScenarioEasyDifficulty(t *testing.T) {
	catalog := []api.Question{
		{ID: 1, Difficulty: "easy", IsSolved: false},
		{ID: 2, Difficulty: "hard", IsSolved: true, Attempts: 1},
	}
	assert.Equal(t, []int{1}, ids(Filter(catalog, Criteria{Difficulty: "easy"})))
}

func TestFilter_TagAndTopicSemantics(t *testing.T) {
	q := api.Question{ID: 1, Topic: "X", Tags: []string{"A"}}

	assert.False(t, Matches(q, Criteria{Tags: []string{"A", "B"}}), "tag selection is AND")
	assert.True(t, Matches(q, Criteria{Topics: []string{"X", "Y"}}), "topic selection is OR")
}

func TestFilter_PreservesOrderAndInput(t *testing.T) {
	in := sampleCatalog()
	out := Filter(in, Criteria{Tags: []string{"expectation"}})
	assert.Equal(t, []int{1, 4}, ids(out))
	assert.Len(t, in, 5)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, ids(in))
}

// Adding any constraint never grows the result set, and every result
// satisfies every active dimension on its own.
func TestFilter_Monotonic(t *testing.T) {
	catalog := sampleCatalog()
	facets := FacetsOf(catalog)

	var constraints []func(Criteria) Criteria
	for _, d := range facets.Difficulties {
		constraints = append(constraints, func(c Criteria) Criteria { c.Difficulty = d; return c })
	}
	for _, tp := range facets.Topics {
		constraints = append(constraints, func(c Criteria) Criteria { return c.ToggleTopic(tp) })
	}
	for _, tg := range facets.Tags {
		constraints = append(constraints, func(c Criteria) Criteria { return c.ToggleTag(tg) })
	}
	for _, co := range facets.Companies {
		constraints = append(constraints, func(c Criteria) Criteria { c.Company = co; return c })
	}
	constraints = append(constraints,
		func(c Criteria) Criteria { c.OnlyUnsolved = true; return c },
		func(c Criteria) Criteria { c.Search += "o"; return c },
	)

	bases := []Criteria{
		{},
		{Tags: []string{"coins"}},
		{OnlyUnsolved: true},
		{Search: "e"},
	}

	for _, base := range bases {
		before := Filter(catalog, base)
		for _, add := range constraints {
			narrowed := add(base)
			// Topic toggles can remove a selected topic and broaden; only
			// compare strictly additive changes.
			if len(narrowed.Topics) < len(base.Topics) || len(narrowed.Tags) < len(base.Tags) {
				continue
			}
			if base.Difficulty != "" || base.Company != "" {
				continue
			}
			after := Filter(catalog, narrowed)
			require.LessOrEqual(t, len(after), len(before), "criteria %s", narrowed.Key())
			for _, q := range after {
				assert.True(t, Matches(q, base), "result must satisfy base criteria")
				assert.Contains(t, ids(before), q.ID)
			}
		}
	}
}

func TestFacetsOf(t *testing.T) {
	f := FacetsOf(append([]api.Question{
		{ID: 9, Difficulty: "hard", Topic: "algebra", Tags: []string{"zeta", "alpha"}, Companies: []string{"Optiver"}},
	}, sampleCatalog()...))

	assert.Equal(t, []string{"hard", "easy", "medium"}, f.Difficulties, "first appearance order")
	assert.Equal(t, []string{"algebra", "logic", "probability", "statistics"}, f.Topics)
	assert.Equal(t, []string{"alpha", "coins", "dice", "expectation", "zeta"}, f.Tags)
	assert.Equal(t, []string{"Citadel", "Jane Street", "Optiver"}, f.Companies)
}

func TestFacetsOf_Empty(t *testing.T) {
	f := FacetsOf(nil)
	assert.Empty(t, f.Difficulties)
	assert.Empty(t, f.Topics)
	assert.Empty(t, f.Tags)
}

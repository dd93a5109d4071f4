package catalog

import (
	"slices"
	"strconv"
	"strings"
)

// Criteria is the ephemeral filter state of the catalog view. The zero
// value matches every question.
type Criteria struct {
	Difficulty   string
	Company      string
	Topics       []string // OR: question topic must be one of these
	Tags         []string // AND: question must carry every one of these
	Search       string
	OnlyUnsolved bool
}

// Active reports whether any dimension constrains the result.
func (c Criteria) Active() bool {
	return c.Difficulty != "" ||
		c.Company != "" ||
		len(c.Topics) > 0 ||
		len(c.Tags) > 0 ||
		c.Search != "" ||
		c.OnlyUnsolved
}

// Key returns a canonical string form. Two criteria with equal keys select
// exactly the same questions from any catalog.
func (c Criteria) Key() string {
	var b strings.Builder
	b.WriteString("d=")
	b.WriteString(strconv.Quote(c.Difficulty))
	b.WriteString(";c=")
	b.WriteString(strconv.Quote(c.Company))
	b.WriteString(";t=")
	writeSet(&b, c.Topics)
	b.WriteString(";g=")
	writeSet(&b, c.Tags)
	b.WriteString(";s=")
	b.WriteString(strconv.Quote(strings.ToLower(c.Search)))
	b.WriteString(";u=")
	b.WriteString(strconv.FormatBool(c.OnlyUnsolved))
	return b.String()
}

func writeSet(b *strings.Builder, set []string) {
	sorted := slices.Clone(set)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	for i, s := range sorted {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(s))
	}
}

// ToggleTopic adds topic to the selection, or removes it if present.
func (c Criteria) ToggleTopic(topic string) Criteria {
	c.Topics = toggle(c.Topics, topic)
	return c
}

// ToggleTag adds tag to the selection, or removes it if present.
func (c Criteria) ToggleTag(tag string) Criteria {
	c.Tags = toggle(c.Tags, tag)
	return c
}

// HasTopic reports whether topic is selected.
func (c Criteria) HasTopic(topic string) bool { return slices.Contains(c.Topics, topic) }

// HasTag reports whether tag is selected.
func (c Criteria) HasTag(tag string) bool { return slices.Contains(c.Tags, tag) }

func toggle(set []string, v string) []string {
	if i := slices.Index(set, v); i >= 0 {
		return slices.Delete(slices.Clone(set), i, i+1)
	}
	return append(slices.Clone(set), v)
}

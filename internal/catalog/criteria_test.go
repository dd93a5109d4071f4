package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCriteria_KeyIsCanonical(t *testing.T) {
	a := Criteria{Topics: []string{"b", "a"}, Tags: []string{"y", "x", "x"}, Search: "Coin"}
	b := Criteria{Topics: []string{"a", "b"}, Tags: []string{"x", "y"}, Search: "coin"}
	assert.Equal(t, a.Key(), b.Key())

	c := b
	c.OnlyUnsolved = true
	assert.NotEqual(t, b.Key(), c.Key())

	// Values that would collide under naive joining stay distinct.
	assert.NotEqual(t,
		Criteria{Topics: []string{"a,b"}}.Key(),
		Criteria{Topics: []string{"a", "b"}}.Key(),
	)
}

func TestCriteria_Active(t *testing.T) {
	assert.False(t, Criteria{}.Active())
	assert.True(t, Criteria{OnlyUnsolved: true}.Active())
	assert.True(t, Criteria{Search: "x"}.Active())
	assert.True(t, Criteria{}.ToggleTag("t").Active())
}

func TestCriteria_Toggle(t *testing.T) {
	c := Criteria{}.ToggleTopic("p").ToggleTopic("q")
	assert.Equal(t, []string{"p", "q"}, c.Topics)
	assert.True(t, c.HasTopic("p"))

	d := c.ToggleTopic("p")
	assert.Equal(t, []string{"q"}, d.Topics)
	assert.Equal(t, []string{"p", "q"}, c.Topics, "toggle does not alias the original")

	e := Criteria{}.ToggleTag("x")
	assert.True(t, e.HasTag("x"))
	assert.False(t, e.ToggleTag("x").HasTag("x"))
}

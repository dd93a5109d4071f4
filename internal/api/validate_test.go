package api

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePayload(t *testing.T) {
	tests := []struct {
		name    string
		schema  *payloadSchema
		raw     string
		wantErr bool
	}{
		{"empty catalog", catalogSchema, `[]`, false},
		{"minimal question", catalogSchema, `[{"id":1}]`, false},
		{"null optionals", catalogSchema, `[{"id":1,"title":null,"tags":null,"avg_time_seconds":null}]`, false},
		{"missing id", catalogSchema, `[{"title":"x"}]`, true},
		{"string id", catalogSchema, `[{"id":"1"}]`, true},
		{"catalog not array", catalogSchema, `{"id":1}`, true},
		{"non-string tag", catalogSchema, `[{"id":1,"tags":[1]}]`, true},
		{"malformed json", catalogSchema, `[{`, true},
		{"stats ok", statsSchema, `{"total_questions":1,"solved_questions":0,"avg_time_seconds":null,"daily_solved":[]}`, false},
		{"stats negative count", statsSchema, `{"total_questions":1,"solved_questions":0,"solved_by_topic":{"x":-1}}`, true},
		{"stats daily missing date", statsSchema, `{"total_questions":1,"solved_questions":0,"daily_solved":[{"solved":1}]}`, true},
		{"status ok", statusSchema, `{"status":"already_solved"}`, false},
		{"status missing", statusSchema, `{}`, true},
		{"user ok", userSchema, `{"id":1,"username":"a","created_at":"2024-01-01T00:00:00"}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePayload(tt.schema, []byte(tt.raw))
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			var inv *InvalidPayloadError
			assert.True(t, errors.As(err, &inv))
			assert.Equal(t, tt.schema.Name, inv.Schema)
		})
	}
}

func TestNormalizeQuestions(t *testing.T) {
	qs := normalizeQuestions([]Question{
		{ID: 1, Attempts: -3},
		{ID: 2, IsSolved: true},
		{ID: 3, IsSolved: true, Attempts: 4, Tags: []string{"a"}},
	})

	assert.Equal(t, 0, qs[0].Attempts)
	assert.Equal(t, []string{}, qs[0].Tags)
	assert.Equal(t, []string{}, qs[0].Companies)
	assert.Equal(t, 1, qs[1].Attempts)
	assert.Equal(t, 4, qs[2].Attempts)
	assert.Equal(t, []string{"a"}, qs[2].Tags)
}

func TestQuestionBody(t *testing.T) {
	q := Question{TaskText: "plain", TaskHTML: "<p>rich</p>"}
	assert.Equal(t, "<p>rich</p>", q.Body())
	assert.Equal(t, "plain", q.PlainBody())

	q.TaskHTML = ""
	assert.Equal(t, "plain", q.Body())
}

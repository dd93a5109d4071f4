package session

import (
	"math/rand/v2"

	"github.com/abhisek/quantiz/internal/api"
)

// pickQuestion picks uniformly at random from the unsolved questions, or
// from the whole catalog once everything is solved. Nothing prevents the
// same question from being picked twice in a row; in the fallback case a
// just-solved question may come straight back.
func pickQuestion(questions []api.Question, intn func(int) int) (api.Question, bool) {
	pool := make([]api.Question, 0, len(questions))
	for _, q := range questions {
		if !q.IsSolved {
			pool = append(pool, q)
		}
	}
	if len(pool) == 0 {
		pool = questions
	}
	if len(pool) == 0 {
		return api.Question{}, false
	}
	if intn == nil {
		intn = rand.IntN
	}
	return pool[intn(len(pool))], true
}

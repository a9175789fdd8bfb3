package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankOrdersByScoreDescending(t *testing.T) {
	candidates := []string{"handleRequest", "hr", "anotherHelper", "HResult"}
	matches := Rank("hr", candidates)
	require.NotEmpty(t, matches)
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].Score, matches[i].Score)
	}
}

func TestTopCapsResults(t *testing.T) {
	candidates := make([]string, 0, 100)
	for i := 0; i < 100; i++ {
		candidates = append(candidates, "alpha")
	}
	top := Top("a", candidates, 5)
	assert.Len(t, top, 5)
}

func TestRankEmptyQueryReturnsAll(t *testing.T) {
	candidates := []string{"one", "two", "three"}
	matches := Rank("", candidates)
	assert.Len(t, matches, 3)
}

package draw

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/execution-hub/contest-hub/internal/domain/contest"
)

const selfID = "SYSTEM"

func entrants(ids ...string) []contest.Entrant {
	out := make([]contest.Entrant, 0, len(ids))
	for _, id := range ids {
		out = append(out, contest.Entrant{ID: id, Name: "user-" + id})
	}
	return out
}

func TestSelectFiltersBotsSelfAndDuplicates(t *testing.T) {
	s := NewSelector(selfID, zerolog.Nop(), WithSeed(7))
	pool := []contest.Entrant{
		{ID: "A"}, {ID: "A"}, {ID: "B"}, {ID: "BOT", Bot: true}, {ID: selfID},
	}

	for i := 0; i < 20; i++ {
		winners := s.Select(pool, nil, 2)
		require.Len(t, winners, 2)
		assert.ElementsMatch(t, []string{"A", "B"}, winners)
	}
}

func TestSelectExcludesDefaultIdentity(t *testing.T) {
	s := NewSelector("", zerolog.Nop(), WithSeed(1))
	winners := s.Select(entrants(contest.DefaultSystemIdentity, "A"), nil, 2)
	assert.Equal(t, []string{"A"}, winners)
}

func TestSelectReturnsWholePoolWhenShort(t *testing.T) {
	s := NewSelector(selfID, zerolog.Nop())
	winners := s.Select(entrants("A", "B", "C"), nil, 10)
	assert.ElementsMatch(t, []string{"A", "B", "C"}, winners)
}

func TestSelectEmptyPool(t *testing.T) {
	s := NewSelector(selfID, zerolog.Nop())
	assert.Empty(t, s.Select(nil, nil, 3))
	assert.Empty(t, s.Select(entrants(selfID), nil, 3))
	assert.NotNil(t, s.Select(nil, nil, 3))
}

func TestSelectHonoursExcludeList(t *testing.T) {
	s := NewSelector(selfID, zerolog.Nop())
	winners := s.Select(entrants("A", "B", "C", "D"), []string{"B", " D "}, 4)
	assert.ElementsMatch(t, []string{"A", "C"}, winners)
}

func TestSelectCountAndMembershipProperty(t *testing.T) {
	s := NewSelector(selfID, zerolog.Nop(), WithSeed(42))
	for n := 0; n <= 12; n++ {
		ids := make([]string, 0, n*2)
		for i := 0; i < n; i++ {
			id := fmt.Sprintf("u%d", i)
			ids = append(ids, id, id)
		}
		excluded := []string{"u0"}
		filtered := n
		if n > 0 {
			filtered--
		}
		for k := 1; k <= 8; k++ {
			winners := s.Select(entrants(ids...), excluded, k)
			assert.Len(t, winners, min(filtered, k))

			seen := map[string]bool{}
			for _, w := range winners {
				assert.NotEqual(t, "u0", w)
				assert.False(t, seen[w], "duplicate winner %s", w)
				seen[w] = true
			}
		}
	}
}

func TestSelectIsNotBiasedTowardListOrder(t *testing.T) {
	s := NewSelector(selfID, zerolog.Nop(), WithSeed(1))
	pool := entrants("A", "B", "C", "D")
	hits := map[string]int{}
	const rounds = 4000
	for i := 0; i < rounds; i++ {
		hits[s.Select(pool, nil, 1)[0]]++
	}
	for _, id := range []string{"A", "B", "C", "D"} {
		assert.InDelta(t, rounds/4, hits[id], rounds/10, "entrant %s drawn %d times", id, hits[id])
	}
}

func TestSelectEligibleAppliesRequirement(t *testing.T) {
	s := NewSelector(selfID, zerolog.Nop())
	pool := []contest.Entrant{
		{ID: "A", Attributes: map[string]any{"accountAgeDays": 30.0}},
		{ID: "B", Attributes: map[string]any{"accountAgeDays": 2.0}},
		{ID: "C"},
	}

	winners, err := s.SelectEligible(pool, nil, 3, "accountAgeDays >= 7")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, winners)

	winners, err = s.SelectEligible(pool, nil, 3, "")
	require.NoError(t, err)
	assert.Len(t, winners, 3)
}

func TestCompileRequirementRejectsGarbage(t *testing.T) {
	_, err := CompileRequirement("accountAgeDays >= (")
	require.ErrorIs(t, err, contest.ErrInvalidRequirement)

	expr, err := CompileRequirement("   ")
	require.NoError(t, err)
	assert.Nil(t, expr)
}

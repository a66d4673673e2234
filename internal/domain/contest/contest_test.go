package contest

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneKeepsEmptySlices(t *testing.T) {
	c := &Contest{ID: "c1", Winners: []string{}, RerollHistory: []RerollRecord{{Winners: []string{}}}}
	out := c.Clone()
	require.NotNil(t, out.Winners)
	assert.Empty(t, out.Winners)
	require.NotNil(t, out.RerollHistory[0].Winners)

	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"winnerList":[]`)

	assert.Nil(t, (&Contest{ID: "c2"}).Clone().Winners)
}

func TestCloneIsDeep(t *testing.T) {
	ended := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := &Contest{ID: "c1", Winners: []string{"A"}, EndedAt: &ended, Mentions: MentionPolicy{Roles: []string{"r"}}}
	out := c.Clone()
	out.Winners[0] = "B"
	out.Mentions.Roles[0] = "x"
	*out.EndedAt = ended.Add(time.Hour)
	assert.Equal(t, "A", c.Winners[0])
	assert.Equal(t, "r", c.Mentions.Roles[0])
	assert.Equal(t, ended, *c.EndedAt)
}

func TestMarkEndedWithNoWinners(t *testing.T) {
	c := &Contest{ID: "c1", Status: StatusActive}
	require.NoError(t, c.MarkEnded(time.Now(), ReasonAuto, nil))
	require.NotNil(t, c.Winners)
	assert.Empty(t, c.Winners)
	assert.ErrorIs(t, c.MarkEnded(time.Now(), ReasonAuto, nil), ErrInvalidTransition)

	rec := c.AppendReroll(time.Now(), 1, nil)
	assert.NotNil(t, rec.Winners)
}

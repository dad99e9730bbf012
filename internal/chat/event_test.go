package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionTokenRoundTrip(t *testing.T) {
	a := Action{Verb: VerbConfirm, Identity: "u1", ReviewID: "rev-42"}
	got, err := ParseAction(a.Token())
	require.NoError(t, err)
	assert.Equal(t, a, got)
}

func TestParseAction_Invalid(t *testing.T) {
	for _, token := range []string{
		"",
		"confirm",
		"confirm:u1",
		"confirm::rev-1",
		"confirm:u1:",
		"approve:u1:rev-1",
	} {
		_, err := ParseAction(token)
		assert.Error(t, err, "token %q", token)
	}
}

func TestParseAction_ReviewIDMayContainColons(t *testing.T) {
	// everything after the second separator belongs to the review id
	got, err := ParseAction("reject:u1:rev:extra")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.Identity)
	assert.Equal(t, "rev:extra", got.ReviewID)
}

func TestKindValid(t *testing.T) {
	assert.True(t, KindText.Valid())
	assert.True(t, KindImage.Valid())
	assert.True(t, KindAction.Valid())
	assert.False(t, Kind("sticker").Valid())
	assert.False(t, Kind("").Valid())
}

package kitchen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBumpTable(t *testing.T) {
	cases := map[Status]Status{
		StatusOpen:      StatusPreparing,
		StatusPreparing: StatusReady,
		StatusReady:     StatusPaid,
	}
	for from, want := range cases {
		got, err := Bump(from)
		require.NoError(t, err, from)
		assert.Equal(t, want, got)
	}

	got, err := Bump(StatusPaid)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StatusPaid, got)
}

func TestRecallTable(t *testing.T) {
	got, err := Recall(StatusReady)
	require.NoError(t, err)
	assert.Equal(t, StatusPreparing, got)

	got, err = Recall(StatusPreparing)
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, got)

	for _, s := range []Status{StatusOpen, StatusPaid, Status("canceled")} {
		got, err := Recall(s)
		assert.ErrorIs(t, err, ErrInvalidTransition, s)
		assert.Equal(t, s, got)
	}
}

func TestApplyAndParse(t *testing.T) {
	a, ok := ParseAction("bump")
	require.True(t, ok)
	got, err := Apply(a, StatusOpen)
	require.NoError(t, err)
	assert.Equal(t, StatusPreparing, got)

	_, ok = ParseAction("BUMP")
	assert.False(t, ok)

	_, err = Apply(Action("skip"), StatusOpen)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

package booking

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanTransitionTo(t *testing.T) {
	allowed := map[[2]Status]bool{
		{StatusPending, StatusConfirmed}:   true,
		{StatusPending, StatusCancelled}:   true,
		{StatusConfirmed, StatusFinalized}: true,
		{StatusConfirmed, StatusCancelled}: true,
	}
	all := []Status{StatusPending, StatusConfirmed, StatusCancelled, StatusFinalized}
	for _, from := range all {
		for _, to := range all {
			want := from == to || allowed[[2]Status{from, to}]
			require.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestTerminal(t *testing.T) {
	require.True(t, StatusCancelled.Terminal())
	require.True(t, StatusFinalized.Terminal())
	require.False(t, StatusPending.Terminal())
	require.False(t, StatusConfirmed.Terminal())
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("confirmed")
	require.NoError(t, err)
	require.Equal(t, StatusConfirmed, s)

	_, err = ParseStatus("confirmada")
	require.ErrorIs(t, err, ErrValidation)
}

func TestCheckTransition(t *testing.T) {
	require.NoError(t, checkTransition(StatusPending, StatusPending))
	require.ErrorIs(t, checkTransition(StatusFinalized, StatusPending), ErrInvalidTransition)
	require.ErrorIs(t, checkTransition(StatusPending, "bogus"), ErrValidation)
}

package booking

import (
	"testing"

	"github.com/example/hotel-booking/internal/money"
	"github.com/stretchr/testify/require"
)

func TestComputePrice(t *testing.T) {
	rate, err := money.Parse("100.00")
	require.NoError(t, err)

	s := stay("2024-03-01", "2024-03-04")
	total := ComputePrice(s.Nights(), rate)
	require.Equal(t, 3, s.Nights())
	require.Equal(t, "300.00", total.String())

	require.Equal(t, money.FromCents(3*18999), ComputePrice(3, money.FromCents(18999)))
}

func TestReprice(t *testing.T) {
	var r Reservation
	r.reprice(stay("2024-05-10", "2024-05-12"), money.FromCents(12550))
	require.Equal(t, 2, r.Nights)
	require.Equal(t, "251.00", r.TotalPrice.String())
	require.Equal(t, date("2024-05-10"), r.CheckIn)
}

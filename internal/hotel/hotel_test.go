package hotel

import (
	"errors"
	"testing"
	"time"

	"github.com/example/hotel-booking/internal/internaltypes"
	"github.com/example/hotel-booking/internal/money"
	"github.com/stretchr/testify/require"
)

func TestRoomValidate(t *testing.T) {
	r := Room{Number: "101", Capacity: 2, NightlyRate: money.FromCents(10000)}.WithDefaults()
	require.Equal(t, RoomSingle, r.Type)
	require.Equal(t, RoomAvailable, r.Status)
	require.NoError(t, r.Validate())

	bad := r
	bad.NightlyRate = 0
	bad.Capacity = 11
	err := bad.Validate()
	require.True(t, errors.Is(err, internaltypes.ErrValidation))

	var verr *internaltypes.ValidationError
	require.True(t, errors.As(err, &verr))
	fields := map[string]bool{}
	for _, f := range verr.Fields {
		fields[f.Field] = true
	}
	require.True(t, fields["capacity"])
	require.True(t, fields["nightlyRate"])
}

func TestRoomValidate_UnknownType(t *testing.T) {
	r := Room{Number: "7", Type: "penthouse", Capacity: 1, NightlyRate: 1, Status: RoomAvailable}
	require.ErrorIs(t, r.Validate(), internaltypes.ErrValidation)
}

func TestClientValidate(t *testing.T) {
	c := Client{Name: "Maria Silva", Document: "123.456.789-00", Email: "maria@example.com", Phone: "555-0100"}
	require.NoError(t, c.Validate())

	future := time.Now().AddDate(1, 0, 0)
	c.BirthDate = &future
	err := c.Validate()
	require.ErrorIs(t, err, internaltypes.ErrValidation)
	require.Contains(t, err.Error(), "birthDate")

	c.BirthDate = nil
	c.Name = "Al"
	require.ErrorIs(t, c.Validate(), internaltypes.ErrValidation)
}

func TestRoomFilterMatch(t *testing.T) {
	r := Room{Type: RoomSuite, Status: RoomMaintenance}
	require.True(t, RoomFilter{}.Match(r))
	require.True(t, RoomFilter{Type: RoomSuite}.Match(r))
	require.False(t, RoomFilter{Status: RoomAvailable}.Match(r))
	require.False(t, RoomFilter{Status: RoomMaintenance, Type: RoomDouble}.Match(r))
}

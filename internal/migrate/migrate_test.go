package migrate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilesOrdered(t *testing.T) {
	got, err := files()
	require.NoError(t, err)
	require.Equal(t, []string{"0001_users.sql", "0002_hotel.sql", "0003_reservation_overlap.sql"}, got)
}

func TestOverlapConstraintIsInclusive(t *testing.T) {
	b, err := fs.ReadFile("0003_reservation_overlap.sql")
	require.NoError(t, err)
	sql := string(b)
	require.True(t, strings.Contains(sql, "daterange(check_in, check_out, '[]')"))
	require.True(t, strings.Contains(sql, "WHERE (status <> 'cancelled')"))
}

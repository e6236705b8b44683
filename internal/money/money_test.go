package money

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := map[string]int64{
		"100":    10000,
		"100.5":  10050,
		"100.05": 10005,
		"0.01":   1,
		".5":     50,
		"-2.10":  -210,
	}
	cases["92233720368547757.99"] = 9223372036854775799
	for in, want := range cases {
		got, err := Parse(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got.Cents(), in)
	}

	for _, bad := range []string{
		"", "abc", "1.234", "1.", "1.-5",
		"-", ".", "--150", "-+1", "+150", "1.+5", " 1 .50", "1e3",
		"92233720368547758", "99999999999999999999",
	} {
		_, err := Parse(bad)
		require.Error(t, err, bad)
	}
}

func TestString(t *testing.T) {
	require.Equal(t, "300.00", FromCents(30000).String())
	require.Equal(t, "0.07", FromCents(7).String())
	require.Equal(t, "-1.50", FromCents(-150).String())
	require.Equal(t, "451.50", FromCents(15050).Times(3).String())
}

func TestJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Total Amount `json:"total"`
	}{FromCents(30000)})
	require.NoError(t, err)
	require.JSONEq(t, `{"total":300.00}`, string(b))

	var v struct {
		A Amount `json:"a"`
		B Amount `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":150.5,"b":"99.99"}`), &v))
	require.Equal(t, int64(15050), v.A.Cents())
	require.Equal(t, int64(9999), v.B.Cents())

	require.Error(t, json.Unmarshal([]byte(`{"a":"--150"}`), &v))
	require.Error(t, json.Unmarshal([]byte(`{"a":1e3}`), &v))
}

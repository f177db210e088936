package units

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToWei(t *testing.T) {
	cases := []struct {
		amount string
		unit   string
		want   string
	}{
		{"1", "ether", "1000000000000000000"},
		{"0.5", "ETH", "500000000000000000"},
		{"3", "gwei", "3000000000"},
		{"42", "", "42"},
		{"42", "wei", "42"},
	}
	for _, tc := range cases {
		got, err := ToWei(decimal.RequireFromString(tc.amount), tc.unit)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got.String(), "%s %s", tc.amount, tc.unit)
	}
}

func TestToWeiUnknownUnit(t *testing.T) {
	_, err := ToWei(decimal.NewFromInt(1), "finney")
	assert.ErrorIs(t, err, ErrUnknownUnit)
}

func TestFromWei(t *testing.T) {
	got, err := FromWei(decimal.RequireFromString("1"), Ether)
	require.NoError(t, err)
	assert.Equal(t, "0.000000000000000001", got.String())

	got, err = FromWei(MustEther("100"), Ether)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(100)))
}

func TestEtherToWeiRejectsGarbage(t *testing.T) {
	_, err := EtherToWei("one")
	assert.Error(t, err)
}

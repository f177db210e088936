package validator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listing struct {
	Name  string          `validate:"required"`
	Price decimal.Decimal `validate:"wei_positive"`
	Owner string          `validate:"nonzero_addr"`
}

const seller = "0x5B38Da6a701c568545dCfcB03FcB875f56beddC4"

func TestValidateStructAcceptsValidListing(t *testing.T) {
	errs := ValidateStruct(&listing{Name: "iPhone X", Price: decimal.NewFromInt(1), Owner: seller})
	assert.Empty(t, errs)
}

func TestValidateStructRejects(t *testing.T) {
	cases := map[string]struct {
		in    listing
		field string
		tag   string
	}{
		"empty name":      {listing{Price: decimal.NewFromInt(1), Owner: seller}, "listing.Name", "required"},
		"zero price":      {listing{Name: "x", Owner: seller}, "listing.Price", "wei_positive"},
		"negative price":  {listing{Name: "x", Price: decimal.NewFromInt(-5), Owner: seller}, "listing.Price", "wei_positive"},
		"fractional wei":  {listing{Name: "x", Price: decimal.RequireFromString("1.5"), Owner: seller}, "listing.Price", "wei_positive"},
		"zero address":    {listing{Name: "x", Price: decimal.NewFromInt(1), Owner: "0x0000000000000000000000000000000000000000"}, "listing.Owner", "nonzero_addr"},
		"garbage address": {listing{Name: "x", Price: decimal.NewFromInt(1), Owner: "bob"}, "listing.Owner", "nonzero_addr"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			errs := ValidateStruct(&tc.in)
			require.Len(t, errs, 1)
			assert.Equal(t, tc.field, errs[0].FailedField)
			assert.Equal(t, tc.tag, errs[0].Tag)
		})
	}
}

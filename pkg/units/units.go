// Package units converts between wei and the human denominations used in requests.
package units

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/params"
	"github.com/shopspring/decimal"
)

const (
	Wei   = "wei"
	Gwei  = "gwei"
	Ether = "ether"
)

var ErrUnknownUnit = errors.New("unknown unit")

func multiplier(unit string) (decimal.Decimal, error) {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "", Wei:
		return decimal.NewFromBigInt(big.NewInt(params.Wei), 0), nil
	case Gwei:
		return decimal.NewFromBigInt(big.NewInt(params.GWei), 0), nil
	case Ether, "eth":
		return decimal.NewFromBigInt(big.NewInt(params.Ether), 0), nil
	default:
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownUnit, unit)
	}
}

// ToWei converts amount expressed in unit into wei. The result may be
// fractional when amount has more precision than the unit allows; callers
// that need whole wei should check IsInteger.
func ToWei(amount decimal.Decimal, unit string) (decimal.Decimal, error) {
	m, err := multiplier(unit)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(m), nil
}

// FromWei converts a wei amount into unit.
func FromWei(wei decimal.Decimal, unit string) (decimal.Decimal, error) {
	m, err := multiplier(unit)
	if err != nil {
		return decimal.Zero, err
	}
	return wei.DivRound(m, 18), nil
}

// EtherToWei is a shorthand used by seeding and tests, e.g. EtherToWei("0.5").
func EtherToWei(ether string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(ether)
	if err != nil {
		return decimal.Zero, err
	}
	return ToWei(d, Ether)
}

// MustEther panics on malformed input; only for constants.
func MustEther(ether string) decimal.Decimal {
	d, err := EtherToWei(ether)
	if err != nil {
		panic(err)
	}
	return d
}

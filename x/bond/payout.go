package bond

import (
	"math"

	"github.com/iov-one/vault/coin"
	"github.com/iov-one/vault/errors"
)

// Payout returns the yield and the total amount (principal plus yield)
// paid for a bond. Yield is rounded down.
//
// ErrOverflow is returned if any intermediate result does not fit int64.
func Payout(principal int64, rate int32) (yield, total int64, err error) {
	if principal <= 0 {
		return 0, 0, errors.Wrap(errors.ErrAmount, "principal must be greater than zero")
	}
	if rate <= 0 {
		return 0, 0, errors.Wrap(errors.ErrInput, "rate must be greater than zero")
	}
	product, err := coin.Mul64(principal, int64(rate))
	if err != nil {
		return 0, 0, errors.Wrap(err, "principal times rate")
	}
	yield = product / 100
	if yield > math.MaxInt64-principal {
		return 0, 0, errors.Wrap(errors.ErrOverflow, "principal plus yield")
	}
	return yield, principal + yield, nil
}

// payoutAmount returns the total paid for a bond as a coin. ErrOverflow is
// returned if the total is not a valid coin amount.
func payoutAmount(principal int64, rate int32, asset string) (coin.Coin, error) {
	_, total, err := Payout(principal, rate)
	if err != nil {
		return coin.Coin{}, err
	}
	if total > coin.MaxAmount {
		return coin.Coin{}, errors.Wrapf(errors.ErrOverflow, "payout %d above the maximum coin amount", total)
	}
	return coin.NewCoin(total, asset), nil
}

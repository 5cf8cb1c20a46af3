package bond

import (
	"math"
	"testing"

	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/vaulttest/assert"
)

func TestPayout(t *testing.T) {
	cases := map[string]struct {
		principal int64
		rate      int32
		wantYield int64
		wantTotal int64
		wantErr   *errors.Error
	}{
		"ten percent": {
			principal: 1000,
			rate:      10,
			wantYield: 100,
			wantTotal: 1100,
		},
		"yield rounded down to zero": {
			principal: 7,
			rate:      10,
			wantYield: 0,
			wantTotal: 7,
		},
		"yield rounded down": {
			principal: 999,
			rate:      3,
			wantYield: 29,
			wantTotal: 1028,
		},
		"rate above hundred percent": {
			principal: 500,
			rate:      250,
			wantYield: 1250,
			wantTotal: 1750,
		},
		"zero principal": {
			principal: 0,
			rate:      10,
			wantErr:   errors.ErrAmount,
		},
		"zero rate": {
			principal: 10,
			rate:      0,
			wantErr:   errors.ErrInput,
		},
		"product overflow": {
			principal: math.MaxInt64 / 2,
			rate:      3,
			wantErr:   errors.ErrOverflow,
		},
		"sum overflow": {
			principal: math.MaxInt64 - 10,
			rate:      1,
			wantErr:   errors.ErrOverflow,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			yield, total, err := Payout(tc.principal, tc.rate)
			if tc.wantErr != nil {
				assert.IsErr(t, tc.wantErr, err)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, tc.wantYield, yield)
			assert.Equal(t, tc.wantTotal, total)
		})
	}
}

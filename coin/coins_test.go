package coin

import (
	"testing"

	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/vaulttest/assert"
)

func coinp(amount int64, ticker string) *Coin {
	c := NewCoin(amount, ticker)
	return &c
}

func mustCombineCoins(cs ...Coin) Coins {
	s, err := CombineCoins(cs...)
	if err != nil {
		panic(err)
	}
	return s
}

func TestMakeCoins(t *testing.T) {
	cases := map[string]struct {
		inputs  []Coin
		want    Coins
		wantErr *errors.Error
	}{
		"empty": {},
		"sorted and merged": {
			inputs: []Coin{NewCoin(5, "IOV"), NewCoin(3, "ETH"), NewCoin(2, "IOV")},
			want:   Coins{coinp(3, "ETH"), coinp(7, "IOV")},
		},
		"zero sum removed": {
			inputs: []Coin{NewCoin(5, "IOV"), NewCoin(-5, "IOV"), NewCoin(1, "ETH")},
			want:   Coins{coinp(1, "ETH")},
		},
		"invalid ticker": {
			inputs:  []Coin{NewCoin(5, "iov")},
			wantErr: errors.ErrCurrency,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := CombineCoins(tc.inputs...)
			if tc.wantErr != nil {
				assert.IsErr(t, tc.wantErr, err)
				return
			}
			assert.Nil(t, err)
			if !got.Equals(tc.want) {
				t.Fatalf("want %v, got %v", tc.want, got)
			}
		})
	}
}

func TestCoinsAddDoesNotModifyReceiver(t *testing.T) {
	a := mustCombineCoins(NewCoin(5, "IOV"))
	b, err := a.Add(NewCoin(3, "IOV"))
	assert.Nil(t, err)
	assert.Equal(t, int64(5), a.Get("IOV").Amount)
	assert.Equal(t, int64(8), b.Get("IOV").Amount)
	assert.Equal(t, NewCoin(0, "ETH"), b.Get("ETH"))
}

func TestCoinsContains(t *testing.T) {
	w := mustCombineCoins(NewCoin(5, "IOV"), NewCoin(2, "ETH"))
	assert.Equal(t, true, w.Contains(NewCoin(5, "IOV")))
	assert.Equal(t, false, w.Contains(NewCoin(6, "IOV")))
	assert.Equal(t, false, w.Contains(NewCoin(1, "BTC")))
	assert.Equal(t, true, w.Contains(NewCoin(0, "BTC")))
}

func TestCoinsValidate(t *testing.T) {
	unsorted := Coins{coinp(1, "IOV"), coinp(1, "ETH")}
	assert.FieldError(t, unsorted.Validate(), "Coins.1", errors.ErrState)

	zero := Coins{coinp(0, "IOV")}
	assert.FieldError(t, zero.Validate(), "Coins.0", errors.ErrState)

	assert.Nil(t, mustCombineCoins(NewCoin(1, "ETH"), NewCoin(1, "IOV")).Validate())
}

func TestCoinsNormalize(t *testing.T) {
	cases := map[string]struct {
		coins Coins
		want  Coins
	}{
		"nil":            {coins: nil, want: nil},
		"only zero":      {coins: Coins{coinp(0, "IOV")}, want: nil},
		"two unordered":  {coins: Coins{coinp(1, "IOV"), coinp(2, "ETH")}, want: Coins{coinp(2, "ETH"), coinp(1, "IOV")}},
		"duplicates":     {coins: Coins{coinp(1, "IOV"), coinp(2, "IOV")}, want: Coins{coinp(3, "IOV")}},
		"already normal": {coins: Coins{coinp(1, "ETH")}, want: Coins{coinp(1, "ETH")}},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := NormalizeCoins(tc.coins)
			assert.Nil(t, err)
			if !got.Equals(tc.want) {
				t.Fatalf("want %v, got %v", tc.want, got)
			}
		})
	}
}

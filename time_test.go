package vault

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/iov-one/vault/errors"
)

func TestUnixTimeUnmarshal(t *testing.T) {
	cases := map[string]struct {
		raw      string
		wantTime UnixTime
		wantErr  *errors.Error
	}{
		"epoch as number": {
			raw:      "0",
			wantTime: 0,
		},
		"epoch as string with offset": {
			raw:      `"1970-01-01T01:00:00+01:00"`,
			wantTime: 0,
		},
		"maturity as string": {
			raw:      `"2021-03-01T12:00:00Z"`,
			wantTime: 1614600000,
		},
		"maturity as number": {
			raw:      "1614600000",
			wantTime: 1614600000,
		},
		"numeric string": {
			raw:      `"1614600000"`,
			wantTime: 1614600000,
		},
		"negative number": {
			raw:     "-1",
			wantErr: errors.ErrInput,
		},
		"before epoch as string": {
			raw:     `"1950-01-01T01:00:00+01:00"`,
			wantErr: errors.ErrInput,
		},
		"not a time": {
			raw:     `"next week"`,
			wantErr: errors.ErrInput,
		},
		"object": {
			raw:     `{}`,
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var got UnixTime
			err := json.Unmarshal([]byte(tc.raw), &got)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %s", err)
			}
			if got != tc.wantTime {
				t.Fatalf("want %d time, got %d", tc.wantTime, got)
			}
		})
	}
}

func TestUnixTimeReached(t *testing.T) {
	now := time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC)
	maturity := AsUnixTime(now).Add(time.Hour + 4*time.Second)

	if maturity.Reached(now) {
		t.Fatal("maturity reached an hour early")
	}
	if maturity.Reached(now.Add(time.Hour + 3*time.Second)) {
		t.Fatal("maturity reached a second early")
	}
	if !maturity.Reached(now.Add(time.Hour + 4*time.Second)) {
		t.Fatal("maturity not reached at the exact time")
	}
	if !maturity.Reached(now.Add(48 * time.Hour)) {
		t.Fatal("maturity not reached after two days")
	}
	if got, want := maturity.String(), "2021-03-01T13:00:04Z"; got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}

package vault

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/iov-one/vault/errors"
)

// UnixTime is a point in time stored as seconds since the epoch. Models use
// it instead of time.Time so that the serialized form is a plain integer.
//
//   int64 maturity_time = 7 [(gogoproto.casttype) = "github.com/iov-one/vault.UnixTime"];
//
type UnixTime int64

// AsUnixTime converts t into its UNIX time representation. Sub second
// precision is dropped.
func AsUnixTime(t time.Time) UnixTime {
	return UnixTime(t.Unix())
}

// ParseUnixTime reads either an RFC3339 formatted time or a number of
// seconds since the epoch.
func ParseUnixTime(raw string) (UnixTime, error) {
	var t UnixTime
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		t = UnixTime(n)
	} else if std, err := time.Parse(time.RFC3339, raw); err == nil {
		t = AsUnixTime(std)
	} else {
		return 0, errors.Wrapf(errors.ErrInput, "invalid time %q", raw)
	}
	if t < 0 {
		return 0, errors.Wrap(errors.ErrInput, "time before epoch")
	}
	return t, nil
}

// Time returns the same moment as a time.Time in UTC.
func (t UnixTime) Time() time.Time {
	return time.Unix(int64(t), 0).UTC()
}

// Add returns t moved by d, truncated to full seconds.
func (t UnixTime) Add(d time.Duration) UnixTime {
	return t + UnixTime(d/time.Second)
}

// Reached returns true if now is at or after t.
func (t UnixTime) Reached(now time.Time) bool {
	return AsUnixTime(now) >= t
}

// UnmarshalJSON accepts a number as well as a time string. Numbers are the
// canonical form, strings are convenient in genesis files.
func (t *UnixTime) UnmarshalJSON(raw []byte) error {
	var unix int64
	if err := json.Unmarshal(raw, &unix); err == nil {
		if unix < 0 {
			return errors.Wrap(errors.ErrInput, "time before epoch")
		}
		*t = UnixTime(unix)
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return errors.Wrap(errors.ErrInput, "invalid time format")
	}
	parsed, err := ParseUnixTime(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Validate returns an error if this time value is invalid.
func (t UnixTime) Validate() error {
	if t < 0 {
		return errors.Wrap(errors.ErrState, "negative value")
	}
	return nil
}

func (t UnixTime) String() string {
	return t.Time().Format(time.RFC3339)
}

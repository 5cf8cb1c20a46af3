package bond

import "github.com/iov-one/vault/errors"

var (
	// ErrAlreadyWithdrawn is returned when redeeming a settled bond.
	ErrAlreadyWithdrawn = errors.Register(30, "already withdrawn")
	// ErrNotMatured is returned when redeeming a bond before its maturity.
	ErrNotMatured = errors.Register(31, "not yet matured")
	// ErrPayoutFailed is returned when the bond was settled but the
	// payout could not be transferred. Such bond requires manual
	// reconciliation.
	ErrPayoutFailed = errors.Register(32, "payout failed")
)

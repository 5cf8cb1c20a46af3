/*
Package bond implements a ledger of time-locked bonds.

A depositor issues a bond by locking a principal amount of a single asset
for a fixed yield rate until a maturity time. Once matured, the owner can
redeem the bond exactly once and receives the principal together with the
accrued yield:

	yield = floor(principal * rate / 100)

Funds are held by the ledger custody account while the bond is active. The
custody account must be funded with enough reserve to pay the yield, see the
genesis Initializer.

Each issue and redeem produces an Event. Events are kept in an append-only
log and forwarded to any number of EventSinks.
*/
package bond

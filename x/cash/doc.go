/*
Package cash keeps the coin balances of addresses.

There is no logic in the coins (tokens), except that the balance
of any coin may not go below zero. Thus, this implementation is
referred to as cash. Simple and safe.

Bonds use it to pull principal into custody and to push payouts
back to the owner.
*/
package cash

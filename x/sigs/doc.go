/*
Package sigs authenticates callers by ed25519 signatures.

Each signature covers the payload, the chain identifier and a per signer
sequence, so a signature cannot be replayed. Verified signers are stored in
the context and reported by Authenticate.
*/
package sigs

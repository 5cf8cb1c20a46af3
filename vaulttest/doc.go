// Package vaulttest provides helpers for testing vault extensions.
package vaulttest

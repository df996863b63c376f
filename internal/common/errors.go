// Package common defines shared constants and sentinel errors used across
// client and server layers of the crypto wallet. Callers should use errors.Is
// to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Ledger errors. The protocol layer maps these onto the fixed reply
	// strings sent back to clients.
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAssetUntradeable  = errors.New("asset untradeable")
	ErrNothingToSell     = errors.New("nothing to sell")
)

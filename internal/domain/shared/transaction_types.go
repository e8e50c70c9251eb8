package shared

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownTransactionType = errors.New("unknown transaction type")
)

// TransactionType is the closed set of synthetic transaction variants.
// It decides which optional fields are populated and which channel an event is routed to.
type TransactionType string

const (
	TransactionTypeIBFT  TransactionType = "IBFT"  // Inter-bank fund transfer
	TransactionTypeQR    TransactionType = "QR"    // QR code merchant payment
	TransactionTypeTopUp TransactionType = "TOPUP" // E-wallet top-up
)

// AllTransactionTypes lists every member of the closed type set in a stable order
var AllTransactionTypes = []TransactionType{
	TransactionTypeIBFT,
	TransactionTypeQR,
	TransactionTypeTopUp,
}

// IsValid reports whether t belongs to the closed type set
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeIBFT, TransactionTypeQR, TransactionTypeTopUp:
		return true
	}
	return false
}

func (t TransactionType) String() string {
	return string(t)
}

// ParseTransactionType converts a wire value into a TransactionType
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownTransactionType, s)
	}
	return t, nil
}

// Currency codes used by the generated dataset
const (
	CurrencyVND = "VND"
)

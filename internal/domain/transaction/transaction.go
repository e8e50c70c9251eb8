package transaction

import (
	"errors"
	"fmt"
	"math"

	"github.com/banking-txn-simulator/internal/domain/shared"
	jsoniter "github.com/json-iterator/go"
)

// TimestampLayout is the ISO-8601 layout used for the timestamp field
const TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// Common errors
var (
	ErrMissingTransactionID = errors.New("transaction id cannot be empty")
	ErrInvalidAmount        = errors.New("amount must be positive with at most 2 decimals")
	ErrInvalidCurrency      = errors.New("currency must be a 3-letter code")
	ErrFieldMismatch        = errors.New("optional fields do not match transaction type")
)

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// Transaction is the normalized envelope shared by every transaction variant.
// Optional fields are nil unless relevant to the type and serialize as JSON null.
type Transaction struct {
	TransactionID   string                 `json:"transaction_id"`
	Timestamp       string                 `json:"timestamp"`
	CustomerName    string                 `json:"customer_name"`
	TransactionType shared.TransactionType `json:"transaction_type"`
	Amount          float64                `json:"amount"`
	Currency        string                 `json:"currency"`
	MerchantID      *string                `json:"merchant_id"`
	SenderAccount   *string                `json:"sender_account"`
	ReceiverAccount *string                `json:"receiver_account"`
	WalletID        *string                `json:"wallet_id"`
	LocationLat     float64                `json:"location_lat"`
	LocationLong    float64                `json:"location_long"`
	IPAddress       string                 `json:"ip_address"`
	UserAgent       string                 `json:"user_agent"`
}

// Encode serializes the transaction into its JSON wire form
func Encode(tx *Transaction) ([]byte, error) {
	data, err := codec.Marshal(tx)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transaction %s: %w", tx.TransactionID, err)
	}
	return data, nil
}

// Decode parses a JSON wire payload back into a transaction
func Decode(data []byte) (*Transaction, error) {
	var tx Transaction
	if err := codec.Unmarshal(data, &tx); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transaction: %w", err)
	}
	return &tx, nil
}

// Validate checks the envelope invariants: a known type, a positive amount
// with 2-decimal precision and exactly the optional fields the type requires.
func (t *Transaction) Validate() error {
	if t.TransactionID == "" {
		return ErrMissingTransactionID
	}
	if !t.TransactionType.IsValid() {
		return fmt.Errorf("%w: %q", shared.ErrUnknownTransactionType, t.TransactionType)
	}
	if t.Amount <= 0 || math.Abs(t.Amount*100-math.Round(t.Amount*100)) > 1e-4 {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, t.Amount)
	}
	if len(t.Currency) != 3 {
		return ErrInvalidCurrency
	}

	hasMerchant := t.MerchantID != nil
	hasTransfer := t.SenderAccount != nil && t.ReceiverAccount != nil
	hasAnyTransfer := t.SenderAccount != nil || t.ReceiverAccount != nil
	hasWallet := t.WalletID != nil

	var ok bool
	switch t.TransactionType {
	case shared.TransactionTypeIBFT:
		ok = hasTransfer && !hasMerchant && !hasWallet
	case shared.TransactionTypeQR:
		ok = hasMerchant && !hasAnyTransfer && !hasWallet
	case shared.TransactionTypeTopUp:
		ok = hasWallet && !hasMerchant && !hasAnyTransfer
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrFieldMismatch, t.TransactionType)
	}
	return nil
}

// Deref returns the value behind an optional field, or "" when it is null
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

package producers

import (
	"fmt"

	"github.com/banking-txn-simulator/internal/config"
	"github.com/banking-txn-simulator/internal/domain/shared"
)

// UnknownTransactionTypeError reports a type outside the routing table
type UnknownTransactionTypeError struct {
	Type shared.TransactionType
}

func (e *UnknownTransactionTypeError) Error() string {
	return fmt.Sprintf("unknown transaction type %q: no topic is routed for it", string(e.Type))
}

func (e *UnknownTransactionTypeError) Unwrap() error {
	return shared.ErrUnknownTransactionType
}

// Router maps each transaction type to exactly one topic.
// Producer and consumers must be built from the same TopicsConfig.
type Router struct {
	topics config.TopicsConfig
}

// NewRouter builds a router and rejects a table that leaves any type unrouted
func NewRouter(topics config.TopicsConfig) (*Router, error) {
	r := &Router{topics: topics}
	seen := make(map[string]shared.TransactionType, len(shared.AllTransactionTypes))
	for _, t := range shared.AllTransactionTypes {
		topic, _ := r.Route(t)
		if topic == "" {
			return nil, fmt.Errorf("routing table has no topic for transaction type %s", t)
		}
		if other, dup := seen[topic]; dup {
			return nil, fmt.Errorf("topic %s is routed for both %s and %s", topic, other, t)
		}
		seen[topic] = t
	}
	return r, nil
}

// Route returns the topic for a transaction type
func (r *Router) Route(t shared.TransactionType) (string, error) {
	switch t {
	case shared.TransactionTypeIBFT:
		return r.topics.IBFT, nil
	case shared.TransactionTypeQR:
		return r.topics.QR, nil
	case shared.TransactionTypeTopUp:
		return r.topics.TopUp, nil
	}
	return "", &UnknownTransactionTypeError{Type: t}
}

// TypeForTopic is the inverse of Route, used on the consumer side
func (r *Router) TypeForTopic(topic string) (shared.TransactionType, error) {
	for _, t := range shared.AllTransactionTypes {
		if routed, _ := r.Route(t); routed == topic {
			return t, nil
		}
	}
	return "", fmt.Errorf("topic %s is not part of the routing table", topic)
}

// Topics returns every routed topic in routing-table order
func (r *Router) Topics() []string {
	return r.topics.Names()
}

package inspector

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/banking-txn-simulator/internal/domain/shared"
	"github.com/banking-txn-simulator/internal/domain/transaction"
)

// Router is the consumer side of the type to topic mapping
type Router interface {
	Route(t shared.TransactionType) (string, error)
	Topics() []string
}

// TopicReport tallies what arrived on one topic
type TopicReport struct {
	Messages    int `json:"messages"`
	Misrouted   int `json:"misrouted"`    // transaction_type routes to a different topic
	KeyMismatch int `json:"key_mismatch"` // message key is not the transaction id
	Invalid     int `json:"invalid"`      // undecodable or failing payload validation
}

// Report is the end-of-run summary
type Report struct {
	Total  int                    `json:"total"`
	Topics map[string]TopicReport `json:"topics"`
}

// Violations sums every contract breach across topics
func (r Report) Violations() int {
	n := 0
	for _, t := range r.Topics {
		n += t.Misrouted + t.KeyMismatch + t.Invalid
	}
	return n
}

// Inspector checks consumed messages against the topic contract
type Inspector struct {
	logger *slog.Logger
	router Router

	mu     sync.Mutex
	total  int
	topics map[string]*TopicReport
}

func New(logger *slog.Logger, router Router) *Inspector {
	topics := make(map[string]*TopicReport)
	for _, topic := range router.Topics() {
		topics[topic] = &TopicReport{}
	}
	return &Inspector{
		logger: logger,
		router: router,
		topics: topics,
	}
}

// Handle is a consumers.MessageHandler. Contract violations are counted and
// logged, never returned, so the consumer keeps committing.
func (i *Inspector) Handle(_ context.Context, topic string, key []byte, value []byte) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.total++
	tally, ok := i.topics[topic]
	if !ok {
		tally = &TopicReport{}
		i.topics[topic] = tally
	}
	tally.Messages++

	tx, err := transaction.Decode(value)
	if err != nil {
		tally.Invalid++
		i.logger.Error("Error processing message", "topic", topic, "error", err)
		return nil
	}

	if err := tx.Validate(); err != nil {
		tally.Invalid++
		i.logger.Warn("Transaction payload violates its type rules",
			"topic", topic,
			"transaction_id", tx.TransactionID,
			"error", err,
		)
	}

	// an unknown type is already counted as invalid and has no topic to compare
	if tx.TransactionType.IsValid() {
		if expected, err := i.router.Route(tx.TransactionType); err != nil || expected != topic {
			tally.Misrouted++
			i.logger.Warn("Transaction arrived on the wrong topic",
				"topic", topic,
				"expected_topic", expected,
				"transaction_type", string(tx.TransactionType),
				"transaction_id", tx.TransactionID,
			)
		}
	}

	if string(key) != tx.TransactionID {
		tally.KeyMismatch++
		i.logger.Warn("Message key does not match transaction id",
			"topic", topic,
			"key", string(key),
			"transaction_id", tx.TransactionID,
		)
	}

	i.logger.Info(fmt.Sprintf("[%s] Transaction #%d", topic, i.total), Summary(tx)...)
	return nil
}

// Total returns the number of messages handled so far
func (i *Inspector) Total() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.total
}

// Report snapshots the per-topic tallies
func (i *Inspector) Report() Report {
	i.mu.Lock()
	defer i.mu.Unlock()

	report := Report{Total: i.total, Topics: make(map[string]TopicReport, len(i.topics))}
	for topic, tally := range i.topics {
		report.Topics[topic] = *tally
	}
	return report
}

// LogReport writes the summary, one line per topic in name order
func (i *Inspector) LogReport() Report {
	report := i.Report()

	names := make([]string, 0, len(report.Topics))
	for topic := range report.Topics {
		names = append(names, topic)
	}
	sort.Strings(names)

	i.logger.Info("SUMMARY", "total_messages", report.Total, "violations", report.Violations())
	for _, topic := range names {
		t := report.Topics[topic]
		i.logger.Info(topic,
			"messages", t.Messages,
			"misrouted", t.Misrouted,
			"key_mismatch", t.KeyMismatch,
			"invalid", t.Invalid,
		)
	}
	return report
}

// Summary returns slog attributes describing tx, with the fields of its type
func Summary(tx *transaction.Transaction) []any {
	attrs := []any{
		"id", tx.TransactionID,
		"type", string(tx.TransactionType),
		"amount", fmt.Sprintf("%.2f %s", tx.Amount, tx.Currency),
		"time", tx.Timestamp,
	}
	switch tx.TransactionType {
	case shared.TransactionTypeIBFT:
		attrs = append(attrs, "from", transaction.Deref(tx.SenderAccount), "to", transaction.Deref(tx.ReceiverAccount))
	case shared.TransactionTypeQR:
		attrs = append(attrs, "merchant", transaction.Deref(tx.MerchantID))
	case shared.TransactionTypeTopUp:
		attrs = append(attrs, "wallet", transaction.Deref(tx.WalletID))
	}
	return attrs
}

package generator

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/banking-txn-simulator/internal/domain/shared"
	"github.com/banking-txn-simulator/internal/domain/transaction"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AmountRange bounds the amount drawn for one transaction type
type AmountRange struct {
	Min float64
	Max float64
}

// AmountRanges holds the per-type amount bounds, in VND
var AmountRanges = map[shared.TransactionType]AmountRange{
	shared.TransactionTypeIBFT:  {Min: 10000, Max: 50000000},
	shared.TransactionTypeQR:    {Min: 5000, Max: 2000000},
	shared.TransactionTypeTopUp: {Min: 50000, Max: 5000000},
}

// BoundingBox is the geographic area generated locations fall into
type BoundingBox struct {
	MinLat, MaxLat   float64
	MinLong, MaxLong float64
}

// Vietnam is a rough bounding box around the country
var Vietnam = BoundingBox{MinLat: 8.18, MaxLat: 23.39, MinLong: 102.14, MaxLong: 109.46}

// Merchants is the catalogue QR payments are made to
var Merchants = []string{
	"Starbucks Coffee", "Circle K", "Highlands Coffee", "KFC", "McDonald's",
	"Pizza Hut", "Lotte Mart", "Big C", "Vinmart", "FamilyMart",
	"7-Eleven", "Grab", "Shopee", "Lazada", "Tiki",
}

// Generator produces synthetic transactions backed by an entity pool
type Generator struct {
	pool  *EntityPool
	clock *Clock
	faker *gofakeit.Faker
	box   BoundingBox
	newID func() string
}

// IntervalStream selects the random stream the inter-batch sleeps draw from,
// apart from the transaction data stream of the same seed
const IntervalStream uint64 = 0x9e3779b97f4a7c15

// NewFaker returns a goroutine-safe faker. A zero seed picks a random one.
func NewFaker(seed uint64) *gofakeit.Faker {
	return NewStreamFaker(seed, 0)
}

// NewStreamFaker is NewFaker on a separate stream of the same seed
func NewStreamFaker(seed, stream uint64) *gofakeit.Faker {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return gofakeit.NewFaker(rand.NewPCG(seed, seed^stream), true)
}

// NewGenerator builds a generator with a pool of poolSize identities and a
// clock starting 24 hours in the past
func NewGenerator(poolSize int, seed uint64) (*Generator, error) {
	faker := NewFaker(seed)

	pool, err := NewEntityPool(poolSize, faker)
	if err != nil {
		return nil, fmt.Errorf("failed to build entity pool: %w", err)
	}

	clock := NewClock(time.Now().UTC().Add(-24*time.Hour), UniformStep(faker, DefaultMinStep, DefaultMaxStep))

	return NewGeneratorWith(pool, clock, faker), nil
}

// NewGeneratorWith assembles a generator from existing parts
func NewGeneratorWith(pool *EntityPool, clock *Clock, faker *gofakeit.Faker) *Generator {
	return &Generator{
		pool:  pool,
		clock: clock,
		faker: faker,
		box:   Vietnam,
		newID: func() string { return uuid.New().String() },
	}
}

// Pool exposes the entity pool backing the generator
func (g *Generator) Pool() *EntityPool {
	return g.pool
}

// NextTimestamp advances the clock and returns the new value in ISO-8601 form
func (g *Generator) NextTimestamp() string {
	return g.clock.Advance().Format(transaction.TimestampLayout)
}

// Generate produces one transaction of the given type
func (g *Generator) Generate(txType shared.TransactionType) (*transaction.Transaction, error) {
	amountRange, ok := AmountRanges[txType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", shared.ErrUnknownTransactionType, txType)
	}

	lat, long := g.location()
	tx := &transaction.Transaction{
		TransactionID:   g.newID(),
		Timestamp:       g.NextTimestamp(),
		TransactionType: txType,
		Amount:          g.amount(amountRange),
		Currency:        shared.CurrencyVND,
		LocationLat:     lat,
		LocationLong:    long,
		IPAddress:       g.faker.IPv4Address(),
		UserAgent:       g.faker.UserAgent(),
	}

	switch txType {
	case shared.TransactionTypeIBFT:
		// sender and receiver are independent draws and may be the same identity
		sender := g.pool.Sample()
		receiver := g.pool.Sample()
		tx.CustomerName = sender.Name
		tx.SenderAccount = &sender.AccountNumber
		tx.ReceiverAccount = &receiver.AccountNumber
	case shared.TransactionTypeQR:
		customer := g.pool.Sample()
		merchant := g.faker.RandomString(Merchants)
		tx.CustomerName = customer.Name
		tx.MerchantID = &merchant
	case shared.TransactionTypeTopUp:
		customer := g.pool.Sample()
		tx.CustomerName = customer.Name
		tx.WalletID = &customer.WalletID
	}

	return tx, nil
}

// GenerateBatch produces n transactions, drawing each type independently and uniformly
func (g *Generator) GenerateBatch(n int) []*transaction.Transaction {
	batch := make([]*transaction.Transaction, 0, n)
	for i := 0; i < n; i++ {
		txType := shared.AllTransactionTypes[g.faker.Number(0, len(shared.AllTransactionTypes)-1)]
		tx, err := g.Generate(txType)
		if err != nil {
			// unreachable: every member of AllTransactionTypes has an amount range
			panic(err)
		}
		batch = append(batch, tx)
	}
	return batch
}

func (g *Generator) amount(r AmountRange) float64 {
	return roundTo(g.faker.Float64Range(r.Min, r.Max), 2)
}

func (g *Generator) location() (float64, float64) {
	lat := g.faker.Float64Range(g.box.MinLat, g.box.MaxLat)
	long := g.faker.Float64Range(g.box.MinLong, g.box.MaxLong)
	return roundTo(lat, 6), roundTo(long, 6)
}

func roundTo(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

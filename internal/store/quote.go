package store

import (
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/shopspring/decimal"
)

// DefaultQuoteTTL is the upper bound of the 2-5 minute window quotes
// are valid for; callers may set a shorter ExpiresAt per quote.
const DefaultQuoteTTL = 5 * time.Minute

// Quote asserts a fixed NGN->cNGN conversion for one user. It is
// consumed exactly once, when a transaction is created from it, and is
// never modified after creation.
type Quote struct {
	ID           string
	WalletAddress string
	Rate         decimal.Decimal
	FeeAmount    decimal.Decimal
	GrossAmount  decimal.Decimal
	NetAmount    decimal.Decimal
	FromCurrency string
	ToCurrency   string
	CreatedAt    time.Time
	ExpiresAt    time.Time
	ConsumedAt   *time.Time
}

func (q *Quote) IsExpired(now time.Time) bool {
	return now.After(q.ExpiresAt)
}

func (q *Quote) IsConsumed() bool {
	return q.ConsumedAt != nil
}

// QuoteCache is an in-process TTL cache for quotes, keyed by quote ID.
// Quotes are never persisted to the database: they are short-lived by
// design and a restart losing a handful of in-flight quotes is
// acceptable, the user simply re-requests one.
type QuoteCache struct {
	cache *expirable.LRU[string, *Quote]
}

// NewQuoteCache builds a cache holding up to size quotes, each evicted
// ttl after insertion regardless of access.
func NewQuoteCache(size int, ttl time.Duration) *QuoteCache {
	return &QuoteCache{cache: expirable.NewLRU[string, *Quote](size, nil, ttl)}
}

func (c *QuoteCache) Put(q *Quote) {
	c.cache.Add(q.ID, q)
}

func (c *QuoteCache) Get(id string) (*Quote, bool) {
	return c.cache.Get(id)
}

// Consume atomically marks the quote consumed and removes it from the
// cache, so it cannot be redeemed twice even by a concurrent caller that
// read it a moment earlier. Returns an error if the quote is missing,
// expired, or already consumed.
func (c *QuoteCache) Consume(id string, now time.Time) (*Quote, error) {
	q, ok := c.cache.Get(id)
	if !ok {
		return nil, fmt.Errorf("quote %q not found or expired", id)
	}
	if q.IsConsumed() {
		return nil, fmt.Errorf("quote %q already consumed", id)
	}
	if q.IsExpired(now) {
		c.cache.Remove(id)
		return nil, fmt.Errorf("quote %q expired", id)
	}

	if !c.cache.Remove(id) {
		return nil, fmt.Errorf("quote %q already consumed", id)
	}
	consumed := *q
	consumed.ConsumedAt = &now
	return &consumed, nil
}

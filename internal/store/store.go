// Package store holds the last committed snapshot under a
// reader-writer lock. The poller replaces values wholesale; readers
// always get independent copies, so no consumer can observe a value a
// writer is still filling in.
package store

import (
	"sync"

	"rtd-gateway/internal/market"
)

type Store struct {
	mu      sync.RWMutex
	ranking market.BrokerRanking
	quotes  []market.Quote
}

// New returns a store holding the empty defaults served before the
// first successful poll.
func New() *Store {
	return &Store{
		ranking: market.EmptyRanking(),
		quotes:  []market.Quote{},
	}
}

// ReplaceRanking swaps in a whole new ranking. There is no field-level
// merge; each refresh is a full replace.
func (s *Store) ReplaceRanking(r market.BrokerRanking) {
	c := copyRanking(r)
	s.mu.Lock()
	s.ranking = c
	s.mu.Unlock()
}

// ReplaceQuotes swaps in a whole new quotes list.
func (s *Store) ReplaceQuotes(q []market.Quote) {
	c := copyQuotes(q)
	s.mu.Lock()
	s.quotes = c
	s.mu.Unlock()
}

func (s *Store) Ranking() market.BrokerRanking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyRanking(s.ranking)
}

func (s *Store) Quotes() []market.Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyQuotes(s.quotes)
}

// Snapshot reads both halves under one read lock. The halves are still
// committed independently by the poller, so a snapshot may pair a fresh
// ranking with a stale quotes list; that relaxed consistency is
// intentional.
func (s *Store) Snapshot() market.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return market.Snapshot{
		Ranking: copyRanking(s.ranking),
		Quotes:  copyQuotes(s.quotes),
	}
}

func copyRanking(r market.BrokerRanking) market.BrokerRanking {
	return market.BrokerRanking{
		Buyers:  append([]market.Broker{}, r.Buyers...),
		Sellers: append([]market.Broker{}, r.Sellers...),
	}
}

func copyQuotes(q []market.Quote) []market.Quote {
	return append([]market.Quote{}, q...)
}

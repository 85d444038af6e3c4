package events

import (
	"context"
	"sync"

	"github.com/ledgerworks/funds-transfer-service/src/internal/domain"
)

// Verify that MemoryPublisher implements the publisher contract
var _ domain.TransactionEventPublisher = (*MemoryPublisher)(nil)

// MemoryPublisher records published events in memory. It stands in for the
// kafka publisher in tests and when no brokers are configured.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []domain.TransactionEvent
}

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (p *MemoryPublisher) PublishTransaction(_ context.Context, event domain.TransactionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, event)
	return nil
}

// Events returns a copy of everything published so far.
func (p *MemoryPublisher) Events() []domain.TransactionEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]domain.TransactionEvent, len(p.events))
	copy(out, p.events)
	return out
}

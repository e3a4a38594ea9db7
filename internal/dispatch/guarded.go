package dispatch

import (
	"context"

	"github.com/ManuGH/fieldpulse/internal/adm"
	"github.com/ManuGH/fieldpulse/internal/playbook"
	"github.com/ManuGH/fieldpulse/internal/resilience"
)

// GuardedPublisher fails fast with resilience.ErrCircuitOpen while the
// downstream is known to be unavailable, so request latency does not absorb
// broker timeouts.
type GuardedPublisher struct {
	next    Publisher
	breaker *resilience.CircuitBreaker
}

// Guard wraps next with breaker.
func Guard(next Publisher, breaker *resilience.CircuitBreaker) *GuardedPublisher {
	return &GuardedPublisher{next: next, breaker: breaker}
}

func (g *GuardedPublisher) PublishPlan(ctx context.Context, plan playbook.ActionPlan) error {
	return g.breaker.Execute(ctx, func(ctx context.Context) error {
		return g.next.PublishPlan(ctx, plan)
	})
}

func (g *GuardedPublisher) PublishBriefing(ctx context.Context, b adm.Briefing) error {
	return g.breaker.Execute(ctx, func(ctx context.Context) error {
		return g.next.PublishBriefing(ctx, b)
	})
}

// Close always reaches the wrapped publisher.
func (g *GuardedPublisher) Close() error {
	return g.next.Close()
}

package signal

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Handler processes a delivered event. A nil return acknowledges the event;
// an error requests redelivery.
type Handler func(Event) error

// maxAttempts bounds the redelivery schedule: three attempts with
// exponential backoff, then the event is marked delivery-failed.
const maxAttempts = 3

// DeliveryResult records the outcome of delivering one event to one
// subscriber. Delivery failure never blocks the originating state
// transition; signals are notifications, not transactional side effects.
type DeliveryResult struct {
	Event      Event
	Subscriber string
	Attempts   int
	Delivered  bool
}

// Option configures a Bus.
type Option func(*Bus)

// WithBackoff overrides the redelivery backoff schedule.
func WithBackoff(fn func(attempt int) time.Duration) Option {
	return func(b *Bus) { b.backoff = fn }
}

// WithResultHook installs a callback invoked after each delivery completes
// or exhausts its retry budget. The orchestrator uses it to persist the
// signal log.
func WithResultHook(fn func(DeliveryResult)) Option {
	return func(b *Bus) { b.onResult = fn }
}

// Bus is a typed, ordered-per-source publish/subscribe channel. Events are
// delivered at-least-once to every subscriber registered for their code.
// Events from the same source section reach a given subscriber in emission
// order; no cross-source ordering is guaranteed.
type Bus struct {
	log      zerolog.Logger
	backoff  func(attempt int) time.Duration
	onResult func(DeliveryResult)

	mu   sync.Mutex
	subs map[string]*subscriber
	wg   sync.WaitGroup
}

type subscriber struct {
	name    string
	handler Handler
	codes   map[Code]bool

	mu     sync.Mutex
	queues map[string]*sourceQueue
}

type sourceQueue struct {
	events  []Event
	running bool
}

// NewBus creates a signal bus logging delivery failures to log.
func NewBus(log zerolog.Logger, opts ...Option) *Bus {
	b := &Bus{
		log:     log.With().Str("component", "signal-bus").Logger(),
		backoff: defaultBackoff,
		subs:    make(map[string]*subscriber),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func defaultBackoff(attempt int) time.Duration {
	return 25 * time.Millisecond << attempt
}

// Subscribe registers a named subscriber for the given codes. Subscribing to
// an unregistered code is a configuration error.
func (b *Bus) Subscribe(name string, h Handler, codes ...Code) error {
	codeSet := make(map[Code]bool, len(codes))
	for _, c := range codes {
		if _, ok := Lookup(c); !ok {
			return fmt.Errorf("cannot subscribe %s: signal code %d is not in registry v%d", name, c, RegistryVersion)
		}
		codeSet[c] = true
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if existing, ok := b.subs[name]; ok {
		for c := range codeSet {
			existing.codes[c] = true
		}
		return nil
	}
	b.subs[name] = &subscriber{
		name:    name,
		handler: h,
		codes:   codeSet,
		queues:  make(map[string]*sourceQueue),
	}
	return nil
}

// Publish validates the event against the registry and enqueues it for
// asynchronous delivery. Only registry violations are returned; delivery
// outcomes are reported via the result hook and the error log.
func (b *Bus) Publish(ev Event) error {
	if err := Validate(ev); err != nil {
		return err
	}

	b.mu.Lock()
	var targets []*subscriber
	for _, s := range b.subs {
		if s.codes[ev.Code] {
			targets = append(targets, s)
		}
	}
	b.mu.Unlock()

	for _, s := range targets {
		b.enqueue(s, ev)
	}
	return nil
}

// sourceKey scopes ordering: one FIFO lane per (case, source section).
func sourceKey(ev Event) string {
	return ev.CaseID + "|" + string(ev.Source)
}

func (b *Bus) enqueue(s *subscriber, ev Event) {
	b.wg.Add(1)
	key := sourceKey(ev)

	s.mu.Lock()
	q, ok := s.queues[key]
	if !ok {
		q = &sourceQueue{}
		s.queues[key] = q
	}
	q.events = append(q.events, ev)
	start := !q.running
	if start {
		q.running = true
	}
	s.mu.Unlock()

	if start {
		go b.drain(s, q)
	}
}

// drain delivers a source lane's events sequentially, preserving emission
// order for that source at this subscriber.
func (b *Bus) drain(s *subscriber, q *sourceQueue) {
	for {
		s.mu.Lock()
		if len(q.events) == 0 {
			q.running = false
			s.mu.Unlock()
			return
		}
		ev := q.events[0]
		q.events = q.events[1:]
		s.mu.Unlock()

		b.deliver(s, ev)
		b.wg.Done()
	}
}

func (b *Bus) deliver(s *subscriber, ev Event) {
	var attempts int
	for attempts = 1; attempts <= maxAttempts; attempts++ {
		if err := s.handler(ev); err == nil {
			b.report(DeliveryResult{Event: ev, Subscriber: s.name, Attempts: attempts, Delivered: true})
			return
		} else if attempts < maxAttempts {
			b.log.Debug().
				Str("subscriber", s.name).
				Int("code", int(ev.Code)).
				Int("attempt", attempts).
				Err(err).
				Msg("delivery not acknowledged, will retry")
			time.Sleep(b.backoff(attempts))
		}
	}

	b.log.Warn().
		Str("subscriber", s.name).
		Str("event_id", ev.ID).
		Str("case_id", ev.CaseID).
		Int("code", int(ev.Code)).
		Msg("delivery failed after retry budget")
	b.report(DeliveryResult{Event: ev, Subscriber: s.name, Attempts: maxAttempts, Delivered: false})
}

func (b *Bus) report(r DeliveryResult) {
	if b.onResult != nil {
		b.onResult(r)
	}
}

// Wait blocks until all enqueued deliveries have completed or exhausted
// their retry budget.
func (b *Bus) Wait() {
	b.wg.Wait()
}

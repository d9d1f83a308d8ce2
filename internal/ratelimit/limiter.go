// Package ratelimit implements fixed-window request counters keyed by client
// and endpoint class. Counters are in-process only and reset on restart.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Class groups endpoints that share a threshold.
type Class string

const (
	ClassRegister Class = "register"
	ClassToken    Class = "token"
	ClassGeneral  Class = "general"
)

// Rule is the threshold for one class.
type Rule struct {
	Limit  int
	Window time.Duration
}

// Decision is the outcome of one Take.
type Decision struct {
	Allowed bool
	Limit   int
	// Remaining is how many more requests the window admits.
	Remaining int
	// RetryAfter is the time left until the window resets.
	RetryAfter time.Duration
}

type key struct {
	client string
	class  Class
}

type counter struct {
	mu    sync.Mutex
	start time.Time
	count int
}

// Limiter is safe for concurrent use. Each (client, class) counter has its
// own mutex so unrelated clients never contend.
type Limiter struct {
	rules    map[Class]Rule
	fallback Rule
	counters sync.Map
	now      func() time.Time
}

// Option customises a Limiter.
type Option func(*Limiter)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// New builds a limiter. Classes missing from rules use the ClassGeneral rule.
func New(rules map[Class]Rule, opts ...Option) *Limiter {
	l := &Limiter{
		rules: make(map[Class]Rule, len(rules)),
		now:   time.Now,
	}
	for class, rule := range rules {
		l.rules[class] = rule
	}
	l.fallback = l.rules[ClassGeneral]
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow counts one request and reports whether it is within the threshold.
func (l *Limiter) Allow(client string, class Class) bool {
	return l.Take(client, class).Allowed
}

// Take counts one request and returns the full decision. Every call
// increments the counter, including rejected ones.
func (l *Limiter) Take(client string, class Class) Decision {
	rule := l.rule(class)
	if rule.Limit <= 0 || rule.Window <= 0 {
		return Decision{Allowed: true}
	}

	now := l.now()
	v, _ := l.counters.LoadOrStore(key{client: client, class: class}, &counter{start: now})
	c := v.(*counter)

	c.mu.Lock()
	defer c.mu.Unlock()

	if !now.Before(c.start.Add(rule.Window)) {
		c.start = now
		c.count = 0
	}
	c.count++

	remaining := rule.Limit - c.count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:    c.count <= rule.Limit,
		Limit:      rule.Limit,
		Remaining:  remaining,
		RetryAfter: c.start.Add(rule.Window).Sub(now),
	}
}

// Sweep drops counters whose window has elapsed at now and returns how many
// were removed. A request racing a sweep may lose its count.
func (l *Limiter) Sweep(now time.Time) int {
	removed := 0
	l.counters.Range(func(k, v any) bool {
		c := v.(*counter)
		rule := l.rule(k.(key).class)
		c.mu.Lock()
		expired := !now.Before(c.start.Add(rule.Window))
		c.mu.Unlock()
		if expired {
			l.counters.Delete(k)
			removed++
		}
		return true
	})
	return removed
}

// Run sweeps every interval until ctx is done.
func (l *Limiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep(l.now())
		}
	}
}

func (l *Limiter) rule(class Class) Rule {
	if rule, ok := l.rules[class]; ok {
		return rule
	}
	return l.fallback
}

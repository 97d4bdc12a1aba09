package lexer

import (
	"sync"
	"sync/atomic"
	"time"
)

// Stats reports lexer-wide counters, gathered with atomics per spec.md
// §9's note that stats mutated outside a lock (as in the teacher's
// source) is a bug to avoid, not a pattern to replicate.
type Stats struct {
	CharactersProcessed int64
	TokensEmitted       int64
	CommentsEmitted     int64
	// Lines counts newlines consumed (physical line count is Lines + 1).
	Lines      int64
	LexingTime time.Duration

	// PerKind is a snapshot copy; safe to read without further locking.
	PerKind map[Kind]int64
}

type statsCounters struct {
	charactersProcessed atomic.Int64
	tokensEmitted       atomic.Int64
	commentsEmitted     atomic.Int64
	lines               atomic.Int64
	lexingTimeNanos     atomic.Int64

	perKindMu sync.Mutex
	perKind   map[Kind]int64
}

func newStatsCounters() *statsCounters {
	return &statsCounters{perKind: make(map[Kind]int64)}
}

func (s *statsCounters) recordKind(k Kind) {
	s.tokensEmitted.Add(1)
	s.perKindMu.Lock()
	s.perKind[k]++
	s.perKindMu.Unlock()
}

func (s *statsCounters) snapshot() Stats {
	s.perKindMu.Lock()
	perKind := make(map[Kind]int64, len(s.perKind))
	for k, v := range s.perKind {
		perKind[k] = v
	}
	s.perKindMu.Unlock()

	return Stats{
		CharactersProcessed: s.charactersProcessed.Load(),
		TokensEmitted:       s.tokensEmitted.Load(),
		CommentsEmitted:     s.commentsEmitted.Load(),
		Lines:               s.lines.Load(),
		LexingTime:          time.Duration(s.lexingTimeNanos.Load()),
		PerKind:             perKind,
	}
}

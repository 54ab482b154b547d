// Package recognize identifies a student from a camera frame by asking
// an external face-matching model to compare the frame against the
// roster's reference images.
package recognize

import (
	"context"
	"log"

	"facemark/internal/metrics"
)

// Candidate is one roster entry offered to the oracle.
type Candidate struct {
	ID    string
	Image []byte
	MIME  string
}

// Result is the tagged outcome of one identification attempt.
type Result struct {
	StudentID string
	Matched   bool
}

// Provider performs one remote identification call.
type Provider interface {
	Identify(ctx context.Context, probe []byte, candidates []Candidate) (Result, error)
}

// Identifier is the capability the capture loop depends on.
type Identifier interface {
	Identify(ctx context.Context, probe []byte, candidates []Candidate) Result
}

// Service wraps a Provider and applies the caller-facing policy:
// an empty candidate set or a missing provider short-circuits without a
// remote call, and any provider error is folded into "no match". The
// caller cannot distinguish "nobody matched" from "oracle unreachable";
// the next polling cycle is the retry mechanism.
type Service struct {
	provider Provider
}

// NewService creates the identification service. provider may be nil
// when no credential is configured; Identify then always returns no
// match.
func NewService(provider Provider) *Service {
	return &Service{provider: provider}
}

// Identify runs one identification attempt against the candidate set.
func (s *Service) Identify(ctx context.Context, probe []byte, candidates []Candidate) Result {
	if s.provider == nil || len(candidates) == 0 {
		return Result{}
	}

	metrics.RecognitionAttempts.Inc()
	res, err := s.provider.Identify(ctx, probe, candidates)
	if err != nil {
		// Folding transport and protocol failures into a miss is
		// deliberate: recognition degrades to "try again next tick".
		log.Printf("recognize: %v (treated as no match)", err)
		metrics.RecognitionFailures.Inc()
		return Result{}
	}
	if res.Matched {
		metrics.RecognitionMatches.Inc()
	}
	return res
}

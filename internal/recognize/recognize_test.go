package recognize

import (
	"context"
	"errors"
	"testing"
)

type fakeProvider struct {
	result Result
	err    error
	calls  int
}

func (f *fakeProvider) Identify(ctx context.Context, probe []byte, candidates []Candidate) (Result, error) {
	f.calls++
	return f.result, f.err
}

func someCandidates() []Candidate {
	return []Candidate{{ID: "s-1", Image: []byte{1}}}
}

func TestIdentify_EmptyCandidatesShortCircuits(t *testing.T) {
	p := &fakeProvider{result: Result{StudentID: "s-1", Matched: true}}
	svc := NewService(p)

	res := svc.Identify(context.Background(), []byte{1}, nil)
	if res.Matched {
		t.Error("expected no match for empty candidate set")
	}
	if p.calls != 0 {
		t.Errorf("expected no remote call, got %d", p.calls)
	}
}

func TestIdentify_NoProviderShortCircuits(t *testing.T) {
	svc := NewService(nil)
	res := svc.Identify(context.Background(), []byte{1}, someCandidates())
	if res.Matched {
		t.Error("expected no match with no provider configured")
	}
}

func TestIdentify_ErrorFoldsToNoMatch(t *testing.T) {
	p := &fakeProvider{err: errors.New("service unreachable")}
	svc := NewService(p)

	res := svc.Identify(context.Background(), []byte{1}, someCandidates())
	if res.Matched {
		t.Error("provider error must fold into no match")
	}
	if p.calls != 1 {
		t.Errorf("expected exactly one attempt, got %d", p.calls)
	}
}

func TestIdentify_MatchPassesThrough(t *testing.T) {
	p := &fakeProvider{result: Result{StudentID: "s-1", Matched: true}}
	svc := NewService(p)

	res := svc.Identify(context.Background(), []byte{1}, someCandidates())
	if !res.Matched || res.StudentID != "s-1" {
		t.Errorf("unexpected result: %+v", res)
	}
}

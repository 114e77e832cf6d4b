package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rgdevment/scam-shield/internal/domain"
)

func TestSessionLifecycle(t *testing.T) {
	var s domain.Session
	assert.Equal(t, domain.SessionStatus(""), s.Status)

	s = s.Begin("+14155551234")
	assert.Equal(t, domain.SessionAnalyzing, s.Status)
	assert.Equal(t, uint64(1), s.Seq)

	res := &domain.AnalysisResult{State: domain.StateNoData}
	next, ok := s.Complete(1, "+14155551234", res, nil)

	assert.True(t, ok)
	assert.Equal(t, domain.SessionDone, next.Status)
	assert.Same(t, res, next.Result)
	assert.Empty(t, next.ErrMessage())
}

func TestSessionDropsStaleResults(t *testing.T) {
	s := domain.Session{Status: domain.SessionIdle}.Begin("first")
	firstSeq := s.Seq
	s = s.Begin("second")

	stale, ok := s.Complete(firstSeq, "first", &domain.AnalysisResult{}, nil)
	assert.False(t, ok)
	assert.Equal(t, domain.SessionAnalyzing, stale.Status)
	assert.Nil(t, stale.Result)

	// Same sequence but a different input is also stale.
	_, ok = s.Complete(s.Seq, "first", &domain.AnalysisResult{}, nil)
	assert.False(t, ok)

	done, ok := s.Complete(s.Seq, "second", &domain.AnalysisResult{Input: "second"}, nil)
	assert.True(t, ok)
	assert.Equal(t, "second", done.Result.Input)

	// A finished session ignores further completions.
	_, ok = done.Complete(done.Seq, "second", &domain.AnalysisResult{}, nil)
	assert.False(t, ok)
}

func TestSessionCompleteWithError(t *testing.T) {
	s := domain.Session{}.Begin("bad")
	done, ok := s.Complete(s.Seq, "bad", nil, errors.New("phone: too short"))

	assert.True(t, ok)
	assert.Equal(t, domain.SessionDone, done.Status)
	assert.Nil(t, done.Result)
	assert.Equal(t, "phone: too short", done.ErrMessage())
}

func TestSessionIsNotAnError(t *testing.T) {
	var v any = domain.Session{Err: errors.New("boom")}
	_, isErr := v.(error)
	assert.False(t, isErr, "a failed session must not be mistaken for an error value")
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgdevment/scam-shield/internal/analysis"
	"github.com/rgdevment/scam-shield/internal/domain"
	"github.com/rgdevment/scam-shield/internal/platform/storage/memory"
	"github.com/rgdevment/scam-shield/pkg/logging"
)

// slowFinder blocks lookups for one number until a lookup for any other value arrives.
type slowFinder struct {
	*memory.Repository
	slow    string
	release chan struct{}
	once    sync.Once
}

func (f *slowFinder) FindEqual(ctx context.Context, field domain.IndexField, value string, limit int) ([]*domain.ScamReport, error) {
	if value == f.slow {
		<-f.release
	} else {
		f.once.Do(func() { close(f.release) })
	}
	return f.Repository.FindEqual(ctx, field, value, limit)
}

func decodeLines(t *testing.T, out *bytes.Buffer) []verdictLine {
	t.Helper()
	var lines []verdictLine
	dec := json.NewDecoder(out)
	for dec.More() {
		var l verdictLine
		require.NoError(t, dec.Decode(&l))
		lines = append(lines, l)
	}
	return lines
}

func TestWatchPrintsEachVerdict(t *testing.T) {
	repo := memory.NewRepository()
	repo.Seed(domain.ReportRecord{Title: "x", ContactInfo: "4155551234", Status: "approved"})
	engine := analysis.NewEngine(repo, nil, logging.Discard(), nil)

	in := strings.NewReader("415-555-1234\n\n")
	var out bytes.Buffer
	require.NoError(t, watch(context.Background(), engine, in, &out))

	lines := decodeLines(t, &out)
	require.Len(t, lines, 1)
	assert.Equal(t, domain.SessionDone, lines[0].Status)
	assert.Equal(t, domain.StateApprovedFound, lines[0].Result.State)
}

func TestWatchDropsSupersededResults(t *testing.T) {
	finder := &slowFinder{
		Repository: memory.NewRepository(),
		slow:       "4155550000",
		release:    make(chan struct{}),
	}
	engine := analysis.NewEngine(finder, nil, logging.Discard(), nil)

	in := strings.NewReader("4155550000\n4155551111\n")
	var out bytes.Buffer

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, watch(ctx, engine, in, &out))

	lines := decodeLines(t, &out)
	require.Len(t, lines, 1, "the first analysis finished after being superseded")
	assert.Equal(t, "4155551111", lines[0].Input)
	assert.Equal(t, uint64(2), lines[0].Seq)
}

func TestWatchFreeTextWithoutReports(t *testing.T) {
	engine := analysis.NewEngine(memory.NewRepository(), nil, logging.Discard(), nil)
	var out bytes.Buffer

	require.NoError(t, watch(context.Background(), engine, strings.NewReader("hello there\n"), &out))

	lines := decodeLines(t, &out)
	require.Len(t, lines, 1)
	assert.Empty(t, lines[0].Error)
	assert.Equal(t, domain.StateNoData, lines[0].Result.State)
}

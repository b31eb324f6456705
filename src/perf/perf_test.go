package perf

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlocks(t *testing.T) {
	p := MakeNewRequestPerf("Article", "GET", "/article/a-b")
	b := p.StartBlock("SQL", "Fetch article")
	p.Checkpoint("Middleware", "auth done")
	b.End()
	p.StartBlock("TEMPLATE", "article.html")
	p.EndRequest()

	require.Len(t, p.Blocks, 3)
	for _, block := range p.Blocks {
		assert.False(t, block.End.IsZero(), "block %s was never ended", block.Description)
		assert.False(t, block.End.Before(block.Start))
	}
	assert.False(t, p.End.Before(p.Start))
}

func TestNilPerf(t *testing.T) {
	p := ExtractPerf(context.Background())
	assert.Nil(t, p)

	// None of these should panic.
	p.StartBlock("SQL", "orphan query").End()
	p.Checkpoint("x", "y")
	p.EndRequest()
}

func TestContext(t *testing.T) {
	p := MakeNewRequestPerf("Home", "GET", "/")
	ctx := AttachPerf(context.Background(), p)
	assert.Same(t, p, ExtractPerf(ctx))
}

func TestCollector(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	collector := RunPerfCollector(ctx)

	fast := MakeNewRequestPerf("Fast", "GET", "/fast")
	fast.EndRequest()
	slow := MakeNewRequestPerf("Slow", "GET", "/slow")
	slow.Start = slow.Start.Add(-time.Second)
	slow.EndRequest()

	collector.SubmitRun(fast)
	collector.SubmitRun(slow)

	storage := collector.GetPerfCopy()
	require.Len(t, storage.AllRequests, 2)
	slowest := storage.Slowest(1)
	require.Len(t, slowest, 1)
	assert.Equal(t, "Slow", slowest[0].Route)

	cancel()
	<-collector.Done
}

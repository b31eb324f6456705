package perf

import (
	"context"
	"sort"
	"sync"
	"time"
)

type RequestPerf struct {
	Route  string
	Path   string // the path actually matched
	Method string
	Start  time.Time
	End    time.Time
	Blocks []PerfBlock

	mutex *sync.Mutex
}

func MakeNewRequestPerf(route string, method string, path string) *RequestPerf {
	return &RequestPerf{
		Start:  time.Now(),
		Route:  route,
		Path:   path,
		Method: method,
		mutex:  &sync.Mutex{},
	}
}

func (rp *RequestPerf) EndRequest() {
	if rp == nil {
		return
	}

	rp.mutex.Lock()
	defer rp.mutex.Unlock()

	for i := range rp.Blocks {
		if rp.Blocks[i].End.IsZero() {
			rp.Blocks[i].End = time.Now()
		}
	}
	rp.End = time.Now()
}

func (rp *RequestPerf) Checkpoint(category, description string) {
	if rp == nil {
		return
	}

	rp.mutex.Lock()
	defer rp.mutex.Unlock()

	now := time.Now()
	rp.Blocks = append(rp.Blocks, PerfBlock{
		Start:       now,
		End:         now,
		Category:    category,
		Description: description,
	})
}

// Starts a timed block. Call End on the returned handle when the work is done.
// Safe to call on a nil RequestPerf, in which case nothing is recorded.
func (rp *RequestPerf) StartBlock(category, description string) *BlockHandle {
	if rp == nil {
		return &BlockHandle{}
	}

	rp.mutex.Lock()
	defer rp.mutex.Unlock()

	rp.Blocks = append(rp.Blocks, PerfBlock{
		Start:       time.Now(),
		Category:    category,
		Description: description,
	})
	return &BlockHandle{
		perf:  rp,
		index: len(rp.Blocks) - 1,
	}
}

func (rp *RequestPerf) Duration() time.Duration {
	return rp.End.Sub(rp.Start)
}

func (rp *RequestPerf) MsFromStart(block *PerfBlock) float64 {
	return float64(block.Start.Sub(rp.Start).Nanoseconds()) / 1000 / 1000
}

// Returns a detached copy of the data, suitable for handing to another
// goroutine. The copy must not be used to record further blocks.
func (rp *RequestPerf) Snapshot() RequestPerf {
	rp.mutex.Lock()
	defer rp.mutex.Unlock()

	blocks := make([]PerfBlock, len(rp.Blocks))
	copy(blocks, rp.Blocks)
	return RequestPerf{
		Route:  rp.Route,
		Path:   rp.Path,
		Method: rp.Method,
		Start:  rp.Start,
		End:    rp.End,
		Blocks: blocks,
	}
}

type BlockHandle struct {
	perf  *RequestPerf
	index int
}

func (h *BlockHandle) End() {
	if h == nil || h.perf == nil {
		return
	}

	h.perf.mutex.Lock()
	defer h.perf.mutex.Unlock()

	if h.perf.Blocks[h.index].End.IsZero() {
		h.perf.Blocks[h.index].End = time.Now()
	}
}

type PerfBlock struct {
	Start       time.Time
	End         time.Time
	Category    string
	Description string
}

func (pb *PerfBlock) Duration() time.Duration {
	return pb.End.Sub(pb.Start)
}

func (pb *PerfBlock) DurationMs() float64 {
	return float64(pb.Duration().Nanoseconds()) / 1000 / 1000
}

type perfContextKey struct{}

func AttachPerf(ctx context.Context, p *RequestPerf) context.Context {
	return context.WithValue(ctx, perfContextKey{}, p)
}

// Returns the request perf stored in ctx, or nil. All RequestPerf methods
// accept a nil receiver, so callers never need to check.
func ExtractPerf(ctx context.Context) *RequestPerf {
	p, _ := ctx.Value(perfContextKey{}).(*RequestPerf)
	return p
}

// How many finished requests the collector keeps in memory.
const MaxStoredRequests = 1000

type PerfStorage struct {
	AllRequests []RequestPerf
}

// Returns the n slowest stored requests, slowest first.
func (s *PerfStorage) Slowest(n int) []RequestPerf {
	sorted := make([]RequestPerf, len(s.AllRequests))
	copy(sorted, s.AllRequests)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Duration() > sorted[j].Duration()
	})
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

type PerfCollector struct {
	In          chan<- RequestPerf
	Done        <-chan struct{}
	RequestCopy chan<- (chan<- PerfStorage)
}

func RunPerfCollector(ctx context.Context) *PerfCollector {
	in := make(chan RequestPerf)
	done := make(chan struct{})
	requestCopy := make(chan (chan<- PerfStorage))

	var storage PerfStorage

	go func() {
		defer close(done)

		for {
			select {
			case perf := <-in:
				storage.AllRequests = append(storage.AllRequests, perf)
				if len(storage.AllRequests) > MaxStoredRequests {
					storage.AllRequests = storage.AllRequests[len(storage.AllRequests)-MaxStoredRequests:]
				}
			case resultChan := <-requestCopy:
				copied := make([]RequestPerf, len(storage.AllRequests))
				copy(copied, storage.AllRequests)
				resultChan <- PerfStorage{AllRequests: copied}
			case <-ctx.Done():
				return
			}
		}
	}()

	return &PerfCollector{
		In:          in,
		Done:        done,
		RequestCopy: requestCopy,
	}
}

// Hands a finished request to the collector. Runs submitted after the
// collector has stopped are dropped.
func (perfCollector *PerfCollector) SubmitRun(run *RequestPerf) {
	select {
	case perfCollector.In <- run.Snapshot():
	case <-perfCollector.Done:
	}
}

func (perfCollector *PerfCollector) GetPerfCopy() *PerfStorage {
	resultChan := make(chan PerfStorage)
	select {
	case perfCollector.RequestCopy <- resultChan:
	case <-perfCollector.Done:
		return &PerfStorage{}
	}
	perfStorageCopy := <-resultChan
	return &perfStorageCopy
}

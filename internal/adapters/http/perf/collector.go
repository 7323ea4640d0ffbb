// Package perf keeps a rolling window of request, query and lock-wait timings
// for the operator stats endpoint.
package perf

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the default capacity of the ring buffer.
const DefaultRingSize = 10000

// EntryKind says what was timed.
type EntryKind uint8

const (
	KindRequest EntryKind = iota
	KindQuery
	KindLock
)

// String returns the JSON name of the kind.
func (k EntryKind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindQuery:
		return "query"
	case KindLock:
		return "lock"
	default:
		return "unknown"
	}
}

// Entry is one timing record.
type Entry struct {
	Kind       EntryKind
	Path       string // "GET /api/classes", "select booking" or "lock"
	StatusCode int    // HTTP status, 0 otherwise
	DurationMs float64
	Timestamp  time.Time
}

// Collector is a fixed-size ring buffer of entries. When full the oldest entry
// is overwritten. Aggregation happens only in Snapshot.
type Collector struct {
	mu      sync.Mutex
	entries []Entry
	size    int
	pos     int
	count   int64
}

// NewCollector creates a collector holding the last size entries.
// PRE: size > 0, otherwise DefaultRingSize is used
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{entries: make([]Entry, size), size: size}
}

// Record stores e, overwriting the oldest entry when the buffer is full.
func (c *Collector) Record(e Entry) {
	c.mu.Lock()
	c.entries[c.pos] = e
	c.pos = (c.pos + 1) % c.size
	c.mu.Unlock()
	atomic.AddInt64(&c.count, 1)
}

// TotalRecorded returns the number of entries ever recorded.
func (c *Collector) TotalRecorded() int64 {
	return atomic.LoadInt64(&c.count)
}

// Snapshot is the aggregated view returned by the stats endpoint.
type Snapshot struct {
	TotalRecorded  int64      `json:"total_recorded"`
	Requests       int        `json:"requests"`
	RequestP50Ms   float64    `json:"request_p50_ms"`
	RequestP95Ms   float64    `json:"request_p95_ms"`
	RequestP99Ms   float64    `json:"request_p99_ms"`
	ServerErrors   int        `json:"server_errors"`
	LockWaits      int        `json:"lock_waits"`
	LockWaitP95Ms  float64    `json:"lock_wait_p95_ms"`
	SlowestPaths   []PathStat `json:"slowest_paths"`
	SlowestQueries []PathStat `json:"slowest_queries"`
}

// PathStat aggregates timings for one path or query label.
type PathStat struct {
	Path    string  `json:"path"`
	AvgMs   float64 `json:"avg_ms"`
	MaxMs   float64 `json:"max_ms"`
	Count   int     `json:"count"`
	TotalMs float64 `json:"-"`
}

func (s *PathStat) add(ms float64) {
	s.Count++
	s.TotalMs += ms
	if ms > s.MaxMs {
		s.MaxMs = ms
	}
}

type statSet map[string]*PathStat

func (set statSet) add(path string, ms float64) {
	s, ok := set[path]
	if !ok {
		s = &PathStat{Path: path}
		set[path] = s
	}
	s.add(ms)
}

// Snapshot aggregates entries newer than since. It copies and sorts the whole
// buffer, so call it from operator endpoints only.
// POST: lists hold at most topN items ordered by average duration
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	buf := make([]Entry, c.size)
	copy(buf, c.entries)
	c.mu.Unlock()

	var requestMs, lockMs []float64
	requests, queries := statSet{}, statSet{}
	snap := Snapshot{TotalRecorded: c.TotalRecorded()}

	for _, e := range buf {
		if e.Timestamp.IsZero() || e.Timestamp.Before(since) {
			continue
		}
		switch e.Kind {
		case KindRequest:
			requestMs = append(requestMs, e.DurationMs)
			requests.add(e.Path, e.DurationMs)
			if e.StatusCode >= 500 {
				snap.ServerErrors++
			}
		case KindQuery:
			queries.add(e.Path, e.DurationMs)
		case KindLock:
			lockMs = append(lockMs, e.DurationMs)
		}
	}

	snap.Requests = len(requestMs)
	snap.SlowestPaths = topByAvg(requests, topN)
	snap.SlowestQueries = topByAvg(queries, topN)
	if len(requestMs) > 0 {
		sort.Float64s(requestMs)
		snap.RequestP50Ms = percentile(requestMs, 50)
		snap.RequestP95Ms = percentile(requestMs, 95)
		snap.RequestP99Ms = percentile(requestMs, 99)
	}
	snap.LockWaits = len(lockMs)
	if len(lockMs) > 0 {
		sort.Float64s(lockMs)
		snap.LockWaitP95Ms = percentile(lockMs, 95)
	}
	return snap
}

// percentile interpolates the p-th percentile of a sorted slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p / 100) * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper || upper >= len(sorted) {
		return sorted[lower]
	}
	frac := idx - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

// topByAvg returns the n slowest entries by average, ties broken by path.
func topByAvg(set statSet, n int) []PathStat {
	list := make([]PathStat, 0, len(set))
	for _, s := range set {
		s.AvgMs = s.TotalMs / float64(s.Count)
		list = append(list, *s)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].AvgMs != list[j].AvgMs {
			return list[i].AvgMs > list[j].AvgMs
		}
		return list[i].Path < list[j].Path
	})
	if n >= 0 && len(list) > n {
		list = list[:n]
	}
	return list
}

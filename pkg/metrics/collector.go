package metrics

import (
	"runtime"
	"sync/atomic"
	"time"
)

// Collector accumulates service counters. All counters are monotonic and
// safe for concurrent use; readers get a point-in-time snapshot.
type Collector struct {
	startTime time.Time

	httpRequests int64
	httpErrors   int64

	uploads        int64
	uploadBytes    int64
	uploadFailures int64
	thumbnails     int64

	searches    int64
	cacheHits   int64
	cacheMisses int64
}

// NewCollector creates a collector anchored at the current time.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

func (c *Collector) RecordRequest(status int) {
	atomic.AddInt64(&c.httpRequests, 1)
	if status >= 500 {
		atomic.AddInt64(&c.httpErrors, 1)
	}
}

func (c *Collector) RecordUpload(size int64, ok bool) {
	if ok {
		atomic.AddInt64(&c.uploads, 1)
		atomic.AddInt64(&c.uploadBytes, size)
	} else {
		atomic.AddInt64(&c.uploadFailures, 1)
	}
}

func (c *Collector) RecordThumbnail() { atomic.AddInt64(&c.thumbnails, 1) }

func (c *Collector) RecordSearch() { atomic.AddInt64(&c.searches, 1) }

func (c *Collector) RecordCache(hit bool) {
	if hit {
		atomic.AddInt64(&c.cacheHits, 1)
	} else {
		atomic.AddInt64(&c.cacheMisses, 1)
	}
}

// Snapshot is a point-in-time view of the counters plus runtime stats.
type Snapshot struct {
	UptimeSeconds  int64  `json:"uptime_seconds"`
	HTTPRequests   int64  `json:"http_requests"`
	HTTPErrors     int64  `json:"http_errors"`
	Uploads        int64  `json:"uploads"`
	UploadBytes    int64  `json:"upload_bytes"`
	UploadFailures int64  `json:"upload_failures"`
	Thumbnails     int64  `json:"thumbnails"`
	Searches       int64  `json:"searches"`
	CacheHits      int64  `json:"cache_hits"`
	CacheMisses    int64  `json:"cache_misses"`
	Goroutines     int    `json:"goroutines"`
	HeapBytes      uint64 `json:"heap_bytes"`
}

// Stats returns the current snapshot.
func (c *Collector) Stats() Snapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return Snapshot{
		UptimeSeconds:  int64(time.Since(c.startTime).Seconds()),
		HTTPRequests:   atomic.LoadInt64(&c.httpRequests),
		HTTPErrors:     atomic.LoadInt64(&c.httpErrors),
		Uploads:        atomic.LoadInt64(&c.uploads),
		UploadBytes:    atomic.LoadInt64(&c.uploadBytes),
		UploadFailures: atomic.LoadInt64(&c.uploadFailures),
		Thumbnails:     atomic.LoadInt64(&c.thumbnails),
		Searches:       atomic.LoadInt64(&c.searches),
		CacheHits:      atomic.LoadInt64(&c.cacheHits),
		CacheMisses:    atomic.LoadInt64(&c.cacheMisses),
		Goroutines:     runtime.NumGoroutine(),
		HeapBytes:      m.Alloc,
	}
}

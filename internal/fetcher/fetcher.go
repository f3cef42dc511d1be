// Package fetcher runs content downloads on a single background
// worker so the interactive loop never blocks on the network. Results
// travel back over a channel and are delivered by Drain on whichever
// goroutine owns the UI.
package fetcher

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/migueltarga/kiddo-engine/internal/catalog"
	"github.com/migueltarga/kiddo-engine/internal/imagecache"
)

// queueSize bounds both the request and result channels. Submissions
// beyond it fail immediately instead of blocking the caller.
const queueSize = 10

// ErrQueueFull is returned through the callback when a request cannot
// be queued.
var ErrQueueFull = errors.New("fetch queue full")

// Kind identifies what a request fetches.
type Kind int

const (
	KindImage Kind = iota
	KindStory
	KindCatalog
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindStory:
		return "story"
	case KindCatalog:
		return "catalog"
	default:
		return "unknown"
	}
}

// Result reports the outcome of one request. Path is set for image
// loads, StoryID for story downloads.
type Result struct {
	Kind    Kind
	Target  string
	OK      bool
	Path    string
	StoryID string
	Err     error
}

// Callback receives a Result. Callbacks queued by the worker run on
// the goroutine that calls Drain; queue-full callbacks run
// synchronously on the submitting goroutine.
type Callback func(Result)

type request struct {
	kind     Kind
	target   string
	callback Callback
}

type result struct {
	res      Result
	callback Callback
}

// Fetcher owns the worker goroutine and the two bounded queues.
type Fetcher struct {
	images   *imagecache.Cache
	remote   *catalog.Remote
	logger   *slog.Logger
	requests chan request
	results  chan result
	done     chan struct{}
}

// New starts a fetcher. Close must be called to stop the worker.
func New(images *imagecache.Cache, remote *catalog.Remote, logger *slog.Logger) *Fetcher {
	f := &Fetcher{
		images:   images,
		remote:   remote,
		logger:   logger,
		requests: make(chan request, queueSize),
		results:  make(chan result, queueSize),
		done:     make(chan struct{}),
	}
	go f.work()
	return f
}

// LoadImage queues a cache-or-download for an image URL.
func (f *Fetcher) LoadImage(url string, cb Callback) {
	f.submit(request{kind: KindImage, target: url, callback: cb})
}

// DownloadStory queues a story file download.
func (f *Fetcher) DownloadStory(file string, cb Callback) {
	f.submit(request{kind: KindStory, target: file, callback: cb})
}

// FetchCatalog queues a remote catalog refresh.
func (f *Fetcher) FetchCatalog(cb Callback) {
	f.submit(request{kind: KindCatalog, callback: cb})
}

func (f *Fetcher) submit(req request) {
	select {
	case f.requests <- req:
	default:
		f.logger.Warn("Fetch queue full, rejecting request", "kind", req.kind.String(), "target", req.target)
		if req.callback != nil {
			req.callback(Result{
				Kind:   req.kind,
				Target: req.target,
				Err:    fmt.Errorf("%w: %s", ErrQueueFull, req.kind),
			})
		}
	}
}

// Drain delivers every completed result without blocking. Call it
// from the interactive loop; callbacks run on the calling goroutine.
// Returns the number of results delivered.
func (f *Fetcher) Drain() int {
	delivered := 0
	for {
		select {
		case r := <-f.results:
			delivered++
			if r.callback != nil {
				r.callback(r.res)
			}
		default:
			return delivered
		}
	}
}

// Close stops the worker. Requests already queued are discarded;
// completed results can still be drained.
func (f *Fetcher) Close() {
	close(f.done)
}

func (f *Fetcher) work() {
	for {
		select {
		case <-f.done:
			return
		case req := <-f.requests:
			res := f.handle(req)
			if res.Err != nil {
				f.logger.Warn("Fetch failed", "kind", req.kind.String(), "target", req.target, "error", res.Err)
			}
			select {
			case f.results <- result{res: res, callback: req.callback}:
			case <-f.done:
				return
			}
		}
	}
}

func (f *Fetcher) handle(req request) Result {
	res := Result{Kind: req.kind, Target: req.target}
	switch req.kind {
	case KindImage:
		path, err := f.images.Ensure(req.target)
		res.Path, res.Err = path, err
	case KindStory:
		id, err := f.remote.EnsureDownloadedOrIndexed(req.target)
		res.StoryID, res.Err = id, err
	case KindCatalog:
		res.Err = f.remote.Fetch()
	default:
		res.Err = fmt.Errorf("unknown request kind %d", req.kind)
	}
	res.OK = res.Err == nil
	return res
}

package optimize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/minifold/minifold/internal/logger"
	"github.com/minifold/minifold/pkg/asset"
	"github.com/minifold/minifold/pkg/cache"
	"github.com/minifold/minifold/pkg/fingerprint"
	"github.com/minifold/minifold/pkg/minify"
	"github.com/minifold/minifold/pkg/pool"
	"github.com/minifold/minifold/pkg/sourcemap"
)

// Optimizer runs minification over an asset store.
type Optimizer struct {
	cfg      Config
	matcher  asset.Matcher
	minifier minify.Minifier
	cache    cache.Cache
	metrics  Metrics
}

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithCache sets the result cache. Without it results are not cached.
func WithCache(c cache.Cache) Option {
	return func(o *Optimizer) { o.cache = c }
}

// WithMetrics sets the metrics sink. A nil sink is valid and free.
func WithMetrics(m Metrics) Option {
	return func(o *Optimizer) { o.metrics = m }
}

// New creates an Optimizer. Configuration problems (bad match patterns)
// are the only errors; they abort before any task can run.
func New(cfg Config, minifier minify.Minifier, opts ...Option) (*Optimizer, error) {
	cfg = cfg.normalize()

	matcher, err := NewMatcher(cfg.Match)
	if err != nil {
		return nil, err
	}

	o := &Optimizer{
		cfg:      cfg,
		matcher:  matcher,
		minifier: minifier,
		cache:    cache.Nop{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// RunResult summarizes one optimizer run.
type RunResult struct {
	// Optimized holds the names written back this run, sorted. Cache hits
	// are included; a hit differs from a fresh compute only in skipping
	// the transform.
	Optimized []string

	// Skipped holds the names left untouched because they were already
	// marked minimized, sorted.
	Skipped []string

	// CacheHits counts per-asset result cache hits (merge-cache hits are
	// not included).
	CacheHits int

	// Errors holds one translated diagnostic per failed asset. Failed
	// assets are left unmodified.
	Errors []error

	// BytesIn and BytesOut total the input and written content sizes of
	// optimized assets.
	BytesIn  int64
	BytesOut int64

	// Duration is the wall time of the whole run.
	Duration time.Duration
}

// task is the per-asset unit of work, immutable once built.
type task struct {
	name     string
	input    []byte
	inputMap []byte
	etag     fingerprint.ETag
}

// cacheEntry is the serialized form of a finalized result.
type cacheEntry struct {
	Content          []byte `json:"content"`
	Map              []byte `json:"map,omitempty"`
	CommentsFilename string `json:"commentsFilename,omitempty"`
	Comments         string `json:"comments,omitempty"`
}

// Run optimizes every eligible asset in the store.
//
// Individual task failures are collected into the result, not returned:
// the run always completes, reporting the full set of per-asset failures.
// The returned error covers only failures of the run itself (context
// cancellation before completion).
func (o *Optimizer) Run(ctx context.Context, store asset.Store) (*RunResult, error) {
	start := time.Now()
	result := &RunResult{}

	tasks := o.collectTasks(store, result)
	if len(tasks) == 0 {
		result.Duration = time.Since(start)
		return result, ctx.Err()
	}

	available := pool.DefaultWidth(o.cfg.Parallel)
	width := pool.PoolWidth(len(tasks), available)

	var transformer pool.Transformer
	if width > 0 {
		transformer = pool.New(width, o.minifier)
	} else {
		transformer = pool.NewInProcess(o.minifier)
	}
	limiter := pool.NewLimiter(width)

	logger.Info("Optimizing assets",
		logger.KeyTasks, len(tasks),
		logger.KeyPoolWidth, width)

	var (
		mu             sync.Mutex
		wg             sync.WaitGroup
		commentEntries []commentEntry
	)

	for _, t := range tasks {
		wg.Add(1)
		go func(t task) {
			defer wg.Done()

			out, hit, err := o.runTask(ctx, transformer, limiter, t)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors = append(result.Errors, err)
				recordTask(o.metrics, "error")
				return
			}

			content := out.source.Content()
			if err := store.Update(t.name, out.source, asset.Info{Minimized: true}); err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("update asset %s: %w", t.name, err))
				recordTask(o.metrics, "error")
				return
			}

			result.Optimized = append(result.Optimized, t.name)
			result.BytesIn += int64(len(t.input))
			result.BytesOut += int64(len(content))
			if hit {
				result.CacheHits++
			}
			if out.comments != "" {
				commentEntries = append(commentEntries, commentEntry{
					name:     t.name,
					filename: out.commentsFilename,
					comments: out.comments,
				})
			}
			recordTask(o.metrics, "ok")
		}(t)
	}

	wg.Wait()

	// Teardown happens exactly once, failures or not, before the merge
	// phase runs on the coordinating flow.
	if err := transformer.Close(); err != nil {
		logger.Warn("Worker pool shutdown failed", logger.Err(err))
	}

	result.Errors = append(result.Errors, o.mergeCommentFiles(store, commentEntries)...)

	sort.Strings(result.Optimized)
	result.Duration = time.Since(start)

	logger.Info("Optimization run complete",
		logger.KeyTasks, len(result.Optimized),
		logger.KeyCacheHit, result.CacheHits,
		logger.KeyBytesIn, result.BytesIn,
		logger.KeyBytesOut, result.BytesOut,
		logger.KeyDurationMs, logger.Duration(start))

	return result, ctx.Err()
}

// collectTasks lists eligible assets and builds their immutable tasks.
// Assets already marked minimized are skipped without touching the cache
// or the pool.
func (o *Optimizer) collectTasks(store asset.Store, result *RunResult) []task {
	optionsFP := o.cfg.Options.Fingerprint()
	extraFP := o.cfg.fingerprintExtra()

	var tasks []task
	for _, name := range store.List(o.matcher) {
		a, err := store.Get(name)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("read asset %s: %w", name, err))
			continue
		}
		if a.Info.Minimized {
			result.Skipped = append(result.Skipped, name)
			recordTask(o.metrics, "skipped")
			continue
		}

		input := a.Source.Content()
		inputMap := a.Source.SourceMap()
		if inputMap != nil {
			// A malformed map is still used best effort; only the
			// translation quality degrades.
			if err := sourcemap.Check(inputMap); err != nil {
				logger.Warn("Invalid input source map",
					logger.Asset(name), logger.Err(err))
			}
		}

		tasks = append(tasks, task{
			name:     name,
			input:    input,
			inputMap: inputMap,
			etag:     fingerprint.Sum(input, optionsFP, extraFP),
		})
	}

	sort.Strings(result.Skipped)
	return tasks
}

// runTask resolves one task: cache hit, or transform and store. The store
// happens before the result is reported back, so an interrupted run still
// leaves a usable entry behind.
func (o *Optimizer) runTask(ctx context.Context, transformer pool.Transformer, limiter *pool.Limiter, t task) (processed, bool, error) {
	if payload, err := o.cache.Get(t.name, t.etag); err == nil {
		recordCacheLookup(o.metrics, "hit")
		out, decodeErr := decodeCacheEntry(payload)
		if decodeErr == nil {
			logger.Debug("Result cache hit", logger.Asset(t.name), logger.Etag(string(t.etag)))
			return out, true, nil
		}
		logger.Warn("Discarding undecodable cache entry",
			logger.Asset(t.name), logger.Err(decodeErr))
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		logger.Warn("Result cache lookup failed", logger.Asset(t.name), logger.Err(err))
	} else {
		recordCacheLookup(o.metrics, "miss")
	}

	if err := limiter.Acquire(ctx); err != nil {
		return processed{}, false, fmt.Errorf("asset %s: %w", t.name, err)
	}
	transformStart := time.Now()
	res, err := transformer.Transform(ctx, &minify.Task{
		Name:           t.name,
		Input:          t.input,
		InputSourceMap: t.inputMap,
		Options:        o.cfg.Options,
	})
	limiter.Release()

	if err != nil {
		// Failures are never cached; the asset stays unmodified.
		return processed{}, false, translateError(t.name, t.inputMap, err)
	}
	observeTransform(o.metrics, len(t.input), len(res.Code), time.Since(transformStart))

	out := o.process(t.name, res)

	payload, err := json.Marshal(cacheEntry{
		Content:          out.source.Content(),
		Map:              out.source.SourceMap(),
		CommentsFilename: out.commentsFilename,
		Comments:         out.comments,
	})
	if err == nil {
		if putErr := o.cache.Put(t.name, t.etag, payload); putErr != nil {
			logger.Warn("Failed to cache result", logger.Asset(t.name), logger.Err(putErr))
		} else {
			recordCacheStore(o.metrics)
		}
	}

	return out, false, nil
}

func decodeCacheEntry(payload []byte) (processed, error) {
	var entry cacheEntry
	if err := json.Unmarshal(payload, &entry); err != nil {
		return processed{}, err
	}

	var src asset.Source
	if entry.Map != nil {
		src = asset.NewMapped(entry.Content, entry.Map)
	} else {
		src = asset.NewRaw(entry.Content)
	}
	return processed{
		source:           src,
		commentsFilename: entry.CommentsFilename,
		comments:         entry.Comments,
	}, nil
}

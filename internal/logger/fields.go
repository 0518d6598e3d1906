package logger

import "log/slog"

// Standard field keys for structured logging.
// Use these keys consistently across all log statements so that runs can be
// aggregated and queried by asset, cache behavior, and worker scheduling.
const (
	// ========================================================================
	// Run & Task Identity
	// ========================================================================
	KeyRunID = "run_id" // Unique identifier for one optimization pass
	KeyAsset = "asset"  // Asset name (store-relative path)
	KeyTasks = "tasks"  // Number of eligible tasks in a run

	// ========================================================================
	// Cache Layer
	// ========================================================================
	KeyCacheHit  = "cache_hit" // Cache hit indicator
	KeyEtag      = "etag"      // Content+config fingerprint
	KeyCacheName = "cache"     // Cache implementation: badger, memory, off

	// ========================================================================
	// Worker Pool
	// ========================================================================
	KeyPoolWidth = "pool_width" // Number of concurrent pool members (0 = in-process)
	KeyParallel  = "parallel"   // Whether parallel execution was selected

	// ========================================================================
	// Result Shaping
	// ========================================================================
	KeyCommentsFile = "comments_file" // Destination of extracted license comments
	KeyBytesIn      = "bytes_in"      // Asset size before optimization
	KeyBytesOut     = "bytes_out"     // Asset size after optimization

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyPath       = "path"        // Filesystem path (config file, store root)
)

// Field constructors for type safety.

// RunID returns a slog.Attr for the run identifier
func RunID(id string) slog.Attr {
	return slog.String(KeyRunID, id)
}

// Asset returns a slog.Attr for an asset name
func Asset(name string) slog.Attr {
	return slog.String(KeyAsset, name)
}

// CacheHit returns a slog.Attr for cache hit indicator
func CacheHit(hit bool) slog.Attr {
	return slog.Bool(KeyCacheHit, hit)
}

// Etag returns a slog.Attr for a cache fingerprint
func Etag(tag string) slog.Attr {
	return slog.String(KeyEtag, tag)
}

// PoolWidth returns a slog.Attr for the selected pool width
func PoolWidth(w int) slog.Attr {
	return slog.Int(KeyPoolWidth, w)
}

// CommentsFile returns a slog.Attr for an extracted-comments destination
func CommentsFile(name string) slog.Attr {
	return slog.String(KeyCommentsFile, name)
}

// DurationMs returns a slog.Attr for duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

package optimize

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/minifold/minifold/internal/logger"
	"github.com/minifold/minifold/pkg/asset"
	"github.com/minifold/minifold/pkg/cache"
	"github.com/minifold/minifold/pkg/fingerprint"
)

// commentEntry is one task's contribution to a comments file.
type commentEntry struct {
	name     string
	filename string
	comments string
}

// commentAccumulator is the running state of the merge fold: the current
// destination, the "|"-joined label of contributors (used as the secondary
// cache key), and the destination's current content.
type commentAccumulator struct {
	filename string
	label    string
	source   string
}

// mergeCommentFiles folds the per-asset comment outputs into their
// destination files. Entries are processed in lexicographic order of the
// contributing asset name, so the merged content is identical regardless
// of task completion order.
func (o *Optimizer) mergeCommentFiles(store asset.Store, entries []commentEntry) []error {
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })

	var errs []error
	var acc commentAccumulator

	for _, e := range entries {
		if acc.filename == e.filename && acc.filename != "" {
			if err := o.mergeInto(store, &acc, e); err != nil {
				errs = append(errs, err)
			}
			continue
		}

		// New destination. A file already present (emitted by an earlier
		// pipeline stage, or this run's own banner target collisions)
		// becomes the baseline the entry is merged into; otherwise the
		// entry's comments seed the file verbatim.
		if existing, err := store.Get(e.filename); err == nil {
			acc = commentAccumulator{
				filename: e.filename,
				label:    e.filename,
				source:   string(existing.Source.Content()),
			}
			if err := o.mergeInto(store, &acc, e); err != nil {
				errs = append(errs, err)
			}
			continue
		}

		if err := store.Emit(e.filename, asset.NewRawString(e.comments)); err != nil {
			errs = append(errs, fmt.Errorf("write comments file %s: %w", e.filename, err))
			continue
		}
		acc = commentAccumulator{filename: e.filename, label: e.name, source: e.comments}
		logger.Debug("Wrote comments file",
			logger.KeyCommentsFile, e.filename,
			logger.KeyAsset, e.name)
	}

	return errs
}

// mergeInto merges one entry into the accumulator's destination and
// advances the accumulator. Merge results are cached under the combined
// fingerprint of both inputs; the combination order is fixed as
// (accumulator, entry), matching the fold order.
func (o *Optimizer) mergeInto(store asset.Store, acc *commentAccumulator, e commentEntry) error {
	label := acc.label + "|" + e.name
	etag := fingerprint.Combine(
		fingerprint.New([]byte(acc.source)),
		fingerprint.New([]byte(e.comments)),
	)

	var merged string
	if cached, err := o.cache.Get(label, etag); err == nil {
		recordCacheLookup(o.metrics, "hit")
		merged = string(cached)
	} else if errors.Is(err, cache.ErrCacheMiss) {
		recordCacheLookup(o.metrics, "miss")
		merged = mergeCommentText(acc.source, e.comments)
		if err := o.cache.Put(label, etag, []byte(merged)); err != nil {
			logger.Warn("Failed to cache merged comments",
				logger.KeyCommentsFile, acc.filename, logger.Err(err))
		} else {
			recordCacheStore(o.metrics)
		}
	} else {
		merged = mergeCommentText(acc.source, e.comments)
		logger.Warn("Comments merge cache lookup failed",
			logger.KeyCommentsFile, acc.filename, logger.Err(err))
	}

	if err := store.Update(acc.filename, asset.NewRawString(merged), asset.Info{Minimized: true}); err != nil {
		return fmt.Errorf("update comments file %s: %w", acc.filename, err)
	}

	acc.label = label
	acc.source = merged
	logger.Debug("Merged comments file",
		logger.KeyCommentsFile, acc.filename,
		logger.KeyAsset, e.name)
	return nil
}

// mergeCommentText unions two comment texts. Both are split on blank-line
// boundaries, deduplicated with first occurrence winning, and rejoined.
func mergeCommentText(a, b string) string {
	blocks := append(strings.Split(a, "\n\n"), strings.Split(b, "\n\n")...)

	seen := make(map[string]struct{}, len(blocks))
	out := make([]string, 0, len(blocks))
	for _, blk := range blocks {
		if _, dup := seen[blk]; dup {
			continue
		}
		seen[blk] = struct{}{}
		out = append(out, blk)
	}
	return strings.Join(out, "\n\n")
}

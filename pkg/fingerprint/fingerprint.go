// Package fingerprint derives stable cache keys (ETags) from asset content
// and optimizer configuration.
//
// ETags are content hashes, not object identities, so entries persisted by a
// previous process remain valid as long as content and configuration are
// unchanged. Hashing uses xxHash64 for speed; collision resistance at
// cryptographic strength is not a goal for a local build cache.
package fingerprint

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// ETag is an opaque fingerprint of content plus configuration.
// Two tasks with identical ETags under the same asset name are
// cache-equivalent.
type ETag string

// New computes the ETag of a single content buffer.
func New(content []byte) ETag {
	return ETag(fmt.Sprintf("%016x", xxhash.Sum64(content)))
}

// Sum computes an ETag over multiple parts. Each part is length-prefixed
// before hashing so that ("ab","c") and ("a","bc") produce distinct tags.
func Sum(parts ...[]byte) ETag {
	d := xxhash.New()
	var lenBuf [8]byte
	for _, p := range parts {
		binary.BigEndian.PutUint64(lenBuf[:], uint64(len(p)))
		_, _ = d.Write(lenBuf[:])
		_, _ = d.Write(p)
	}
	return ETag(fmt.Sprintf("%016x", d.Sum64()))
}

// Combine merges two ETags into one, for composite cache entries such as
// merged comment files.
//
// Combine is deterministic but order-dependent: Combine(a, b) differs from
// Combine(b, a). Callers must fix a pairing order; the comment merger always
// passes (accumulator, incoming) in that order.
func Combine(a, b ETag) ETag {
	return Sum([]byte(a), []byte(b))
}

// String returns the ETag as a printable string.
func (e ETag) String() string {
	return string(e)
}

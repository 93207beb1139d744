package reconciler

import (
	"slices"

	"github.com/agentstation/rollcall/pkg/records"
)

// KeyFunc computes the join key of a record and reports whether the record
// is a bye-election entry. An empty key means the record cannot be joined.
type KeyFunc func(rec *records.Record) (key string, byeElection bool)

// Index maps join keys to the records of one source. Buckets keep source
// order, and lookups return the first record of a bucket.
type Index struct {
	buckets      map[string][]*records.Record
	order        []string
	size         int
	emptyKeys    int
	byeElections int
}

// BuildIndex indexes recs by keyFn in a single pass. Records with an empty
// key are skipped and counted.
func BuildIndex(recs []*records.Record, keyFn KeyFunc) *Index {
	ix := &Index{buckets: make(map[string][]*records.Record, len(recs))}
	for _, rec := range recs {
		key, bye := keyFn(rec)
		if bye {
			ix.byeElections++
		}
		if key == "" {
			ix.emptyKeys++
			continue
		}
		if _, seen := ix.buckets[key]; !seen {
			ix.order = append(ix.order, key)
		}
		ix.buckets[key] = append(ix.buckets[key], rec)
		ix.size++
	}
	return ix
}

// Lookup returns the first record indexed under key.
func (ix *Index) Lookup(key string) (*records.Record, bool) {
	if key == "" {
		return nil, false
	}
	bucket := ix.buckets[key]
	if len(bucket) == 0 {
		return nil, false
	}
	return bucket[0], true
}

// Bucket returns every record indexed under key in source order.
func (ix *Index) Bucket(key string) []*records.Record {
	return slices.Clone(ix.buckets[key])
}

// Keys returns the distinct keys in first-seen order.
func (ix *Index) Keys() []string {
	return slices.Clone(ix.order)
}

// Len returns the number of distinct keys.
func (ix *Index) Len() int {
	return len(ix.order)
}

// Size returns the number of indexed records.
func (ix *Index) Size() int {
	return ix.size
}

// EmptyKeys returns the number of records skipped for having no key.
func (ix *Index) EmptyKeys() int {
	return ix.emptyKeys
}

// Shadowed returns the number of records hidden behind the first record of their bucket.
func (ix *Index) Shadowed() int {
	return ix.size - len(ix.order)
}

// ByeElections returns the number of records flagged as bye-election entries.
func (ix *Index) ByeElections() int {
	return ix.byeElections
}

// Package aggregate contains the pure computation steps of the pipeline:
// weighted top-N frequency tables and the age/sex rate table. Every function
// is deterministic given its inputs and performs no I/O, which is what lets
// the graph layer memoize their results safely.
package aggregate

import (
	"errors"
	"fmt"
	"sort"

	"github.com/vk/injurylens/internal/dimension"
	"github.com/vk/injurylens/internal/store"
)

// ErrInvalidArgument reports a caller-supplied parameter rejected before any
// computation happened.
var ErrInvalidArgument = errors.New("invalid argument")

// OtherLabel is the synthetic category absorbing everything below the top N.
const OtherLabel = "Other"

// Bucket is one row of a weighted frequency table.
type Bucket struct {
	Label  string
	Weight float64
}

// WeightedTopN groups the view's records by the given dimension, sums record
// weights per group, and keeps the n heaviest groups. All remaining groups
// merge into a single "Other" bucket; when n or fewer distinct categories
// exist, no Other bucket is produced. Groups tied at the n boundary rank in
// first-encountered order, so the output is reproducible for a given view.
func WeightedTopN(v store.View, key dimension.Func, n int) ([]Bucket, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: top-n size must be at least 1, got %d", ErrInvalidArgument, n)
	}

	totals := make(map[string]float64)
	order := make([]string, 0)
	for i := 0; i < v.Len(); i++ {
		r := v.At(i)
		label := key(r)
		if _, seen := totals[label]; !seen {
			order = append(order, label)
		}
		totals[label] += r.Weight
	}

	buckets := make([]Bucket, 0, len(order))
	for _, label := range order {
		buckets = append(buckets, Bucket{Label: label, Weight: totals[label]})
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Weight > buckets[j].Weight
	})

	if len(buckets) <= n {
		return buckets, nil
	}

	var other float64
	for _, b := range buckets[n:] {
		other += b.Weight
	}
	out := append(buckets[:n:n], Bucket{Label: OtherLabel, Weight: other})
	return out, nil
}

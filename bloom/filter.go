// Package bloom provides a probabilistic set of string keys.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Filter is a Bloom filter over strings. A negative answer is exact;
// a positive answer must be confirmed by the caller.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter returns a filter sized for n keys at the given false positive rate.
// A zero n is treated as one key.
func NewFilter(n uint, fpRate float64) *Filter {
	if n == 0 {
		n = 1
	}
	return &Filter{f: bloom.NewWithEstimates(n, fpRate)}
}

// Add inserts key.
func (f *Filter) Add(key string) {
	f.f.AddString(key)
}

// MayContain reports whether key might have been added.
func (f *Filter) MayContain(key string) bool {
	return f.f.TestString(key)
}

// AddIfAbsent inserts key and reports whether it was possibly present before.
func (f *Filter) AddIfAbsent(key string) bool {
	return f.f.TestAndAddString(key)
}

// ApproximateLen estimates the number of distinct keys added.
func (f *Filter) ApproximateLen() uint {
	return uint(f.f.ApproximatedSize())
}

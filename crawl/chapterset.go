package crawl

import (
	"github.com/fwojciec/guji"
	"github.com/fwojciec/guji/bloom"
)

// Sizing of the Bloom filter fronting a ChapterSet.
const (
	expectedChapters  = 2000
	falsePositiveRate = 0.001
)

// ChapterSet is an order-preserving set of chapters keyed by exact URL.
// The first occurrence of a URL fixes both its position and its title.
// A Bloom filter answers most negative lookups before the exact index.
// It is not safe for concurrent use.
type ChapterSet struct {
	seen  *bloom.Filter
	index map[string]int
	refs  []guji.ChapterRef
}

// NewChapterSet creates an empty set sized for n expected chapters.
func NewChapterSet(n uint) *ChapterSet {
	if n == 0 {
		n = expectedChapters
	}
	return &ChapterSet{
		seen:  bloom.NewFilter(n, falsePositiveRate),
		index: make(map[string]int),
	}
}

// Add appends ref unless its URL is empty or already present.
// Returns true if the set grew.
func (s *ChapterSet) Add(ref guji.ChapterRef) bool {
	if ref.URL == "" || s.Contains(ref.URL) {
		return false
	}
	s.seen.Add(ref.URL)
	s.index[ref.URL] = len(s.refs)
	s.refs = append(s.refs, ref)
	return true
}

// Contains reports whether a chapter with this exact URL was added.
func (s *ChapterSet) Contains(url string) bool {
	if !s.seen.MayContain(url) {
		return false
	}
	_, ok := s.index[url]
	return ok
}

// Refs returns a copy of the chapters in insertion order.
func (s *ChapterSet) Refs() []guji.ChapterRef {
	out := make([]guji.ChapterRef, len(s.refs))
	copy(out, s.refs)
	return out
}

// Len returns the number of chapters in the set.
func (s *ChapterSet) Len() int {
	return len(s.refs)
}

// DedupeChapters removes later occurrences of a URL, preserving order.
func DedupeChapters(refs []guji.ChapterRef) []guji.ChapterRef {
	set := NewChapterSet(uint(len(refs)))
	for _, ref := range refs {
		set.Add(ref)
	}
	return set.Refs()
}

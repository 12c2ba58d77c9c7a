package logging

import "strings"

// ProgressSampler suppresses repetitive transcode progress logs while
// preserving signal when the item or the percentage bucket changes.
type ProgressSampler struct {
	bucketSize float64
	lastItem   string
	lastBucket int
}

// NewProgressSampler constructs a sampler that emits when the percent crosses
// bucket boundaries (default 5%) or when a new item starts.
func NewProgressSampler(bucketSize float64) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 5
	}
	return &ProgressSampler{bucketSize: bucketSize, lastBucket: -1}
}

// ShouldLog reports whether a progress event for item should be logged.
// Percent can be negative to indicate "unknown".
func (s *ProgressSampler) ShouldLog(percent float64, item string) bool {
	if s == nil {
		return true
	}
	item = strings.TrimSpace(item)
	emit := false
	if item != "" && item != s.lastItem {
		s.lastItem = item
		s.lastBucket = -1
		emit = true
	}
	if percent >= 0 {
		bucket := int(percent / s.bucketSize)
		if percent >= 100 {
			bucket = int(100 / s.bucketSize)
		}
		if bucket > s.lastBucket {
			s.lastBucket = bucket
			emit = true
		}
	}
	return emit
}

// Reset clears the sampler state.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.lastItem = ""
	s.lastBucket = -1
}

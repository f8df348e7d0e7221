package logging

import "strings"

// ProgressSampler suppresses repetitive progress logs while preserving signal
// when the job changes or the fraction crosses a bucket boundary.
type ProgressSampler struct {
	bucketSize float64
	lastJob    string
	lastBucket int
}

// NewProgressSampler constructs a sampler that emits when progress crosses
// bucket boundaries expressed in percent (default 5%).
func NewProgressSampler(bucketSize float64) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 5
	}
	return &ProgressSampler{bucketSize: bucketSize, lastBucket: -1}
}

// ShouldLog reports whether a progress sample in [0,1] for the given job
// should be logged. A negative fraction means "unknown" and never crosses a
// bucket on its own.
func (s *ProgressSampler) ShouldLog(jobID string, fraction float64) bool {
	if s == nil {
		return true
	}
	jobID = strings.TrimSpace(jobID)
	emit := false
	if jobID != "" && jobID != s.lastJob {
		s.lastJob = jobID
		s.lastBucket = -1
		emit = true
	}
	if fraction >= 0 {
		percent := fraction * 100
		if percent > 100 {
			percent = 100
		}
		bucket := int(percent / s.bucketSize)
		if bucket > s.lastBucket {
			s.lastBucket = bucket
			emit = true
		}
	}
	return emit
}

// Reset clears the sampler state (e.g. when a job ends).
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.lastJob = ""
	s.lastBucket = -1
}

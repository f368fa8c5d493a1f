// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package search

import "time"

// RetryPolicy governs per-batch retry. Each retry raises the similarity
// threshold by ThresholdStep, narrowing the candidate set on the assumption
// that a failing similarity query is cost-driven by too many weak matches.
type RetryPolicy struct {
	MaxAttempts   int
	ThresholdStep float32
}

// Config carries per-corpus similarity thresholds and result limits, the
// pagination batch size, the recency window, and the retry policy.
type Config struct {
	SummaryThreshold float32
	SummaryLimit     int

	SegmentThreshold float32
	SegmentLimit     int

	FeatureThreshold float32
	FeatureLimit     int

	// BatchSize bounds each backing-store query; limits are reached by
	// paging rather than one large scan.
	BatchSize int

	// RecencyWindow restricts segment and feature matches to calls that
	// started within the trailing window. Summaries are never filtered.
	RecencyWindow time.Duration

	Retry RetryPolicy
}

// DefaultConfig returns the default search configuration.
func DefaultConfig() Config {
	return Config{
		SummaryThreshold: 0.6,
		SummaryLimit:     3,
		SegmentThreshold: 0.9,
		SegmentLimit:     5,
		FeatureThreshold: 0.6,
		FeatureLimit:     3,
		BatchSize:        2,
		RecencyWindow:    90 * 24 * time.Hour,
		Retry: RetryPolicy{
			MaxAttempts:   3,
			ThresholdStep: 0.05,
		},
	}
}

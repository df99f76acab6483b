// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"strconv"
	"strings"
)

// DefaultPercent is reported for a line that carries no progress hint.
const DefaultPercent = 50

// percentKeywords maps output phrases to a rough completion, checked in order.
// Matching is case insensitive on the keyword stem.
var percentKeywords = []struct {
	keyword string
	percent int
}{
	{"fetch", 10},
	{"download", 30},
	{"install", 60},
	{"pour", 80},
	{"complete", 100},
}

// percentEstimators are tried in order; the first that recognises the line wins.
var percentEstimators = []func(string) (int, bool){
	explicitPercent,
	keywordPercent,
}

// EstimatePercent guesses how far along an operation is from one line of its output.
// An explicit "NN%" wins, then known keywords, then DefaultPercent.
// The result is always within [0, 100].
func EstimatePercent(line string) int {
	for _, est := range percentEstimators {
		if p, ok := est(line); ok {
			return p
		}
	}

	return DefaultPercent
}

// explicitPercent reads the run of digits immediately before the first '%',
// ignoring a fractional part such as the ".5" in "42.5%".
func explicitPercent(line string) (int, bool) {
	idx := strings.IndexByte(line, '%')
	if idx < 0 {
		return 0, false
	}

	end := idx

	// skip a fractional part: "42.5%"
	if dot := strings.LastIndexByte(line[:end], '.'); dot >= 0 && allDigits(line[dot+1:end]) {
		end = dot
	}

	start := end
	for start > 0 && line[start-1] >= '0' && line[start-1] <= '9' {
		start--
	}

	if start == end {
		return 0, false
	}

	n, err := strconv.Atoi(line[start:end])
	if err != nil {
		// only overflow gets here, which is certainly more than 100
		return 100, true
	}

	return min(n, 100), true
}

func keywordPercent(line string) (int, bool) {
	lower := strings.ToLower(line)
	for _, k := range percentKeywords {
		if strings.Contains(lower, k.keyword) {
			return k.percent, true
		}
	}

	return 0, false
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}

	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}

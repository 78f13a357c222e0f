// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tone classifies message text into a coarse emotional tone.
//
// Classification is pure keyword matching; it is cheap enough to run on
// every completed message and good enough to color the transcript. No
// model call is involved.
package tone

import (
	"strings"
)

// =============================================================================
// TONE VALUES
// =============================================================================

// Tone is a coarse emotional category for a message.
type Tone string

const (
	ToneNeutral     Tone = "neutral"
	TonePositive    Tone = "positive"
	ToneNegative    Tone = "negative"
	ToneExcited     Tone = "excited"
	ToneInquisitive Tone = "inquisitive"
)

// String returns the tone name.
func (t Tone) String() string {
	return string(t)
}

// =============================================================================
// CLASSIFICATION
// =============================================================================

// Keyword sets per tone. Checked against the lowercased text; first match
// in priority order wins.
var (
	excitedMarkers = []string{
		"amazing", "awesome", "incredible", "fantastic", "can't wait",
		"so cool", "love it", "woohoo", "let's go",
	}
	positiveMarkers = []string{
		"thanks", "thank you", "great", "perfect", "nice", "well done",
		"works now", "that helped", "appreciate",
	}
	negativeMarkers = []string{
		"broken", "fails", "failed", "doesn't work", "does not work",
		"frustrat", "annoying", "hate", "wrong", "terrible", "crash",
		"stuck", "useless",
	}
	inquisitiveMarkers = []string{
		"how do", "how does", "how can", "what is", "what are", "why ",
		"where ", "could you explain", "can you explain",
	}
)

// Classify determines the tone of a message.
//
// Priority order:
//  1. Excited: strong enthusiasm markers or multiple exclamation marks
//  2. Negative: frustration and failure vocabulary
//  3. Positive: gratitude and approval vocabulary
//  4. Inquisitive: question phrasing or a trailing question mark
//  5. Neutral: everything else
func Classify(text string) Tone {
	q := strings.ToLower(text)

	if containsAny(q, excitedMarkers) || strings.Count(q, "!") >= 2 {
		return ToneExcited
	}
	if containsAny(q, negativeMarkers) {
		return ToneNegative
	}
	if containsAny(q, positiveMarkers) {
		return TonePositive
	}
	if containsAny(q, inquisitiveMarkers) || strings.HasSuffix(strings.TrimSpace(q), "?") {
		return ToneInquisitive
	}
	return ToneNeutral
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

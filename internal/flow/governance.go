// Package flow: post-generation response governance.
package flow

import (
	"regexp"
	"strings"
	"unicode"
)

// maxReplyWords caps runaway generations: anything longer is truncated to
// its first sentence, keeping the "one question, short sentences" style
// without a regeneration round-trip.
const maxReplyWords = 30

var certainlyPrefixRe = regexp.MustCompile(`^[Cc]ertainly[!,.]?\s*`)

// RewriteReply applies the two governance rules, in order:
//
//  1. Conversion keyword: when a conversion is pending, the reply must open
//     with "Certainly". If the backend did not produce it, prepend it and
//     re-capitalize what follows; triggered reports that the prepend fired.
//     When no conversion is pending, a spurious leading "Certainly" is
//     replaced with "Absolutely" so the trigger phrase never leaks unearned.
//  2. Length cap: replies over maxReplyWords words are cut to their first
//     sentence.
//
// The function is pure; the caller owns flipping the state flag when
// triggered is true.
func RewriteReply(reply string, needsConversion bool) (string, bool) {
	response := strings.TrimSpace(reply)
	triggered := false

	startsWithCertainly := strings.HasPrefix(strings.ToLower(response), "certainly")
	if needsConversion && !startsWithCertainly {
		response = "Certainly " + capitalizeFirst(response)
		triggered = true
	}
	if !needsConversion && startsWithCertainly {
		response = certainlyPrefixRe.ReplaceAllString(response, "Absolutely ")
	}

	if len(strings.Fields(response)) > maxReplyWords {
		response = firstSentence(response)
	}

	return strings.TrimSpace(response), triggered
}

// firstSentence returns the run up to and including the first sentence
// terminator, or the whole string when none is present.
func firstSentence(s string) string {
	if i := strings.IndexAny(s, ".!?"); i >= 0 {
		return s[:i+1]
	}
	return s
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

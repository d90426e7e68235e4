// Package pagemath holds the word-count and page-estimate arithmetic shared
// by the outline, chapter and PDF generators.
package pagemath

import (
	"fmt"
	"strings"
)

// WordsPerPage is the estimation constant for a typical trade-book layout.
const WordsPerPage = 300

// RangePadding widens each section's high page estimate.
const RangePadding = 2

// CountWords counts whitespace-delimited tokens.
func CountWords(s string) int {
	return len(strings.Fields(s))
}

// EstimatePages converts a word count into a page estimate, rounding up.
// Zero words means zero pages.
func EstimatePages(words int) int {
	if words <= 0 {
		return 0
	}
	pages := (words + WordsPerPage - 1) / WordsPerPage
	if pages < 1 {
		pages = 1
	}
	return pages
}

// DistributePages splits total pages across n chapters: an even share each,
// with the remainder given to the first (total mod n) chapters. Returns nil
// when n <= 0.
func DistributePages(total, n int) []int {
	if n <= 0 {
		return nil
	}
	if total < 0 {
		total = 0
	}
	base := total / n
	rem := total % n
	out := make([]int, n)
	for i := range out {
		out[i] = base
		if i < rem {
			out[i]++
		}
	}
	return out
}

// PageRange renders a section's page estimate as "lo-hi", hi padded by
// RangePadding.
func PageRange(pages int) string {
	return fmt.Sprintf("%d-%d", pages, pages+RangePadding)
}

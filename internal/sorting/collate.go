package sorting

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Script groups in Korean collation order. Punctuation, symbols and digits come
// first, then Hangul, then Han, then every other script.
const (
	groupCommon = iota
	groupHangul
	groupHan
	groupOther
)

// collator compares strings the way a Korean-locale user expects. The x/text
// tables give per-script ordering; the Hangul-then-Han script reordering of the
// ko tailoring is applied on top, run by run.
//
// A collator is not safe for concurrent use.
type collator struct {
	primary *collate.Collator
	full    *collate.Collator
}

func newCollator() *collator {
	return &collator{
		primary: collate.New(language.Korean, collate.IgnoreCase, collate.IgnoreDiacritics, collate.IgnoreWidth),
		full:    collate.New(language.Korean),
	}
}

func (c *collator) compare(a, b string) int {
	if a == b {
		return 0
	}
	ar, br := scriptRuns(a), scriptRuns(b)
	if result := compareRuns(c.primary, ar, br); result != 0 {
		return result
	}
	return compareRuns(c.full, ar, br)
}

type run struct {
	group int
	text  string
}

func compareRuns(col *collate.Collator, a, b []run) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i].group != b[i].group {
			return compareGroups(a[i].group, b[i].group)
		}
		result := col.CompareString(a[i].text, b[i].text)
		if result == 0 {
			continue
		}
		// When one run is a prefix of the other, the shorter string continues
		// in another script group (or ends) where the longer one continues in
		// this group, so the script order decides.
		if isRunPrefix(col, a[i].text, b[i].text) {
			return followingGroup(a, i, b[i].group)
		}
		if isRunPrefix(col, b[i].text, a[i].text) {
			return -followingGroup(b, i, a[i].group)
		}
		return result
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// followingGroup compares the run after runs[i] with a character of group.
// A string that ends there sorts first.
func followingGroup(runs []run, i, group int) int {
	if i+1 >= len(runs) {
		return -1
	}
	return compareGroups(runs[i+1].group, group)
}

func compareGroups(a, b int) int {
	if a < b {
		return -1
	}
	return 1
}

// isRunPrefix reports whether short collates equal to the leading characters
// of long. A cut in front of a combining mark is not a prefix.
func isRunPrefix(col *collate.Collator, short, long string) bool {
	n := utf8.RuneCountInString(short)
	cut := 0
	for i := 0; i < n; i++ {
		if cut >= len(long) {
			return false
		}
		_, size := utf8.DecodeRuneInString(long[cut:])
		cut += size
	}
	if cut >= len(long) {
		return false
	}
	if next, _ := utf8.DecodeRuneInString(long[cut:]); unicode.Is(unicode.Mn, next) {
		return false
	}
	return col.CompareString(short, long[:cut]) == 0
}

// scriptRuns splits s into maximal runs of the same script group. Combining
// marks stay attached to the run they follow.
func scriptRuns(s string) []run {
	var runs []run
	start := 0
	current := -1
	for i, r := range s {
		group := scriptGroup(r)
		if unicode.Is(unicode.Mn, r) && current >= 0 {
			group = current
		}
		if group != current {
			if current >= 0 {
				runs = append(runs, run{group: current, text: s[start:i]})
			}
			start = i
			current = group
		}
	}
	if current >= 0 {
		runs = append(runs, run{group: current, text: s[start:]})
	}
	return runs
}

func scriptGroup(r rune) int {
	switch {
	case r == utf8.RuneError:
		return groupOther
	case unicode.Is(unicode.Hangul, r):
		return groupHangul
	case unicode.Is(unicode.Han, r):
		return groupHan
	case unicode.IsLetter(r):
		return groupOther
	default:
		return groupCommon
	}
}

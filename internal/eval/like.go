// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package eval

import (
	"regexp"
	"strings"
)

// compileLikePattern translates a Like-operator pattern into a Go regexp
// per spec.md §4.I: "?"→".", "*"→".*", "#"→"\d", "[abc]"/"[!abc]"→
// character-class/negation. Per spec.md §9 "Open questions", ranges like
// "[a-z]" inside a character class are not special-cased; the hyphen is
// passed through literally into the class, which Go's regexp already
// treats as a range — a deliberate, documented over-extension of the
// reference behavior rather than a faithful restriction.
func compileLikePattern(pattern string) (*regexp.Regexp, bool) {
	var sb strings.Builder
	sb.WriteByte('^')
	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch r {
		case '?':
			sb.WriteString(".")
		case '*':
			sb.WriteString(".*")
		case '#':
			sb.WriteString(`\d`)
		case '[':
			j := i + 1
			for j < len(runes) && runes[j] != ']' {
				j++
			}
			if j >= len(runes) {
				// Unterminated class: treat '[' literally.
				sb.WriteString(regexp.QuoteMeta("["))
				continue
			}
			body := string(runes[i+1 : j])
			sb.WriteByte('[')
			if strings.HasPrefix(body, "!") {
				sb.WriteByte('^')
				body = body[1:]
			}
			sb.WriteString(regexp.QuoteMeta(body))
			sb.WriteByte(']')
			i = j
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteByte('$')
	re, err := regexp.Compile(sb.String())
	if err != nil {
		return nil, false
	}
	return re, true
}

// Like implements the "Like" operator. An unmatchable/uncompileable
// pattern returns false rather than an error (spec.md §4.I).
func Like(s, pattern string) bool {
	re, ok := compileLikePattern(pattern)
	if !ok {
		return false
	}
	return re.MatchString(s)
}

// Package pattern implements exact-byte and regular-expression matching with
// "occurs exactly once" and "replace the sole occurrence" semantics.
//
// The exactly-once rule is non-overlapping: after the first occurrence is
// found, the search for a second one resumes immediately after its end. So
// "aaa" contains "aa" exactly once.
//
// An empty pattern occurs at every offset of every buffer, including the
// empty one, so it never occurs exactly once.
package pattern

import "bytes"

// Find returns the index of the first occurrence of pattern in data, or -1.
// An empty pattern is found at index 0.
func Find(data, pattern []byte) int {
	return bytes.Index(data, pattern)
}

// Contains reports whether pattern occurs anywhere in data.
func Contains(data, pattern []byte) bool {
	return Find(data, pattern) >= 0
}

// ContainsOnce reports whether pattern occurs in data exactly once, without
// overlapping.
func ContainsOnce(data, pattern []byte) bool {
	_, ok := findOnce(data, pattern)
	return ok
}

// ReplaceOnce returns a new buffer where the sole occurrence of pattern in data
// is substituted by replacement. It fails, returning nil and false, when the
// pattern is absent or occurs more than once. data is never modified.
func ReplaceOnce(data, pattern, replacement []byte) ([]byte, bool) {
	start, ok := findOnce(data, pattern)
	if !ok {
		return nil, false
	}
	return splice(data, start, start+len(pattern), replacement), true
}

func findOnce(data, pattern []byte) (int, bool) {
	if len(pattern) == 0 {
		return 0, false
	}
	start := Find(data, pattern)
	if start < 0 {
		return 0, false
	}
	if Contains(data[start+len(pattern):], pattern) {
		return 0, false
	}
	return start, true
}

// splice builds prefix ++ replacement ++ suffix in a freshly allocated slice.
func splice(data []byte, start, end int, replacement []byte) []byte {
	out := make([]byte, 0, len(data)-(end-start)+len(replacement))
	out = append(out, data[:start]...)
	out = append(out, replacement...)
	out = append(out, data[end:]...)
	return out
}

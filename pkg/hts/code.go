package hts

import "strings"

// SegmentCount returns the number of dot-separated segments in code.
// An empty code has no segments.
func SegmentCount(code string) int {
	if code == "" {
		return 0
	}
	return strings.Count(code, ".") + 1
}

// ParentCode returns the code-prefix parent of code: the code with its last
// dot-separated segment removed. It returns "" when code has one segment.
//
// This is unrelated to indentation parentage in BuildTree; the two disagree
// wherever indentation and segment depth diverge.
func ParentCode(code string) string {
	idx := strings.LastIndex(code, ".")
	if idx == -1 {
		return ""
	}
	return code[:idx]
}

// IsChapter99 reports whether code is a Chapter 99 heading.
func IsChapter99(code string) bool {
	return strings.HasPrefix(code, "99")
}

package ingest

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

// TermSet is a set of query terms. On disk it is one term per line with no
// escaping and no header.
type TermSet map[string]struct{}

// NewTermSet builds a set from terms, ignoring empty strings.
func NewTermSet(terms ...string) TermSet {
	s := make(TermSet, len(terms))
	for _, t := range terms {
		s.Add(t)
	}
	return s
}

// Add inserts term unless it is empty.
func (s TermSet) Add(term string) {
	if term == "" {
		return
	}
	s[term] = struct{}{}
}

// Contains reports whether term is in the set.
func (s TermSet) Contains(term string) bool {
	_, ok := s[term]
	return ok
}

// Difference returns the terms of s that are not in other.
func (s TermSet) Difference(other TermSet) TermSet {
	out := make(TermSet, len(s))
	for t := range s {
		if !other.Contains(t) {
			out[t] = struct{}{}
		}
	}
	return out
}

// Intersection returns the terms present in both sets.
func (s TermSet) Intersection(other TermSet) TermSet {
	out := make(TermSet)
	for t := range s {
		if other.Contains(t) {
			out[t] = struct{}{}
		}
	}
	return out
}

// Sorted returns the terms in ascending order.
func (s TermSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// SortedDesc returns the terms in descending order, so taking from the end
// yields ascending order.
func (s TermSet) SortedDesc() []string {
	out := s.Sorted()
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out
}

// Encode renders the set in its file form, sorted ascending.
func (s TermSet) Encode() []byte {
	var buf bytes.Buffer
	for _, t := range s.Sorted() {
		buf.WriteString(t)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// ParseTermSet reads the line-per-term file form. Blank lines are ignored and
// carriage returns are stripped.
func ParseTermSet(data []byte) TermSet {
	s := make(TermSet)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		s.Add(strings.TrimRight(scanner.Text(), "\r"))
	}
	return s
}

// ReadTermSet loads a set from path.
func ReadTermSet(path string) (TermSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read term set %s: %w", path, err)
	}
	return ParseTermSet(data), nil
}

var (
	// “Belize”, and the ASCII form "Belize",
	curlyQuotedTerm    = regexp.MustCompile(`“([^“”]+)”\s*,`)
	straightQuotedTerm = regexp.MustCompile(`"([^"]+)"\s*,`)
)

// ParseReferenceTerms extracts every quoted, comma-terminated phrase from the
// reference text. Lines without such phrases contribute nothing.
func ParseReferenceTerms(data []byte) TermSet {
	s := make(TermSet)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	// Reference lists are often pasted as one long line.
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		for _, re := range []*regexp.Regexp{curlyQuotedTerm, straightQuotedTerm} {
			for _, m := range re.FindAllStringSubmatch(line, -1) {
				s.Add(strings.Trim(m[1], "“”,"))
			}
		}
	}
	return s
}

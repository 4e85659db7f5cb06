package problem

import "sort"

// Matcher answers whitelist membership queries for matching keys.
// It is implemented by the whitelist store's in-memory index.
type Matcher interface {
	Contains(key string) bool
}

// Set accumulates problems from all checkers and produces the final
// deduplicated, filtered and ordered collection.
//
// Design decision: The set is not safe for concurrent use. The engine
// runs checkers with private result slices and merges them into one Set
// only after every task has finished, so the hot path needs no locks.
type Set struct {
	problems []Problem
	seen     map[dedupKey]struct{}
}

// dedupKey identifies a problem for deduplication: two problems with
// the same checker, type tag and position describe the same finding
// even when they came from different underlying tool invocations.
type dedupKey struct {
	checker    string
	ptype      string
	positioned bool
	pos        Position
}

// NewSet creates an empty problem set.
func NewSet() *Set {
	return &Set{seen: make(map[dedupKey]struct{})}
}

// Add inserts a problem unless an equivalent one is already present.
// The first-seen problem wins; its description and suggestions are
// retained.
func (s *Set) Add(p Problem) {
	key := dedupKey{checker: p.Checker, ptype: p.Type}
	if p.Position != nil {
		key.positioned = true
		key.pos = *p.Position
	}
	if _, dup := s.seen[key]; dup {
		return
	}
	s.seen[key] = struct{}{}
	s.problems = append(s.problems, p)
}

// AddAll inserts every problem in ps, deduplicating as it goes.
func (s *Set) AddAll(ps []Problem) {
	for _, p := range ps {
		s.Add(p)
	}
}

// Len returns the number of problems currently in the set.
func (s *Set) Len() int {
	return len(s.problems)
}

// ApplyWhitelist removes every problem whose matching key is present in
// the whitelist. Problems with an empty key are never removed. It
// returns the number of problems dropped.
func (s *Set) ApplyWhitelist(m Matcher) int {
	if m == nil {
		return 0
	}
	kept := s.problems[:0]
	removed := 0
	for _, p := range s.problems {
		if p.Key != "" && m.Contains(p.Key) {
			removed++
			continue
		}
		kept = append(kept, p)
	}
	s.problems = kept
	return removed
}

// Partition splits the set into general problems (no position) and
// positioned problems ordered for output: line ascending, then column
// ascending, with severity descending as the tie-break so errors come
// before warnings at the same position. General problems keep their
// insertion order.
func (s *Set) Partition() (general, positioned []Problem) {
	for _, p := range s.problems {
		if p.Position == nil {
			general = append(general, p)
		} else {
			positioned = append(positioned, p)
		}
	}

	sort.SliceStable(positioned, func(i, j int) bool {
		pi, pj := positioned[i].Position, positioned[j].Position
		if pi.Line != pj.Line {
			return pi.Line < pj.Line
		}
		if pi.Col != pj.Col {
			return pi.Col < pj.Col
		}
		return positioned[i].Severity > positioned[j].Severity
	})
	return general, positioned
}

// Problems returns the full ordered collection: positioned problems in
// output order followed by general problems.
func (s *Set) Problems() []Problem {
	general, positioned := s.Partition()
	return append(positioned, general...)
}

// CountBySeverity tallies the set by severity for report summaries.
func (s *Set) CountBySeverity() map[Severity]int {
	counts := make(map[Severity]int)
	for _, p := range s.problems {
		counts[p.Severity]++
	}
	return counts
}

// Package interval implements closed integer intervals over token positions
// and the thirteen Allen relations between them.
package interval

import (
	"fmt"
	"sort"
)

// Relation is one of the thirteen Allen relations. Each relation is
// followed by its inverse, EQUALS is its own inverse.
type Relation int

const (
	Before Relation = iota
	After
	Meets
	MetBy
	Overlaps
	OverlappedBy
	Starts
	StartedBy
	During
	Contains
	Finishes
	FinishedBy
	Equals
)

var relationNames = [...]string{
	"BEFORE", "AFTER", "MEETS", "MET_BY", "OVERLAPS", "OVERLAPPED_BY",
	"STARTS", "STARTED_BY", "DURING", "CONTAINS", "FINISHES", "FINISHED_BY", "EQUALS",
}

func (r Relation) String() string {
	if r < Before || r > Equals {
		return fmt.Sprintf("Relation(%d)", int(r))
	}
	return relationNames[r]
}

// Inverse returns the relation that holds when the operands are swapped.
func (r Relation) Inverse() Relation {
	if r == Equals {
		return Equals
	}
	if r%2 == 0 {
		return r + 1
	}
	return r - 1
}

// Interval is a closed range [Lo, Hi] of token positions.
type Interval struct {
	Lo int `json:"lo"`
	Hi int `json:"hi"`
}

// New returns the interval [lo, hi].
func New(lo, hi int) Interval {
	return Interval{Lo: lo, Hi: hi}
}

// Normalize returns the interval with its endpoints in increasing order.
func (iv Interval) Normalize() Interval {
	if iv.Lo <= iv.Hi {
		return iv
	}
	return Interval{Lo: iv.Hi, Hi: iv.Lo}
}

// IsPoint reports whether both endpoints coincide.
func (iv Interval) IsPoint() bool {
	return iv.Lo == iv.Hi
}

// Len returns the absolute distance between the endpoints. A single token
// span has length 0.
func (iv Interval) Len() int {
	if iv.Lo > iv.Hi {
		return iv.Lo - iv.Hi
	}
	return iv.Hi - iv.Lo
}

// Includes reports whether other lies within iv.
func (iv Interval) Includes(other Interval) bool {
	return iv.Lo <= other.Lo && other.Hi <= iv.Hi
}

// Contains reports whether position p lies within iv, in either orientation.
func (iv Interval) Contains(p int) bool {
	n := iv.Normalize()
	return n.Lo <= p && p <= n.Hi
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%d|%d]", iv.Lo, iv.Hi)
}

// Relate returns the Allen relation of a with respect to b. Both intervals
// are normalized first. Touching endpoints are tested before strict
// overlap, which is tested before containment and equality.
func Relate(a, b Interval) Relation {
	x, y := a.Normalize(), b.Normalize()

	if x.Hi < y.Lo {
		return Before
	}
	if y.Hi < x.Lo {
		return After
	}

	if !x.IsPoint() || !y.IsPoint() {
		if x.Hi == y.Lo {
			return Meets
		}
		if y.Hi == x.Lo {
			return MetBy
		}
	}

	if x.Lo < y.Lo && y.Lo < x.Hi && x.Hi < y.Hi {
		return Overlaps
	}
	if y.Lo < x.Lo && x.Lo < y.Hi && y.Hi < x.Hi {
		return OverlappedBy
	}

	if !x.IsPoint() && !y.IsPoint() {
		if x.Lo == y.Lo && x.Hi < y.Hi {
			return Starts
		}
		if x.Lo == y.Lo && y.Hi < x.Hi {
			return StartedBy
		}
	}

	if x.Lo > y.Lo && x.Hi < y.Hi {
		return During
	}
	if y.Lo > x.Lo && y.Hi < x.Hi {
		return Contains
	}

	if !x.IsPoint() && !y.IsPoint() {
		if x.Lo > y.Lo && x.Hi == y.Hi {
			return Finishes
		}
		if y.Lo > x.Lo && x.Hi == y.Hi {
			return FinishedBy
		}
	}

	if x.Lo == y.Lo && x.Hi == y.Hi {
		return Equals
	}

	panic(fmt.Sprintf("interval: no relation between %v and %v", a, b))
}

// Intersects reports whether a and b share at least one position, i.e.
// their relation is neither BEFORE nor AFTER.
func Intersects(a, b Interval) bool {
	r := Relate(a, b)
	return r != Before && r != After
}

// Compare orders a against b using their Allen relation. It is not a total
// order: overlapping intervals compare by which one starts first, nested
// ones by containment. Only sort sets that are pairwise disjoint or nested.
func Compare(a, b Interval) int {
	switch Relate(a, b) {
	case Before, Meets, Overlaps, StartedBy, During, Finishes:
		return -1
	case After, MetBy, OverlappedBy, Starts, Contains, FinishedBy:
		return 1
	default:
		return 0
	}
}

// SortDisjoint sorts intervals with Compare. The input must be pairwise
// disjoint or nested.
func SortDisjoint(ivs []Interval) {
	sort.SliceStable(ivs, func(i, j int) bool {
		return Compare(ivs[i], ivs[j]) < 0
	})
}

// Intersections returns the members of list that intersect iv, in list order.
func Intersections(iv Interval, list []Interval) []Interval {
	var res []Interval
	for _, cand := range list {
		if Intersects(iv, cand) {
			res = append(res, cand)
		}
	}
	return res
}

// ClosestBefore returns the interval of list that ends strictly before
// ref starts with the smallest gap ref.Lo - iv.Hi. Ties go to the earliest
// candidate in list.
func ClosestBefore(ref Interval, list []Interval) (Interval, bool) {
	var (
		best  Interval
		found bool
		min   int
	)
	for _, iv := range list {
		if iv.Hi >= ref.Lo {
			continue
		}
		gap := ref.Lo - iv.Hi
		if !found || gap < min {
			best, min, found = iv, gap, true
		}
	}
	return best, found
}

// InsertNonOverlapping adds iv to list so that list stays free of
// intersecting members. If iv intersects existing members it replaces all of
// them only when it is strictly longer than the longest one; otherwise iv is
// dropped. The updated list is returned; elements of list are never
// rewritten in place.
func InsertNonOverlapping(iv Interval, list []Interval) []Interval {
	hits := Intersections(iv, list)
	if len(hits) == 0 {
		return append(list, iv)
	}

	longest := 0
	for _, h := range hits {
		if h.Len() > longest {
			longest = h.Len()
		}
	}
	if iv.Len() <= longest {
		return list
	}

	kept := make([]Interval, 0, len(list)-len(hits)+1)
	for _, cur := range list {
		if !Intersects(iv, cur) {
			kept = append(kept, cur)
		}
	}
	return append(kept, iv)
}

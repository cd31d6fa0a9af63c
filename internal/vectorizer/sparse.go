// Package vectorizer turns textual features into sparse liblinear instances.
package vectorizer

import (
	"sort"
	"strconv"
	"strings"
)

// RowFormat selects how Instance.Row renders feature values.
type RowFormat int

const (
	// NoWeighting writes every active feature with value 1.
	NoWeighting RowFormat = iota
	// Frequency writes the occurrence count of every feature.
	Frequency
)

// ParseRowFormat parses "binary" or "frequency".
func ParseRowFormat(s string) (RowFormat, bool) {
	switch strings.ToLower(s) {
	case "binary", "noweighting", "":
		return NoWeighting, true
	case "frequency", "freq":
		return Frequency, true
	}
	return NoWeighting, false
}

// Instance is the sparse feature set of one classification instance.
type Instance struct {
	ID     int
	Target string
	counts map[int]int
}

// NewInstance creates an empty instance.
func NewInstance(id int, target string) *Instance {
	return &Instance{ID: id, Target: target, counts: make(map[int]int)}
}

// Add records one occurrence of feature index idx.
func (in *Instance) Add(idx int) {
	in.counts[idx]++
}

// Count returns how many times idx was added.
func (in *Instance) Count(idx int) int {
	return in.counts[idx]
}

// Nnz returns the number of distinct feature indices.
func (in *Instance) Nnz() int {
	return len(in.counts)
}

// Indices returns the distinct feature indices in increasing order.
func (in *Instance) Indices() []int {
	res := make([]int, 0, len(in.counts))
	for idx := range in.counts {
		res = append(res, idx)
	}
	sort.Ints(res)
	return res
}

// Row renders the instance as a liblinear training line.
func (in *Instance) Row(format RowFormat) string {
	var b strings.Builder
	b.WriteString(in.Target)
	for _, idx := range in.Indices() {
		v := 1
		if format == Frequency {
			v = in.counts[idx]
		}
		b.WriteByte(' ')
		b.WriteString(strconv.Itoa(idx))
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(v))
	}
	return b.String()
}

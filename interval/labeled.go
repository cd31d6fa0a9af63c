package interval

import (
	"fmt"
	"sort"
)

// Labeled is an interval carrying the phrase it covers and the frequency the
// phrase was observed with in its catalog.
type Labeled struct {
	Interval
	Label string `json:"label"`
	Freq  int    `json:"freq"`
}

func (l Labeled) String() string {
	return fmt.Sprintf("%s[%d|%d]", l.Label, l.Lo, l.Hi)
}

// SortByFreqDesc orders labeled intervals by descending frequency, keeping
// the input order among equal frequencies.
func SortByFreqDesc(ls []Labeled) {
	sort.SliceStable(ls, func(i, j int) bool {
		return ls[i].Freq > ls[j].Freq
	})
}

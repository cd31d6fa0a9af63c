package classifier

import (
	"github.com/cockroachdb/errors"

	"github.com/happyhackingspace/uwassert/internal/vectorizer"
)

// Indexer resolves tagged feature lines into sparse vocabulary indices.
type Indexer struct {
	Vocabulary *vectorizer.Vocabulary
	// Filter keeps only records whose type is enabled.
	Filter FeatureSet
	// Grow adds unseen features to the vocabulary. Without it unseen
	// features are dropped and the vocabulary is never written.
	Grow bool
}

// Index groups consecutive records with the same instance id into one
// instance each, in input order.
func (ix *Indexer) Index(lines []string) ([]*vectorizer.Instance, error) {
	var (
		res []*vectorizer.Instance
		cur *vectorizer.Instance
	)
	for _, line := range lines {
		rec, ok, err := ParseRecord(line)
		if err != nil {
			return nil, err
		}
		if !ok || !ix.Filter.Has(rec.Type) {
			continue
		}
		if cur == nil || cur.ID != rec.InstanceID {
			cur = vectorizer.NewInstance(rec.InstanceID, rec.Target())
			res = append(res, cur)
		} else if cur.Target != rec.Target() {
			return nil, errors.Wrapf(ErrFeatureFormat, "instance %d has targets %s and %s", rec.InstanceID, cur.Target, rec.Target())
		}
		idx := ix.resolve(rec.Key())
		if idx >= 0 {
			cur.Add(idx)
		}
	}
	return res, nil
}

// Indices returns the deduplicated, sorted indices of the last instance in
// lines. It returns an empty set when no line survives filtering.
func (ix *Indexer) Indices(lines []string) ([]int, error) {
	instances, err := ix.Index(lines)
	if err != nil {
		return nil, err
	}
	if len(instances) == 0 {
		return []int{}, nil
	}
	return instances[len(instances)-1].Indices(), nil
}

func (ix *Indexer) resolve(key string) int {
	if ix.Grow {
		return ix.Vocabulary.Add(key)
	}
	return ix.Vocabulary.Index(key)
}

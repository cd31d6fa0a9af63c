package vectorizer

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/cockroachdb/errors"
)

// NullFeature occupies index 0 of every new vocabulary so that the first
// real feature receives index 1, matching 1-based liblinear feature ids.
const NullFeature = "__NULL__"

// ErrVocabularyFormat reports a vocabulary file that cannot be decoded.
var ErrVocabularyFormat = errors.New("malformed vocabulary")

// Vocabulary maps feature strings to dense indices and back.
// It is safe for concurrent readers once nothing calls Add.
type Vocabulary struct {
	Name    string
	toID    map[string]int
	entries []string
}

type vocabularyJSON struct {
	Name    string   `json:"name"`
	Entries []string `json:"entries"`
}

// NewVocabulary creates a vocabulary holding only NullFeature.
func NewVocabulary(name string) *Vocabulary {
	v := &Vocabulary{Name: name, toID: make(map[string]int)}
	v.Add(NullFeature)
	return v
}

// Add returns the index of s, assigning the next free index if s is new.
func (v *Vocabulary) Add(s string) int {
	if id, ok := v.toID[s]; ok {
		return id
	}
	id := len(v.entries)
	v.toID[s] = id
	v.entries = append(v.entries, s)
	return id
}

// Index returns the index of s, or -1 if not found.
func (v *Vocabulary) Index(s string) int {
	if id, ok := v.toID[s]; ok {
		return id
	}
	return -1
}

// Item returns the string stored at index i.
func (v *Vocabulary) Item(i int) (string, bool) {
	if i < 0 || i >= len(v.entries) {
		return "", false
	}
	return v.entries[i], true
}

// Size returns the number of entries, the null entry included.
func (v *Vocabulary) Size() int {
	return len(v.entries)
}

// MarshalJSON implements json.Marshaler.
func (v *Vocabulary) MarshalJSON() ([]byte, error) {
	return json.Marshal(vocabularyJSON{Name: v.Name, Entries: v.entries})
}

// UnmarshalJSON implements json.Unmarshaler. Entry 0 must be NullFeature and
// duplicate entries are rejected.
func (v *Vocabulary) UnmarshalJSON(data []byte) error {
	var raw vocabularyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Mark(err, ErrVocabularyFormat)
	}
	if len(raw.Entries) == 0 || raw.Entries[0] != NullFeature {
		return errors.Wrapf(ErrVocabularyFormat, "entry 0 is not %q", NullFeature)
	}
	v.Name = raw.Name
	v.toID = make(map[string]int, len(raw.Entries))
	v.entries = make([]string, 0, len(raw.Entries))
	for _, e := range raw.Entries {
		if _, dup := v.toID[e]; dup {
			return errors.Wrapf(ErrVocabularyFormat, "duplicate entry %q", e)
		}
		v.Add(e)
	}
	return nil
}

// LoadVocabulary reads a vocabulary from a JSON file. A missing file is an error.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read vocabulary")
	}
	v := &Vocabulary{}
	if err := v.UnmarshalJSON(data); err != nil {
		return nil, errors.Wrapf(err, "decode vocabulary %s", path)
	}
	slog.Debug("Vocabulary loaded", "path", path, "size", v.Size())
	return v, nil
}

// OpenVocabulary loads the vocabulary at path, or returns a new empty one
// named after path when the file does not exist yet.
func OpenVocabulary(path string) (*Vocabulary, error) {
	v, err := LoadVocabulary(path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Warn("Vocabulary not found, starting empty", "path", path)
		return NewVocabulary(path), nil
	}
	return v, err
}

// Save writes the vocabulary to path as JSON.
func (v *Vocabulary) Save(path string) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "encode vocabulary")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "write vocabulary")
	}
	return nil
}

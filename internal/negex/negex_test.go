package negex

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/happyhackingspace/uwassert/interval"
)

func TestNegation(t *testing.T) {
	d := New()
	tests := []struct {
		sentence string
		concept  string
		want     string
	}{
		{"There is no evidence of pneumonia .", "pneumonia", Negated},
		{"The patient denies chest pain, but reports dyspnea.", "chest pain", Negated},
		{"The patient denies chest pain, but reports dyspnea.", "dyspnea", Affirmed},
		{"Brother has dyspnea", "dyspnea", Affirmed},
		{"Pneumonia was ruled out.", "pneumonia", Negated},
		{"No change in the effusion.", "effusion", Affirmed},
		{"Patient admitted to r/o pneumonia .", "pneumonia", Affirmed},
		{"no fever", "", Affirmed},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, d.Negation(tt.sentence, tt.concept), "%q / %q", tt.sentence, tt.concept)
	}
}

func TestScopes(t *testing.T) {
	d := New()
	toks := []string{"no", "fever", "or", "chills", "but", "has", "cough"}
	assert.Equal(t, []interval.Interval{interval.New(1, 3)}, d.Scopes(toks))

	assert.Empty(t, d.Scopes([]string{"has", "cough"}))
	assert.Empty(t, d.Scopes([]string{"denies"}))
}

func TestClean(t *testing.T) {
	assert.Equal(t, "no fever chills", Clean(`No "fever", chills.`))
	assert.Equal(t, "r/o pneumonia", Clean("R/O pneumonia;:"))
}

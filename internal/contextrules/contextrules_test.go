package contextrules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExperiencer(t *testing.T) {
	d := New()
	tests := []struct {
		sentence string
		want     string
	}{
		{"Brother has dyspnea", Other},
		{"Father has dyspnea.", Other},
		{"Family history of diabetes.", Other},
		{"He reports severe dyspnea on exertion.", Patient},
		{"", Patient},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, d.Experiencer(tt.sentence), tt.sentence)
	}
}

func TestTemporality(t *testing.T) {
	d := New()
	tests := []struct {
		sentence string
		want     string
	}{
		{"He reports severe dyspnea on exertion.", Recent},
		{"Patient has a history of asthma.", Historical},
		{"Status post appendectomy.", Historical},
		{"Return if chest pain recurs.", Hypothetical},
		{"If history of asthma , use inhaler.", Hypothetical},
		{"Past medical history unremarkable.", Recent},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, d.Temporality(tt.sentence), tt.sentence)
	}
}

package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextSequenceStep(t *testing.T) {
	tests := []struct {
		name    string
		current SequenceStep
		want    SequenceStep
	}{
		{"not sent advances to initial", StepNotSent, StepInitial},
		{"initial advances to first ghost", StepInitial, StepGhost1},
		{"first ghost advances to second ghost", StepGhost1, StepGhost2},
		{"second ghost is terminal", StepGhost2, StepGhost2},
		{"replied is terminal", StepReplied, StepReplied},
		{"empty step starts the ladder", SequenceStep(""), StepInitial},
		{"unknown step starts the ladder", SequenceStep("garbage"), StepInitial},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextSequenceStep(tt.current))
		})
	}
}

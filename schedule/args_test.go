package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantArgs []string
		wantOpts map[string]string
	}{
		{
			name:     "empty",
			input:    "",
			wantArgs: nil,
			wantOpts: map[string]string{},
		},
		{
			name:     "positional only",
			input:    "alpha beta gamma",
			wantArgs: []string{"alpha", "beta", "gamma"},
			wantOpts: map[string]string{},
		},
		{
			name:     "mixed",
			input:    "arg1 option1=True",
			wantArgs: []string{"arg1"},
			wantOpts: map[string]string{"option1": "True"},
		},
		{
			name:     "value keeps later equals signs",
			input:    "filter=a=b",
			wantArgs: nil,
			wantOpts: map[string]string{"filter": "a=b"},
		},
		{
			name:     "collapses whitespace",
			input:    "  a   b\tk=v  ",
			wantArgs: []string{"a", "b"},
			wantOpts: map[string]string{"k": "v"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, opts := ParseArgs(tt.input)
			assert.Equal(t, tt.wantArgs, args)
			assert.Equal(t, tt.wantOpts, opts)
		})
	}
}

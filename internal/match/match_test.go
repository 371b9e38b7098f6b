package match

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/verdantqa/plantcheck/internal/model"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "lowercase", in: "Apple Scab", want: "apple scab"},
		{name: "trim", in: "  apple scab  ", want: "apple scab"},
		{name: "collapse internal whitespace", in: "apple \t  scab", want: "apple scab"},
		{name: "empty", in: "", want: ""},
		{name: "whitespace only", in: "   ", want: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestMatches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		expected   string
		predicted  string
		alternates []string
		want       bool
	}{
		{
			name:      "exact match",
			expected:  "apple scab",
			predicted: "apple scab",
			want:      true,
		},
		{
			name:      "normalized equality",
			expected:  "  Apple   Scab ",
			predicted: "apple scab",
			want:      true,
		},
		{
			name:      "expected contained in predicted",
			expected:  "apple scab",
			predicted: "apple apple scab",
			want:      true,
		},
		{
			name:      "predicted contained in expected",
			expected:  "tomato early blight",
			predicted: "early blight",
			want:      true,
		},
		{
			name:      "no relation",
			expected:  "apple scab",
			predicted: "grape black rot",
			want:      false,
		},
		{
			name:       "fallback to alternates",
			expected:   "rust",
			predicted:  "blight",
			alternates: []string{"blight", "leaf rust", "mildew"},
			want:       true,
		},
		{
			name:       "alternates miss",
			expected:   "rust",
			predicted:  "blight",
			alternates: []string{"blight", "mildew"},
			want:       false,
		},
		{
			name:      "sentinel matches not a plant",
			expected:  "not a plant",
			predicted: model.NotAPlantLabel,
			want:      true,
		},
		{
			name:      "sentinel matches underscore form",
			expected:  "NOT_A_PLANT",
			predicted: model.NotAPlantLabel,
			want:      true,
		},
		{
			name:      "sentinel rejects everything else",
			expected:  "apple scab",
			predicted: model.NotAPlantLabel,
			want:      false,
		},
		{
			name:       "sentinel ignores alternates",
			expected:   "apple scab",
			predicted:  model.NotAPlantLabel,
			alternates: []string{"apple scab"},
			want:       false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Matches(tt.expected, tt.predicted, tt.alternates))
		})
	}
}

// The containment rule is deliberately loose; a short generic expected label
// matching a longer prediction is accepted behavior, not a bug.
func TestMatchesLooseContainment(t *testing.T) {
	t.Parallel()

	assert.True(t, Matches("blight", "tomato late blight", nil))
	assert.True(t, Matches("scab", "apple scab", nil))
}

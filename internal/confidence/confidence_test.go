package confidence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantLevel Level
		wantText  string
	}{
		{
			name:      "medium marker at the end",
			input:     "The moon landing happened in 1969. Confidence: Medium",
			wantLevel: Medium,
			wantText:  "The moon landing happened in 1969.",
		},
		{
			name:      "marker with trailing period",
			input:     "Water boils at 100C at sea level. Confidence: High.",
			wantLevel: High,
			wantText:  "Water boils at 100C at sea level.",
		},
		{
			name:      "low marker on its own line",
			input:     "Not sure about this one.\n\nConfidence: Low",
			wantLevel: Low,
			wantText:  "Not sure about this one.",
		},
		{
			name:      "no marker",
			input:     "  Sorry, the internet doesn't know this topic.  ",
			wantLevel: Unknown,
			wantText:  "Sorry, the internet doesn't know this topic.",
		},
		{
			name:      "lowercase marker is not recognised",
			input:     "Something. confidence: high",
			wantLevel: Unknown,
			wantText:  "Something. confidence: high",
		},
		{
			name:      "multiple markers are all removed",
			input:     "Confidence: Low First part. Confidence: High",
			wantLevel: Low,
			wantText:  "First part.",
		},
		{
			name:      "unsupported level",
			input:     "Claim checked. Confidence: Absolute",
			wantLevel: Unknown,
			wantText:  "Claim checked. Confidence: Absolute",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, text := Extract(tt.input)
			assert.Equal(t, tt.wantLevel, level)
			assert.Equal(t, tt.wantText, text)
		})
	}
}

func TestStrip(t *testing.T) {
	assert.Equal(t, "Reply text", Strip("Reply text Confidence: Medium."))
	assert.Equal(t, "", Strip("Confidence: High"))
	assert.Equal(t, "plain", Strip("\tplain\n"))
}

func TestIsLow(t *testing.T) {
	assert.True(t, Low.IsLow())
	assert.False(t, Medium.IsLow())
	assert.False(t, Unknown.IsLow())
}

package textmatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	assert.Equal(t, 1.0, Ratio("Encampment 2024", "Encampment 2024"))
	assert.Equal(t, 1.0, Ratio("SAREX", "sarex"), "comparison is case-insensitive")
	assert.Equal(t, 0.0, Ratio("abc", "xyz"))
	assert.Equal(t, 1.0, Ratio("", ""))
	assert.Equal(t, 0.0, Ratio("abc", ""))
}

func TestRatioNearDuplicates(t *testing.T) {
	// the duplicate-event warning fires above 0.75
	assert.Greater(t, Ratio("Wing Encampment 2024", "Wing Encampment 2025"), 0.75)
	assert.Greater(t, Ratio("SAREX Reading", "SAREX Readng"), 0.75)
	assert.Less(t, Ratio("Wing Encampment 2024", "Cadet Ball"), 0.75)
}

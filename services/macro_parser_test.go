package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noamk2004/image-to-text/models"
)

func TestExtractWellFormedAnswer(t *testing.T) {
	text := "# ⚡ 540 Calories\n**Protein:** 30g  |  **Carbs:** 60g  |  **Fat:** 20g"
	got := RegexpMacroExtractor{}.Extract(text)
	assert.Equal(t, models.Macros{Calories: 540, Protein: 30, Carbs: 60, Fat: 20}, got)
}

func TestExtractEmptyText(t *testing.T) {
	got := RegexpMacroExtractor{}.Extract("")
	assert.Equal(t, models.Macros{}, got)
}

func TestExtractMissingFieldsDefaultToZero(t *testing.T) {
	got := RegexpMacroExtractor{}.Extract("Looks like a salad. **Protein:** 12g and not much else.")
	assert.Equal(t, models.Macros{Protein: 12}, got)
}

func TestExtractHeadingWithoutEmoji(t *testing.T) {
	got := RegexpMacroExtractor{}.Extract("# 320 Calories\n**Fat:** 9g")
	assert.Equal(t, models.Macros{Calories: 320, Fat: 9}, got)
}

func TestExtractFirstOccurrenceWins(t *testing.T) {
	text := "**Protein:** 10g ... **Protein:** 99g\n# ⚡ 100 Calories\n# ⚡ 200 Calories"
	got := RegexpMacroExtractor{}.Extract(text)
	assert.Equal(t, 10, got.Protein)
	assert.Equal(t, 100, got.Calories)
}

func TestExtractDoesNotReconcileCalories(t *testing.T) {
	// 10*4 + 10*4 + 10*9 = 170, but the stated figure is kept verbatim.
	text := "# ⚡ 999 Calories\n**Protein:** 10g  |  **Carbs:** 10g  |  **Fat:** 10g"
	got := RegexpMacroExtractor{}.Extract(text)
	assert.Equal(t, 999, got.Calories)
}

func TestExtractIgnoresUnsuffixedNumbers(t *testing.T) {
	// No "g" suffix after the label, so the field stays 0.
	got := RegexpMacroExtractor{}.Extract("**Carbs:** plenty")
	assert.Equal(t, 0, got.Carbs)
}

package services

import (
	"regexp"
	"strconv"

	"github.com/noamk2004/image-to-text/models"
)

// MacroExtractor pulls macro values out of the free-text analysis answer.
// It is an interface so the matching strategy can be swapped without
// touching the submission workflow.
type MacroExtractor interface {
	Extract(text string) models.Macros
}

// The analysis prompt asks for a fixed two-line template:
//
//	# ⚡ 540 Calories
//	**Protein:** 30g  |  **Carbs:** 60g  |  **Fat:** 20g
//
// but the model may drift from it, so every field is matched on its own and
// a field whose pattern never appears simply stays 0. Only the first match
// counts when a pattern occurs more than once.
var (
	caloriesRe = regexp.MustCompile(`#[^\n\d]*(\d+)\s*Calories`)
	proteinRe  = regexp.MustCompile(`\*\*Protein:\*\*\s*(\d+)g`)
	carbsRe    = regexp.MustCompile(`\*\*Carbs:\*\*\s*(\d+)g`)
	fatRe      = regexp.MustCompile(`\*\*Fat:\*\*\s*(\d+)g`)
)

// RegexpMacroExtractor is the default MacroExtractor.
type RegexpMacroExtractor struct{}

// Extract never fails: partial or malformed text yields zeroes for the
// missing fields. The calorie figure is stored verbatim; it is not
// recomputed from the gram fields even when the two disagree.
func (RegexpMacroExtractor) Extract(text string) models.Macros {
	return models.Macros{
		Calories: firstInt(caloriesRe, text),
		Protein:  firstInt(proteinRe, text),
		Carbs:    firstInt(carbsRe, text),
		Fat:      firstInt(fatRe, text),
	}
}

func firstInt(re *regexp.Regexp, text string) int {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

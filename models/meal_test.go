package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSumMacrosEmpty(t *testing.T) {
	assert.Equal(t, Macros{}, SumMacros(nil))
	assert.Equal(t, Macros{}, SumMacros([]MealRecord{}))
}

func TestSumMacros(t *testing.T) {
	records := []MealRecord{
		{ID: "1", Macros: Macros{Calories: 10, Protein: 1, Carbs: 2, Fat: 3}},
		{ID: "2", Macros: Macros{Calories: 20, Protein: 4, Carbs: 5, Fat: 6}},
	}
	want := Macros{Calories: 30, Protein: 5, Carbs: 7, Fat: 9}
	assert.Equal(t, want, SumMacros(records))

	// Order independent.
	reversed := []MealRecord{records[1], records[0]}
	assert.Equal(t, want, SumMacros(reversed))
}

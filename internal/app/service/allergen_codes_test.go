package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToCanonicalAllergen(t *testing.T) {
	tests := []struct {
		name       string
		clientCode string
		want       string
	}{
		{name: "tree_nuts maps to nuts", clientCode: "tree_nuts", want: "nuts"},
		{name: "sulfites maps to sulphites", clientCode: "sulfites", want: "sulphites"},
		{name: "shellfish maps to crustaceans", clientCode: "shellfish", want: "crustaceans"},
		{name: "dairy maps to milk", clientCode: "dairy", want: "milk"},
		{name: "canonical code passes through", clientCode: "gluten", want: "gluten"},
		{name: "unknown code passes through", clientCode: "bogus_code", want: "bogus_code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToCanonicalAllergen(tt.clientCode))
		})
	}
}

func TestToClientAllergen(t *testing.T) {
	tests := []struct {
		name          string
		canonicalCode string
		want          string
	}{
		{name: "nuts maps back to tree_nuts", canonicalCode: "nuts", want: "tree_nuts"},
		{name: "sulphites maps back to sulfites", canonicalCode: "sulphites", want: "sulfites"},
		{name: "crustaceans maps back to shellfish", canonicalCode: "crustaceans", want: "shellfish"},
		{name: "milk maps back to dairy", canonicalCode: "milk", want: "dairy"},
		{name: "unaliased code passes through", canonicalCode: "peanuts", want: "peanuts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToClientAllergen(tt.canonicalCode))
		})
	}
}

func TestAllergenCodeRoundTrip(t *testing.T) {
	// Every client alias must survive a write-then-read round trip unchanged
	for alias := range allergenAliasToCanonical {
		assert.Equal(t, alias, ToClientAllergen(ToCanonicalAllergen(alias)), alias)
	}
}

func TestQuestionCodeTranslation(t *testing.T) {
	assert.Equal(t, "allergen_menu", ToCanonicalQuestion("allergy_menu"))
	assert.Equal(t, "dedicated_fryer", ToCanonicalQuestion("separate_fryer"))
	assert.Equal(t, "staff_trained", ToCanonicalQuestion("staff_knowledge"))
	assert.Equal(t, "ingredient_list", ToCanonicalQuestion("ingredient_list"))

	assert.Equal(t, "allergy_menu", ToClientQuestion("allergen_menu"))
	assert.Equal(t, "separate_fryer", ToClientQuestion("dedicated_fryer"))
	assert.Equal(t, "staff_knowledge", ToClientQuestion("staff_trained"))

	for alias := range questionAliasToCanonical {
		assert.Equal(t, alias, ToClientQuestion(ToCanonicalQuestion(alias)), alias)
	}
}

package service

// Translation between the client-facing allergen/question vocabulary and the
// canonical codes stored in the database. The frontend vocabulary evolved
// separately from the schema, so a handful of legacy aliases survive on the
// wire. Unknown codes pass through unchanged; they are filtered against the
// reference tables later, not here.

var allergenAliasToCanonical = map[string]string{
	"tree_nuts": "nuts",
	"sulfites":  "sulphites",
	"shellfish": "crustaceans",
	"dairy":     "milk",
}

var allergenCanonicalToAlias = map[string]string{
	"nuts":        "tree_nuts",
	"sulphites":   "sulfites",
	"crustaceans": "shellfish",
	"milk":        "dairy",
}

var questionAliasToCanonical = map[string]string{
	"allergy_menu":    "allergen_menu",
	"separate_fryer":  "dedicated_fryer",
	"staff_knowledge": "staff_trained",
}

var questionCanonicalToAlias = map[string]string{
	"allergen_menu":   "allergy_menu",
	"dedicated_fryer": "separate_fryer",
	"staff_trained":   "staff_knowledge",
}

// ToCanonicalAllergen maps a client allergen code to its storage code
func ToCanonicalAllergen(clientCode string) string {
	if canonical, ok := allergenAliasToCanonical[clientCode]; ok {
		return canonical
	}
	return clientCode
}

// ToClientAllergen maps a stored allergen code back to the client vocabulary
func ToClientAllergen(canonicalCode string) string {
	if alias, ok := allergenCanonicalToAlias[canonicalCode]; ok {
		return alias
	}
	return canonicalCode
}

// ToCanonicalQuestion maps a client question code to its storage code
func ToCanonicalQuestion(clientCode string) string {
	if canonical, ok := questionAliasToCanonical[clientCode]; ok {
		return canonical
	}
	return clientCode
}

// ToClientQuestion maps a stored question code back to the client vocabulary
func ToClientQuestion(canonicalCode string) string {
	if alias, ok := questionCanonicalToAlias[canonicalCode]; ok {
		return alias
	}
	return canonicalCode
}

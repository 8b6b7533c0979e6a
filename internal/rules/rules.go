// Package rules implements the deterministic filtering and substitution rules
// of the recommendation pipeline. Everything here is pure: no I/O, no
// failure modes, same output for the same input.
package rules

import (
	"strings"

	"github.com/pantrysage/backend/internal/types"
)

var animalProducts = map[string]struct{}{
	"chicken": {}, "meat": {}, "fish": {}, "egg": {}, "eggs": {},
	"paneer": {}, "yogurt": {}, "milk": {}, "ghee": {}, "butter": {},
}

// veganExempt are the dairy items the vegan rule does not test under the
// animal-product set. Known inconsistency: vegans are not flagged on milk
// while paneer is flagged. Changing it is a product decision, not a bug fix.
var veganExempt = map[string]struct{}{
	"milk": {}, "yogurt": {}, "butter": {}, "ghee": {},
}

var fleshItems = map[string]struct{}{
	"chicken": {}, "meat": {}, "fish": {},
}

var allergenVocab = map[types.Allergen][]string{
	types.AllergenEggs:   {"eggs"},
	types.AllergenDairy:  {"milk", "butter", "ghee", "yogurt", "paneer"},
	types.AllergenGluten: {"wheat", "roti", "bread", "maida"},
}

// substitutions maps a diet to ingredient replacements proposed when the
// ingredient is missing from the inventory. Small starter table; ingredients
// without an entry are left for the adaptation step to handle.
var substitutions = map[types.Diet]map[string]string{
	types.DietVegan: {
		"paneer": "tofu",
		"yogurt": "soy yogurt",
		"milk":   "almond milk",
		"butter": "vegetable oil",
		"ghee":   "vegetable oil",
		"eggs":   "besan-water mix",
	},
	"gluten-free": {
		"roti": "corn tortilla",
	},
}

func lowerSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[strings.ToLower(it)] = struct{}{}
	}
	return set
}

// ViolatesDiet reports whether any ingredient conflicts with the diet.
// Unknown diet values behave as non-veg and never violate.
func ViolatesDiet(ingredients []string, diet types.Diet) bool {
	items := lowerSet(ingredients)
	switch diet {
	case types.DietVegan:
		for item := range animalProducts {
			if _, exempt := veganExempt[item]; exempt {
				continue
			}
			if _, ok := items[item]; ok {
				return true
			}
		}
		_, paneer := items["paneer"]
		_, eggs := items["eggs"]
		return paneer || eggs
	case types.DietVegetarian, types.DietEggetarian:
		for item := range fleshItems {
			if _, ok := items[item]; ok {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// ViolatesAllergens reports whether any requested allergen's vocabulary
// intersects the recipe's ingredients. The nuts rule is a substring match so
// peanut, walnut and friends are all caught.
func ViolatesAllergens(ingredients []string, allergens []types.Allergen) bool {
	items := lowerSet(ingredients)
	for _, allergen := range allergens {
		if allergen == types.AllergenNuts {
			for item := range items {
				if strings.Contains(item, "nut") {
					return true
				}
			}
			continue
		}
		for _, word := range allergenVocab[allergen] {
			if _, ok := items[word]; ok {
				return true
			}
		}
	}
	return false
}

// ProposeSubstitutions suggests a replacement for each recipe ingredient the
// user does not have, looked up in the diet-keyed substitution table.
// Ingredients already in the inventory or without a table entry are omitted.
func ProposeSubstitutions(ingredients []string, inventory types.Inventory, diet types.Diet, allergens []types.Allergen) map[string]string {
	subs := make(map[string]string)
	table := substitutions[diet]
	if table == nil {
		return subs
	}
	for _, ing := range ingredients {
		ing = strings.ToLower(ing)
		if inventory.Has(ing) {
			continue
		}
		if replacement, ok := table[ing]; ok {
			subs[ing] = replacement
		}
	}
	return subs
}

// MissingIngredients returns the recipe ingredients absent from the
// inventory, lower-cased, in recipe order.
func MissingIngredients(ingredients []string, inventory types.Inventory) []string {
	missing := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		ing = strings.ToLower(ing)
		if !inventory.Has(ing) {
			missing = append(missing, ing)
		}
	}
	return missing
}

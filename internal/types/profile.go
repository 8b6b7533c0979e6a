package types

import (
	"fmt"
	"strings"
)

// Diet identifies the user's dietary practice.
type Diet string

const (
	DietVegetarian Diet = "vegetarian"
	DietEggetarian Diet = "eggetarian"
	DietVegan      Diet = "vegan"
	DietNonVeg     Diet = "non-veg"
)

// Allergen identifies a class of ingredients the user must avoid.
type Allergen string

const (
	AllergenNuts   Allergen = "nuts"
	AllergenGluten Allergen = "gluten"
	AllergenDairy  Allergen = "dairy"
	AllergenEggs   Allergen = "eggs"
)

// Cuisine identifies the user's cuisine preference. CuisineGlobal means no
// restriction; CuisineIndian limits results to recipes tagged "indian".
type Cuisine string

const (
	CuisineGlobal Cuisine = "global"
	CuisineIndian Cuisine = "indian"
)

// UserProfile represents the per-request dietary profile. It is constructed
// fresh from caller input on every request and is never persisted.
type UserProfile struct {
	Diet              Diet       `json:"diet"`
	Allergies         []Allergen `json:"allergies"`
	Dislikes          []string   `json:"dislikes"`
	Tools             []string   `json:"tools"`
	MaxMinutes        int        `json:"max_minutes"`
	Servings          int        `json:"servings"`
	CuisinePreference Cuisine    `json:"cuisine_preference"`
}

// Validate rejects profiles with unknown enum values or non-positive limits.
func (p *UserProfile) Validate() error {
	switch p.Diet {
	case DietVegetarian, DietEggetarian, DietVegan, DietNonVeg:
	default:
		return fmt.Errorf("unknown diet %q", p.Diet)
	}
	for _, a := range p.Allergies {
		switch a {
		case AllergenNuts, AllergenGluten, AllergenDairy, AllergenEggs:
		default:
			return fmt.Errorf("unknown allergen %q", a)
		}
	}
	switch p.CuisinePreference {
	case CuisineGlobal, CuisineIndian, "":
	default:
		return fmt.Errorf("unknown cuisine preference %q", p.CuisinePreference)
	}
	if p.MaxMinutes <= 0 {
		return fmt.Errorf("max_minutes must be positive, got %d", p.MaxMinutes)
	}
	if p.Servings <= 0 {
		return fmt.Errorf("servings must be positive, got %d", p.Servings)
	}
	return nil
}

// Normalize case-folds and trims the free-text dislike terms, dropping
// empties. Called once at the request boundary.
func (p *UserProfile) Normalize() {
	dislikes := make([]string, 0, len(p.Dislikes))
	for _, d := range p.Dislikes {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			dislikes = append(dislikes, d)
		}
	}
	p.Dislikes = dislikes
	if p.CuisinePreference == "" {
		p.CuisinePreference = CuisineGlobal
	}
}

// Package mealdb is a client for TheMealDB public recipe API.
package mealdb

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MaxIngredients is the number of ingredient/measure slots in a detail record.
const MaxIngredients = 20

// Recipe is a meal as returned by the API. Filter endpoints only fill ID, Name and
// Thumbnail; Lookup and SearchByName return the full record.
type Recipe struct {
	ID           string       `json:"idMeal"`
	Name         string       `json:"strMeal"`
	Thumbnail    string       `json:"strMealThumb,omitempty"`
	Category     string       `json:"strCategory,omitempty"`
	Area         string       `json:"strArea,omitempty"`
	Instructions string       `json:"strInstructions,omitempty"`
	Tags         string       `json:"strTags,omitempty"`
	YouTube      string       `json:"strYoutube,omitempty"`
	Source       string       `json:"strSource,omitempty"`
	Ingredients  []Ingredient `json:"ingredients,omitempty"`
}

// Ingredient is one ingredient/measure pair.
type Ingredient struct {
	Name    string `json:"name"`
	Measure string `json:"measure,omitempty"`
}

// UnmarshalJSON accepts both the API's flat strIngredientN/strMeasureN layout and the
// compact "ingredients" array this package writes when a recipe is persisted.
func (r *Recipe) UnmarshalJSON(data []byte) error {
	type alias Recipe
	if err := json.Unmarshal(data, (*alias)(r)); err != nil {
		return err
	}
	if len(r.Ingredients) > 0 {
		return nil
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for i := 1; i <= MaxIngredients; i++ {
		name, _ := raw[fmt.Sprintf("strIngredient%d", i)].(string)
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		measure, _ := raw[fmt.Sprintf("strMeasure%d", i)].(string)
		r.Ingredients = append(r.Ingredients, Ingredient{Name: name, Measure: strings.TrimSpace(measure)})
	}
	return nil
}

// IngredientLines renders the ingredients as "Name - Measure" lines.
func (r Recipe) IngredientLines() []string {
	lines := make([]string, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		lines = append(lines, ing.Name+" - "+ing.Measure)
	}
	return lines
}

// Category is a meal category from categories.php.
type Category struct {
	ID          string `json:"idCategory"`
	Name        string `json:"strCategory"`
	Thumbnail   string `json:"strCategoryThumb,omitempty"`
	Description string `json:"strCategoryDescription,omitempty"`
}

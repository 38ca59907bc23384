package catalog

import "strings"

// Criteria is the active combination of catalog filters. Blank fields are unset.
type Criteria struct {
	Search     string `json:"search" form:"search"`
	Category   string `json:"category" form:"category"`
	Ingredient string `json:"ingredient" form:"ingredient"`
}

// Normalize trims surrounding whitespace so a blank field counts as unset.
func (c Criteria) Normalize() Criteria {
	return Criteria{
		Search:     strings.TrimSpace(c.Search),
		Category:   strings.TrimSpace(c.Category),
		Ingredient: strings.TrimSpace(c.Ingredient),
	}
}

// IsZero reports whether no filter is set.
func (c Criteria) IsZero() bool {
	c = c.Normalize()
	return c.Search == "" && c.Category == "" && c.Ingredient == ""
}

// CommonIngredients are the ingredient choices offered on the catalog screen.
var CommonIngredients = []string{
	"Chicken", "Beef", "Pork", "Fish", "Rice", "Pasta",
	"Potato", "Tomato", "Onion", "Garlic", "Cheese",
}

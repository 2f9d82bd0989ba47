package types

// Ingredient is a single recipe ingredient
type Ingredient struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
	Unit   string `json:"unit"`
	Notes  string `json:"notes,omitempty"`
}

// Recipe represents a recipe recommended by the chef
type Recipe struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Region       string       `json:"region"`
	Cuisine      string       `json:"cuisine"`
	Description  string       `json:"description"`
	PrepTime     string       `json:"prepTime"`
	CookTime     string       `json:"cookTime"`
	Servings     int          `json:"servings"`
	Difficulty   string       `json:"difficulty"`
	Ingredients  []Ingredient `json:"ingredients"`
	Instructions []string     `json:"instructions"`
	Tips         []string     `json:"tips"`
	Tags         []string     `json:"tags"`
}

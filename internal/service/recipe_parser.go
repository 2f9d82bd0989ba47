package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/pageza/worldchef/backend/internal/types"
)

// recipeBlockPattern matches a fenced block tagged "recipe". Matching is lazy
// so each block ends at the first closing fence.
var recipeBlockPattern = regexp.MustCompile("(?s)```recipe\\b(.*?)```")

var leadingInt = regexp.MustCompile(`^\s*(\d+)`)

// Defaults applied when the model omits a field or gives it the wrong shape
const (
	DefaultRecipeName = "Untitled Recipe"
	DefaultRegion     = "european"
	DefaultCuisine    = "International"
	DefaultDifficulty = "Medium"
	DefaultServings   = 4
)

var difficulties = []string{"Easy", "Medium", "Hard"}

// ErrNoRecipeBlock is returned by ParseRecipe when the text has no recipe block
var ErrNoRecipeBlock = errors.New("no recipe block found")

// defaultRecipe is the canonical record parsed fields are merged over
func defaultRecipe() types.Recipe {
	return types.Recipe{
		Name:         DefaultRecipeName,
		Region:       DefaultRegion,
		Cuisine:      DefaultCuisine,
		Difficulty:   DefaultDifficulty,
		Servings:     DefaultServings,
		Ingredients:  []types.Ingredient{},
		Instructions: []string{},
		Tips:         []string{},
		Tags:         []string{},
	}
}

// ParseRecipe parses the first recipe block of text. Only the first block is
// considered even when the model emitted several. The returned recipe always
// carries a freshly generated ID.
func ParseRecipe(text string) (*types.Recipe, error) {
	match := recipeBlockPattern.FindStringSubmatch(text)
	if match == nil {
		return nil, ErrNoRecipeBlock
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(match[1])), &fields); err != nil {
		return nil, fmt.Errorf("failed to parse recipe block: %w", err)
	}
	if fields == nil {
		return nil, errors.New("failed to parse recipe block: not a JSON object")
	}

	recipe := mergeRecipe(fields)
	recipe.ID = uuid.NewString()
	return recipe, nil
}

// StripRecipeBlocks removes every recipe block from text, parsed or not, and
// trims the surrounding whitespace.
func StripRecipeBlocks(text string) string {
	return strings.TrimSpace(recipeBlockPattern.ReplaceAllString(text, ""))
}

// mergeRecipe overlays the parsed fields on the default record one by one
func mergeRecipe(fields map[string]json.RawMessage) *types.Recipe {
	r := defaultRecipe()

	setString(&r.Name, fields, "name")
	setString(&r.Region, fields, "region")
	setString(&r.Cuisine, fields, "cuisine")
	setString(&r.Description, fields, "description")
	setString(&r.PrepTime, fields, "prepTime", "prep_time")
	setString(&r.CookTime, fields, "cookTime", "cook_time")

	if servings, ok := parseServings(lookup(fields, "servings")); ok {
		r.Servings = servings
	}
	if difficulty, ok := parseDifficulty(lookup(fields, "difficulty")); ok {
		r.Difficulty = difficulty
	}

	r.Ingredients = parseIngredients(lookup(fields, "ingredients"))
	r.Instructions = parseStrings(lookup(fields, "instructions"))
	r.Tips = parseStrings(lookup(fields, "tips"))
	r.Tags = dedupe(parseStrings(lookup(fields, "tags")))

	return &r
}

func lookup(fields map[string]json.RawMessage, keys ...string) json.RawMessage {
	for _, key := range keys {
		if raw, ok := fields[key]; ok {
			return raw
		}
	}
	return nil
}

func setString(dst *string, fields map[string]json.RawMessage, keys ...string) {
	if s, ok := decodeString(lookup(fields, keys...)); ok {
		*dst = s
	}
}

// decodeString accepts a non-blank JSON string
func decodeString(raw json.RawMessage) (string, bool) {
	if raw == nil {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// parseServings accepts a positive number or a string starting with one,
// such as "4 servings"
func parseServings(raw json.RawMessage) (int, bool) {
	if raw == nil {
		return 0, false
	}

	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		n := int(math.Round(num))
		return n, n > 0
	}

	if s, ok := decodeString(raw); ok {
		if m := leadingInt.FindStringSubmatch(s); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				return n, true
			}
		}
	}
	return 0, false
}

func parseDifficulty(raw json.RawMessage) (string, bool) {
	s, ok := decodeString(raw)
	if !ok {
		return "", false
	}
	for _, d := range difficulties {
		if strings.EqualFold(s, d) {
			return d, true
		}
	}
	return "", false
}

// parseStrings keeps the non-blank string elements of a JSON array
func parseStrings(raw json.RawMessage) []string {
	out := []string{}
	var items []json.RawMessage
	if raw == nil || json.Unmarshal(raw, &items) != nil {
		return out
	}
	for _, item := range items {
		if s, ok := decodeString(item); ok {
			out = append(out, s)
		}
	}
	return out
}

// parseIngredients accepts ingredient objects as well as bare strings, which
// become the ingredient name
func parseIngredients(raw json.RawMessage) []types.Ingredient {
	out := []types.Ingredient{}
	var items []json.RawMessage
	if raw == nil || json.Unmarshal(raw, &items) != nil {
		return out
	}

	for _, item := range items {
		if name, ok := decodeString(item); ok {
			out = append(out, types.Ingredient{Name: name})
			continue
		}

		var fields map[string]json.RawMessage
		if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
			continue
		}
		var ing types.Ingredient
		setString(&ing.Name, fields, "name")
		if ing.Name == "" {
			continue
		}
		ing.Amount = decodeAmount(lookup(fields, "amount", "quantity"))
		setString(&ing.Unit, fields, "unit")
		setString(&ing.Notes, fields, "notes")
		out = append(out, ing)
	}
	return out
}

// decodeAmount keeps amounts as text; numeric amounts are formatted as given
func decodeAmount(raw json.RawMessage) string {
	if s, ok := decodeString(raw); ok {
		return s
	}
	var num float64
	if raw != nil && json.Unmarshal(raw, &num) == nil {
		return strconv.FormatFloat(num, 'f', -1, 64)
	}
	return ""
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Package dietparser turns free-text diet content into structured meals.
//
// The accepted grammar is line based:
//
//	diet    = block { blank-line { blank-line } block }
//	block   = [ header newline ] food { newline ( food | totals ) }
//	header  = name [ macros ] [ ":" ] | bullet name ":"
//	food    = [ bullet ] text [ macros ]
//	totals  = macros only, no bullet, e.g. "Total: 520 kcal, P: 30g"
//	bullet  = "-" | "*" | "•" | "+" | digits ( "." | ")" )
//	macros  = number ( "kcal" | "cal" | "calories" )
//	        | number "g" ( "protein" | "carbs" | "fat" )
//	        | ( "protein" | "carbs" | "fat" ) ":" number [ "g" ]
//	        | ( "P" | "C" | "F" ) ":" number "g"
//
// A block becomes a meal only if it has at least one food line. A block
// that opens with a bulleted line has no header; the first food names it.
package dietparser

import (
	"alcyxob/fitcoach/internal/domain"
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// ErrNoMealsRecognized is returned when no block of the input qualifies as a meal.
var ErrNoMealsRecognized = errors.New("no meals recognized in diet content")

var (
	bulletRe   = regexp.MustCompile(`^(?:[-*•·+]|\d+[.)])\s+`)
	headingRe  = regexp.MustCompile(`^#+\s*`)
	caloriesRe = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(?:kcal|calories|cal)\b`)
	gramsRe    = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*g\s+(?:of\s+)?(protein|carbs?|carbohydrates|fats?)\b`)
	labeledRe  = regexp.MustCompile(`(?i)\b(protein|carbs?|carbohydrates|fats?)\s*[:=]\s*(\d+(?:[.,]\d+)?)(?:\s*g\b|\s*(?:[,;/|)\]]|$))`)
	letterRe   = regexp.MustCompile(`\b([PCF])\s*[:=]\s*(\d+(?:[.,]\d+)?)\s*g\b`)
	emptyParRe = regexp.MustCompile(`[(\[]\s*[,;/|]*\s*[)\]]`)
	// Leftovers allowed on a totals-only line once macros are removed.
	totalsNoiseRe = regexp.MustCompile(`(?i)\b(?:total|totals|macros|approx|approximately)\b|[\s,;:|/()\[\]~=+-]`)
)

// Parse splits content into meals. It never returns partial results with a
// nil error: either at least one meal is recognized or ErrNoMealsRecognized
// is returned.
func Parse(content string) ([]domain.Meal, error) {
	var meals []domain.Meal
	for _, block := range splitBlocks(content) {
		if meal, ok := parseBlock(block); ok {
			meals = append(meals, meal)
		}
	}
	if len(meals) == 0 {
		return nil, ErrNoMealsRecognized
	}
	return meals, nil
}

// splitBlocks groups trimmed non-empty lines separated by one or more blank lines.
func splitBlocks(content string) [][]string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	var blocks [][]string
	var current []string
	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			if len(current) > 0 {
				blocks = append(blocks, current)
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		blocks = append(blocks, current)
	}
	return blocks
}

func parseBlock(lines []string) (domain.Meal, bool) {
	var meal domain.Meal
	var totals domain.Macros
	if isHeader(lines[0]) {
		header := stripMarkers(lines[0])
		totals = extractMacros(header)
		meal.Name = cleanName(header)
		lines = lines[1:]
	}

	var summed domain.Macros
	for _, raw := range lines {
		line := stripMarkers(raw)
		macros := extractMacros(line)
		if !bulleted(raw) && isTotalsLine(line) {
			totals = merge(totals, macros)
			continue
		}
		if line == "" {
			continue
		}
		meal.Foods = append(meal.Foods, line)
		summed = add(summed, macros)
	}
	if len(meal.Foods) == 0 {
		return domain.Meal{}, false
	}
	if meal.Name == "" {
		meal.Name = meal.Foods[0]
	}
	// Explicit totals win over per-food sums, field by field.
	meal.Macros = merge(summed, totals)
	return meal, true
}

func bulleted(line string) bool {
	return bulletRe.MatchString(headingRe.ReplaceAllString(strings.TrimSpace(line), ""))
}

// isHeader reports whether the opening line of a block names the meal.
// A bulleted opener is a food unless it ends with a colon, as in "- Lunch:".
func isHeader(line string) bool {
	if !bulleted(line) {
		return true
	}
	return strings.HasSuffix(strings.TrimRight(stripMarkers(line), " \t"), ":")
}

func stripMarkers(line string) string {
	line = strings.TrimSpace(line)
	line = headingRe.ReplaceAllString(line, "")
	line = bulletRe.ReplaceAllString(line, "")
	line = strings.ReplaceAll(line, "**", "")
	line = strings.ReplaceAll(line, "__", "")
	return strings.TrimSpace(line)
}

func cleanName(header string) string {
	name := caloriesRe.ReplaceAllString(header, "")
	name = gramsRe.ReplaceAllString(name, "")
	name = labeledRe.ReplaceAllString(name, "")
	name = letterRe.ReplaceAllString(name, "")
	name = emptyParRe.ReplaceAllString(name, "")
	return strings.Trim(name, " \t:-–—,;|")
}

func isTotalsLine(line string) bool {
	if line == "" || extractMacros(line).Empty() {
		return false
	}
	rest := caloriesRe.ReplaceAllString(line, "")
	rest = gramsRe.ReplaceAllString(rest, "")
	rest = labeledRe.ReplaceAllString(rest, "")
	rest = letterRe.ReplaceAllString(rest, "")
	rest = totalsNoiseRe.ReplaceAllString(rest, "")
	return rest == ""
}

func extractMacros(line string) domain.Macros {
	var m domain.Macros
	for _, match := range caloriesRe.FindAllStringSubmatch(line, -1) {
		m.Calories = sum(m.Calories, parseNumber(match[1]))
	}
	for _, match := range gramsRe.FindAllStringSubmatch(line, -1) {
		assignMacro(&m, match[2], parseNumber(match[1]))
	}
	for _, match := range labeledRe.FindAllStringSubmatch(line, -1) {
		assignMacro(&m, match[1], parseNumber(match[2]))
	}
	for _, match := range letterRe.FindAllStringSubmatch(line, -1) {
		assignMacro(&m, match[1], parseNumber(match[2]))
	}
	return m
}

func assignMacro(m *domain.Macros, label string, value *float64) {
	switch strings.ToLower(label) {
	case "protein", "p":
		m.Protein = sum(m.Protein, value)
	case "carb", "carbs", "carbohydrates", "c":
		m.Carbs = sum(m.Carbs, value)
	case "fat", "fats", "f":
		m.Fat = sum(m.Fat, value)
	}
}

func parseNumber(s string) *float64 {
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return nil
	}
	return &v
}

func sum(a, b *float64) *float64 {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	v := *a + *b
	return &v
}

func add(a, b domain.Macros) domain.Macros {
	return domain.Macros{
		Calories: sum(a.Calories, b.Calories),
		Protein:  sum(a.Protein, b.Protein),
		Carbs:    sum(a.Carbs, b.Carbs),
		Fat:      sum(a.Fat, b.Fat),
	}
}

// merge returns base with every field set in override replaced.
func merge(base, override domain.Macros) domain.Macros {
	if override.Calories != nil {
		base.Calories = override.Calories
	}
	if override.Protein != nil {
		base.Protein = override.Protein
	}
	if override.Carbs != nil {
		base.Carbs = override.Carbs
	}
	if override.Fat != nil {
		base.Fat = override.Fat
	}
	return base
}

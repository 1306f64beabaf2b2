package recipe

import (
	"fmt"
	"strconv"
	"strings"

	"bottender/internal/model"
)

// Format renders a drink and its ingredient list for chat output:
//
//	Old-Fashioned is found on page 23:
//	2 Oz. Elijah Craig Bourbon
//	1 Sugar Cube
//	2 Dashes Angostura Bitters
//	Garnish with Orange Twist
//
// Ingredient and garnish text is title-cased. A zero quantity (the
// "unspecified" sentinel) renders without a number; a blank unit is
// omitted along with its surrounding space.
func Format(d *model.Drink) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s is found on page %s:\n", d.Name, d.Page)

	lines := make([]string, 0, len(d.Ingredients)+1)
	for _, ing := range d.Ingredients {
		lines = append(lines, formatLine(ing))
	}
	if d.Garnish != nil {
		lines = append(lines, "Garnish with "+Title(d.Garnish.Name))
	}
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}

func formatLine(ing model.Ingredient) string {
	parts := make([]string, 0, 3)
	if ing.Quantity != 0 {
		parts = append(parts, formatQuantity(ing.Quantity))
	}
	if ing.Measurement != "" {
		parts = append(parts, Title(ing.Measurement))
	}
	parts = append(parts, Title(ing.Name))
	return strings.Join(parts, " ")
}

// formatQuantity renders the shortest exact decimal form: 2 not 2.0,
// 1.5 stays 1.5.
func formatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}

// Title upper-cases the first letter of each space-separated word and
// lower-cases the rest, matching the source book's display style.
func Title(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		if len(r) > 0 {
			r[0] = []rune(strings.ToUpper(string(r[0])))[0]
		}
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

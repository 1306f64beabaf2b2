package ingredient

import (
	"strconv"
	"strings"
)

// Units recognized as explicit leading measurement tokens. Everything
// else falls through to the "oz." default unless the remaining text is a
// known no-measurement ingredient.
var measurementTokens = map[string]bool{
	"DASH":   true,
	"DASHES": true,
	"TSP":    true,
	"TSPS":   true,
}

// Ingredients listed without a measurement in the source book: herbs,
// eggs and garnish fruit go in whole, so the unit is explicitly blank
// rather than defaulted to ounces.
var noMeasurement = map[string]bool{
	"MINT":         true,
	"MINT SPRIG":   true,
	"EGG":          true,
	"WHOLE EGG":    true,
	"EGG WHITE":    true,
	"EGG YOLK":     true,
	"LEMON":        true,
	"LIME":         true,
	"ORANGE":       true,
	"PINEAPPLE":    true,
	"APPLE":        true,
	"CHERRY":       true,
	"CHERRIES":     true,
	"BERRIES":      true,
	"STRAWBERRY":   true,
	"RASPBERRIES":  true,
	"BLACKBERRIES": true,
	"CUCUMBER":     true,
	"SUGAR CUBE":   true,
	"OLIVE":        true,
	"OLIVES":       true,
	"SALT":         true,
}

// ParseLine splits a free-text recipe line into quantity, unit and
// ingredient name.
//
// "2 DASHES ANGOSTURA BITTERS" parses to (2, "DASHES", "ANGOSTURA
// BITTERS"); "Mint" parses to (0, "", "Mint"); a line with neither a
// dash/tsp token nor a no-measurement name defaults the unit to "oz.".
// Quantity 0 means the line carried no leading number. The name keeps
// the case it arrived with. Pure function.
func ParseLine(raw string) (quantity float64, unit, name string) {
	rest := strings.TrimSpace(raw)

	// Leading numeric token followed by a space.
	if tok, tail, ok := strings.Cut(rest, " "); ok {
		if q, err := strconv.ParseFloat(tok, 64); err == nil {
			quantity = q
			rest = strings.TrimSpace(tail)
		}
	}

	// Explicit measurement token, captured as typed.
	if tok, tail, ok := strings.Cut(rest, " "); ok {
		upper := strings.ToUpper(tok)
		if measurementTokens[upper] {
			return quantity, tok, strings.TrimSpace(tail)
		}
		// A literal ounce token is folded into the default spelling.
		if upper == "OZ" || upper == "OZ." {
			return quantity, "oz.", strings.TrimSpace(tail)
		}
	}

	// Known no-measurement ingredient: unit is deliberately blank.
	if noMeasurement[strings.ToUpper(rest)] {
		return quantity, "", rest
	}

	return quantity, "oz.", rest
}

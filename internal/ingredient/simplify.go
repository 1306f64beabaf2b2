package ingredient

import "strings"

// Simplify returns the canonical uppercase name used for makeability
// comparisons: the linked category name when one exists, otherwise the
// ingredient's own name. Two bottle names mapped to the same category
// become identical strings for set operations. Idempotent: simplifying
// an already-simplified name (no category link) returns it unchanged.
func Simplify(name, category string) string {
	if category != "" {
		return strings.ToUpper(category)
	}
	return strings.ToUpper(name)
}

// Categorize returns the simple-category name for an ingredient name.
// It performs case-insensitive matching: exact match first, then
// substring match. Returns "" when no keyword matches; an uncategorized
// ingredient simplifies to its own name.
func Categorize(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return ""
	}

	if cat, ok := exactMatch[n]; ok {
		return cat
	}

	// Ordered longer/more-specific first: GINGER must win over GIN,
	// RYE over BOURBON-adjacent whiskeys, and so on.
	for _, entry := range substringMatches {
		if strings.Contains(n, entry.keyword) {
			return entry.category
		}
	}

	return ""
}

var exactMatch = map[string]string{
	"bourbon":      "BOURBON",
	"rye":          "RYE",
	"rye whiskey":  "RYE",
	"gin":          "GIN",
	"vodka":        "VODKA",
	"rum":          "RUM",
	"white rum":    "RUM",
	"dark rum":     "RUM",
	"tequila":      "TEQUILA",
	"mezcal":       "MEZCAL",
	"scotch":       "SCOTCH",
	"brandy":       "BRANDY",
	"cognac":       "BRANDY",
	"sugar":        "SUGAR",
	"sugar cube":   "SUGAR",
	"simple syrup": "SUGAR",
	"bitters":      "BITTERS",
	"champagne":    "SPARKLING WINE",
	"prosecco":     "SPARKLING WINE",
	"cava":         "SPARKLING WINE",
}

var substringMatches = []struct {
	keyword  string
	category string
}{
	// Whiskey family before the generic whiskey bucket.
	{"bourbon", "BOURBON"},
	{"rye whiskey", "RYE"},
	{"rittenhouse", "RYE"},
	{"scotch", "SCOTCH"},
	{"irish whiskey", "IRISH WHISKEY"},
	{"whiskey", "BOURBON"},
	{"whisky", "SCOTCH"},

	// Ginger before gin.
	{"ginger beer", "GINGER BEER"},
	{"ginger", "GINGER"},
	{"gin", "GIN"},

	{"vodka", "VODKA"},
	{"rhum", "RUM"},
	{"rum", "RUM"},
	{"cachaca", "RUM"},
	{"tequila", "TEQUILA"},
	{"mezcal", "MEZCAL"},
	{"cognac", "BRANDY"},
	{"armagnac", "BRANDY"},
	{"brandy", "BRANDY"},
	{"pisco", "PISCO"},
	{"absinthe", "ABSINTHE"},

	{"sweet vermouth", "SWEET VERMOUTH"},
	{"dry vermouth", "DRY VERMOUTH"},
	{"vermouth", "SWEET VERMOUTH"},
	{"campari", "CAMPARI"},
	{"aperol", "APEROL"},
	{"amaro", "AMARO"},
	{"fernet", "AMARO"},
	{"chartreuse", "CHARTREUSE"},
	{"benedictine", "BENEDICTINE"},
	{"maraschino liqueur", "MARASCHINO"},
	{"orange liqueur", "ORANGE LIQUEUR"},
	{"curacao", "ORANGE LIQUEUR"},
	{"cointreau", "ORANGE LIQUEUR"},
	{"triple sec", "ORANGE LIQUEUR"},
	{"grand marnier", "ORANGE LIQUEUR"},

	{"orange bitters", "BITTERS"},
	{"angostura", "BITTERS"},
	{"peychaud", "BITTERS"},
	{"bitters", "BITTERS"},

	{"simple syrup", "SUGAR"},
	{"demerara syrup", "SUGAR"},
	{"sugar", "SUGAR"},
	{"agave", "AGAVE"},
	{"honey", "HONEY"},
	{"grenadine", "GRENADINE"},
	{"orgeat", "ORGEAT"},

	{"lemon", "LEMON"},
	{"lime", "LIME"},
	{"orange", "ORANGE"},
	{"grapefruit", "GRAPEFRUIT"},
	{"pineapple", "PINEAPPLE"},
	{"cranberry", "CRANBERRY"},

	{"champagne", "SPARKLING WINE"},
	{"prosecco", "SPARKLING WINE"},
	{"sparkling wine", "SPARKLING WINE"},
	{"port", "PORT"},
	{"sherry", "SHERRY"},

	{"soda", "SODA WATER"},
	{"tonic", "TONIC"},
	{"cola", "COLA"},
	{"coffee", "COFFEE"},
	{"espresso", "COFFEE"},

	{"egg white", "EGG WHITE"},
	{"egg", "EGG"},
	{"cream", "CREAM"},
	{"mint", "MINT"},
}

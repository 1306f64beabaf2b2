package ingredient

import "testing"

func TestSimplifyUsesCategory(t *testing.T) {
	got := Simplify("Elijah Craig Bourbon", "BOURBON")
	if got != "BOURBON" {
		t.Errorf("Simplify = %q, want %q", got, "BOURBON")
	}
}

func TestSimplifyFallsBackToOwnName(t *testing.T) {
	got := Simplify("Velvet Falernum", "")
	if got != "VELVET FALERNUM" {
		t.Errorf("Simplify = %q, want %q", got, "VELVET FALERNUM")
	}
}

func TestSimplifyIdempotent(t *testing.T) {
	once := Simplify("Rittenhouse Rye", "RYE")
	twice := Simplify(once, "")
	if once != twice {
		t.Errorf("Simplify not idempotent: %q then %q", once, twice)
	}
}

func TestCategorizeExactMatch(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"bourbon", "BOURBON"},
		{"rye", "RYE"},
		{"gin", "GIN"},
		{"simple syrup", "SUGAR"},
		{"bitters", "BITTERS"},
		{"champagne", "SPARKLING WINE"},
	}
	for _, tt := range tests {
		got := Categorize(tt.input)
		if got != tt.want {
			t.Errorf("Categorize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCategorizeSubstringMatch(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Elijah Craig Small Batch Bourbon", "BOURBON"},
		{"Rittenhouse Rye Whiskey", "RYE"},
		{"Plymouth Gin", "GIN"},
		{"Angostura Bitters", "BITTERS"},
		{"Dolin Dry Vermouth", "DRY VERMOUTH"},
		{"Fresh Lime Juice", "LIME"},
		{"Demerara Sugar Cube", "SUGAR"},
		{"Green Chartreuse", "CHARTREUSE"},
	}
	for _, tt := range tests {
		got := Categorize(tt.input)
		if got != tt.want {
			t.Errorf("Categorize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

// Keyword ordering: ginger drinks must not land in the GIN bucket.
func TestCategorizeGingerBeforeGin(t *testing.T) {
	if got := Categorize("Fever-Tree Ginger Beer"); got != "GINGER BEER" {
		t.Errorf("Categorize ginger beer = %q, want %q", got, "GINGER BEER")
	}
	if got := Categorize("Fresh Ginger Syrup"); got != "GINGER" {
		t.Errorf("Categorize ginger syrup = %q, want %q", got, "GINGER")
	}
}

func TestCategorizeCaseInsensitive(t *testing.T) {
	if got := Categorize("ANGOSTURA BITTERS"); got != "BITTERS" {
		t.Errorf("Categorize = %q, want %q", got, "BITTERS")
	}
}

func TestCategorizeUnknown(t *testing.T) {
	tests := []string{"", "Velvet Falernum", "Peach Shrub"}
	for _, input := range tests {
		if got := Categorize(input); got != "" {
			t.Errorf("Categorize(%q) = %q, want empty", input, got)
		}
	}
}

package recipe

import (
	"testing"

	"bottender/internal/model"
)

func TestFormat(t *testing.T) {
	drink := &model.Drink{
		Name: "Old Fashioned",
		Page: "25",
		Ingredients: []model.Ingredient{
			{Name: "rye whiskey", Quantity: 2, Measurement: "oz."},
			{Name: "sugar cube", Quantity: 1, Measurement: ""},
			{Name: "angostura bitters", Quantity: 2, Measurement: "dashes"},
		},
		Garnish: &model.Garnish{Name: "orange twist"},
	}

	want := "Old Fashioned is found on page 25:\n" +
		"2 Oz. Rye Whiskey\n" +
		"1 Sugar Cube\n" +
		"2 Dashes Angostura Bitters\n" +
		"Garnish with Orange Twist"

	if got := Format(drink); got != want {
		t.Errorf("Format() =\n%q\nwant\n%q", got, want)
	}
}

func TestFormatNoGarnish(t *testing.T) {
	drink := &model.Drink{
		Name: "Martini",
		Page: "30",
		Ingredients: []model.Ingredient{
			{Name: "gin", Quantity: 2.5, Measurement: "oz."},
			{Name: "dry vermouth", Quantity: 0.5, Measurement: "oz."},
		},
	}

	want := "Martini is found on page 30:\n" +
		"2.5 Oz. Gin\n" +
		"0.5 Oz. Dry Vermouth"

	if got := Format(drink); got != want {
		t.Errorf("Format() =\n%q\nwant\n%q", got, want)
	}
}

func TestFormatZeroQuantity(t *testing.T) {
	drink := &model.Drink{
		Name: "Mojito",
		Page: "41",
		Ingredients: []model.Ingredient{
			{Name: "mint", Quantity: 0, Measurement: ""},
		},
	}

	want := "Mojito is found on page 41:\nMint"
	if got := Format(drink); got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"rye whiskey", "Rye Whiskey"},
		{"ANGOSTURA BITTERS", "Angostura Bitters"},
		{"oz.", "Oz."},
		{"", ""},
		{"  spaced   out  ", "Spaced Out"},
	}
	for _, tt := range tests {
		if got := Title(tt.in); got != tt.want {
			t.Errorf("Title(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

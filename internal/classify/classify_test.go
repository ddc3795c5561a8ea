package classify

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		in        string
		wantCat   Category
		wantColor string
	}{
		{"", Other, ColorOther},
		{"   ", Other, ColorOther},
		{"Feira de Estágios", Fair, ColorFair},
		{"FEIRA", Fair, ColorFair},
		{"Live no Instagram", Live, ColorLive},
		{"live", Live, ColorLive},
		{"Blūmi Circle", Circle, ColorCircle},
		{"Círculo de conversa", Circle, ColorCircle},
		{"CÍRCULO", Circle, ColorCircle},
		{"Palestra", Other, ColorOther},
		{"Workshop", Other, ColorOther},
		// First matching rule wins.
		{"Live da feira", Fair, ColorFair},
		{"Circle ao vivo (live)", Live, ColorLive},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Classify(tt.in)
			if got.Category != tt.wantCat || got.Color != tt.wantColor {
				t.Errorf("Classify(%q) = %s/%s, want %s/%s", tt.in, got.Category, got.Color, tt.wantCat, tt.wantColor)
			}
		})
	}
}

func TestClassifyIsTotalAndDeterministic(t *testing.T) {
	valid := map[Category]bool{Fair: true, Live: true, Circle: true, Other: true}
	inputs := []string{"", "x", "feira", "Live", "círculo", "ÇÃO", "🎉", "Feira\x00Live", "circle-live"}

	for _, in := range inputs {
		first := Classify(in)
		if !valid[first.Category] {
			t.Fatalf("Classify(%q) returned unknown category %q", in, first.Category)
		}
		for i := 0; i < 3; i++ {
			if again := Classify(in); again != first {
				t.Fatalf("Classify(%q) not deterministic: %+v then %+v", in, first, again)
			}
		}
	}
}

func TestCategoriesLegendOrder(t *testing.T) {
	got := Categories()
	want := []Category{Fair, Live, Circle, Other}
	if len(got) != len(want) {
		t.Fatalf("got %d categories, want %d", len(got), len(want))
	}
	for i, c := range want {
		if got[i].Category != c {
			t.Errorf("Categories()[%d] = %s, want %s", i, got[i].Category, c)
		}
	}
	if Lookup("nope").Category != Other {
		t.Error("Lookup of unknown category should fall back to other")
	}
	if Lookup(Live).Color != ColorLive {
		t.Error("Lookup(live) returned wrong color")
	}
}

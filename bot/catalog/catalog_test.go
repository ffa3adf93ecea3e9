package catalog

import (
	"errors"
	"testing"
)

func TestCatalogInvariants(t *testing.T) {
	all := All()
	if len(all) != 9 {
		t.Fatalf("expected 9 tariffs, got %d", len(all))
	}
	seen := make(map[string]struct{}, len(all))
	for _, tr := range all {
		if _, dup := seen[tr.Name]; dup {
			t.Errorf("duplicate tariff name %q", tr.Name)
		}
		seen[tr.Name] = struct{}{}

		if tr.Seats <= 0 {
			t.Errorf("%s: seats must be positive, got %d", tr.Name, tr.Seats)
		}
		if tr.Price <= 0 {
			t.Errorf("%s: price must be positive, got %d", tr.Name, tr.Price)
		}
		// VIP tariffs quote one flat group price; the rest are per seat.
		if tr.Category == CategoryVIP {
			if tr.Total() != tr.Price {
				t.Errorf("%s: total %d != flat price %d", tr.Name, tr.Total(), tr.Price)
			}
		} else if tr.Total() != tr.Price*tr.Seats {
			t.Errorf("%s: total %d != price %d x seats %d", tr.Name, tr.Total(), tr.Price, tr.Seats)
		}
		if tr.Description == "" || tr.Includes == "" {
			t.Errorf("%s: missing description or includes", tr.Name)
		}
	}
}

func TestResolve(t *testing.T) {
	tr, err := Resolve("Сам себе Санта")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if tr.Price != 3000 || tr.Seats != 1 || tr.Category != CategoryMale {
		t.Fatalf("unexpected tariff: %+v", tr)
	}
	if tr.Total() != 3000 {
		t.Fatalf("single-seat total = %d, want 3000", tr.Total())
	}

	if _, err := Resolve("Несуществующий"); !errors.Is(err, ErrUnknownTariff) {
		t.Fatalf("expected ErrUnknownTariff, got %v", err)
	}
}

func TestResolveRoundTrip(t *testing.T) {
	for _, tr := range All() {
		got, err := Resolve(tr.Name)
		if err != nil {
			t.Fatalf("resolve %q: %v", tr.Name, err)
		}
		if got.Total() != tr.Total() {
			t.Errorf("%s: round-trip total mismatch", tr.Name)
		}
	}
}

func TestByCategory(t *testing.T) {
	cases := []struct {
		cat  Category
		want int
	}{
		{CategoryMale, 3},
		{CategoryFemale, 3},
		{CategoryCouple, 1},
		{CategoryVIP, 2},
	}
	total := 0
	for _, tc := range cases {
		got := ByCategory(tc.cat)
		if len(got) != tc.want {
			t.Errorf("%s: got %d tariffs, want %d", tc.cat, len(got), tc.want)
		}
		for _, tr := range got {
			if tr.Category != tc.cat {
				t.Errorf("%s listed under %s", tr.Name, tc.cat)
			}
		}
		total += len(got)
	}
	if total != len(All()) {
		t.Errorf("categories cover %d tariffs, catalog has %d", total, len(All()))
	}
}

func TestParseCategory(t *testing.T) {
	if _, ok := ParseCategory("male"); !ok {
		t.Fatal("male should parse")
	}
	if _, ok := ParseCategory("unknown"); ok {
		t.Fatal("unknown category should not parse")
	}
}

func TestGroupTotals(t *testing.T) {
	want := map[string]int{
		"Братья по шампанскому": 5500,
		"Компания друзей":       10500,
		"Сестры по глинтвейну":  4500,
		"Квартет снегурочек":    8500,
		"Мистер и миссис Клаус": 5100,
		"DUO VIP":               6500,
		"SQUAD SUPER VIP":       12000,
	}
	for name, total := range want {
		tr, err := Resolve(name)
		if err != nil {
			t.Fatalf("resolve %q: %v", name, err)
		}
		if tr.Total() != total {
			t.Errorf("%s: total = %d, want %d", name, tr.Total(), total)
		}
	}
}

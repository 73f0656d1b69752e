package reconcile

import (
	"testing"

	"storefront/internal/model"
)

func line(id string, price string, qty int) model.LineItem {
	return model.LineItem{ProductID: id, Name: "item-" + id, Price: model.ParsePrice(price), Quantity: qty}
}

func TestFold_SumsDuplicates(t *testing.T) {
	rows := []model.LineItem{
		line("X", "1.00", 2),
		line("Y", "2.00", 1),
		line("X", "1.00", 3),
	}

	got := Fold(rows)

	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ProductID != "X" || got[0].Quantity != 5 {
		t.Errorf("got[0] = %s x%d, want X x5", got[0].ProductID, got[0].Quantity)
	}
	if got[1].ProductID != "Y" || got[1].Quantity != 1 {
		t.Errorf("got[1] = %s x%d, want Y x1", got[1].ProductID, got[1].Quantity)
	}
}

func TestFold_FirstOccurrenceKeepsDetails(t *testing.T) {
	first := line("X", "1.00", 1)
	first.Name = "first"
	second := line("X", "9.99", 1)
	second.Name = "second"

	got := Fold([]model.LineItem{first, second})

	if got[0].Name != "first" {
		t.Errorf("Name = %q, want %q", got[0].Name, "first")
	}
	if !got[0].Price.Equal(model.ParsePrice("1.00")) {
		t.Errorf("Price = %s, want 1.00", got[0].Price)
	}
}

func TestFold_DropsNonPositive(t *testing.T) {
	got := Fold([]model.LineItem{line("A", "1", 0), line("B", "1", -2), line("C", "1", 1)})

	if len(got) != 1 || got[0].ProductID != "C" {
		t.Errorf("Fold() = %+v, want only C", got)
	}
}

func TestFold_DoesNotMutateInput(t *testing.T) {
	rows := []model.LineItem{line("X", "1", 2), line("X", "1", 3)}

	Fold(rows)

	if rows[0].Quantity != 2 || rows[1].Quantity != 3 {
		t.Errorf("input mutated: %+v", rows)
	}
}

func TestFold_Empty(t *testing.T) {
	if got := Fold(nil); len(got) != 0 {
		t.Errorf("Fold(nil) = %+v, want empty", got)
	}
}

func TestMerge(t *testing.T) {
	guest := []model.LineItem{line("A", "1", 1), line("B", "1", 2)}
	server := []model.LineItem{line("B", "1", 3)}

	got := Merge(server, guest)

	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ProductID != "B" || got[0].Quantity != 5 {
		t.Errorf("got[0] = %s x%d, want B x5", got[0].ProductID, got[0].Quantity)
	}
	if got[1].ProductID != "A" || got[1].Quantity != 1 {
		t.Errorf("got[1] = %s x%d, want A x1", got[1].ProductID, got[1].Quantity)
	}
}

func TestAdd(t *testing.T) {
	tests := []struct {
		name    string
		items   []model.LineItem
		add     model.LineItem
		wantLen int
		wantQty map[string]int
	}{
		{
			name:    "append new",
			items:   nil,
			add:     line("A", "1", 2),
			wantLen: 1,
			wantQty: map[string]int{"A": 2},
		},
		{
			name:    "increment existing",
			items:   []model.LineItem{line("A", "1", 2)},
			add:     line("A", "1", 3),
			wantLen: 1,
			wantQty: map[string]int{"A": 5},
		},
		{
			name:    "zero quantity ignored",
			items:   []model.LineItem{line("A", "1", 2)},
			add:     line("B", "1", 0),
			wantLen: 1,
			wantQty: map[string]int{"A": 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Add(tt.items, tt.add)
			if len(got) != tt.wantLen {
				t.Fatalf("len = %d, want %d", len(got), tt.wantLen)
			}
			for _, item := range got {
				if want := tt.wantQty[item.ProductID]; item.Quantity != want {
					t.Errorf("%s quantity = %d, want %d", item.ProductID, item.Quantity, want)
				}
			}
		})
	}
}

func TestAdd_RepeatedAddsStayOneLine(t *testing.T) {
	var items []model.LineItem
	sum := 0
	for _, q := range []int{1, 4, 2, 7} {
		items = Add(items, line("A", "3.00", q))
		sum += q
	}

	if len(items) != 1 {
		t.Fatalf("len = %d, want 1", len(items))
	}
	if items[0].Quantity != sum {
		t.Errorf("Quantity = %d, want %d", items[0].Quantity, sum)
	}
}

func TestAdd_DoesNotMutateInput(t *testing.T) {
	items := []model.LineItem{line("A", "1", 1)}

	Add(items, line("A", "1", 1))

	if items[0].Quantity != 1 {
		t.Errorf("input quantity = %d, want 1", items[0].Quantity)
	}
}

func TestSetQuantity(t *testing.T) {
	items := []model.LineItem{line("A", "1", 1), line("B", "1", 2)}

	tests := []struct {
		name     string
		id       string
		qty      int
		wantLen  int
		wantA    int
		hasB     bool
		wantBQty int
	}{
		{"update", "B", 9, 2, 1, true, 9},
		{"zero removes", "B", 0, 1, 1, false, 0},
		{"negative removes", "B", -5, 1, 1, false, 0},
		{"unknown is no-op", "Z", 3, 2, 1, true, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SetQuantity(items, tt.id, tt.qty)
			if len(got) != tt.wantLen {
				t.Fatalf("len = %d, want %d", len(got), tt.wantLen)
			}
			if Contains(got, "B") != tt.hasB {
				t.Errorf("Contains(B) = %v, want %v", !tt.hasB, tt.hasB)
			}
			for _, item := range got {
				switch item.ProductID {
				case "A":
					if item.Quantity != tt.wantA {
						t.Errorf("A quantity = %d, want %d", item.Quantity, tt.wantA)
					}
				case "B":
					if item.Quantity != tt.wantBQty {
						t.Errorf("B quantity = %d, want %d", item.Quantity, tt.wantBQty)
					}
				}
			}
		})
	}

	if items[1].Quantity != 2 {
		t.Errorf("input mutated: B quantity = %d", items[1].Quantity)
	}
}

func TestRemove(t *testing.T) {
	items := []model.LineItem{line("A", "1", 1), line("B", "1", 2)}

	got := Remove(items, "A")
	if len(got) != 1 || got[0].ProductID != "B" {
		t.Errorf("Remove(A) = %+v, want only B", got)
	}

	got = Remove(items, "missing")
	if len(got) != 2 {
		t.Errorf("Remove(missing) len = %d, want 2", len(got))
	}
}

func TestTotals(t *testing.T) {
	tests := []struct {
		name      string
		items     []model.LineItem
		wantCount int
		wantTotal string
	}{
		{"empty", nil, 0, "0.00"},
		{"single", []model.LineItem{line("A", "10.00", 2)}, 2, "20.00"},
		{"exact decimals", []model.LineItem{line("B", "5.50", 3)}, 3, "16.50"},
		{"mixed", []model.LineItem{line("A", "0.10", 3), line("B", "0.20", 1)}, 4, "0.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count, total := Totals(tt.items)
			if count != tt.wantCount {
				t.Errorf("count = %d, want %d", count, tt.wantCount)
			}
			if got := model.FormatPrice(total); got != tt.wantTotal {
				t.Errorf("total = %s, want %s", got, tt.wantTotal)
			}
		})
	}
}

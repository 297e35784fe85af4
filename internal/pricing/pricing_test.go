package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", s, err)
	}
	return d
}

func TestCompute_Empty(t *testing.T) {
	b := Compute(nil)
	if !b.Subtotal.IsZero() || !b.Total.IsZero() {
		t.Fatalf("expected zero totals, got %+v", b)
	}
	if b.TaxByRate == nil || len(b.TaxByRate) != 0 {
		t.Fatalf("expected empty non-nil tax map, got %#v", b.TaxByRate)
	}
}

func TestCompute_TwoRates(t *testing.T) {
	b := Compute([]Line{
		{UnitPrice: dec(t, "10.00"), VATRate: 21, Quantity: 2},
		{UnitPrice: dec(t, "5.00"), VATRate: 6, Quantity: 1},
	})
	if !b.Subtotal.Equal(dec(t, "25.00")) {
		t.Fatalf("subtotal = %s, want 25.00", b.Subtotal)
	}
	if len(b.TaxByRate) != 2 {
		t.Fatalf("expected 2 rates, got %v", b.TaxByRate)
	}
	if !b.TaxByRate[21].Equal(dec(t, "4.20")) || !b.TaxByRate[6].Equal(dec(t, "0.30")) {
		t.Fatalf("unexpected taxes %v", b.TaxByRate)
	}
	if !b.Total.Equal(dec(t, "29.50")) {
		t.Fatalf("total = %s, want 29.50", b.Total)
	}
	if rates := b.Rates(); len(rates) != 2 || rates[0] != 6 || rates[1] != 21 {
		t.Fatalf("unexpected rates order %v", rates)
	}
}

func TestCompute_SingleRate(t *testing.T) {
	lines := []Line{
		{UnitPrice: dec(t, "3.33"), VATRate: 21, Quantity: 3},
		{UnitPrice: dec(t, "1.10"), VATRate: 21, Quantity: 7},
	}
	b := Compute(lines)
	if len(b.TaxByRate) != 1 {
		t.Fatalf("expected one rate, got %v", b.TaxByRate)
	}
	want := Tax(b.Subtotal, 21)
	if !b.TaxByRate[21].Equal(want) {
		t.Fatalf("tax = %s, want %s", b.TaxByRate[21], want)
	}
	if !b.Total.Equal(b.Subtotal.Add(want)) {
		t.Fatalf("total %s != subtotal %s + tax %s", b.Total, b.Subtotal, want)
	}
}

func TestCompute_TotalIsSubtotalPlusTaxes(t *testing.T) {
	cases := [][]Line{
		{{UnitPrice: dec(t, "0.99"), VATRate: 21, Quantity: 3}},
		{{UnitPrice: dec(t, "19.99"), VATRate: 6, Quantity: 1}, {UnitPrice: dec(t, "7.45"), VATRate: 12, Quantity: 4}},
		{{UnitPrice: dec(t, "12.50"), VATRate: 0, Quantity: 0}},
	}
	for i, lines := range cases {
		b := Compute(lines)
		sum := decimal.Zero
		for _, l := range lines {
			sum = sum.Add(LineTotal(l))
		}
		if !b.Subtotal.Equal(sum.RoundBank(2)) {
			t.Fatalf("case %d: subtotal %s != sum of lines %s", i, b.Subtotal, sum)
		}
		if !b.Total.Equal(b.Subtotal.Add(b.TaxTotal())) {
			t.Fatalf("case %d: total %s != subtotal %s + taxes %s", i, b.Total, b.Subtotal, b.TaxTotal())
		}
	}
}

func TestTax_RoundsHalfToEven(t *testing.T) {
	// 0.50 × 21% = 0.105 -> 0.10; 1.50 × 21% = 0.315 -> 0.32
	if got := Tax(dec(t, "0.50"), 21); !got.Equal(dec(t, "0.10")) {
		t.Fatalf("Tax(0.50, 21) = %s, want 0.10", got)
	}
	if got := Tax(dec(t, "1.50"), 21); !got.Equal(dec(t, "0.32")) {
		t.Fatalf("Tax(1.50, 21) = %s, want 0.32", got)
	}
}

func TestInclTax(t *testing.T) {
	if got := InclTax(dec(t, "10.00"), 21); !got.Equal(dec(t, "12.10")) {
		t.Fatalf("InclTax = %s, want 12.10", got)
	}
}

func TestMinorUnits(t *testing.T) {
	if got := MinorUnits(dec(t, "29.50")); got != 2950 {
		t.Fatalf("MinorUnits = %d, want 2950", got)
	}
	if got := MinorUnits(decimal.Zero); got != 0 {
		t.Fatalf("MinorUnits(0) = %d", got)
	}
}

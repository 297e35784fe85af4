package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"vatshop/internal/domain"

	"github.com/shopspring/decimal"
)

type stubProductRepo struct {
	items []domain.Product
	err   error
}

func (s *stubProductRepo) Upsert(_ context.Context, p domain.Product) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.items = append(s.items, p)
	return &p, nil
}

func TestCSVImporter_Run(t *testing.T) {
	csvData := `id,name,description,vat,price
00000000-0000-0000-0000-000000000001,Beans,Dark roast,6,18.50
,Mug,Stoneware,,9.95

,Grinder,"Burr, conical",21%,42
`
	repo := &stubProductRepo{}
	imp := NewCSVImporter(strings.NewReader(csvData), repo, nil)

	count, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 3 || len(repo.items) != 3 {
		t.Fatalf("expected 3 products, got %d (%d saved)", count, len(repo.items))
	}
	if repo.items[0].ID != "00000000-0000-0000-0000-000000000001" || repo.items[0].VATRate != 6 || !repo.items[0].Price.Equal(decimal.RequireFromString("18.50")) {
		t.Fatalf("unexpected first product %+v", repo.items[0])
	}
	if repo.items[1].VATRate != domain.DefaultVATRate {
		t.Fatalf("expected default VAT for empty column, got %d", repo.items[1].VATRate)
	}
	if repo.items[2].Description != "Burr, conical" || repo.items[2].VATRate != 21 {
		t.Fatalf("unexpected third product %+v", repo.items[2])
	}
}

func TestCSVImporter_InvalidRows(t *testing.T) {
	cases := []struct {
		name  string
		data  string
		field string
	}{
		{"missing name", "name,price\n,1.00\n", "name"},
		{"bad price", "name,price\nMug,abc\n", "price"},
		{"negative price", "name,price\nMug,-1\n", "price"},
		{"bad vat", "name,price,vat\nMug,1.00,high\n", "vat"},
		{"bad id", "id,name,price\n123,Mug,1.00\n", "id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCSVImporter(strings.NewReader(tc.data), &stubProductRepo{}, nil).Run(context.Background())
			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if _, ok := verr.Fields[tc.field]; !ok {
				t.Fatalf("expected %s error, got %v", tc.field, verr.Fields)
			}
			if !strings.Contains(err.Error(), "row 2") {
				t.Fatalf("expected row number in %q", err.Error())
			}
		})
	}
}

func TestCSVImporter_MissingColumns(t *testing.T) {
	_, err := NewCSVImporter(strings.NewReader("title,cost\nMug,1\n"), &stubProductRepo{}, nil).Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "missing name column") {
		t.Fatalf("expected missing column error, got %v", err)
	}
}

func TestCSVImporter_StopsOnWriteError(t *testing.T) {
	repo := &stubProductRepo{err: domain.ErrConflict}
	count, err := NewCSVImporter(strings.NewReader("name,price\nMug,1.00\n"), repo, nil).Run(context.Background())
	if !errors.Is(err, domain.ErrConflict) || count != 0 {
		t.Fatalf("expected conflict, got count=%d err=%v", count, err)
	}
}

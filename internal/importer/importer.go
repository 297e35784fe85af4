package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"vatshop/internal/domain"
	"vatshop/internal/logging"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// CSVImporter reads product CSV files with a header row and upserts products
// by name. Recognised columns: id, name, description, vat, price.
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
	logger      *zap.Logger
}

func NewCSVImporter(r io.Reader, repo ProductWriter, logger *zap.Logger) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{
		reader:      csvr,
		productRepo: repo,
		logger:      logging.OrNop(logger),
	}
}

// Run imports every row and returns the number of products written. It stops
// at the first invalid row.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["name"]; !ok {
		return 0, errors.New("missing name column")
	}
	if _, ok := index["price"]; !ok {
		return 0, errors.New("missing price column")
	}

	imported := 0
	for line := 2; ; line++ {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row %d: %w", line, err)
		}
		if blank(record) {
			continue
		}

		p, err := parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("row %d: %w", line, err)
		}
		saved, err := i.productRepo.Upsert(ctx, p)
		if err != nil {
			return imported, fmt.Errorf("row %d: upsert product %q: %w", line, p.Name, err)
		}
		i.logger.Debug("imported product", zap.String("id", saved.ID), zap.String("name", saved.Name))
		imported++
	}
	return imported, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) (domain.Product, error) {
	name := pick(record, index, "name")
	if name == "" {
		return domain.Product{}, domain.NewValidationError("name", "required")
	}
	if len([]rune(name)) > 255 {
		return domain.Product{}, domain.NewValidationError("name", "must be at most 255 characters")
	}

	price, err := decimal.NewFromString(pick(record, index, "price"))
	if err != nil || price.IsNegative() {
		return domain.Product{}, domain.NewValidationError("price", "must be a non-negative decimal")
	}

	vat := domain.DefaultVATRate
	if raw := pick(record, index, "vat"); raw != "" {
		vat, err = strconv.Atoi(strings.TrimSuffix(raw, "%"))
		if err != nil || vat < 0 || vat > 100 {
			return domain.Product{}, domain.NewValidationError("vat", "must be a whole percentage")
		}
	}

	id := pick(record, index, "id")
	if id != "" && len(id) != 36 {
		return domain.Product{}, domain.NewValidationError("id", "must be a uuid")
	}

	return domain.Product{
		ID:          id,
		Name:        name,
		Description: pick(record, index, "description"),
		VATRate:     vat,
		Price:       price.RoundBank(2),
	}, nil
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/estoque-api/internal/domain/entity"
)

var requiredColumns = []string{"name", "category", "quantity"}

type csvItem struct {
	line int
	item *entity.StockItem
}

// parseItemsCSV lee el CSV de ítems. Acepta "," o ";" como separador (el primero que
// aparezca en la cabecera) y decimales con coma.
func parseItemsCSV(r io.Reader, latin1 bool) ([]csvItem, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("leer CSV: %w", err)
	}
	text := strings.TrimPrefix(string(raw), "\ufeff")

	cr := csv.NewReader(strings.NewReader(text))
	cr.Comma = detectSeparator(text)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("CSV vacío")
		}
		return nil, fmt.Errorf("leer cabecera: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("falta la columna %q", c)
		}
	}

	var out []csvItem
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		get := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		if get("name") == "" && get("category") == "" {
			continue
		}
		qty, err := parseDecimal(get("quantity"))
		if err != nil {
			return nil, fmt.Errorf("línea %d: quantity: %w", line, err)
		}
		price, err := parseDecimal(get("price"))
		if err != nil {
			return nil, fmt.Errorf("línea %d: price: %w", line, err)
		}
		item := &entity.StockItem{
			Name:        get("name"),
			Category:    get("category"),
			Unit:        get("unit"),
			Quantity:    qty,
			Description: get("description"),
			Supplier:    get("supplier"),
			Price:       price,
			Location:    get("location"),
		}
		if s := get("minimum_quantity"); s != "" {
			minimum, err := parseDecimal(s)
			if err != nil {
				return nil, fmt.Errorf("línea %d: minimum_quantity: %w", line, err)
			}
			item.MinimumQuantity = &minimum
		}
		out = append(out, csvItem{line: line, item: item})
	}
	return out, nil
}

func detectSeparator(text string) rune {
	first, _, _ := strings.Cut(text, "\n")
	if strings.Count(first, ";") > strings.Count(first, ",") {
		return ';'
	}
	return ','
}

// parseDecimal acepta "1.5" y "1,5"; vacío es cero.
func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
}

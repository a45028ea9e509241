package dto

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoque-api/internal/domain"
)

// decimalFields campos numéricos que llegan en los cuerpos de escritura.
var decimalFields = map[string]bool{
	"quantity":         true,
	"minimum_quantity": true,
	"price":            true,
	"system_quantity":  true,
	"counted_quantity": true,
}

// DecimalFieldError busca en el JSON el primer campo numérico que no es un decimal válido
// (ej. "quantity": "abc") y lo devuelve como *domain.ValidationError. nil si no hay ninguno.
func DecimalFieldError(body []byte) error {
	return findInvalidDecimal(body)
}

func findInvalidDecimal(raw json.RawMessage) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	switch raw[0] {
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil
		}
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			v := bytes.TrimSpace(obj[k])
			if decimalFields[k] {
				if bytes.Equal(v, []byte("null")) {
					continue
				}
				var d decimal.Decimal
				if err := d.UnmarshalJSON(v); err != nil {
					return domain.NewValidation(k, "debe ser numérico")
				}
				continue
			}
			if err := findInvalidDecimal(v); err != nil {
				return err
			}
		}
	case '[':
		var arr []json.RawMessage
		if err := json.Unmarshal(raw, &arr); err != nil {
			return nil
		}
		for _, v := range arr {
			if err := findInvalidDecimal(v); err != nil {
				return err
			}
		}
	}
	return nil
}

package inventory

import (
	"strings"
	"unicode/utf8"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Límites de los campos de un ítem.
const (
	MaxNameLength        = 200
	MaxCategoryLength    = 100
	MaxUnitLength        = 20
	MaxDescriptionLength = 1000
	MaxSupplierLength    = 200
	MaxLocationLength    = 200
	DefaultUnit          = "un"
)

// MaxPrice precio máximo admitido.
var MaxPrice = decimal.RequireFromString("999999999.99")

// ValidateMovementQuantity exige 0 < qty <= MaxQuantity.
func ValidateMovementQuantity(qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return domain.NewValidation("quantity", "debe ser mayor que cero")
	}
	if qty.GreaterThan(MaxQuantity) {
		return domain.NewValidation("quantity", "no puede superar "+MaxQuantity.String())
	}
	return nil
}

// ValidateMinimum exige 0 <= minimum <= quantity. nil es válido.
func ValidateMinimum(minimum *decimal.Decimal, quantity decimal.Decimal) error {
	if minimum == nil {
		return nil
	}
	if minimum.IsNegative() {
		return domain.NewValidation("minimum_quantity", "no puede ser negativo")
	}
	if minimum.GreaterThan(quantity) {
		return domain.NewValidation("minimum_quantity", "no puede superar la cantidad ("+quantity.String()+")")
	}
	return nil
}

// NormalizeItem recorta los textos, aplica la unidad por defecto y valida los límites
// de un ítem nuevo. Modifica item en el lugar.
func NormalizeItem(item *entity.StockItem) error {
	item.Name = strings.TrimSpace(item.Name)
	item.Category = strings.TrimSpace(item.Category)
	item.Unit = strings.TrimSpace(item.Unit)
	item.Description = strings.TrimSpace(item.Description)
	item.Supplier = strings.TrimSpace(item.Supplier)
	item.Location = strings.TrimSpace(item.Location)
	if item.Unit == "" {
		item.Unit = DefaultUnit
	}

	if err := lengthBetween("name", item.Name, 1, MaxNameLength); err != nil {
		return err
	}
	if err := lengthBetween("category", item.Category, 1, MaxCategoryLength); err != nil {
		return err
	}
	if err := lengthBetween("unit", item.Unit, 1, MaxUnitLength); err != nil {
		return err
	}
	if err := lengthBetween("description", item.Description, 0, MaxDescriptionLength); err != nil {
		return err
	}
	if err := lengthBetween("supplier", item.Supplier, 0, MaxSupplierLength); err != nil {
		return err
	}
	if err := lengthBetween("location", item.Location, 0, MaxLocationLength); err != nil {
		return err
	}
	if item.Quantity.IsNegative() || item.Quantity.GreaterThan(MaxQuantity) {
		return domain.NewValidation("quantity", "debe estar entre 0 y "+MaxQuantity.String())
	}
	if item.Price.IsNegative() || item.Price.GreaterThan(MaxPrice) {
		return domain.NewValidation("price", "debe estar entre 0 y "+MaxPrice.String())
	}
	return ValidateMinimum(item.MinimumQuantity, item.Quantity)
}

func lengthBetween(field, value string, min, max int) error {
	n := utf8.RuneCountInString(value)
	if n < min {
		return domain.NewValidation(field, "es obligatorio")
	}
	if n > max {
		return domain.NewValidation(field, "supera el largo máximo")
	}
	return nil
}

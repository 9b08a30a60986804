package dto

import (
	"github.com/shopspring/decimal"

	"recipe_backend/internal/feature/recipe/domain"
)

// Price はリクエストの価格です。数値と文字列のどちらでも受け付けます。
type Price struct {
	decimal.Decimal
}

// UnmarshalJSON reports anything that is not a number as a price field error.
func (p *Price) UnmarshalJSON(b []byte) error {
	if err := p.Decimal.UnmarshalJSON(b); err != nil {
		return domain.ErrPriceNotNumber
	}
	return nil
}

func (p *Price) decimalPtr() *decimal.Decimal {
	if p == nil {
		return nil
	}
	d := p.Decimal
	return &d
}

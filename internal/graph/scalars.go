package graph

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Decimal is the Decimal scalar. It is written as a string with two decimal
// places and read from a string, float or integer literal.
type Decimal struct {
	decimal.Decimal
}

func (Decimal) ImplementsGraphQLType(name string) bool {
	return name == "Decimal"
}

func (d *Decimal) UnmarshalGraphQL(input interface{}) error {
	switch v := input.(type) {
	case string:
		parsed, err := decimal.NewFromString(v)
		if err != nil {
			return fmt.Errorf("invalid Decimal %q", v)
		}
		d.Decimal = parsed
	case float64:
		d.Decimal = decimal.NewFromFloat(v)
	case int32:
		d.Decimal = decimal.NewFromInt32(v)
	case int:
		d.Decimal = decimal.NewFromInt(int64(v))
	default:
		return fmt.Errorf("wrong type for Decimal: %T", input)
	}
	return nil
}

func (d Decimal) MarshalJSON() ([]byte, error) {
	return strconv.AppendQuote(nil, d.StringFixed(2)), nil
}

func newDecimal(d decimal.Decimal) Decimal { return Decimal{d} }

func nullDecimal(d decimal.NullDecimal) *Decimal {
	if !d.Valid {
		return nil
	}
	return &Decimal{d.Decimal}
}

// unwrap returns the value of an optional Decimal argument.
func (d *Decimal) unwrap() *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := d.Decimal
	return &v
}

package services

import (
	"food-ordering-api/models"

	"github.com/shopspring/decimal"
)

// totalTolerance absorbs client-side float rounding
var totalTolerance = decimal.RequireFromString("0.01")

// priceLine is one order line with the records its price depends on
type priceLine struct {
	menuItem models.MenuItem
	addons   []models.Addon
	quantity int
}

// unitPrice is the menu price plus every attached add-on
func (l priceLine) unitPrice() decimal.Decimal {
	p := l.menuItem.Price
	for _, a := range l.addons {
		p = p.Add(a.Price)
	}
	return p
}

func subtotalOf(lines []priceLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.unitPrice().Mul(decimal.NewFromInt(int64(l.quantity))))
	}
	return sum
}

// expectedTotal applies the caller's discount and fees to the subtotal.
// Delivery charge and discount are always zero in this flow.
func expectedTotal(subtotal, discount, platformFee, paymentFee decimal.Decimal) decimal.Decimal {
	return subtotal.Sub(discount).Add(platformFee).Add(paymentFee)
}

func totalsMatch(expected, supplied decimal.Decimal) bool {
	return expected.Sub(supplied).Abs().LessThanOrEqual(totalTolerance)
}

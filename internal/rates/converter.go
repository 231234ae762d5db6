package rates

import (
	"context"
	"fmt"
)

// Conversion is the oracle's answer for a single amount. Amount is the
// converted value in minor units of the target currency; Fee is already
// deducted from it.
type Conversion struct {
	Amount int64
	Rate   float64
	Fee    int64
}

// Converter is the currency conversion oracle consumed by the payout
// coordinator. The coordinator treats the result as an opaque credited
// amount; rate sourcing is not modeled here.
type Converter interface {
	Convert(ctx context.Context, amount int64, from, to string) (Conversion, error)
}

// StaticConverter returns identity conversions with no fee. It stands in for
// a real rate provider in development and tests.
type StaticConverter struct{}

// Convert echoes the amount at rate 1.0 for any currency pair.
func (StaticConverter) Convert(_ context.Context, amount int64, from, to string) (Conversion, error) {
	if amount <= 0 {
		return Conversion{}, fmt.Errorf("amount must be positive")
	}
	return Conversion{Amount: amount, Rate: 1.0, Fee: 0}, nil
}

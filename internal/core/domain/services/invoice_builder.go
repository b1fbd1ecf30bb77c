package services

import (
	"fmt"
	"strings"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/pricing"
)

const brokerFeeItemName = "Broker Fee"

// InvoiceBuilder produces the invoice items of a newly priced order.
type InvoiceBuilder struct{}

func NewInvoiceBuilder() InvoiceBuilder {
	return InvoiceBuilder{}
}

// Build returns, in order: the vehicle line "<NAME> (<VIN>)", the broker fee,
// every additional fee with a non-zero price and, when a route is given,
// "Transportation (<route>)" and "Ocean Shipping (<route>)".
func (InvoiceBuilder) Build(vehicle order.Vehicle, breakdown pricing.Breakdown, route *Route) ([]*order.InvoiceItem, error) {
	type line struct {
		name   string
		amount int64
	}

	lines := []line{
		{name: fmt.Sprintf("%s (%s)", strings.ToUpper(vehicle.Name), vehicle.VIN), amount: vehicle.Value},
		{name: brokerFeeItemName, amount: breakdown.BrokerFee},
	}
	for _, fee := range breakdown.AdditionalFees {
		if fee.Price != 0 {
			lines = append(lines, line{name: fee.Name, amount: fee.Price})
		}
	}
	if route != nil {
		lines = append(lines,
			line{name: fmt.Sprintf("Transportation (%s)", route.Name), amount: route.Transportation},
			line{name: fmt.Sprintf("Ocean Shipping (%s)", route.Name), amount: route.OceanShipping},
		)
	}

	items := make([]*order.InvoiceItem, 0, len(lines))
	for _, l := range lines {
		item, err := order.NewInvoiceItem(l.name, l.amount, false)
		if err != nil {
			return nil, fmt.Errorf("invoice item %q: %w", l.name, err)
		}
		items = append(items, item)
	}
	return items, nil
}

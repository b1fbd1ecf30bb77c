// Package pricing holds the calculator's view of an order: the price
// breakdown and the reference data (locations, terminals, destinations)
// it was computed from.
package pricing

// PricedName is a named price entry of the breakdown (a fee, a route leg).
type PricedName struct {
	Name  string
	Price int64
}

// Breakdown is the default fee breakdown returned by the calculator.
// Transportation and OceanShipping list the per-route prices; a route is
// identified by its name across both lists.
type Breakdown struct {
	BrokerFee      int64
	AdditionalFees []PricedName
	Transportation []PricedName
	OceanShipping  []PricedName
}

type Terminal struct {
	ID   int64
	Name string
}

type Destination struct {
	ID   int64
	Name string
}

type Location struct {
	ID         int64
	Name       string
	City       string
	State      string
	PostalCode string
}

type FeeType struct {
	ID   int64
	Name string
}

// DetailedData is the reference data the calculator resolved for a request.
type DetailedData struct {
	LocationID   int64
	FeeTypeID    int64
	FeeType      string
	Location     Location
	Terminals    []Terminal
	Destinations []Destination
}

// TerminalByID returns the terminal with the given id.
func (d DetailedData) TerminalByID(id int64) (Terminal, bool) {
	for _, t := range d.Terminals {
		if t.ID == id {
			return t, true
		}
	}
	return Terminal{}, false
}

// TerminalByName returns the first terminal with the given name.
func (d DetailedData) TerminalByName(name string) (Terminal, bool) {
	for _, t := range d.Terminals {
		if t.Name == name {
			return t, true
		}
	}
	return Terminal{}, false
}

// DestinationByID returns the available destination with the given id.
func (d DetailedData) DestinationByID(id int64) (Destination, bool) {
	for _, dst := range d.Destinations {
		if dst.ID == id {
			return dst, true
		}
	}
	return Destination{}, false
}

// Quote is a calculator response. Either part may be missing.
type Quote struct {
	Detailed  *DetailedData
	Breakdown *Breakdown
}

// Package economy defines the tradable goods and the counterparty contract
// shared by the market and every agent that trades against it.
package economy

import "fmt"

// Good identifies one of the three tradable commodities.
type Good uint8

const (
	GoodWheat Good = iota
	GoodBread
	GoodSeeds

	GoodCount
)

// Name returns a human-readable good name.
func (g Good) Name() string {
	switch g {
	case GoodWheat:
		return "wheat"
	case GoodBread:
		return "bread"
	case GoodSeeds:
		return "seeds"
	default:
		return "unknown"
	}
}

// ParseGood resolves a good name to its identifier.
func ParseGood(name string) (Good, error) {
	switch name {
	case "wheat":
		return GoodWheat, nil
	case "bread":
		return GoodBread, nil
	case "seeds":
		return GoodSeeds, nil
	default:
		return 0, fmt.Errorf("unknown good %q", name)
	}
}

// Goods lists every tradable good in stable order.
func Goods() []Good {
	return []Good{GoodWheat, GoodBread, GoodSeeds}
}

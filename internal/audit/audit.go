// Package audit is the belt-and-suspenders external invariant check. The
// market's job is to never produce an illegal state; the auditor verifies it
// from the outside and lets the caller decide to halt. It is not part of the
// market's own error handling.
package audit

import (
	"errors"
	"fmt"
	"math"

	"github.com/okellen/breadbasket/internal/market"
)

// Check verifies the market invariants on a snapshot: non-negative finite
// money, inventory within [0, capacity], and prices within [floor, ceiling].
// Returns all violations joined, or nil.
func Check(snap market.Snapshot) error {
	var errs []error

	if math.IsNaN(snap.Money) || math.IsInf(snap.Money, 0) {
		errs = append(errs, fmt.Errorf("money is not finite: %v", snap.Money))
	} else if snap.Money < 0 {
		errs = append(errs, fmt.Errorf("money is negative: %v", snap.Money))
	}

	for _, gs := range snap.Goods {
		if gs.Inventory < 0 {
			errs = append(errs, fmt.Errorf("%s inventory negative: %d", gs.Good, gs.Inventory))
		}
		if gs.Inventory > gs.Capacity {
			errs = append(errs, fmt.Errorf("%s inventory %d exceeds capacity %d", gs.Good, gs.Inventory, gs.Capacity))
		}
		if math.IsNaN(gs.Price) {
			errs = append(errs, fmt.Errorf("%s price is NaN", gs.Good))
			continue
		}
		if gs.Price < gs.Floor || gs.Price > gs.Ceiling {
			errs = append(errs, fmt.Errorf("%s price %.4f outside [%.4f, %.4f]", gs.Good, gs.Price, gs.Floor, gs.Ceiling))
		}
	}

	return errors.Join(errs...)
}

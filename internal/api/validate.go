package api

import (
	"fmt"
	"math"
)

// ValidateContribution checks a contribution amount against the backend's
// bounds before dispatch: the amount must be positive, must not exceed the
// remaining balance, and must be at least a third of the price. When the
// remaining balance is already below that minimum, only the exact remaining
// balance closes the gap. The backend remains authoritative;
// a passing amount can still be rejected by a concurrent contribution.
func ValidateContribution(gift Gift, amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("enter an amount greater than zero")
	}

	remaining := gift.Remaining()
	if amount > remaining {
		return fmt.Errorf("at most %s left to collect", formatAmount(remaining))
	}

	minimum := math.Ceil(gift.Price / 3)
	if remaining < minimum {
		if amount != remaining {
			return fmt.Errorf("only %s left, contribute exactly that amount", formatAmount(remaining))
		}
		return nil
	}
	if amount < minimum {
		return fmt.Errorf("minimum contribution is %s (a third of the price)", formatAmount(minimum))
	}
	return nil
}

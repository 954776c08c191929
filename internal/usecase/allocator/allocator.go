package allocator

import (
	"github.com/shopspring/decimal"
	"github.com/simaogato/seflow-backend/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Rebalance applies a single-field edit to an allocation
// Returns a new allocation; current is never modified.
// Logic:
//  1. Clamp rawValue to [0,100] and set it on the changed field
//  2. If the total is <= 100, return as-is (under-allocation is a valid state)
//  3. Otherwise reduce the two other fields proportionally to their share of
//     the excess, each share rounded half-up
//  4. Correct the rounding residual on the larger of the two other fields
//     (ties go to the first field in savings, deFi, spending order)
//  5. If the other fields cannot absorb the excess, shrink the changed field
//
// Safety: no field ever leaves [0,100], and the total is exactly 100 whenever
// the edit overflowed and the other fields were not all zero.
func Rebalance(current domain.Allocation, changed domain.Field, rawValue int) domain.Allocation {
	// Work on a sanitized copy so a bypassed (out of range) state is corrected too
	next := domain.Allocation{
		Savings:  domain.ClampPercent(current.Savings),
		DeFi:     domain.ClampPercent(current.DeFi),
		Spending: domain.ClampPercent(current.Spending),
	}

	value := domain.ClampPercent(rawValue)
	next = next.With(changed, value)

	total := next.Total()
	if total <= domain.MaxPercent {
		return next
	}

	excess := total - domain.MaxPercent
	others := otherFields(changed)
	otherTotal := next.Get(others[0]) + next.Get(others[1])

	if otherTotal > 0 {
		// Step 3: proportional-to-share reduction
		for _, f := range others {
			share := next.Get(f)
			reduction := roundHalfUp(share*excess, otherTotal)
			if reduction > share {
				reduction = share
			}
			next = next.With(f, share-reduction)
		}

		// Step 4: residual from rounding, positive = still over, negative = over-reduced
		residual := next.Total() - domain.MaxPercent
		if residual != 0 {
			target := largerField(next, others)
			adjusted := domain.ClampPercent(next.Get(target) - residual)
			next = next.With(target, adjusted)
		}
	}

	// Step 5: the other fields had nothing left to give back
	if overflow := next.Total() - domain.MaxPercent; overflow > 0 {
		next = next.With(changed, domain.ClampPercent(next.Get(changed)-overflow))
	}

	return next
}

// MonetaryAmount returns total * percentage / 100 rounded half-up to 2 decimal places
func MonetaryAmount(total decimal.Decimal, percentage int) decimal.Decimal {
	return share(total, percentage).Round(2)
}

// SplitAmounts calculates the unrounded amount of each bucket
// Division by 100 is exact, so the three amounts add up to total exactly.
func SplitAmounts(total decimal.Decimal, allocation domain.Allocation) domain.SplitAmounts {
	return domain.SplitAmounts{
		Savings:  share(total, allocation.Savings),
		DeFi:     share(total, allocation.DeFi),
		Spending: share(total, allocation.Spending),
	}
}

func share(total decimal.Decimal, percentage int) decimal.Decimal {
	return total.Mul(decimal.NewFromInt(int64(percentage))).Div(hundred)
}

// otherFields returns the two fields other than changed, in fixed order
func otherFields(changed domain.Field) [2]domain.Field {
	var others [2]domain.Field
	i := 0
	for _, f := range domain.Fields {
		if f == changed || i == len(others) {
			continue
		}
		others[i] = f
		i++
	}
	return others
}

// largerField returns whichever of fields holds the larger value, first on ties
func largerField(a domain.Allocation, fields [2]domain.Field) domain.Field {
	if a.Get(fields[1]) > a.Get(fields[0]) {
		return fields[1]
	}
	return fields[0]
}

// roundHalfUp returns num/den rounded half-up for non-negative num and positive den
func roundHalfUp(num, den int) int {
	return (2*num + den) / (2 * den)
}

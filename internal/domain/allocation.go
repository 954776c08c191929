package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Field names one of the three allocation buckets
type Field string

const (
	FieldSavings  Field = "savings"
	FieldDeFi     Field = "deFi"
	FieldSpending Field = "spending"
)

// Fields is the fixed iteration order used for every tie-break
var Fields = [3]Field{FieldSavings, FieldDeFi, FieldSpending}

const (
	MinPercent = 0
	MaxPercent = 100
)

// ParseField resolves a field name, case-insensitive.
// Accepts "lp"/"defi" for deFi, "save" for savings and "spend" for spending.
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "savings", "save":
		return FieldSavings, nil
	case "defi", "lp":
		return FieldDeFi, nil
	case "spending", "spend":
		return FieldSpending, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
	}
}

// Allocation is the savings/DeFi/spending percentage triple
// Values are whole percentages. The triple is a value type and is never
// mutated in place: every edit produces a new Allocation.
type Allocation struct {
	Savings  int `json:"savings"`
	DeFi     int `json:"deFi"`
	Spending int `json:"spending"`
}

// Get returns the percentage held by field (0 for an unknown field)
func (a Allocation) Get(f Field) int {
	switch f {
	case FieldSavings:
		return a.Savings
	case FieldDeFi:
		return a.DeFi
	case FieldSpending:
		return a.Spending
	default:
		return 0
	}
}

// With returns a copy of a with field set to v
func (a Allocation) With(f Field, v int) Allocation {
	switch f {
	case FieldSavings:
		a.Savings = v
	case FieldDeFi:
		a.DeFi = v
	case FieldSpending:
		a.Spending = v
	}
	return a
}

// Total returns the sum of the three percentages
func (a Allocation) Total() int {
	return a.Savings + a.DeFi + a.Spending
}

// Remaining returns how many percent are left to allocate.
// Negative when the allocation is over budget.
func (a Allocation) Remaining() int {
	return MaxPercent - a.Total()
}

// IsComplete reports whether the allocation sums to exactly 100
func (a Allocation) IsComplete() bool {
	return a.Total() == MaxPercent
}

// Validate ensures every field is within bounds and the triple sums to 100
// Returns an error wrapping ErrPercentOutOfRange, ErrIncompleteAllocation or
// ErrOverAllocation.
func (a Allocation) Validate() error {
	for _, f := range Fields {
		v := a.Get(f)
		if v < MinPercent || v > MaxPercent {
			return fmt.Errorf("%w: %s is %d", ErrPercentOutOfRange, f, v)
		}
	}

	remaining := a.Remaining()
	switch {
	case remaining > 0:
		return fmt.Errorf("%w: allocate %d%% more to reach 100%%", ErrIncompleteAllocation, remaining)
	case remaining < 0:
		return fmt.Errorf("%w: over by %d%%", ErrOverAllocation, -remaining)
	}

	return nil
}

// ClampPercent bounds v to [0,100]
func ClampPercent(v int) int {
	if v < MinPercent {
		return MinPercent
	}
	if v > MaxPercent {
		return MaxPercent
	}
	return v
}

// ParsePercent reads a percentage typed into a text field.
// The leading integer prefix is used ("42%" -> 42), anything unparsable is 0,
// and the result is clamped to [0,100].
func ParsePercent(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) {
		c := s[end]
		if (c == '-' || c == '+') && end == 0 {
			end++
			continue
		}
		if c < '0' || c > '9' {
			break
		}
		end++
	}

	v, err := strconv.Atoi(s[:end])
	if err != nil {
		// Overflowing inputs are still "very large" or "very small"
		if errors.Is(err, strconv.ErrRange) {
			if strings.HasPrefix(s, "-") {
				return MinPercent
			}
			return MaxPercent
		}
		return MinPercent
	}
	return ClampPercent(v)
}

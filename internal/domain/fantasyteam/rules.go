package fantasyteam

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gridfan/f1-fantasy/internal/domain/driver"
)

var (
	ErrInvalidRosterSize = errors.New("invalid roster size")
	ErrDuplicateDriver   = errors.New("duplicate driver in roster")
	ErrUnknownDriver     = errors.New("unknown driver in roster")
	ErrInvalidCaptain    = errors.New("captain is not part of the roster")
	ErrBudgetExceeded    = errors.New("budget cap exceeded")
)

// ValidateRoster checks a candidate selection against the composition rules.
// Checks run in a fixed order and the first violation is reported: size,
// duplicates, unknown ids, captain membership, budget. Pure over its inputs;
// drivers is the resolved reference data for the requested ids.
func ValidateRoster(driverIDs []string, captainID *string, drivers []driver.Driver) error {
	if len(driverIDs) != RosterSize {
		return fmt.Errorf("%w: expected %d, got %d", ErrInvalidRosterSize, RosterSize, len(driverIDs))
	}

	seen := make(map[string]struct{}, RosterSize)
	for _, id := range driverIDs {
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateDriver, id)
		}
		seen[id] = struct{}{}
	}

	byID := make(map[string]driver.Driver, len(drivers))
	for _, d := range drivers {
		byID[d.ID] = d
	}

	missing := make([]string, 0, RosterSize)
	for _, id := range driverIDs {
		if _, ok := byID[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%w: %s", ErrUnknownDriver, strings.Join(missing, ", "))
	}

	if captainID != nil {
		if _, ok := seen[*captainID]; !ok {
			return fmt.Errorf("%w: %s", ErrInvalidCaptain, *captainID)
		}
	}

	var totalCost int64
	for _, id := range driverIDs {
		totalCost += byID[id].Cost
	}
	if totalCost > BudgetCap {
		return fmt.Errorf("%w: total=%d cap=%d", ErrBudgetExceeded, totalCost, BudgetCap)
	}

	return nil
}

// TotalCost sums the resolved costs of a roster. Used for response payloads;
// cost is computed from current driver data, never stored on the team.
func TotalCost(driverIDs []string, drivers []driver.Driver) int64 {
	byID := make(map[string]int64, len(drivers))
	for _, d := range drivers {
		byID[d.ID] = d.Cost
	}

	var total int64
	for _, id := range driverIDs {
		total += byID[id]
	}
	return total
}

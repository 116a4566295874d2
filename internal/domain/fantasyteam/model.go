package fantasyteam

import (
	"fmt"
	"time"
)

// RosterSize is fixed: every fantasy team fields exactly five drivers.
const RosterSize = 5

// BudgetCap is the total cost ceiling for one roster, in budget units.
const BudgetCap int64 = 100

// Team is a user's driver selection for one race. Points is written only by
// the reconciliation run after results publish; it can go negative.
type Team struct {
	ID        string
	UserID    string
	RaceID    string
	DriverIDs []string
	CaptainID *string
	Points    int
	Locked    bool
	CreatedAt time.Time
}

func (t Team) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("team id is required")
	}
	if t.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	if t.RaceID == "" {
		return fmt.Errorf("race id is required")
	}
	if len(t.DriverIDs) != RosterSize {
		return fmt.Errorf("team must reference exactly %d drivers, got %d", RosterSize, len(t.DriverIDs))
	}

	seen := make(map[string]struct{}, RosterSize)
	for _, id := range t.DriverIDs {
		if id == "" {
			return fmt.Errorf("driver id cannot be empty")
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("duplicate driver id %s", id)
		}
		seen[id] = struct{}{}
	}

	if t.CaptainID != nil {
		if _, ok := seen[*t.CaptainID]; !ok {
			return fmt.Errorf("captain %s is not part of the roster", *t.CaptainID)
		}
	}

	return nil
}

// IsCaptain reports whether driverID carries the doubling multiplier.
func (t Team) IsCaptain(driverID string) bool {
	return t.CaptainID != nil && *t.CaptainID == driverID
}

package fantasyteam

import (
	"errors"
	"testing"

	"github.com/gridfan/f1-fantasy/internal/domain/driver"
)

func testGrid() []driver.Driver {
	return []driver.Driver{
		{ID: "ver", Name: "Ver", Number: 1, ConstructorID: "red_bull", Cost: 30},
		{ID: "nor", Name: "Nor", Number: 4, ConstructorID: "mclaren", Cost: 28},
		{ID: "pia", Name: "Pia", Number: 81, ConstructorID: "mclaren", Cost: 27},
		{ID: "lec", Name: "Lec", Number: 16, ConstructorID: "ferrari", Cost: 24},
		{ID: "str", Name: "Str", Number: 18, ConstructorID: "aston_martin", Cost: 9},
		{ID: "bea", Name: "Bea", Number: 87, ConstructorID: "haas", Cost: 7},
		{ID: "bor", Name: "Bor", Number: 5, ConstructorID: "sauber", Cost: 6},
	}
}

func captain(id string) *string { return &id }

func TestValidateRoster(t *testing.T) {
	grid := testGrid()

	tests := []struct {
		name      string
		driverIDs []string
		captainID *string
		wantErr   error
	}{
		{
			name:      "valid roster under the cap",
			driverIDs: []string{"ver", "lec", "str", "bea", "bor"},
			captainID: captain("ver"),
		},
		{
			name:      "valid roster without captain",
			driverIDs: []string{"nor", "lec", "str", "bea", "bor"},
		},
		{
			name:      "too few drivers",
			driverIDs: []string{"ver", "lec", "str"},
			wantErr:   ErrInvalidRosterSize,
		},
		{
			name:      "too many drivers",
			driverIDs: []string{"ver", "nor", "lec", "str", "bea", "bor"},
			wantErr:   ErrInvalidRosterSize,
		},
		{
			name:      "duplicate entry",
			driverIDs: []string{"ver", "ver", "str", "bea", "bor"},
			wantErr:   ErrDuplicateDriver,
		},
		{
			name:      "unknown driver id",
			driverIDs: []string{"ver", "lec", "str", "bea", "ghost"},
			wantErr:   ErrUnknownDriver,
		},
		{
			name:      "captain outside the roster",
			driverIDs: []string{"ver", "lec", "str", "bea", "bor"},
			captainID: captain("nor"),
			wantErr:   ErrInvalidCaptain,
		},
		{
			name:      "budget cap exceeded",
			driverIDs: []string{"ver", "nor", "pia", "lec", "str"}, // 118 over a 100 cap
			wantErr:   ErrBudgetExceeded,
		},
		{
			// Size is checked before duplicates, duplicates before unknown
			// ids. A short roster with a duplicate reports the size error.
			name:      "size violation wins over duplicate",
			driverIDs: []string{"ver", "ver"},
			wantErr:   ErrInvalidRosterSize,
		},
		{
			name:      "duplicate wins over unknown id",
			driverIDs: []string{"ghost", "ghost", "str", "bea", "bor"},
			wantErr:   ErrDuplicateDriver,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRoster(tt.driverIDs, tt.captainID, grid)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("ValidateRoster() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ValidateRoster() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTotalCost(t *testing.T) {
	grid := testGrid()

	got := TotalCost([]string{"ver", "lec", "str", "bea", "bor"}, grid)
	if got != 76 {
		t.Fatalf("TotalCost() = %d, want 76", got)
	}
}

package memory

import "github.com/gridfan/f1-fantasy/internal/infrastructure/repository/seed"

// SeedDrivers loads the driver grid so the service is usable without a
// database.
func SeedDrivers(repo *DriverRepository) {
	repo.Put(seed.Grid()...)
}

// Package seed holds the driver grid loaded into fresh stores.
package seed

import "github.com/gridfan/f1-fantasy/internal/domain/driver"

// Grid returns the 2025 driver market. Costs are hand-tuned so a full
// top-tier roster busts the cap.
func Grid() []driver.Driver {
	return []driver.Driver{
		{ID: "max_verstappen", Name: "Max Verstappen", Number: 1, ConstructorID: "red_bull", Cost: 30},
		{ID: "norris", Name: "Lando Norris", Number: 4, ConstructorID: "mclaren", Cost: 28},
		{ID: "piastri", Name: "Oscar Piastri", Number: 81, ConstructorID: "mclaren", Cost: 27},
		{ID: "leclerc", Name: "Charles Leclerc", Number: 16, ConstructorID: "ferrari", Cost: 24},
		{ID: "hamilton", Name: "Lewis Hamilton", Number: 44, ConstructorID: "ferrari", Cost: 23},
		{ID: "russell", Name: "George Russell", Number: 63, ConstructorID: "mercedes", Cost: 21},
		{ID: "antonelli", Name: "Andrea Kimi Antonelli", Number: 12, ConstructorID: "mercedes", Cost: 15},
		{ID: "alonso", Name: "Fernando Alonso", Number: 14, ConstructorID: "aston_martin", Cost: 13},
		{ID: "stroll", Name: "Lance Stroll", Number: 18, ConstructorID: "aston_martin", Cost: 9},
		{ID: "gasly", Name: "Pierre Gasly", Number: 10, ConstructorID: "alpine", Cost: 10},
		{ID: "colapinto", Name: "Franco Colapinto", Number: 43, ConstructorID: "alpine", Cost: 7},
		{ID: "albon", Name: "Alexander Albon", Number: 23, ConstructorID: "williams", Cost: 12},
		{ID: "sainz", Name: "Carlos Sainz", Number: 55, ConstructorID: "williams", Cost: 14},
		{ID: "tsunoda", Name: "Yuki Tsunoda", Number: 22, ConstructorID: "red_bull", Cost: 11},
		{ID: "lawson", Name: "Liam Lawson", Number: 30, ConstructorID: "rb", Cost: 8},
		{ID: "hadjar", Name: "Isack Hadjar", Number: 6, ConstructorID: "rb", Cost: 7},
		{ID: "hulkenberg", Name: "Nico Hulkenberg", Number: 27, ConstructorID: "sauber", Cost: 8},
		{ID: "bortoleto", Name: "Gabriel Bortoleto", Number: 5, ConstructorID: "sauber", Cost: 6},
		{ID: "ocon", Name: "Esteban Ocon", Number: 31, ConstructorID: "haas", Cost: 9},
		{ID: "bearman", Name: "Oliver Bearman", Number: 87, ConstructorID: "haas", Cost: 7},
	}
}

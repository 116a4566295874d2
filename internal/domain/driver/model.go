package driver

import "fmt"

// Driver is read-mostly reference data synced from the race data provider.
type Driver struct {
	ID            string
	Name          string
	Number        int
	ConstructorID string
	Cost          int64
}

func (d Driver) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("driver id is required")
	}
	if d.Name == "" {
		return fmt.Errorf("driver name is required")
	}
	if d.Number <= 0 {
		return fmt.Errorf("driver number must be greater than zero")
	}
	if d.Cost <= 0 {
		return fmt.Errorf("driver cost must be greater than zero")
	}

	return nil
}

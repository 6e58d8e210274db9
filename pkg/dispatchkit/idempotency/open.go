package idempotency

import "fmt"

// Supported store drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverBolt   = "bolt"
)

// Open creates a store by driver name. The path is ignored for the memory
// driver. This is the wiring point used by configuration code.
func Open(driver, path string) (Store, error) {
	switch driver {
	case DriverMemory, "":
		return NewMemoryStore(), nil
	case DriverSQLite:
		if path == "" {
			return nil, fmt.Errorf("sqlite driver requires a path")
		}
		return NewSQLiteStore(path)
	case DriverBolt:
		if path == "" {
			return nil, fmt.Errorf("bolt driver requires a path")
		}
		return NewBoltStore(path)
	default:
		return nil, fmt.Errorf("unknown idempotency store driver %q", driver)
	}
}

package availability

import "fmt"

const (
	DefaultTotalTables     = 30
	DefaultConfirmedStatus = "confirmed"
)

// DefaultSlots are the half-hour dinner seatings from 17:00 to 21:30.
var DefaultSlots = []string{
	"17:00", "17:30", "18:00", "18:30", "19:00",
	"19:30", "20:00", "20:30", "21:00", "21:30",
}

type Config struct {
	TotalTables     int
	Slots           []string
	ConfirmedStatus string
}

func DefaultConfig() Config {
	return Config{
		TotalTables:     DefaultTotalTables,
		Slots:           append([]string(nil), DefaultSlots...),
		ConfirmedStatus: DefaultConfirmedStatus,
	}
}

func (c Config) Validate() error {
	if c.TotalTables < 1 {
		return fmt.Errorf("total tables must be >= 1 (got %d)", c.TotalTables)
	}
	if len(c.Slots) == 0 {
		return fmt.Errorf("at least one time slot required")
	}
	seen := make(map[string]struct{}, len(c.Slots))
	for _, s := range c.Slots {
		if s == "" {
			return fmt.Errorf("empty time slot")
		}
		if _, dup := seen[s]; dup {
			return fmt.Errorf("duplicate time slot %q", s)
		}
		seen[s] = struct{}{}
	}
	if c.ConfirmedStatus == "" {
		return fmt.Errorf("confirmed status required")
	}
	return nil
}

// HasSlot reports whether slot is one of the configured seatings.
func (c Config) HasSlot(slot string) bool {
	for _, s := range c.Slots {
		if s == slot {
			return true
		}
	}
	return false
}

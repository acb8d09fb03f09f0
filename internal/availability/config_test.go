package availability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	assert.NoError(t, c.Validate())
	assert.Equal(t, 30, c.TotalTables)
	assert.Equal(t, "confirmed", c.ConfirmedStatus)
	assert.Equal(t, []string{
		"17:00", "17:30", "18:00", "18:30", "19:00",
		"19:30", "20:00", "20:30", "21:00", "21:30",
	}, c.Slots)
	assert.True(t, c.HasSlot("19:00"))
	assert.False(t, c.HasSlot("22:00"))
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero tables", Config{TotalTables: 0, Slots: []string{"19:00"}, ConfirmedStatus: "confirmed"}},
		{"negative tables", Config{TotalTables: -3, Slots: []string{"19:00"}, ConfirmedStatus: "confirmed"}},
		{"no slots", Config{TotalTables: 4, ConfirmedStatus: "confirmed"}},
		{"empty slot", Config{TotalTables: 4, Slots: []string{"19:00", ""}, ConfirmedStatus: "confirmed"}},
		{"duplicate slot", Config{TotalTables: 4, Slots: []string{"19:00", "19:00"}, ConfirmedStatus: "confirmed"}},
		{"no status", Config{TotalTables: 4, Slots: []string{"19:00"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.cfg.Validate())
		})
	}
}

package availability

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
)

// TableID identifies a physical table, numbered 1..TotalTables.
type TableID int

// BookingKey is the (date, slot) pair at which table occupancy is tracked.
// Both fields are opaque to the engine and forwarded to the lookup as-is.
type BookingKey struct {
	Date string
	Slot string
}

func (k BookingKey) String() string { return k.Date + " " + k.Slot }

// ErrTableTaken is returned by a commit step when the persistence layer
// refused the table because another confirmed reservation already holds it.
var ErrTableTaken = errors.New("table already taken")

// Lookup returns the table numbers of every reservation with the given
// status at key.
type Lookup interface {
	ConfirmedTables(ctx context.Context, key BookingKey, status string) ([]TableID, error)
}

// Rand is the randomness source used for table assignment.
type Rand interface {
	IntN(n int) int
}

// CommitFunc persists a reservation holding table.
type CommitFunc func(ctx context.Context, table TableID) error

type Availability struct {
	Available      bool `json:"available"`
	AvailableCount int  `json:"availableCount"`
	TotalTables    int  `json:"totalTables"`
}

type SlotAvailability struct {
	Slot           string `json:"timeSlot"`
	Available      bool   `json:"available"`
	AvailableCount int    `json:"availableCount"`
}

type Engine struct {
	cfg    Config
	lookup Lookup
	rnd    Rand
}

type runtimeRand struct{}

func (runtimeRand) IntN(n int) int { return rand.IntN(n) }

// NewSeededRand returns a deterministic source. It is not safe for
// concurrent use.
func NewSeededRand(seed uint64) Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// New builds an engine. A nil rnd uses the runtime's shared generator.
func New(cfg Config, lookup Lookup, rnd Rand) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if lookup == nil {
		return nil, fmt.Errorf("availability: lookup is nil")
	}
	if rnd == nil {
		rnd = runtimeRand{}
	}
	cfg.Slots = append([]string(nil), cfg.Slots...)
	return &Engine{cfg: cfg, lookup: lookup, rnd: rnd}, nil
}

func (e *Engine) Config() Config {
	c := e.cfg
	c.Slots = append([]string(nil), e.cfg.Slots...)
	return c
}

func (e *Engine) TotalTables() int { return e.cfg.TotalTables }

func (e *Engine) Slots() []string { return append([]string(nil), e.cfg.Slots...) }

// AvailableTables returns the tables without a confirmed reservation at key,
// sorted ascending. Lookup failures are returned unchanged.
func (e *Engine) AvailableTables(ctx context.Context, key BookingKey) ([]TableID, error) {
	taken, err := e.lookup.ConfirmedTables(ctx, key, e.cfg.ConfirmedStatus)
	if err != nil {
		return nil, err
	}
	busy := make(map[TableID]struct{}, len(taken))
	for _, t := range taken {
		busy[t] = struct{}{}
	}
	free := make([]TableID, 0, e.cfg.TotalTables)
	for t := TableID(1); int(t) <= e.cfg.TotalTables; t++ {
		if _, ok := busy[t]; !ok {
			free = append(free, t)
		}
	}
	return free, nil
}

func (e *Engine) Check(ctx context.Context, key BookingKey) (Availability, error) {
	free, err := e.AvailableTables(ctx, key)
	if err != nil {
		return Availability{}, err
	}
	return Availability{
		Available:      len(free) > 0,
		AvailableCount: len(free),
		TotalTables:    e.cfg.TotalTables,
	}, nil
}

// AvailableSlots summarizes every configured slot on date, in configuration order.
func (e *Engine) AvailableSlots(ctx context.Context, date string) ([]SlotAvailability, error) {
	out := make([]SlotAvailability, 0, len(e.cfg.Slots))
	for _, slot := range e.cfg.Slots {
		free, err := e.AvailableTables(ctx, BookingKey{Date: date, Slot: slot})
		if err != nil {
			return nil, err
		}
		out = append(out, SlotAvailability{
			Slot:           slot,
			Available:      len(free) > 0,
			AvailableCount: len(free),
		})
	}
	return out, nil
}

// AssignTable picks one free table uniformly at random. ok is false when
// the slot is fully booked.
func (e *Engine) AssignTable(ctx context.Context, key BookingKey) (TableID, bool, error) {
	free, err := e.AvailableTables(ctx, key)
	if err != nil {
		return 0, false, err
	}
	if len(free) == 0 {
		return 0, false, nil
	}
	return free[e.rnd.IntN(len(free))], true, nil
}

// Reserve assigns a table and hands it to commit. Nothing is held between
// the availability read and the commit, so concurrent callers for the same
// key may both commit the same table unless the store rejects the second
// insert with ErrTableTaken, which is reported as a fully booked slot.
func (e *Engine) Reserve(ctx context.Context, key BookingKey, commit CommitFunc) (TableID, bool, error) {
	table, ok, err := e.AssignTable(ctx, key)
	if err != nil || !ok {
		return 0, ok, err
	}
	if err := commit(ctx, table); err != nil {
		if errors.Is(err, ErrTableTaken) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return table, true, nil
}

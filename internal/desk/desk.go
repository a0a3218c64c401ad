package desk

import (
	"time"

	"github.com/example/gamezone/internal/ledger"
	"github.com/example/gamezone/internal/models"
)

// Status is the derived state of one desk. Desks are not stored
// anywhere; a desk is occupied exactly while the ledger holds an active
// order referencing it, so there is no second source of truth to drift.
type Status struct {
	DeskNumber     int        `json:"desk_number"`
	Occupied       bool       `json:"occupied"`
	CustomerName   string     `json:"customer_name,omitempty"`
	CustomerMobile string     `json:"customer_mobile,omitempty"`
	OccupiedSince  *time.Time `json:"occupied_since,omitempty"`
}

// Machine derives desk occupancy from the ledger for a fixed floor of
// numbered desks (1..Count).
type Machine struct {
	ledger *ledger.Ledger
	count  int
}

// NewMachine constructs a Machine over count desks.
func NewMachine(l *ledger.Ledger, count int) *Machine {
	return &Machine{ledger: l, count: count}
}

// Count returns the number of desks on the floor.
func (m *Machine) Count() int {
	return m.count
}

// Valid reports whether deskNumber exists on the floor.
func (m *Machine) Valid(deskNumber int) bool {
	return deskNumber >= 1 && deskNumber <= m.count
}

// IsFree reports whether no active order references the desk.
func (m *Machine) IsFree(deskNumber int) (bool, error) {
	order, err := m.ledger.FindActiveByDesk(deskNumber)
	if err != nil {
		return false, err
	}
	return order == nil, nil
}

// Statuses returns the derived state of every desk on the floor, in desk
// order. The snapshot may be stale relative to concurrent writers.
func (m *Machine) Statuses() ([]Status, error) {
	orders, err := m.ledger.ListAll()
	if err != nil {
		return nil, err
	}

	byDesk := make(map[int]*models.Order, m.count)
	for i := range orders {
		if orders[i].Status == models.StatusActive {
			byDesk[orders[i].DeskNumber] = &orders[i]
		}
	}

	statuses := make([]Status, 0, m.count)
	for n := 1; n <= m.count; n++ {
		st := Status{DeskNumber: n}
		if order, ok := byDesk[n]; ok {
			since := order.OrderTime
			st.Occupied = true
			st.CustomerName = order.CustomerName
			st.CustomerMobile = order.CustomerMobile
			st.OccupiedSince = &since
		}
		statuses = append(statuses, st)
	}
	return statuses, nil
}

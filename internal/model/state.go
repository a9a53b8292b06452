package model

// State is the full in-memory reservation store: everything the engine needs
// for one reconcile pass. It is loaded as a whole, mutated in place, and saved
// as a whole; the store layer serializes concurrent access.
type State struct {
	Consoles           []Console     `json:"consoles"`
	Reservations       []Reservation `json:"reservations"`
	Operations         []Operation   `json:"operations"`
	AllowedScanNumbers []string      `json:"allowedScanNumbers"`
}

// ConsoleByID returns a pointer into the Consoles slice, or nil.
func (s *State) ConsoleByID(id string) *Console {
	for i := range s.Consoles {
		if s.Consoles[i].ID == id {
			return &s.Consoles[i]
		}
	}
	return nil
}

// ReservationByID returns a pointer into the Reservations slice, or nil.
func (s *State) ReservationByID(id string) *Reservation {
	for i := range s.Reservations {
		if s.Reservations[i].ID == id {
			return &s.Reservations[i]
		}
	}
	return nil
}

// ManualDisables builds the per-console override map the engine consumes from
// the explicit ManuallyDisabled flags.
func (s *State) ManualDisables() map[string]bool {
	m := make(map[string]bool, len(s.Consoles))
	for _, c := range s.Consoles {
		if c.ManuallyDisabled {
			m[c.ID] = true
		}
	}
	return m
}

// IsScanNumberAllowed reports whether a scanned identifier is whitelisted.
func (s *State) IsScanNumberAllowed(number string) bool {
	for _, n := range s.AllowedScanNumbers {
		if n == number {
			return true
		}
	}
	return false
}

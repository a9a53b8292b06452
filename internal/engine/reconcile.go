package engine

import (
	"time"

	"gameconsole-backend/internal/model"
)

// GracePeriod is the window after a reservation's start during which it may
// remain unvalidated before being auto-cancelled.
const GracePeriod = 5 * time.Minute

const autoCancelReason = "Non validée après la période de grâce de 5 minutes"

// Reconcile brings the store back to a consistent shape: it first drops every
// unvalidated reservation past its grace period (logging each expiry), then
// recomputes each console's availability and cached reservation from the
// surviving set. A console with no active reservation becomes available again
// unless manualDisable marks it as administratively disabled.
//
// The pass is pure over the in-memory state; it performs no I/O. It returns
// the IDs of consoles that flipped from unavailable to available, so the
// caller can dispatch notifications.
func Reconcile(state *model.State, manualDisable map[string]bool, now time.Time, diag Diagnostics) []string {
	if diag == nil {
		diag = LogDiagnostics{}
	}

	sweepExpired(state, now, diag)

	var freed []string
	for i := range state.Consoles {
		c := &state.Consoles[i]
		active := findActiveReservation(state, c.ID, now, diag)

		if active != nil {
			c.IsAvailable = false
			res := *active
			c.CurrentReservation = &res
			continue
		}

		c.CurrentReservation = nil
		if manualDisable[c.ID] {
			c.IsAvailable = false
			continue
		}
		if !c.IsAvailable {
			freed = append(freed, c.ID)
		}
		c.IsAvailable = true
	}
	return freed
}

// sweepExpired removes unvalidated reservations whose grace period has
// elapsed, appending a reservation_auto_cancelled entry for each. Order of
// the survivors is preserved.
func sweepExpired(state *model.State, now time.Time, diag Diagnostics) {
	survivors := state.Reservations[:0]
	for _, r := range state.Reservations {
		if !graceExpired(r, now, diag) {
			survivors = append(survivors, r)
			continue
		}

		consoleName := r.ConsoleID
		if c := state.ConsoleByID(r.ConsoleID); c != nil {
			consoleName = c.Name
		}
		LogOperationAt(state, model.OpReservationAutoCancelled, map[string]any{
			"reservationId": r.ID,
			"consoleId":     r.ConsoleID,
			"consoleName":   consoleName,
			"userName":      r.UserName,
			"startDate":     r.StartDate,
			"endDate":       r.EndDate,
			"reason":        autoCancelReason,
		}, now)
	}
	state.Reservations = survivors
}

// graceExpired reports whether the reservation must be auto-cancelled.
// Validated reservations never expire here, and an unparsable start date is
// treated as not yet expired.
func graceExpired(r model.Reservation, now time.Time, diag Diagnostics) bool {
	if r.IsValidated {
		return false
	}
	start, err := time.Parse(time.RFC3339, r.StartDate)
	if err != nil {
		diag.MalformedTimestamp(r.ID, "startDate", r.StartDate)
		return false
	}
	return now.After(start.Add(GracePeriod))
}

// findActiveReservation returns the reservation currently occupying the
// console, or nil. An unparsable end date counts as not active. If several
// active reservations exist for one console the first in store order wins and
// the violation is reported.
func findActiveReservation(state *model.State, consoleID string, now time.Time, diag Diagnostics) *model.Reservation {
	var found *model.Reservation
	var activeIDs []string
	for i := range state.Reservations {
		r := &state.Reservations[i]
		if r.ConsoleID != consoleID {
			continue
		}
		end, err := time.Parse(time.RFC3339, r.EndDate)
		if err != nil {
			diag.MalformedTimestamp(r.ID, "endDate", r.EndDate)
			continue
		}
		if !end.After(now) {
			continue
		}
		activeIDs = append(activeIDs, r.ID)
		if found == nil {
			found = r
		}
	}
	if len(activeIDs) > 1 {
		diag.DuplicateActiveReservations(consoleID, activeIDs)
	}
	return found
}

package engine

import "log"

// Diagnostics receives non-fatal consistency findings surfaced during a
// reconcile pass. Findings never abort the pass; they exist so malformed data
// is distinguishable from normal operation.
type Diagnostics interface {
	// MalformedTimestamp is called when a reservation date fails to parse.
	// The reservation is treated as not expired / not active, whichever is
	// the safe direction for the step that hit it.
	MalformedTimestamp(reservationID, field, value string)

	// DuplicateActiveReservations is called when more than one active
	// reservation exists for the same console. The first one in store order
	// wins; the violation is reported here.
	DuplicateActiveReservations(consoleID string, reservationIDs []string)
}

// LogDiagnostics reports findings through the standard logger.
type LogDiagnostics struct{}

func (LogDiagnostics) MalformedTimestamp(reservationID, field, value string) {
	log.Printf("warning: reservation %s has unparsable %s %q, failing safe", reservationID, field, value)
}

func (LogDiagnostics) DuplicateActiveReservations(consoleID string, reservationIDs []string) {
	log.Printf("warning: console %s has %d active reservations %v, keeping the first", consoleID, len(reservationIDs), reservationIDs)
}

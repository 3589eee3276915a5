package services

import "membershipevents/internal/domain"

// DecideStatus decides whether a new inscription takes a seat or joins the waitlist.
// The ledger must have been read under the event's exclusive lock, and the caller
// must record the confirmed seat in the same unit of work.
func DecideStatus(l domain.Ledger) domain.InscriptionStatus {
	if !l.Capacity.Bounded() {
		return domain.StatusConfirmed
	}
	if l.Confirmed < l.Capacity.Limit() {
		return domain.StatusConfirmed
	}
	return domain.StatusWaitlist
}

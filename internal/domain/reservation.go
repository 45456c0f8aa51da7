package domain

import "time"

type ReservationStatus string

const (
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationPending   ReservationStatus = "pending"
	ReservationCancelled ReservationStatus = "cancelled"
)

// ReservationCard is the client projection of a backend reservation.
type ReservationCard struct {
	ID          ReservationID
	Status      ReservationStatus
	VenueName   string
	MatchTitle  string
	ScheduledAt time.Time
	PartySize   int
	Reference   string
	// QRCodeDataURI is attached on demand when the ticket view is opened.
	QRCodeDataURI string
}

// Cancelable reports whether the reservation can still be cancelled by its owner.
func (r ReservationCard) Cancelable() bool {
	return r.Status == ReservationConfirmed || r.Status == ReservationPending
}

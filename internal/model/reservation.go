package model

import "time"

// ReservationStatus is the lifecycle state of a table booking.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCancelled ReservationStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationPending, ReservationConfirmed, ReservationCancelled:
		return true
	}
	return false
}

// Occasion is the optional reason for a booking.
type Occasion string

const (
	OccasionNone        Occasion = ""
	OccasionBirthday    Occasion = "birthday"
	OccasionAnniversary Occasion = "anniversary"
	OccasionDateNight   Occasion = "date_night"
	OccasionBusiness    Occasion = "business"
	OccasionCelebration Occasion = "celebration"
	OccasionOther       Occasion = "other"
)

// Valid reports whether o is a known occasion.
func (o Occasion) Valid() bool {
	switch o {
	case OccasionNone, OccasionBirthday, OccasionAnniversary, OccasionDateNight,
		OccasionBusiness, OccasionCelebration, OccasionOther:
		return true
	}
	return false
}

// Reservation is a table booking.
type Reservation struct {
	ID             int64             `json:"id" db:"id"`
	Name           string            `json:"name" db:"name"`
	Email          string            `json:"email" db:"email"`
	Phone          string            `json:"phone" db:"phone"`
	Date           time.Time         `json:"date" db:"date"`
	Time           string            `json:"time" db:"time"`
	Guests         int               `json:"guests" db:"guests"`
	Occasion       Occasion          `json:"occasion" db:"occasion"`
	SpecialRequest string            `json:"specialRequest" db:"special_request"`
	StaffNote      string            `json:"staffNote,omitempty" db:"staff_note"`
	Status         ReservationStatus `json:"status" db:"status"`
	CreatedAt      time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time         `json:"updatedAt" db:"updated_at"`
}

// ReservationRequest is the public booking form. Date is YYYY-MM-DD and Time is HH:MM.
type ReservationRequest struct {
	Name           string   `json:"name" validate:"required,max=150"`
	Email          string   `json:"email" validate:"required,email"`
	Phone          string   `json:"phone" validate:"required,max=20"`
	Date           string   `json:"date" validate:"required,datetime=2006-01-02"`
	Time           string   `json:"time" validate:"required,datetime=15:04"`
	Guests         int      `json:"guests"`
	Occasion       Occasion `json:"occasion"`
	SpecialRequest string   `json:"specialRequest"`
}

// ReservationFilter narrows dashboard reservation lists.
type ReservationFilter struct {
	Status ReservationStatus
	Date   *time.Time
	Search string
}

// ReservationListing is the dashboard view of reservations.
type ReservationListing struct {
	Reservations  []Reservation  `json:"reservations"`
	Counts        map[string]int `json:"counts"`
	TodayCount    int            `json:"todayCount"`
	UpcomingCount int            `json:"upcomingCount"`
}

// StaffNoteRequest sets the internal note on a reservation.
type StaffNoteRequest struct {
	Note string `json:"note"`
}

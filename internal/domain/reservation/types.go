package reservation

import "time"

type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

type Customer struct {
	ID               int64   `db:"id"`
	Name             string  `db:"name"`
	Email            string  `db:"email"`
	Phone            *string `db:"phone"`
	NewsletterSignup bool    `db:"newsletterSignup"`

	CreatedAt time.Time `db:"createdAt"`
	UpdatedAt time.Time `db:"updatedAt"`
}

// Reservation is a table booking. Date is YYYY-MM-DD and TimeSlot is HH:MM,
// both stored as text.
type Reservation struct {
	ID              int64   `json:"id" db:"id"`
	CustomerID      int64   `json:"customerId" db:"customerId"`
	Date            string  `json:"reservationDate" db:"reservationDate"`
	TimeSlot        string  `json:"timeSlot" db:"timeSlot"`
	TableNumber     int     `json:"tableNumber" db:"tableNumber"`
	GuestCount      int     `json:"guestCount" db:"guestCount"`
	Status          Status  `json:"status" db:"status"`
	SpecialRequests *string `json:"specialRequests" db:"specialRequests"`

	CreatedAt time.Time `json:"createdAt" db:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" db:"updatedAt"`
}

type ReservationWithCustomer struct {
	Reservation
	CustomerName  string `json:"customerName" db:"customerName"`
	CustomerEmail string `json:"customerEmail" db:"customerEmail"`
}

type Subscriber struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Name         *string   `json:"name" db:"name"`
	SubscribedAt time.Time `json:"subscribedAt" db:"subscribedAt"`
	IsActive     bool      `json:"isActive" db:"isActive"`
}

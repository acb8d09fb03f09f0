package reservation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	MinGuests = 1
	MaxGuests = 10

	minNameLen = 2
)

var (
	datePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	slotPattern  = regexp.MustCompile(`^\d{2}:\d{2}$`)
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// ValidationError reports a request field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ValidateDate accepts YYYY-MM-DD strings naming a real calendar day.
func ValidateDate(s string) error {
	if !datePattern.MatchString(s) {
		return invalid("date", "Date must be in YYYY-MM-DD format")
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return invalid("date", "Date must be in YYYY-MM-DD format")
	}
	return nil
}

func ValidateTimeSlot(s string) error {
	if !slotPattern.MatchString(s) {
		return invalid("timeSlot", "Time slot must be in HH:MM format")
	}
	return nil
}

func ValidateEmail(s string) error {
	if !emailPattern.MatchString(s) {
		return invalid("email", "Invalid email address")
	}
	return nil
}

// ValidateGuestCount rejects party sizes outside MinGuests..MaxGuests.
func ValidateGuestCount(n int) error {
	if n < MinGuests || n > MaxGuests {
		return invalid("guestCount", "Guest count must be between %d and %d", MinGuests, MaxGuests)
	}
	return nil
}

type CreateRequest struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Date             string `json:"date"`
	TimeSlot         string `json:"timeSlot"`
	GuestCount       int    `json:"guestCount"`
	SpecialRequests  string `json:"specialRequests"`
	NewsletterSignup bool   `json:"newsletterSignup"`
}

// Normalize trims surrounding whitespace from every text field.
func (r *CreateRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Date = strings.TrimSpace(r.Date)
	r.TimeSlot = strings.TrimSpace(r.TimeSlot)
	r.SpecialRequests = strings.TrimSpace(r.SpecialRequests)
}

func (r CreateRequest) Validate() error {
	if len([]rune(strings.TrimSpace(r.Name))) < minNameLen {
		return invalid("name", "Name must be at least %d characters", minNameLen)
	}
	if err := ValidateEmail(strings.TrimSpace(r.Email)); err != nil {
		return err
	}
	if err := ValidateDate(strings.TrimSpace(r.Date)); err != nil {
		return err
	}
	if err := ValidateTimeSlot(strings.TrimSpace(r.TimeSlot)); err != nil {
		return err
	}
	return ValidateGuestCount(r.GuestCount)
}

type SubscribeRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (r *SubscribeRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
	r.Name = strings.TrimSpace(r.Name)
}

func (r SubscribeRequest) Validate() error {
	return ValidateEmail(strings.TrimSpace(r.Email))
}

// OptionalString maps "" to nil.
func OptionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

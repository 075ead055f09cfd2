package models

import "time"

// Routing keys of the integration events exchanged between services.
const (
	EventUserRegistered          = "user.registered"
	EventUserRegistrationRevoked = "user.registration.revoked"
	EventPaymentRequested        = "payment.requested"
)

// Event is a fact published by one service for another. EventType is also
// the routing key the event is published under.
type Event interface {
	EventType() string
}

// UserRegistered is published by the auth service once an identity account
// exists. The students service replies with a Response.
type UserRegistered struct {
	ID          string    `json:"id"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	UserName    string    `json:"userName"`
	DateOfBirth time.Time `json:"dateOfBirth"`
	IsAdmin     bool      `json:"isAdmin"`
}

func (UserRegistered) EventType() string { return EventUserRegistered }

// UserRegistrationRevoked asks the students service to drop a student whose
// identity account was rolled back after an unanswered registration request.
type UserRegistrationRevoked struct {
	ID string `json:"id"`
}

func (UserRegistrationRevoked) EventType() string { return EventUserRegistrationRevoked }

// PaymentRequested carries a student's card details for a course purchase.
// It deliberately has no amount: the price is always read from the course store.
type PaymentRequested struct {
	CourseID           string `json:"courseId"`
	StudentID          string `json:"studentId"`
	CardName           string `json:"cardName"`
	CardNumber         string `json:"cardNumber"`
	CardExpirationDate string `json:"cardExpirationDate"`
	CardCVV            string `json:"cardCvv"`
}

func (PaymentRequested) EventType() string { return EventPaymentRequested }

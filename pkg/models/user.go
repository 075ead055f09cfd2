package models

import "time"

// RegisterUserRequest is the request body for registering a user.
type RegisterUserRequest struct {
	FirstName   string    `json:"firstName" binding:"required" example:"Ana"`
	LastName    string    `json:"lastName" binding:"required" example:"Souza"`
	UserName    string    `json:"userName" binding:"required,email" example:"ana@example.com"`
	Password    string    `json:"password" binding:"required,min=8" example:"s3cret-pass"`
	DateOfBirth time.Time `json:"dateOfBirth" binding:"required" example:"1999-04-12T00:00:00Z"`
	IsAdmin     bool      `json:"isAdmin"`
}

// RegisterUserResponse is returned once both the account and the student exist.
type RegisterUserResponse struct {
	ID          string `json:"id"`
	UserName    string `json:"userName"`
	AccessToken string `json:"accessToken"`
}

// EnrollRequest is the request body for buying a course.
type EnrollRequest struct {
	StudentID          string `json:"studentId" example:"0b7c9a2e-6f0e-4c55-9d53-4b1f0a1d7e21"`
	CardName           string `json:"cardName" example:"ANA SOUZA"`
	CardNumber         string `json:"cardNumber" example:"4532015112830366"`
	CardExpirationDate string `json:"cardExpirationDate" example:"12/29"`
	CardCVV            string `json:"cardCvv" example:"123"`
}

// LoginRequest is the request body for exchanging credentials for a token.
type LoginRequest struct {
	UserName string `json:"userName" binding:"required" example:"ana@example.com"`
	Password string `json:"password" binding:"required" example:"s3cret-pass"`
}

type LoginResponse struct {
	AccessToken string `json:"accessToken"`
}

// ErrorResponse is the body of failed requests that carry no envelope.
type ErrorResponse struct {
	Error string `json:"error" example:"user name already registered"`
}

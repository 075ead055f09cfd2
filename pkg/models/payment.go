package models

// PaymentCourse is the payment handed to the payment processor. Total is in
// cents and always comes from the stored course price.
type PaymentCourse struct {
	CourseID           string `json:"courseId"`
	StudentID          string `json:"studentId"`
	Total              int64  `json:"total"`
	CardName           string `json:"cardName"`
	CardNumber         string `json:"cardNumber"`
	CardExpirationDate string `json:"cardExpirationDate"`
	CardCVV            string `json:"cardCvv"`
}

// NewPaymentCourse builds the payment for a request using the course's stored price.
func NewPaymentCourse(price int64, req PaymentRequested) PaymentCourse {
	return PaymentCourse{
		CourseID:           req.CourseID,
		StudentID:          req.StudentID,
		Total:              price,
		CardName:           req.CardName,
		CardNumber:         req.CardNumber,
		CardExpirationDate: req.CardExpirationDate,
		CardCVV:            req.CardCVV,
	}
}

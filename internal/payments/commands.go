package payments

import (
	"context"
	"strings"
	"time"

	"coursehub/pkg/card"
	"coursehub/pkg/command"
	"coursehub/pkg/models"
	"coursehub/pkg/notification"

	"github.com/google/uuid"
)

const ValidatePaymentCourseCommand = "ValidatePaymentCourse"

// ValidatePaymentCourse charges a priced purchase.
type ValidatePaymentCourse struct {
	Payment models.PaymentCourse
}

func (ValidatePaymentCourse) CommandName() string { return ValidatePaymentCourseCommand }

func (c ValidatePaymentCourse) Validate() []command.Error {
	p := c.Payment
	var v command.Validation
	v.Require("CourseId", p.CourseID, "O id do curso é obrigatório")
	v.Require("StudentId", p.StudentID, "O id do estudante é obrigatório")
	v.Require("CardName", p.CardName, "O nome no cartão é obrigatório")
	if strings.TrimSpace(p.CardNumber) == "" {
		v.Require("CardNumber", p.CardNumber, "O número do cartão é obrigatório")
	} else {
		v.Check(card.IsValidNumber(p.CardNumber), "CardNumber", "O número do cartão é inválido")
	}
	v.Require("CardExpirationDate", p.CardExpirationDate, "A data de validade do cartão é obrigatória")
	v.Require("CardCVV", p.CardCVV, "O código de segurança do cartão é obrigatório")
	v.Check(p.Total > 0, "Total", "O valor do pagamento deve ser maior que zero")
	return v.Errors()
}

type PaymentWriter interface {
	Add(ctx context.Context, p Payment) error
}

func NewValidatePaymentCourseHandler(repo PaymentWriter, uow command.UnitOfWork, pub notification.Publisher) command.Handler {
	return command.Typed(func(ctx context.Context, cmd ValidatePaymentCourse) (command.Result, error) {
		if errs := cmd.Validate(); len(errs) > 0 {
			return command.Reject(ctx, pub, errs), nil
		}
		p := cmd.Payment
		err := repo.Add(ctx, Payment{
			ID:           uuid.NewString(),
			CourseID:     p.CourseID,
			StudentID:    p.StudentID,
			Total:        p.Total,
			CardName:     p.CardName,
			CardLastFour: lastFour(p.CardNumber),
			Status:       StatusApproved,
			CreatedAt:    time.Now().UTC(),
		})
		if err != nil {
			return command.Result{}, err
		}
		return command.Commit(ctx, uow)
	})
}

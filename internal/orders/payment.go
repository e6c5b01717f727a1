package orders

import (
	"fmt"
	"strings"
)

const (
	PaymentSucceeded = "succeeded"
	PaymentFailed    = "failed"
)

const (
	MethodCard   = "card"
	MethodPaypal = "paypal"
)

type PaymentOutcome struct {
	Status  string
	Message string
}

func (o PaymentOutcome) Succeeded() bool { return o.Status == PaymentSucceeded }

// ClassifyPayment derives the payment outcome from the method tag.
// This is a pure classification, not a gateway call; a failed outcome
// still results in a created order marked failed. Unknown tags fall
// back to a generic success.
func ClassifyPayment(method, cardLast4, cardBrand string) PaymentOutcome {
	switch strings.ToLower(strings.TrimSpace(method)) {
	case MethodCard:
		if cardLast4 == "" {
			return PaymentOutcome{Status: PaymentFailed, Message: "card details missing"}
		}
		if cardBrand != "" {
			return PaymentOutcome{Status: PaymentSucceeded, Message: fmt.Sprintf("%s card payment accepted (****%s)", cardBrand, cardLast4)}
		}
		return PaymentOutcome{Status: PaymentSucceeded, Message: fmt.Sprintf("card payment accepted (****%s)", cardLast4)}
	case MethodPaypal:
		return PaymentOutcome{Status: PaymentSucceeded, Message: "paypal payment accepted"}
	default:
		return PaymentOutcome{Status: PaymentSucceeded, Message: "payment accepted"}
	}
}

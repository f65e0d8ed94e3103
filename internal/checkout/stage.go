package checkout

type Stage string

const (
	StageCartReview    Stage = "CART_REVIEW"
	StageShippingInfo  Stage = "SHIPPING_INFO"
	StagePaymentMethod Stage = "PAYMENT_METHOD"
	StageConfirmed     Stage = "CONFIRMED"
)

func (s Stage) IsTerminal() bool {
	return s == StageConfirmed
}

// String representation (for logging)
func (s Stage) String() string {
	return string(s)
}

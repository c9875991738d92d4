package payment

// cardChargeRequest is the processor's charge payload
type cardChargeRequest struct {
	ConversationID string `json:"conversationId"`
	Price          string `json:"price"`
	Currency       string `json:"currency"`
	CardToken      string `json:"cardToken"`
	Description    string `json:"description,omitempty"`
}

// cardChargeResponse is the processor's charge result
type cardChargeResponse struct {
	Status         string `json:"status"`
	PaymentID      string `json:"paymentId"`
	ErrorCode      string `json:"errorCode,omitempty"`
	ErrorMessage   string `json:"errorMessage,omitempty"`
	ConversationID string `json:"conversationId"`
}

const (
	cardStatusSuccess = "success"
	cardStatusFailure = "failure"
)

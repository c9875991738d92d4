package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/commerce/backend/internal/domain/order"
	"github.com/commerce/backend/internal/domain/payment"
	"go.uber.org/zap"
)

const cardChargePath = "/v1/payments/charge"

// CardAPIAdapter implements the payment gateway port against a domestic
// bank card processor with an iyzico-style HTTP API.
type CardAPIAdapter struct {
	config     *CardAPIConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewCardAPIAdapter creates a bank card adapter
func NewCardAPIAdapter(config *CardAPIConfig, logger *zap.Logger) (*CardAPIAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &CardAPIAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}, nil
}

// Method returns the payment method this adapter handles
func (a *CardAPIAdapter) Method() order.PaymentMethod {
	return order.PaymentMethodBankCard
}

// Authorize charges the tokenized card for the order amount
func (a *CardAPIAdapter) Authorize(ctx context.Context, req payment.AuthorizeRequest) (*payment.Result, error) {
	body := cardChargeRequest{
		ConversationID: req.OrderID.String(),
		Price:          req.Amount.Amount().StringFixed(2),
		Currency:       string(req.Amount.Currency()),
		CardToken:      req.CardToken,
		Description:    fmt.Sprintf("Order %s", req.OrderNumber),
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("card api: marshal request: %w", err)
	}

	respBody, err := a.doRequest(ctx, http.MethodPost, cardChargePath, bodyBytes)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return nil, &payment.GatewayTimeoutError{Method: a.Method(), Err: err}
		}
		return nil, err
	}

	var resp cardChargeResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("card api: parse response: %w", err)
	}

	if resp.Status != cardStatusSuccess {
		return nil, &payment.DeclinedError{
			Method: a.Method(),
			Code:   resp.ErrorCode,
			Reason: resp.ErrorMessage,
		}
	}

	return &payment.Result{TransactionID: resp.PaymentID, Method: a.Method()}, nil
}

// doRequest signs and executes an API call. 5xx responses are treated like
// timeouts: the charge outcome is unknown.
func (a *CardAPIAdapter) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, a.config.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("card api: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", a.config.APIKey)
	req.Header.Set("X-Signature", a.sign(body))

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("card api: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("card api: read response: %w", err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, &payment.GatewayTimeoutError{
			Method: a.Method(),
			Err:    fmt.Errorf("card api: status %d", resp.StatusCode),
		}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		a.logger.Warn("card api rejected request",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", respBody))
	}
	return respBody, nil
}

// sign computes the HMAC-SHA256 request signature
func (a *CardAPIAdapter) sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(a.config.SecretKey))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

var _ payment.Gateway = (*CardAPIAdapter)(nil)

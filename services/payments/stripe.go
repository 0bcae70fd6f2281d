package payments

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/photoproos/platform/config"
	"github.com/photoproos/platform/services"
	"go.uber.org/zap"
)

// PaymentIntent is the subset of a Stripe PaymentIntent the platform uses
type PaymentIntent struct {
	ID             string            `json:"id"`
	Amount         int64             `json:"amount"`
	AmountReceived int64             `json:"amount_received"`
	Currency       string            `json:"currency"`
	Status         string            `json:"status"`
	ClientSecret   string            `json:"client_secret"`
	Metadata       map[string]string `json:"metadata"`
}

// Transfer is a Stripe Connect transfer to a connected account
type Transfer struct {
	ID          string `json:"id"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Destination string `json:"destination"`
}

// Refund is a Stripe refund of a PaymentIntent
type Refund struct {
	ID            string `json:"id"`
	Amount        int64  `json:"amount"`
	Status        string `json:"status"`
	PaymentIntent string `json:"payment_intent"`
}

type stripeError struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// IntentParams describes a PaymentIntent to create
type IntentParams struct {
	AmountCents    int64
	Currency       string
	Description    string
	Metadata       map[string]string
	IdempotencyKey string
}

// StripeClient calls the Stripe REST API
type StripeClient struct {
	httpClient *resty.Client
	configured bool
	logger     *zap.Logger
}

// NewStripeClient creates a Stripe client authenticated with the secret key
func NewStripeClient(cfg config.StripeConfig, logger *zap.Logger) *StripeClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		SetAuthToken(cfg.SecretKey).
		SetHeader("Accept", "application/json").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() == 429 || r.StatusCode() >= 500
		})

	return &StripeClient{
		httpClient: client,
		configured: cfg.SecretKey != "",
		logger:     logger,
	}
}

// CreatePaymentIntent creates a PaymentIntent for card collection
func (c *StripeClient) CreatePaymentIntent(ctx context.Context, params IntentParams) (*PaymentIntent, error) {
	form := map[string]string{
		"amount":                             strconv.FormatInt(params.AmountCents, 10),
		"currency":                           params.Currency,
		"automatic_payment_methods[enabled]": "true",
	}
	if params.Description != "" {
		form["description"] = params.Description
	}
	for k, v := range params.Metadata {
		form["metadata["+k+"]"] = v
	}

	var intent PaymentIntent
	if err := c.post(ctx, "/v1/payment_intents", form, params.IdempotencyKey, &intent); err != nil {
		return nil, err
	}

	c.logger.Info("stripe payment intent created",
		zap.String("payment_intent", intent.ID),
		zap.Int64("amount", intent.Amount))
	return &intent, nil
}

// CreateTransfer moves funds to a connected account
func (c *StripeClient) CreateTransfer(ctx context.Context, destination string, amountCents int64, currency, idempotencyKey string) (*Transfer, error) {
	form := map[string]string{
		"amount":      strconv.FormatInt(amountCents, 10),
		"currency":    currency,
		"destination": destination,
	}

	var transfer Transfer
	if err := c.post(ctx, "/v1/transfers", form, idempotencyKey, &transfer); err != nil {
		return nil, err
	}

	c.logger.Info("stripe transfer created",
		zap.String("transfer", transfer.ID),
		zap.String("destination", destination),
		zap.Int64("amount", transfer.Amount))
	return &transfer, nil
}

// Transfer creates a transfer and returns its ID
func (c *StripeClient) Transfer(ctx context.Context, destination string, amountCents int64, currency, idempotencyKey string) (string, error) {
	transfer, err := c.CreateTransfer(ctx, destination, amountCents, currency, idempotencyKey)
	if err != nil {
		return "", err
	}
	return transfer.ID, nil
}

// RefundPayment refunds amountCents of a PaymentIntent; zero refunds the full amount
func (c *StripeClient) RefundPayment(ctx context.Context, paymentIntentID string, amountCents int64, idempotencyKey string) (*Refund, error) {
	form := map[string]string{"payment_intent": paymentIntentID}
	if amountCents > 0 {
		form["amount"] = strconv.FormatInt(amountCents, 10)
	}

	var refund Refund
	if err := c.post(ctx, "/v1/refunds", form, idempotencyKey, &refund); err != nil {
		return nil, err
	}

	c.logger.Info("stripe refund created",
		zap.String("refund", refund.ID),
		zap.String("payment_intent", paymentIntentID))
	return &refund, nil
}

func (c *StripeClient) post(ctx context.Context, path string, form map[string]string, idempotencyKey string, result interface{}) error {
	if !c.configured {
		return services.Wrap(services.ErrProviderUnavailable, fmt.Errorf("stripe is not configured"))
	}

	var apiErr stripeError
	req := c.httpClient.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(result).
		SetError(&apiErr)
	if idempotencyKey != "" {
		req.SetHeader("Idempotency-Key", idempotencyKey)
	}

	resp, err := req.Post(path)
	if err != nil {
		c.logger.Error("stripe request failed", zap.String("path", path), zap.Error(err))
		return services.Wrap(services.ErrProviderUnavailable, err)
	}

	if resp.IsError() {
		c.logger.Warn("stripe returned error",
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode()),
			zap.String("type", apiErr.Error.Type),
			zap.String("code", apiErr.Error.Code))
		msg := apiErr.Error.Message
		if msg == "" {
			msg = resp.Status()
		}
		return services.Wrap(services.ErrProviderError, fmt.Errorf("stripe: %s", msg))
	}
	return nil
}

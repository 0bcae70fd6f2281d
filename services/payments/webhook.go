package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/photoproos/platform/services"
)

// SignatureTolerance is how far a webhook timestamp may drift from now
const SignatureTolerance = 5 * time.Minute

// Event is a Stripe webhook event envelope
type Event struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Created int64  `json:"created"`
	Data    struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// Sign computes the v1 signature of payload at timestamp t
func Sign(payload []byte, t int64, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(t, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a Stripe-Signature header ("t=...,v1=...") against the payload
func VerifySignature(payload []byte, header, secret string, now time.Time) error {
	if secret == "" {
		return services.Wrap(services.ErrInvalidSignature, fmt.Errorf("webhook secret not configured"))
	}

	var timestamp int64
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			ts, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return services.ErrInvalidSignature
			}
			timestamp = ts
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}
	if timestamp == 0 || len(signatures) == 0 {
		return services.ErrInvalidSignature
	}

	drift := now.Sub(time.Unix(timestamp, 0))
	if drift < 0 {
		drift = -drift
	}
	if drift > SignatureTolerance {
		return services.Wrap(services.ErrInvalidSignature, fmt.Errorf("timestamp outside tolerance"))
	}

	expected := []byte(Sign(payload, timestamp, secret))
	for _, sig := range signatures {
		if hmac.Equal(expected, []byte(sig)) {
			return nil
		}
	}
	return services.ErrInvalidSignature
}

// ParseEvent decodes a webhook payload
func ParseEvent(payload []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, services.Wrap(services.ErrInvalidWebhookEvent, err)
	}
	if event.Type == "" {
		return nil, services.ErrInvalidWebhookEvent
	}
	return &event, nil
}

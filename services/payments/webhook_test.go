package payments

import (
	"fmt"
	"testing"
	"time"

	"github.com/photoproos/platform/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifySignature(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)
	now := time.Unix(1717400000, 0)
	ts := now.Unix()
	valid := Sign(payload, ts, secret)

	tests := []struct {
		name    string
		header  string
		secret  string
		now     time.Time
		wantErr bool
	}{
		{"valid", fmt.Sprintf("t=%d,v1=%s", ts, valid), secret, now, false},
		{"valid among several", fmt.Sprintf("t=%d,v1=deadbeef,v1=%s", ts, valid), secret, now, false},
		{"within tolerance", fmt.Sprintf("t=%d,v1=%s", ts, valid), secret, now.Add(4 * time.Minute), false},
		{"too old", fmt.Sprintf("t=%d,v1=%s", ts, valid), secret, now.Add(6 * time.Minute), true},
		{"from the future", fmt.Sprintf("t=%d,v1=%s", ts, valid), secret, now.Add(-6 * time.Minute), true},
		{"wrong secret", fmt.Sprintf("t=%d,v1=%s", ts, valid), "whsec_other", now, true},
		{"missing timestamp", "v1=" + valid, secret, now, true},
		{"missing signature", fmt.Sprintf("t=%d", ts), secret, now, true},
		{"garbage", "nonsense", secret, now, true},
		{"no secret configured", fmt.Sprintf("t=%d,v1=%s", ts, valid), "", now, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifySignature(payload, tt.header, tt.secret, tt.now)
			if tt.wantErr {
				assert.ErrorIs(t, err, services.ErrInvalidSignature)
				assert.True(t, services.IsUnauthorizedError(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestVerifySignature_TamperedPayload(t *testing.T) {
	now := time.Now()
	sig := Sign([]byte(`{"amount":100}`), now.Unix(), "s")
	err := VerifySignature([]byte(`{"amount":900}`), fmt.Sprintf("t=%d,v1=%s", now.Unix(), sig), "s", now)
	assert.ErrorIs(t, err, services.ErrInvalidSignature)
}

func TestParseEvent(t *testing.T) {
	event, err := ParseEvent([]byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1"}}}`))
	require.NoError(t, err)
	assert.Equal(t, "evt_1", event.ID)
	assert.JSONEq(t, `{"id":"pi_1"}`, string(event.Data.Object))

	_, err = ParseEvent([]byte(`{"id":"evt_2"}`))
	assert.ErrorIs(t, err, services.ErrInvalidWebhookEvent)

	_, err = ParseEvent([]byte(`not json`))
	assert.ErrorIs(t, err, services.ErrInvalidWebhookEvent)
}

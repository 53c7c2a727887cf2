package payment

import (
	"testing"
	"time"

	"coursemaster/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82/webhook"
)

const testSecret = "whsec_test_secret"

var completedPayload = []byte(`{
  "id": "evt_1",
  "object": "event",
  "type": "checkout.session.completed",
  "data": {
    "object": {
      "id": "cs_test_1",
      "object": "checkout.session",
      "amount_total": 1999,
      "currency": "usd",
      "metadata": {"courseId": "course-1", "userEmail": "ada@example.com"}
    }
  }
}`)

func sign(payload []byte, secret string) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
	}).Header
}

func TestVerifyEvent(t *testing.T) {
	provider := NewStripe("sk_test_unused", testSecret)

	tests := []struct {
		name    string
		payload []byte
		header  string
		wantErr bool
	}{
		{
			name:    "valid signature",
			payload: completedPayload,
			header:  sign(completedPayload, testSecret),
		},
		{
			name:    "tampered body",
			payload: append([]byte(" "), completedPayload...),
			header:  sign(completedPayload, testSecret),
			wantErr: true,
		},
		{
			name:    "wrong secret",
			payload: completedPayload,
			header:  sign(completedPayload, "whsec_other"),
			wantErr: true,
		},
		{
			name:    "missing header",
			payload: completedPayload,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := provider.VerifyEvent(tt.payload, tt.header)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, apperr.KindInvalidSignature, apperr.KindOf(err))
				assert.Nil(t, ev)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "evt_1", ev.ID)
			assert.Equal(t, EventCheckoutSessionCompleted, ev.Type)

			cs, err := DecodeCheckoutSession(ev)
			require.NoError(t, err)
			assert.Equal(t, "cs_test_1", cs.ID)
			assert.Equal(t, int64(1999), cs.AmountTotal)
			assert.Equal(t, "course-1", cs.Metadata[MetadataCourseID])
			assert.Equal(t, "ada@example.com", cs.Metadata[MetadataUserEmail])
		})
	}
}

func TestVerifyEventWithoutSecret(t *testing.T) {
	provider := NewStripe("sk_test_unused", "")
	_, err := provider.VerifyEvent(completedPayload, sign(completedPayload, ""))
	assert.Equal(t, apperr.KindInvalidSignature, apperr.KindOf(err))
}

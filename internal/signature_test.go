package internal

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"
)

const testSecret = "whsec_test_secret"

// signHeader builds a Stripe-Signature header for body signed at ts.
func signHeader(secret string, ts int64, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, body)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func fixedVerifier(secret string, now time.Time) *Verifier {
	v := NewVerifier(secret, 0)
	v.now = func() time.Time { return now }
	return v
}

// TestVerifyAccepts tests that a correctly signed payload verifies and
// decodes into an event.
func TestVerifyAccepts(t *testing.T) {
	now := time.Unix(1700000000, 0)
	body := []byte(`{"id":"evt_1","type":"invoice.paid","livemode":true,"data":{"object":{"object":"invoice","id":"in_1","amount_due":5000,"currency":"usd"}}}`)
	v := fixedVerifier(testSecret, now)

	event, err := v.Verify(body, signHeader(testSecret, now.Unix(), body))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if event.ID != "evt_1" || event.Type != "invoice.paid" || !event.Livemode {
		t.Fatalf("unexpected event %+v", event)
	}
	invoice, ok := event.Object.(*Invoice)
	if !ok {
		t.Fatalf("expected invoice object, got %T", event.Object)
	}
	if invoice.ID != "in_1" {
		t.Fatalf("expected object id in_1, got %q", invoice.ID)
	}
}

// TestVerifyRejectsTamperedBody tests that changing a single byte of the
// payload invalidates the signature.
func TestVerifyRejectsTamperedBody(t *testing.T) {
	now := time.Unix(1700000000, 0)
	body := []byte(`{"id":"evt_1","type":"invoice.paid","livemode":false,"data":{"object":{}}}`)
	header := signHeader(testSecret, now.Unix(), body)

	tampered := append([]byte(nil), body...)
	tampered[len(tampered)-2] = ' '

	v := fixedVerifier(testSecret, now)
	if _, err := v.Verify(tampered, header); !errors.Is(err, ErrVerificationFailed) {
		t.Fatalf("expected ErrVerificationFailed, got %v", err)
	}
}

// TestVerifyRejectsWrongSecret tests that a signature from a different
// secret does not validate.
func TestVerifyRejectsWrongSecret(t *testing.T) {
	now := time.Unix(1700000000, 0)
	body := []byte(`{"id":"evt_1","type":"invoice.paid","data":{"object":{}}}`)

	v := fixedVerifier(testSecret, now)
	if _, err := v.Verify(body, signHeader("whsec_other", now.Unix(), body)); !errors.Is(err, ErrVerificationFailed) {
		t.Fatalf("expected ErrVerificationFailed, got %v", err)
	}
}

// TestVerifyRejectsStaleTimestamp tests replay protection: a valid
// signature older than the tolerance window is rejected.
func TestVerifyRejectsStaleTimestamp(t *testing.T) {
	now := time.Unix(1700000000, 0)
	body := []byte(`{"id":"evt_1","type":"invoice.paid","data":{"object":{}}}`)
	stale := now.Add(-DefaultTolerance - time.Second).Unix()

	v := fixedVerifier(testSecret, now)
	if _, err := v.Verify(body, signHeader(testSecret, stale, body)); !errors.Is(err, ErrVerificationFailed) {
		t.Fatalf("expected ErrVerificationFailed for stale timestamp, got %v", err)
	}
}

// TestVerifyAcceptsAnyMatchingSignature tests that verification succeeds
// when any one of several v1 values matches.
func TestVerifyAcceptsAnyMatchingSignature(t *testing.T) {
	now := time.Unix(1700000000, 0)
	body := []byte(`{"id":"evt_1","type":"invoice.paid","data":{"object":{}}}`)
	header := signHeader(testSecret, now.Unix(), body) + ",v1=" + hex.EncodeToString(make([]byte, 32))

	v := fixedVerifier(testSecret, now)
	if _, err := v.Verify(body, header); err != nil {
		t.Fatalf("expected one matching signature to suffice, got %v", err)
	}
}

// TestVerifyRejectsHeaderWithoutSignature tests that a header missing its
// timestamp or v1 values is rejected as a verification failure.
func TestVerifyRejectsHeaderWithoutSignature(t *testing.T) {
	now := time.Unix(1700000000, 0)
	v := fixedVerifier(testSecret, now)

	for _, header := range []string{"", "t=1700000000", "v1=deadbeef", "t=notanumber,v1=deadbeef", "garbage"} {
		if _, err := v.Verify([]byte(`{}`), header); !errors.Is(err, ErrVerificationFailed) {
			t.Fatalf("header %q: expected ErrVerificationFailed, got %v", header, err)
		}
	}
}

// TestVerifyMalformedPayload tests that a valid signature over an
// unparseable body is a distinct malformed-payload error.
func TestVerifyMalformedPayload(t *testing.T) {
	now := time.Unix(1700000000, 0)
	v := fixedVerifier(testSecret, now)

	for _, body := range []string{"not json", `{"type":"invoice.paid"}`, `{"id":"evt_1"}`} {
		_, err := v.Verify([]byte(body), signHeader(testSecret, now.Unix(), []byte(body)))
		if !errors.Is(err, ErrMalformedPayload) {
			t.Fatalf("body %q: expected ErrMalformedPayload, got %v", body, err)
		}
	}
}

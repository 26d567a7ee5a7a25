package internal

import "errors"

// Sentinel errors for the pipeline outcomes the HTTP layer has to tell
// apart. Wrap them with fmt.Errorf("...: %w", ...) and match with errors.Is.
var (
	// ErrConfigInvalid means the secret or the Slack webhook URL is missing.
	ErrConfigInvalid = errors.New("configuration invalid")
	// ErrMissingSignature means the request carried no Stripe-Signature header.
	ErrMissingSignature = errors.New("missing stripe signature")
	// ErrVerificationFailed means the signature header was present but
	// malformed, did not match the payload, or was outside the tolerance window.
	ErrVerificationFailed = errors.New("signature verification failed")
	// ErrMalformedPayload means the signature was valid but the body could not
	// be parsed as a Stripe event.
	ErrMalformedPayload = errors.New("malformed event payload")
	// ErrDeliveryFailed means the outbound Slack call did not succeed.
	ErrDeliveryFailed = errors.New("slack delivery failed")
)

package internal

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultTolerance is the maximum accepted age of a signed payload's
// timestamp, matching Stripe's recommended replay-protection window.
const DefaultTolerance = 5 * time.Minute

// Verifier authenticates raw webhook payloads against the endpoint secret
// using Stripe's timestamped HMAC-SHA256 scheme and, on success, decodes
// them into Events. A Verifier is immutable and safe for concurrent use.
type Verifier struct {
	secret    string
	tolerance time.Duration
	now       func() time.Time
}

func NewVerifier(secret string, tolerance time.Duration) *Verifier {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Verifier{secret: secret, tolerance: tolerance, now: time.Now}
}

// Verify checks the Stripe-Signature header against rawBody and returns the
// decoded event. The header carries a unix timestamp and one or more v1
// signatures; verification succeeds when any v1 value equals
// HMAC-SHA256(secret, "<timestamp>.<rawBody>") and the timestamp is within
// the tolerance window. Signature comparison is constant time.
func (v *Verifier) Verify(rawBody []byte, header string) (Event, error) {
	timestamp, signatures, err := parseSignatureHeader(header)
	if err != nil {
		return Event{}, err
	}

	if skew := v.now().Sub(time.Unix(timestamp, 0)); skew > v.tolerance || skew < -v.tolerance {
		return Event{}, fmt.Errorf("%w: timestamp outside tolerance", ErrVerificationFailed)
	}

	mac := hmac.New(sha256.New, []byte(v.secret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(rawBody)
	expected := mac.Sum(nil)

	matched := false
	for _, signature := range signatures {
		if hmac.Equal(signature, expected) {
			matched = true
		}
	}
	if !matched {
		return Event{}, fmt.Errorf("%w: no matching v1 signature", ErrVerificationFailed)
	}

	return parseEvent(rawBody)
}

// parseSignatureHeader splits "t=<unix>,v1=<hex>[,v1=<hex>...]" into its
// timestamp and decoded signature values. Unknown schemes (v0) and v1 values
// that are not valid hex are skipped rather than rejected.
func parseSignatureHeader(header string) (int64, [][]byte, error) {
	var timestamp int64
	var signatures [][]byte
	seenTimestamp := false

	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			parsed, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return 0, nil, fmt.Errorf("%w: bad timestamp %q", ErrVerificationFailed, kv[1])
			}
			timestamp = parsed
			seenTimestamp = true
		case "v1":
			signature, err := hex.DecodeString(kv[1])
			if err != nil {
				continue
			}
			signatures = append(signatures, signature)
		}
	}

	if !seenTimestamp {
		return 0, nil, fmt.Errorf("%w: header has no timestamp", ErrVerificationFailed)
	}
	if len(signatures) == 0 {
		return 0, nil, fmt.Errorf("%w: header has no v1 signature", ErrVerificationFailed)
	}
	return timestamp, signatures, nil
}

type wireEvent struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Livemode bool   `json:"livemode"`
	Data     struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

func parseEvent(rawBody []byte) (Event, error) {
	var wire wireEvent
	if err := json.Unmarshal(rawBody, &wire); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if wire.ID == "" || wire.Type == "" {
		return Event{}, fmt.Errorf("%w: event id or type missing", ErrMalformedPayload)
	}

	data := map[string]interface{}{}
	if len(wire.Data.Object) > 0 {
		// A data.object that is present but not an object is malformed.
		if err := json.Unmarshal(wire.Data.Object, &data); err != nil {
			return Event{}, fmt.Errorf("%w: data.object is not an object", ErrMalformedPayload)
		}
	}

	return Event{
		ID:       wire.ID,
		Type:     wire.Type,
		Livemode: wire.Livemode,
		Object:   decodeDataObject(wire.Data.Object, data),
		Data:     data,
	}, nil
}

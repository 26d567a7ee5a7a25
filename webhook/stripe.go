package webhook

import (
	"errors"
	"io"
	"log"
	"net/http"

	"stripehooks/internal"
)

// SignatureHeader is the header Stripe signs payloads under.
const SignatureHeader = "Stripe-Signature"

// StripeHandler runs the event pipeline for one request: verify the
// signature, filter the event type, apply suppression rules, render the
// Slack message, deliver it. Everything it holds is immutable, so a single
// handler serves concurrent requests.
type StripeHandler struct {
	verifier *internal.Verifier
	filter   *internal.Filter
	rules    *internal.RuleEngine
	notifier *internal.Notifier
	logger   *log.Logger
	maxBody  int64
}

func NewStripeHandler(verifier *internal.Verifier, filter *internal.Filter, rules *internal.RuleEngine, notifier *internal.Notifier, logger *log.Logger, maxBody int64) *StripeHandler {
	if logger == nil {
		logger = log.Default()
	}
	if maxBody <= 0 {
		maxBody = 1 << 20
	}
	return &StripeHandler{
		verifier: verifier,
		filter:   filter,
		rules:    rules,
		notifier: notifier,
		logger:   logger,
		maxBody:  maxBody,
	}
}

func (h *StripeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		// health probe
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodPost:
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	internal.IncReceived()

	// Verification runs over the exact bytes on the wire; the body must not
	// be re-serialized before hashing.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	rawBody, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Printf("read body failed: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	signature := r.Header.Get(SignatureHeader)
	if signature == "" {
		h.logger.Printf("reject: %v", internal.ErrMissingSignature)
		internal.IncSignatureReject("missing")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	event, err := h.verifier.Verify(rawBody, signature)
	if err != nil {
		if errors.Is(err, internal.ErrMalformedPayload) {
			internal.IncSignatureReject("malformed")
		} else {
			internal.IncSignatureReject("invalid")
		}
		h.logger.Printf("reject: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if !h.filter.Allowed(event.Type) {
		h.logger.Printf("event type %s is not allowed, skipping", event.Type)
		internal.IncFiltered(event.Type)
		w.WriteHeader(http.StatusOK)
		return
	}

	if h.rules != nil {
		if note, suppressed := h.rules.Suppresses(event); suppressed {
			h.logger.Printf("event %s suppressed by rule %q", event.ID, note)
			internal.IncSuppressed(event.Type)
			w.WriteHeader(http.StatusOK)
			return
		}
	}

	msg := internal.FormatMessage(event)
	if err := h.notifier.Deliver(r.Context(), msg); err != nil {
		h.logger.Printf("event %s: %v", event.ID, err)
		internal.IncDeliveryError()
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	internal.IncDelivered(event.Type)
	h.logger.Printf("event %s (%s) delivered", event.ID, event.Type)
	w.WriteHeader(http.StatusOK)
}

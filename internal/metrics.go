package internal

import "expvar"

var (
	eventsReceived   = expvar.NewInt("stripehooks_events_received_total")
	signatureRejects = expvar.NewMap("stripehooks_signature_rejects_total")
	eventsFiltered   = expvar.NewMap("stripehooks_events_filtered_total")
	eventsSuppressed = expvar.NewMap("stripehooks_events_suppressed_total")
	eventsDelivered  = expvar.NewMap("stripehooks_events_delivered_total")
	deliveryErrors   = expvar.NewInt("stripehooks_delivery_errors_total")
)

func IncReceived() {
	eventsReceived.Add(1)
}

func IncSignatureReject(reason string) {
	signatureRejects.Add(reason, 1)
}

func IncFiltered(eventType string) {
	eventsFiltered.Add(eventType, 1)
}

func IncSuppressed(eventType string) {
	eventsSuppressed.Add(eventType, 1)
}

func IncDelivered(eventType string) {
	eventsDelivered.Add(eventType, 1)
}

func IncDeliveryError() {
	deliveryErrors.Add(1)
}

package internal

import (
	"fmt"
	"strings"

	"github.com/slack-go/slack"
)

// Slack attachment colors, keyed off the event-type heuristics below.
const (
	colorAlert   = "#E01E5A"
	colorSuccess = "#2EB67D"
	colorWarning = "#ECB22E"
	colorNeutral = "#4A154B"
)

const dashboardBaseURL = "https://dashboard.stripe.com"

// FormatMessage renders an event into the Slack webhook message. It is a
// pure function of the event and never fails: fields the event does not
// carry are simply omitted.
func FormatMessage(event Event) *slack.WebhookMessage {
	amount := ""
	if minor, currency, ok := event.Object.AmountMinor(); ok {
		amount = formatAmount(minor, currency)
	}
	email := event.Object.CustomerEmail()

	text := "Stripe " + event.Type
	if amount != "" {
		text += " · " + amount
	}
	if email != "" {
		text += " · " + email
	}

	mode := "Test"
	if event.Livemode {
		mode = "Live"
	}

	fields := []*slack.TextBlockObject{
		markdown(fmt.Sprintf("*Event:* `%s`", event.Type)),
		markdown("*Mode:* " + mode),
	}
	if amount != "" {
		fields = append(fields, markdown("*Amount:* "+amount))
	}
	if email != "" {
		fields = append(fields, markdown("*Customer:* "+email))
	}
	if id := event.Object.ObjectID(); id != "" {
		fields = append(fields, markdown(fmt.Sprintf("*Object:* <%s|%s>", dashboardURL(event), id)))
	}

	button := slack.NewButtonBlockElement("", "", plainText("View in Dashboard"))
	button.URL = dashboardURL(event)
	button.Style = slack.StylePrimary

	attachment := slack.Attachment{
		Color: eventColor(event.Type),
		Blocks: slack.Blocks{BlockSet: []slack.Block{
			slack.NewHeaderBlock(plainText("Stripe Notification")),
			slack.NewSectionBlock(markdown(text), nil, nil),
			slack.NewSectionBlock(nil, fields, nil),
			slack.NewContextBlock("", markdown(fmt.Sprintf("Event: <%s|%s>", eventURL(event), event.ID))),
			slack.NewActionBlock("", button),
		}},
	}

	return &slack.WebhookMessage{
		Text:        text,
		Attachments: []slack.Attachment{attachment},
	}
}

// eventColor picks an attachment color by substring probes on the event
// type, first match wins. The probe order and substrings are deliberate:
// the taxonomy is vendor-defined, so this stays a heuristic.
func eventColor(eventType string) string {
	t := strings.ToLower(eventType)
	switch {
	case strings.Contains(t, "failed"), strings.Contains(t, "dispute"), strings.Contains(t, "refunded"):
		return colorAlert
	case strings.Contains(t, "succeeded"), strings.Contains(t, "completed"), strings.Contains(t, "paid"):
		return colorSuccess
	case strings.Contains(t, "requires"), strings.Contains(t, "pending"):
		return colorWarning
	default:
		return colorNeutral
	}
}

// formatAmount renders a minor-unit amount as "<major>.<cents> <CURRENCY>".
// All currencies are assumed to carry two decimals; zero-decimal currencies
// like JPY will misrender, which is accepted behavior for now.
func formatAmount(minor int64, currency string) string {
	return fmt.Sprintf("%.2f %s", float64(minor)/100, strings.ToUpper(currency))
}

func dashboardBase(livemode bool) string {
	if livemode {
		return dashboardBaseURL
	}
	return dashboardBaseURL + "/test"
}

// dashboardURL deep-links to the object the event is about, switching on
// the data.object variant. Objects we do not model, or objects without an
// id, fall back to the event detail page.
func dashboardURL(event Event) string {
	base := dashboardBase(event.Livemode)
	id := event.Object.ObjectID()
	if id == "" {
		return eventURL(event)
	}
	switch event.Object.(type) {
	case *PaymentIntent, *Charge:
		return base + "/payments/" + id
	case *Invoice:
		return base + "/invoices/" + id
	case *Customer:
		return base + "/customers/" + id
	case *Subscription:
		return base + "/subscriptions/" + id
	case *CheckoutSession:
		return base + "/checkouts/sessions/" + id
	default:
		return eventURL(event)
	}
}

func eventURL(event Event) string {
	return dashboardBase(event.Livemode) + "/events/" + event.ID
}

func markdown(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.MarkdownType, text, false, false)
}

func plainText(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.PlainTextType, text, true, false)
}

package internal

import "encoding/json"

// Event is a verified Stripe webhook event. It is constructed only by the
// Verifier and never mutated afterwards.
type Event struct {
	ID       string
	Type     string
	Livemode bool
	// Object is the typed view of data.object, keyed by its "object"
	// discriminator field.
	Object DataObject
	// Data is data.object as decoded JSON, kept for suppression rules.
	Data map[string]interface{}
}

// DataObject is the data.object payload of an event. The shape varies by the
// "object" discriminator; known dashboard-linkable objects get a typed
// variant, everything else falls back to UnknownObject.
type DataObject interface {
	// ObjectID returns the inner object's id, or "" when absent.
	ObjectID() string
	// AmountMinor returns the object's primary monetary amount in minor
	// units together with its currency code. ok is false when the object
	// carries no amount or no currency.
	AmountMinor() (amount int64, currency string, ok bool)
	// CustomerEmail returns the customer identity attached to the object,
	// or "" when none is present.
	CustomerEmail() string
}

type PaymentIntent struct {
	ID           string `json:"id"`
	Amount       *int64 `json:"amount"`
	Currency     string `json:"currency"`
	ReceiptEmail string `json:"receipt_email"`
}

func (p *PaymentIntent) ObjectID() string { return p.ID }

func (p *PaymentIntent) AmountMinor() (int64, string, bool) {
	if p.Amount == nil || p.Currency == "" {
		return 0, "", false
	}
	return *p.Amount, p.Currency, true
}

func (p *PaymentIntent) CustomerEmail() string { return p.ReceiptEmail }

type Charge struct {
	ID           string `json:"id"`
	Amount       *int64 `json:"amount"`
	Currency     string `json:"currency"`
	ReceiptEmail string `json:"receipt_email"`
}

func (c *Charge) ObjectID() string { return c.ID }

func (c *Charge) AmountMinor() (int64, string, bool) {
	if c.Amount == nil || c.Currency == "" {
		return 0, "", false
	}
	return *c.Amount, c.Currency, true
}

func (c *Charge) CustomerEmail() string { return c.ReceiptEmail }

type Invoice struct {
	ID           string `json:"id"`
	AmountDue    *int64 `json:"amount_due"`
	AmountPaid   *int64 `json:"amount_paid"`
	Currency     string `json:"currency"`
	CustomerMail string `json:"customer_email"`
}

func (i *Invoice) ObjectID() string { return i.ID }

// AmountMinor prefers amount_due over amount_paid, mirroring the probe order
// amount, amount_total, amount_due, amount_paid.
func (i *Invoice) AmountMinor() (int64, string, bool) {
	if i.Currency == "" {
		return 0, "", false
	}
	if i.AmountDue != nil {
		return *i.AmountDue, i.Currency, true
	}
	if i.AmountPaid != nil {
		return *i.AmountPaid, i.Currency, true
	}
	return 0, "", false
}

func (i *Invoice) CustomerEmail() string { return i.CustomerMail }

type Customer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (c *Customer) ObjectID() string { return c.ID }

func (c *Customer) AmountMinor() (int64, string, bool) { return 0, "", false }

func (c *Customer) CustomerEmail() string { return c.Email }

type Subscription struct {
	ID string `json:"id"`
}

func (s *Subscription) ObjectID() string { return s.ID }

func (s *Subscription) AmountMinor() (int64, string, bool) { return 0, "", false }

func (s *Subscription) CustomerEmail() string { return "" }

type CheckoutSession struct {
	ID              string `json:"id"`
	AmountTotal     *int64 `json:"amount_total"`
	Currency        string `json:"currency"`
	CustomerMail    string `json:"customer_email"`
	CustomerDetails struct {
		Email string `json:"email"`
	} `json:"customer_details"`
}

func (s *CheckoutSession) ObjectID() string { return s.ID }

func (s *CheckoutSession) AmountMinor() (int64, string, bool) {
	if s.AmountTotal == nil || s.Currency == "" {
		return 0, "", false
	}
	return *s.AmountTotal, s.Currency, true
}

func (s *CheckoutSession) CustomerEmail() string {
	if s.CustomerMail != "" {
		return s.CustomerMail
	}
	return s.CustomerDetails.Email
}

// UnknownObject carries the raw mapping of any data.object whose
// discriminator we do not model. Field access falls back to priority-ordered
// probing over the raw keys.
type UnknownObject struct {
	Object string
	Raw    map[string]interface{}
}

func (u *UnknownObject) ObjectID() string {
	id, _ := u.Raw["id"].(string)
	return id
}

// Probe orders are vendor-derived and must stay stable: amounts in minor
// units first by specificity, then the currency aliases, then the email
// fields from most to least explicit.
var (
	amountProbes   = []string{"amount", "amount_total", "amount_due", "amount_paid"}
	currencyProbes = []string{"currency", "currency_code"}
	emailProbes    = []string{"customer_email", "receipt_email", "email"}
)

func (u *UnknownObject) AmountMinor() (int64, string, bool) {
	var amount int64
	found := false
	for _, key := range amountProbes {
		if n, ok := u.Raw[key].(float64); ok {
			amount = int64(n)
			found = true
			break
		}
	}
	if !found {
		return 0, "", false
	}
	for _, key := range currencyProbes {
		if currency, ok := u.Raw[key].(string); ok && currency != "" {
			return amount, currency, true
		}
	}
	return 0, "", false
}

func (u *UnknownObject) CustomerEmail() string {
	for _, key := range emailProbes {
		if email, ok := u.Raw[key].(string); ok && email != "" {
			return email
		}
	}
	if details, ok := u.Raw["customer_details"].(map[string]interface{}); ok {
		if email, ok := details["email"].(string); ok {
			return email
		}
	}
	return ""
}

func decodeDataObject(raw json.RawMessage, data map[string]interface{}) DataObject {
	kind, _ := data["object"].(string)

	var typed DataObject
	switch kind {
	case "payment_intent":
		typed = &PaymentIntent{}
	case "charge":
		typed = &Charge{}
	case "invoice":
		typed = &Invoice{}
	case "customer":
		typed = &Customer{}
	case "subscription":
		typed = &Subscription{}
	case "checkout.session":
		typed = &CheckoutSession{}
	default:
		return &UnknownObject{Object: kind, Raw: data}
	}
	if err := json.Unmarshal(raw, typed); err != nil {
		return &UnknownObject{Object: kind, Raw: data}
	}
	return typed
}

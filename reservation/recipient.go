package reservation

import (
	"encoding/json"
	"fmt"
)

type RecipientKind string

const (
	RecipientIndividual RecipientKind = "individual"
	RecipientCompany    RecipientKind = "company"
)

// BillingRecipient is the party invoices are addressed to. Each variant
// carries only the fields it needs.
type BillingRecipient interface {
	Kind() RecipientKind
	DisplayName() string
}

type IndividualRecipient struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
}

func (IndividualRecipient) Kind() RecipientKind { return RecipientIndividual }

func (i IndividualRecipient) DisplayName() string { return i.Name }

type CompanyRecipient struct {
	CompanyName   string `json:"companyName"`
	VATNumber     string `json:"vatNumber,omitempty"`
	Address       string `json:"address,omitempty"`
	ContactPerson string `json:"contactPerson,omitempty"`
}

func (CompanyRecipient) Kind() RecipientKind { return RecipientCompany }

func (c CompanyRecipient) DisplayName() string {
	if c.ContactPerson != "" {
		return fmt.Sprintf("%s (attn. %s)", c.CompanyName, c.ContactPerson)
	}
	return c.CompanyName
}

// Recipient wraps a BillingRecipient so it survives a JSON round trip as
// {"type": "...", ...variant fields}.
type Recipient struct {
	BillingRecipient
}

func (r Recipient) IsZero() bool {
	return r.BillingRecipient == nil
}

func (r Recipient) MarshalJSON() ([]byte, error) {
	switch v := r.BillingRecipient.(type) {
	case nil:
		return []byte("null"), nil
	case IndividualRecipient:
		return json.Marshal(struct {
			Type RecipientKind `json:"type"`
			IndividualRecipient
		}{RecipientIndividual, v})
	case CompanyRecipient:
		return json.Marshal(struct {
			Type RecipientKind `json:"type"`
			CompanyRecipient
		}{RecipientCompany, v})
	default:
		return nil, fmt.Errorf("unsupported billing recipient %T", v)
	}
}

func (r *Recipient) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		r.BillingRecipient = nil
		return nil
	}
	var head struct {
		Type RecipientKind `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	switch head.Type {
	case RecipientIndividual:
		var v IndividualRecipient
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		r.BillingRecipient = v
	case RecipientCompany:
		var v CompanyRecipient
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		r.BillingRecipient = v
	default:
		return fmt.Errorf("unknown billing recipient type %q", head.Type)
	}
	return nil
}

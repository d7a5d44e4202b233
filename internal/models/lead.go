package models

// LeadKind identifies which form produced a lead.
type LeadKind string

const (
	// LeadFranchise comes from the franchise inquiry form.
	LeadFranchise LeadKind = "franchise"
	// LeadContact comes from the general contact form.
	LeadContact LeadKind = "contact"
	// LeadNewsletter only carries an email address.
	LeadNewsletter LeadKind = "newsletter"
)

// Valid reports whether k is one of the known lead kinds.
func (k LeadKind) Valid() bool {
	switch k {
	case LeadFranchise, LeadContact, LeadNewsletter:
		return true
	}
	return false
}

// Lead is a single form submission.
type Lead struct {
	// ID is the unique identifier for the lead (UUID format).
	ID string `json:"id"`

	// Kind is the form the lead was submitted from.
	Kind LeadKind `json:"kind"`

	// Name of the person. Empty for newsletter sign-ups.
	Name string `json:"name,omitempty"`

	// Email is required for every kind.
	Email string `json:"email"`

	Phone string `json:"phone,omitempty"`

	// City is where a prospective franchisee wants to open a location.
	City string `json:"city,omitempty"`

	// Budget is the investment range picked on the franchise form, verbatim.
	Budget string `json:"budget,omitempty"`

	Message string `json:"message,omitempty"`

	// Source is the page path the form was submitted from.
	Source string `json:"source,omitempty"`

	// CreatedAt is the Unix timestamp when the lead was received.
	CreatedAt int64 `json:"createdAt"`
}

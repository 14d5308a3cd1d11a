package schema

import "time"

// ContactMessage stores messages submitted via the public contact form.
type ContactMessage struct {
	ID          int       `json:"id"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Email       string    `json:"email"`
	ServiceType *string   `json:"serviceType"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"createdAt"`
}

// InsertContactMessage is the subset of ContactMessage a visitor submits.
// Fields such as honeypots are not part of it and are dropped on decode.
type InsertContactMessage struct {
	FirstName   string  `json:"firstName" validate:"required,max=255"`
	LastName    string  `json:"lastName" validate:"required,max=255"`
	Email       string  `json:"email" validate:"required,email,max=255"`
	ServiceType *string `json:"serviceType,omitempty" validate:"omitempty,max=255"`
	Message     string  `json:"message" validate:"required,min=5,max=5000"`
}

// Service types offered on the contact form.
const (
	ServiceRegripping       = "regripping"
	ServiceCustomBuild      = "custom-build"
	ServiceShaftReplacement = "shaft-replacement"
	ServiceRustRemoval      = "rust-removal"
	ServiceOther            = "other"
)

var serviceLabels = map[string]string{
	ServiceRegripping:       "Regripping",
	ServiceCustomBuild:      "Custom Club Build",
	ServiceShaftReplacement: "Shaft Replacement",
	ServiceRustRemoval:      "Rust Removal & Polishing",
	ServiceOther:            "Other Services",
}

// ServiceLabel returns the human readable name of a service type. Unknown
// values are returned unchanged and a nil service type reads "Not specified".
func ServiceLabel(serviceType *string) string {
	if serviceType == nil {
		return "Not specified"
	}
	if label, ok := serviceLabels[*serviceType]; ok {
		return label
	}
	return *serviceType
}

// FullName joins first and last name.
func (m *ContactMessage) FullName() string {
	return m.FirstName + " " + m.LastName
}

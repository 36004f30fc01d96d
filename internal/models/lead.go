package models

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

// Lead source constants, one per capture form on the site.
const (
	SourceDemo       = "demo"
	SourceContact    = "contact"
	SourceNewsletter = "newsletter"
	SourceROIReport  = "roi-report"
	SourceChat       = "chat"
)

// LeadSources lists the accepted lead sources.
var LeadSources = []string{SourceDemo, SourceContact, SourceNewsletter, SourceROIReport, SourceChat}

// Lead is one form submission.
type Lead struct {
	ID          uuid.UUID          `json:"id"`
	Source      string             `json:"source"`
	Name        string             `json:"name"`
	Email       string             `json:"email"`
	Phone       string             `json:"phone"`
	Institution string             `json:"institution"`
	Role        string             `json:"role"`
	Message     string             `json:"message"`
	ROI         map[string]float64 `json:"roi,omitempty"` // calculator snapshot for roi-report leads
	PageURL     string             `json:"page_url"`
	CreatedAt   time.Time          `json:"created_at"`
	ForwardedAt *time.Time         `json:"forwarded_at"`
}

// Normalize trims fields and lowercases the email and source. Single-line
// fields have runs of whitespace, line breaks included, collapsed to one space.
func (l *Lead) Normalize() {
	l.Source = strings.ToLower(singleLine(l.Source))
	l.Name = singleLine(l.Name)
	l.Email = strings.ToLower(singleLine(l.Email))
	l.Phone = singleLine(l.Phone)
	l.Institution = singleLine(l.Institution)
	l.Role = singleLine(l.Role)
	l.Message = strings.TrimSpace(l.Message)
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Validate checks a submission before it is stored. Newsletter sign-ups only
// need an email; every other form also needs a name.
func (l *Lead) Validate() error {
	return validation.ValidateStruct(l,
		validation.Field(&l.Source, validation.Required, validation.In(toAny(LeadSources)...)),
		validation.Field(&l.Email, validation.Required, is.EmailFormat, validation.Length(3, 254)),
		validation.Field(&l.Name, validation.When(l.Source != SourceNewsletter, validation.Required), validation.Length(0, 200)),
		validation.Field(&l.Message, validation.Length(0, 5000)),
	)
}

// IsForwarded reports whether the lead reached the CRM webhook.
func (l *Lead) IsForwarded() bool {
	return l.ForwardedAt != nil
}

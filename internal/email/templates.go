package email

import (
	"fmt"
	"html"
	"strings"

	"corysite/internal/config"
	"corysite/internal/models"
	"corysite/internal/roi"
)

// Templates provides email template generation.
type Templates struct {
	cfg *config.Config
}

// NewTemplates creates a new templates instance.
func NewTemplates(cfg *config.Config) *Templates {
	return &Templates{cfg: cfg}
}

// baseHTML wraps content in a consistent HTML email template.
func (t *Templates) baseHTML(title, content string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #1f2937; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #4f46e5; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { background: #f9fafb; padding: 20px; border: 1px solid #e5e7eb; }
        .footer { background: #f3f4f6; padding: 15px; text-align: center; font-size: 12px; color: #6b7280; border-radius: 0 0 8px 8px; border: 1px solid #e5e7eb; border-top: none; }
        .button { display: inline-block; background: #4f46e5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; margin: 10px 0; }
        .info-box { background: white; border: 1px solid #e5e7eb; border-radius: 6px; padding: 15px; margin: 15px 0; }
        .label { font-weight: 600; color: #374151; }
        .value { color: #6b7280; }
        .highlight { color: #059669; font-weight: 600; }
    </style>
</head>
<body>
    <div class="header">
        <h1>%s</h1>
    </div>
    <div class="content">
        %s
    </div>
    <div class="footer">
        <p>This email was sent by %s</p>
        <p><a href="%s">%s</a></p>
    </div>
</body>
</html>`, html.EscapeString(title), html.EscapeString(t.cfg.SiteTitle), content, html.EscapeString(t.cfg.SiteTitle), t.cfg.BaseURL, t.cfg.BaseURL)
}

// footerText is the plain text signature.
func (t *Templates) footerText() string {
	return fmt.Sprintf("--\n%s\n%s", t.cfg.SiteTitle, t.cfg.BaseURL)
}

// sourceLabel names the form a lead came from.
func sourceLabel(source string) string {
	switch source {
	case models.SourceDemo:
		return "Demo request"
	case models.SourceContact:
		return "Contact form"
	case models.SourceNewsletter:
		return "Newsletter sign-up"
	case models.SourceROIReport:
		return "ROI report request"
	case models.SourceChat:
		return "Chat conversation"
	default:
		return source
	}
}

// reportFor projects a lead's calculator snapshot. ok is false when the
// lead carries no usable snapshot.
func reportFor(lead *models.Lead) (roi.Formatted, bool) {
	if len(lead.ROI) == 0 {
		return roi.Formatted{}, false
	}
	in, err := roi.RequestFromSnapshot(lead.ROI).Inputs()
	if err != nil {
		return roi.Formatted{}, false
	}
	return roi.Calculate(in).Format(), true
}

func reportRows(f roi.Formatted) [][2]string {
	return [][2]string{
		{"Additional applications", f.AdditionalApps},
		{"Additional enrollments", f.AdditionalEnrollments},
		{"Tuition lift", f.TuitionLift},
		{"Staff hours saved", f.StaffHoursSaved},
		{"Total benefit", f.TotalBenefit},
		{"Platform cost", f.PlatformCost},
		{"Net benefit", f.NetBenefit},
		{"Annual ROI", f.AnnualROI},
	}
}

// LeadCaptured generates the sales team alert for a new lead.
func (t *Templates) LeadCaptured(lead *models.Lead) (subject, htmlBody, textBody string) {
	who := lead.Name
	if who == "" {
		who = lead.Email
	}
	subject = fmt.Sprintf("[%s] %s: %s", t.cfg.SiteTitle, sourceLabel(lead.Source), who)

	details := [][2]string{
		{"Source", sourceLabel(lead.Source)},
		{"Name", lead.Name},
		{"Email", lead.Email},
		{"Phone", lead.Phone},
		{"Institution", lead.Institution},
		{"Role", lead.Role},
		{"Page", lead.PageURL},
	}

	var box, text strings.Builder
	for _, d := range details {
		if d[1] == "" {
			continue
		}
		fmt.Fprintf(&box, "            <p><span class=\"label\">%s:</span> %s</p>\n", d[0], html.EscapeString(d[1]))
		fmt.Fprintf(&text, "%s: %s\n", d[0], d[1])
	}

	content := fmt.Sprintf(`
        <p>A new lead was captured on the website.</p>

        <div class="info-box">
%s        </div>
    `, box.String())

	if lead.Message != "" {
		content += fmt.Sprintf(`
        <div class="info-box">
            <p class="label">Message</p>
            <p class="value">%s</p>
        </div>
    `, html.EscapeString(lead.Message))
		fmt.Fprintf(&text, "\nMessage:\n%s\n", lead.Message)
	}

	if report, ok := reportFor(lead); ok {
		content += t.reportHTML(report)
		text.WriteString("\n" + reportText(report))
	}

	htmlBody = t.baseHTML(subject, content)
	textBody = "New lead captured\n\n" + text.String() + "\n" + t.footerText()
	return
}

// LeadConfirmation generates the acknowledgement sent to the prospect.
// ROI report requests include the projection for the submitted inputs.
func (t *Templates) LeadConfirmation(lead *models.Lead) (subject, htmlBody, textBody string) {
	greeting := "Hi"
	if lead.Name != "" {
		greeting = "Hi " + lead.Name
	}

	report, hasReport := reportFor(lead)

	var intro string
	switch {
	case lead.Source == models.SourceROIReport && hasReport:
		subject = fmt.Sprintf("Your %s ROI report", t.cfg.SiteTitle)
		intro = "Here is the projection you built with our calculator."
	case lead.Source == models.SourceNewsletter:
		subject = fmt.Sprintf("Welcome to the %s newsletter", t.cfg.SiteTitle)
		intro = "You are subscribed. Expect enrollment playbooks and case studies in your inbox."
	case lead.Source == models.SourceDemo:
		subject = fmt.Sprintf("Your %s demo request", t.cfg.SiteTitle)
		intro = "Thanks for requesting a demo. Our team will reach out within one business day to schedule it."
	default:
		subject = fmt.Sprintf("Thanks for contacting %s", t.cfg.SiteTitle)
		intro = "We received your message and will get back to you shortly."
	}

	content := fmt.Sprintf(`
        <p>%s,</p>
        <p>%s</p>
    `, html.EscapeString(greeting), intro)
	text := fmt.Sprintf("%s,\n\n%s\n", greeting, intro)

	if hasReport {
		content += t.reportHTML(report)
		text += "\n" + reportText(report)
	}

	content += fmt.Sprintf(`
        <p style="text-align: center;">
            <a href="%s/roi" class="button">Open the ROI calculator</a>
        </p>
    `, t.cfg.BaseURL)
	text += fmt.Sprintf("\nROI calculator: %s/roi\n", t.cfg.BaseURL)

	htmlBody = t.baseHTML(subject, content)
	textBody = text + "\n" + t.footerText()
	return
}

func (t *Templates) reportHTML(f roi.Formatted) string {
	var b strings.Builder
	b.WriteString("\n        <div class=\"info-box\">\n            <p class=\"label\">Annual projection</p>\n")
	for _, row := range reportRows(f) {
		class := "value"
		if row[0] == "Net benefit" || row[0] == "Annual ROI" {
			class = "highlight"
		}
		fmt.Fprintf(&b, "            <p><span class=\"label\">%s:</span> <span class=\"%s\">%s</span></p>\n", row[0], class, html.EscapeString(row[1]))
	}
	b.WriteString("        </div>\n")
	return b.String()
}

func reportText(f roi.Formatted) string {
	var b strings.Builder
	b.WriteString("Annual projection\n")
	for _, row := range reportRows(f) {
		fmt.Fprintf(&b, "  %s: %s\n", row[0], row[1])
	}
	return b.String()
}

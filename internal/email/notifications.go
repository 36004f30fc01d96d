package email

import (
	"corysite/internal/config"
	"corysite/internal/logger"
	"corysite/internal/models"
)

// Notifier sends email notifications for lead events.
type Notifier struct {
	sender    Sender
	templates *Templates
	cfg       *config.Config
}

// NewNotifier creates a notifier backed by the SMTP service.
func NewNotifier(cfg *config.Config, log logger.Logger) *Notifier {
	return NewNotifierWithSender(cfg, NewService(cfg, log))
}

// NewNotifierWithSender creates a notifier that delivers through sender.
func NewNotifierWithSender(cfg *config.Config, sender Sender) *Notifier {
	return &Notifier{
		sender:    sender,
		templates: NewTemplates(cfg),
		cfg:       cfg,
	}
}

// NotifyLeadCaptured alerts the sales inbox and acknowledges the prospect.
// Chat leads get no acknowledgement since the conversation already replied.
func (n *Notifier) NotifyLeadCaptured(lead *models.Lead) {
	if !n.sender.IsEnabled() {
		return
	}

	if len(n.cfg.LeadNotifyEmails) > 0 {
		subject, htmlBody, textBody := n.templates.LeadCaptured(lead)
		n.sender.SendAsync(n.cfg.LeadNotifyEmails, subject, htmlBody, textBody)
	}

	if lead.Email == "" || lead.Source == models.SourceChat {
		return
	}

	subject, htmlBody, textBody := n.templates.LeadConfirmation(lead)
	n.sender.SendAsync([]string{lead.Email}, subject, htmlBody, textBody)
}

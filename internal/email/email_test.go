package email

import (
	"strings"
	"testing"

	"corysite/internal/config"
	"corysite/internal/logger"
)

func TestNewService(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *config.Config
		wantEnabled bool
	}{
		{
			name: "enabled when all SMTP settings configured",
			cfg: &config.Config{
				SMTPEnabled: true,
				SMTPHost:    "smtp.example.com",
				SMTPPort:    587,
				SMTPFrom:    "noreply@example.com",
			},
			wantEnabled: true,
		},
		{
			name: "disabled when SMTPEnabled is false",
			cfg: &config.Config{
				SMTPHost: "smtp.example.com",
				SMTPPort: 587,
				SMTPFrom: "noreply@example.com",
			},
			wantEnabled: false,
		},
		{
			name: "disabled when SMTPHost is empty",
			cfg: &config.Config{
				SMTPEnabled: true,
				SMTPPort:    587,
				SMTPFrom:    "noreply@example.com",
			},
			wantEnabled: false,
		},
		{
			name: "disabled when SMTPFrom is empty",
			cfg: &config.Config{
				SMTPEnabled: true,
				SMTPHost:    "smtp.example.com",
				SMTPPort:    587,
			},
			wantEnabled: false,
		},
		{
			name:        "disabled with empty config",
			cfg:         &config.Config{},
			wantEnabled: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.cfg, logger.NewTestLogger(t))
			if svc.IsEnabled() != tt.wantEnabled {
				t.Errorf("IsEnabled() = %v, want %v", svc.IsEnabled(), tt.wantEnabled)
			}
		})
	}
}

func TestService_SendEmail_Disabled(t *testing.T) {
	svc := NewService(&config.Config{}, logger.NewNoOpLogger())

	if err := svc.SendEmail([]string{"test@example.com"}, "Test", "<p>HTML</p>", "Text"); err != nil {
		t.Errorf("SendEmail() disabled error = %v, want nil", err)
	}
}

func TestService_SendEmail_NoRecipients(t *testing.T) {
	svc := NewService(&config.Config{
		SMTPEnabled: true,
		SMTPHost:    "smtp.invalid",
		SMTPPort:    587,
		SMTPFrom:    "noreply@example.com",
	}, logger.NewNoOpLogger())

	if err := svc.SendEmail(nil, "Test", "<p>HTML</p>", "Text"); err != nil {
		t.Errorf("SendEmail() with no recipients error = %v, want nil", err)
	}
}

func TestService_FromHeader(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.Config
		want string
	}{
		{"with display name", &config.Config{SMTPFrom: "hi@cory.example", SMTPFromName: "Cory"}, "Cory <hi@cory.example>"},
		{"address only", &config.Config{SMTPFrom: "hi@cory.example"}, "hi@cory.example"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.cfg, logger.NewNoOpLogger())
			if got := svc.fromHeader(); got != tt.want {
				t.Errorf("fromHeader() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildMessage(t *testing.T) {
	msg := buildMessage("Cory <hi@cory.example>", []string{"a@x.edu", "b@x.edu"}, "Subject line", "<p>HTML</p>", "Plain")

	checks := []string{
		"From: Cory <hi@cory.example>\r\n",
		"To: a@x.edu, b@x.edu\r\n",
		"Subject: Subject line\r\n",
		"MIME-Version: 1.0\r\n",
		"multipart/alternative; boundary=\"" + boundary + "\"",
		"text/plain; charset=\"UTF-8\"\r\n\r\nPlain\r\n",
		"text/html; charset=\"UTF-8\"\r\n\r\n<p>HTML</p>\r\n",
	}
	for _, check := range checks {
		if !strings.Contains(msg, check) {
			t.Errorf("buildMessage() missing %q", check)
		}
	}

	if !strings.HasSuffix(msg, "--"+boundary+"--\r\n") {
		t.Error("buildMessage() missing closing boundary")
	}
}

func TestBuildMessage_HeadersStayOnOneLine(t *testing.T) {
	msg := buildMessage("hi@cory.example", []string{"a@x.edu\r\nBcc: c@x.edu"}, "[Cory] Demo request: Pat\r\nBcc: victim@example.com", "", "Plain")

	headers, _, _ := strings.Cut(msg, "\r\n\r\n")
	for _, line := range strings.Split(headers, "\r\n") {
		if strings.HasPrefix(line, "Bcc:") {
			t.Errorf("buildMessage() emitted injected header %q", line)
		}
	}
	if strings.ContainsAny(strings.ReplaceAll(headers, "\r\n", ""), "\r\n") {
		t.Error("buildMessage() left a bare line break in the headers")
	}
	if !strings.Contains(headers, "To: a@x.edu Bcc: c@x.edu\r\n") {
		t.Errorf("buildMessage() To header = %q", headers)
	}
}

func TestBuildMessage_EncodesNonASCIISubject(t *testing.T) {
	msg := buildMessage("hi@cory.example", []string{"a@x.edu"}, "Demo request: José", "", "Plain")

	if !strings.Contains(msg, "Subject: =?utf-8?q?Demo_request:_Jos=C3=A9?=\r\n") {
		t.Errorf("buildMessage() subject not encoded: %q", msg)
	}
}

func TestBuildMessage_SkipsEmptyParts(t *testing.T) {
	msg := buildMessage("hi@cory.example", []string{"a@x.edu"}, "S", "", "Plain only")

	if strings.Contains(msg, "text/html") {
		t.Error("buildMessage() included an empty HTML part")
	}
	if !strings.Contains(msg, "Plain only") {
		t.Error("buildMessage() dropped the text part")
	}
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corysite/internal/roi"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("SERVER_ADDR", "")
	t.Setenv("FORWARD_INTERVAL", "")
	t.Setenv("LEAD_NOTIFY_EMAILS", "")

	cfg := Load()

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, ":3000", cfg.ServerAddr)
	assert.Equal(t, 5*time.Minute, cfg.ForwardInterval)
	assert.Empty(t, cfg.LeadNotifyEmails)
	assert.True(t, cfg.IsDev())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("RATE_LIMIT_MAX", "25")
	t.Setenv("FORWARD_INTERVAL", "30s")
	t.Setenv("LEAD_NOTIFY_EMAILS", "sales@example.com, ops@example.com ,")
	t.Setenv("ADMIN_ENABLED", "1")
	t.Setenv("LEAD_WEBHOOK_URL", "https://crm.example.com/hook")

	cfg := Load()

	assert.False(t, cfg.IsDev())
	assert.Equal(t, 25, cfg.RateLimitMax)
	assert.Equal(t, 30*time.Second, cfg.ForwardInterval)
	assert.Equal(t, []string{"sales@example.com", "ops@example.com"}, cfg.LeadNotifyEmails)
	assert.True(t, cfg.AdminEnabled)
	assert.True(t, cfg.IsForwardingEnabled())
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("RATE_LIMIT_MAX", "lots")
	t.Setenv("FORWARD_INTERVAL", "soon")

	cfg := Load()

	assert.Equal(t, 100, cfg.RateLimitMax)
	assert.Equal(t, 5*time.Minute, cfg.ForwardInterval)
}

func TestIsEmailEnabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want bool
	}{
		{"fully configured", Config{SMTPEnabled: true, SMTPHost: "smtp.example.com", SMTPFrom: "noreply@example.com"}, true},
		{"switched off", Config{SMTPHost: "smtp.example.com", SMTPFrom: "noreply@example.com"}, false},
		{"no host", Config{SMTPEnabled: true, SMTPFrom: "noreply@example.com"}, false},
		{"no from", Config{SMTPEnabled: true, SMTPHost: "smtp.example.com"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.IsEmailEnabled())
		})
	}
}

const siteYAML = `
roi:
  default_preset: community
  presets:
    community:
      label: Community college
      inputs:
        monthly_inquiries: 1200
        contact_rate: 30
        conversion_rate: 15
        avg_tuition: 4500
        staff_cost: 28
        touches_per_lead: 5
        cory_contact_rate: 90
        response_uplift: 20
        automation_coverage: 80
    online:
      label: Online university
      inputs:
        monthly_inquiries: 3000
        contact_rate: 40
        conversion_rate: 10
        avg_tuition: 12000
        staff_cost: 30
        touches_per_lead: 6
        cory_contact_rate: 90
        response_uplift: 25
        automation_coverage: 85
categories:
  - slug: enrollment
    name: Enrollment Growth
featured_limit: 6
`

func TestParseSiteConfig(t *testing.T) {
	cfg, err := ParseSiteConfig([]byte(siteYAML))
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.Featured)
	assert.Equal(t, []string{"community", "online"}, cfg.PresetNames())

	p, ok := cfg.Preset("community")
	require.True(t, ok)
	assert.Equal(t, "Community college", p.Label)
	assert.Equal(t, 1200.0, p.Inputs.MonthlyInquiries)
	assert.Equal(t, 80.0, p.Inputs.AutomationCoverage)

	// Unknown names fall back to the default preset.
	p, ok = cfg.Preset("missing")
	assert.False(t, ok)
	assert.Equal(t, "Community college", p.Label)

	require.NotNil(t, cfg.GetCategoryBySlug("enrollment"))
	assert.Nil(t, cfg.GetCategoryBySlug("nope"))

	// CTA labels keep their defaults when the file omits them.
	assert.Equal(t, "Book a demo", cfg.CTA.DemoLabel)
}

func TestParseSiteConfig_UndefinedDefaultPreset(t *testing.T) {
	_, err := ParseSiteConfig([]byte("roi:\n  default_preset: ghost\n"))
	assert.Error(t, err)
}

func TestParseSiteConfig_RejectsBadPresetInputs(t *testing.T) {
	const complete = `
        contact_rate: 30
        conversion_rate: 15
        avg_tuition: 4500
        staff_cost: 28
        touches_per_lead: 5
        cory_contact_rate: 90
        response_uplift: 20
        automation_coverage: 80
`
	tests := []struct {
		name      string
		inquiries string
		wantField string
	}{
		{"not a number", "        monthly_inquiries: .nan\n", "monthlyInquiries"},
		{"infinite", "        monthly_inquiries: .inf\n", "monthlyInquiries"},
		{"missing field", "", "monthlyInquiries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := "roi:\n  default_preset: community\n  presets:\n    community:\n      label: Community college\n      inputs:\n" + tt.inquiries + complete

			cfg, err := ParseSiteConfig([]byte(doc))
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.ErrorIs(t, err, roi.ErrInvalidInput)
			assert.ErrorContains(t, err, `preset "community"`)
			assert.ErrorContains(t, err, tt.wantField)
		})
	}
}

func TestParseSiteConfig_CompletePresetAccepted(t *testing.T) {
	cfg, err := ParseSiteConfig([]byte(`
roi:
  presets:
    default:
      label: Zero volume
      inputs: {monthly_inquiries: 0, contact_rate: 45, conversion_rate: 25, avg_tuition: 25000, staff_cost: 35, touches_per_lead: 8, cory_contact_rate: 92, response_uplift: 25, automation_coverage: 85}
`))
	require.NoError(t, err)

	p, ok := cfg.Preset("default")
	require.True(t, ok)
	assert.Equal(t, 0.0, p.Inputs.MonthlyInquiries, "zero is a value, not a missing field")
	assert.Equal(t, 85.0, p.Inputs.AutomationCoverage)
}

func TestLoadSiteConfig_MissingFile(t *testing.T) {
	cfg, err := LoadSiteConfig(t.TempDir() + "/absent.yaml")
	require.NoError(t, err)

	p, ok := cfg.Preset("default")
	require.True(t, ok)
	assert.Equal(t, roi.Default(), p.Inputs)
}

func TestSiteConfig_NilSafe(t *testing.T) {
	var cfg *SiteConfig
	p, ok := cfg.Preset("anything")
	assert.False(t, ok)
	assert.Equal(t, roi.Default(), p.Inputs)
	assert.Nil(t, cfg.PresetNames())
	assert.Nil(t, cfg.GetCategoryBySlug("x"))
}

package handlers

import (
	"github.com/gofiber/fiber/v3"

	"corysite/internal/config"
)

// BrandingData contains site branding information for templates.
type BrandingData struct {
	SiteTitle    string
	SiteTagline  string
	SiteFooter   string
	SiteLogoURL  string
	DemoLabel    string
	ROILabel     string
	AdminEnabled bool
}

// GetBrandingData returns branding data from config for template rendering.
func GetBrandingData(cfg *config.Config, site *config.SiteConfig) BrandingData {
	b := BrandingData{
		SiteTitle:    cfg.SiteTitle,
		SiteTagline:  cfg.SiteTagline,
		SiteFooter:   cfg.SiteFooter,
		SiteLogoURL:  cfg.SiteLogoURL,
		AdminEnabled: cfg.AdminEnabled,
	}
	if site != nil {
		b.DemoLabel = site.CTA.DemoLabel
		b.ROILabel = site.CTA.ROILabel
	}
	return b
}

// MergeBranding adds branding data to a fiber.Map for template rendering.
func MergeBranding(data fiber.Map, cfg *config.Config, site *config.SiteConfig) fiber.Map {
	branding := GetBrandingData(cfg, site)
	data["SiteTitle"] = branding.SiteTitle
	data["SiteTagline"] = branding.SiteTagline
	data["SiteFooter"] = branding.SiteFooter
	data["SiteLogoURL"] = branding.SiteLogoURL
	data["DemoLabel"] = branding.DemoLabel
	data["ROILabel"] = branding.ROILabel
	data["AdminEnabled"] = branding.AdminEnabled
	return data
}

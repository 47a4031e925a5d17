package models

import (
	"strings"
	"time"
)

// BrandRecord holds a client's visual identity settings merged into the
// report context at generation time.
type BrandRecord struct {
	ClientID       string    `json:"client_id"`
	DisplayName    string    `json:"display_name"`
	PrimaryColor   string    `json:"primary_color,omitempty"` // hex, e.g. "#004481"
	SecondaryColor string    `json:"secondary_color,omitempty"`
	FontFamily     string    `json:"font_family,omitempty"` // e.g. "Roboto"
	LogoPath       string    `json:"logo_path,omitempty"`   // filled by backend on upload
	WebsiteURL     string    `json:"website_url,omitempty"`
	CreatedAt      time.Time `json:"created_at,omitempty"`
	UpdatedAt      time.Time `json:"updated_at,omitempty"`
}

// NormalizeClientID canonicalizes a client identifier: lowercase, with
// spaces and dashes collapsed to underscores. Path separators are folded
// and leading dots stripped since the identifier names logo and report
// files on disk. The identifier is the store key and is immutable once
// created.
func NormalizeClientID(id string) string {
	id = strings.TrimSpace(strings.ToLower(id))
	for _, sep := range []string{" ", "-", "/", "\\"} {
		id = strings.ReplaceAll(id, sep, "_")
	}
	return strings.TrimLeft(id, ".")
}

// BrandContext returns the nested map exposed to templates under the
// "brand" key.
func (b BrandRecord) BrandContext() map[string]interface{} {
	return map[string]interface{}{
		"primary_color":   b.PrimaryColor,
		"secondary_color": b.SecondaryColor,
		"font_family":     b.FontFamily,
		"logo_path":       b.LogoPath,
		"website_url":     b.WebsiteURL,
	}
}

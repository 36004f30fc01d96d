package models

import "corysite/internal/roi"

// ROIResponse is returned by the calculator API.
type ROIResponse struct {
	Inputs    roi.Inputs    `json:"inputs"`
	Results   roi.Results   `json:"results"`
	Formatted roi.Formatted `json:"formatted"`
}

// LeadResponse confirms a captured lead.
type LeadResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// ContentSummary is the list form of Content, without the body.
type ContentSummary struct {
	Title    string   `json:"title"`
	Slug     string   `json:"slug"`
	Excerpt  string   `json:"excerpt"`
	Type     string   `json:"type"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	Featured bool     `json:"featured"`
}

// ContentDetail pairs an item with its rendered body.
type ContentDetail struct {
	Content
	HTML string `json:"html"`
}

// Summarize drops the body from a content item.
func Summarize(c Content) ContentSummary {
	return ContentSummary{
		Title:    c.Title,
		Slug:     c.Slug,
		Excerpt:  c.Excerpt,
		Type:     c.Type,
		Category: c.Category,
		Tags:     c.Tags,
		Featured: c.Featured,
	}
}

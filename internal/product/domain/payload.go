package domain

import (
	"fmt"
	"html"
	"strings"
)

// StatusDraft is the only status the pipeline ever submits. Products go
// live through admin review on the website, never straight from here.
const StatusDraft = "draft"

const seoDescriptionLimit = 160

// ImageRef references a pre-uploaded CDN image. Images are never
// embedded inline; only HTTPS URLs travel in the payload.
type ImageRef struct {
	URL   string `json:"url"`
	Alt   string `json:"alt"`
	Order int    `json:"order"`
}

// Payload is the normalized unit submitted to the product-creation
// endpoint. It is built once per product and immutable once sent; a
// retried submission reuses the same payload, including its SKU.
type Payload struct {
	Title           string     `json:"title"`
	SKU             string     `json:"sku"`
	Category        string     `json:"category"`
	Subcategory     string     `json:"subcategory,omitempty"`
	Description     string     `json:"description"`
	DescriptionHTML string     `json:"descriptionHtml,omitempty"`
	Price           float64    `json:"price"`
	OriginalPrice   *float64   `json:"originalPrice,omitempty"`
	Condition       string     `json:"condition"`
	Era             *string    `json:"era"`
	Origin          *string    `json:"origin"`
	Images          []ImageRef `json:"images"`
	SEOTitle        string     `json:"seoTitle"`
	SEODescription  string     `json:"seoDescription"`
	SEOKeywords     []string   `json:"seoKeywords"`
	Status          string     `json:"status"`
}

// Draft is the raw form/worker state a payload is built from.
type Draft struct {
	Title           string
	SKU             string
	Category        string
	Subcategory     string
	Description     string
	DescriptionHTML string
	Price           float64
	OriginalPrice   float64
	Condition       string
	Era             string
	Origin          string
	Images          []ImageRef
	SEOTitle        string
	SEODescription  string
	// SEOKeywords is the comma-separated string as typed, e.g.
	// "wwii, military, , helmet".
	SEOKeywords string
}

// Normalize derives the submission payload from a draft. It is pure:
// same draft in, same payload out, no side effects.
func (d Draft) Normalize() Payload {
	title := strings.TrimSpace(d.Title)
	description := strings.TrimSpace(d.Description)

	descriptionHTML := d.DescriptionHTML
	if descriptionHTML == "" && description != "" {
		descriptionHTML = "<p>" + html.EscapeString(description) + "</p>"
	}

	var originalPrice *float64
	if d.OriginalPrice > 0 {
		v := d.OriginalPrice
		originalPrice = &v
	}

	seoTitle := strings.TrimSpace(d.SEOTitle)
	if seoTitle == "" {
		seoTitle = title
	}

	seoDescription := strings.TrimSpace(d.SEODescription)
	if seoDescription == "" {
		seoDescription = truncate(description, seoDescriptionLimit)
	}

	images := make([]ImageRef, len(d.Images))
	for i, img := range d.Images {
		order := img.Order
		if order == 0 {
			order = i
		}
		alt := strings.TrimSpace(img.Alt)
		if alt == "" {
			alt = fmt.Sprintf("%s - Image %d", title, order+1)
		}
		images[i] = ImageRef{URL: strings.TrimSpace(img.URL), Alt: alt, Order: order}
	}

	return Payload{
		Title:           title,
		SKU:             strings.ToUpper(strings.TrimSpace(d.SKU)),
		Category:        strings.TrimSpace(d.Category),
		Subcategory:     strings.TrimSpace(d.Subcategory),
		Description:     description,
		DescriptionHTML: descriptionHTML,
		Price:           d.Price,
		OriginalPrice:   originalPrice,
		Condition:       strings.TrimSpace(d.Condition),
		Era:             optional(d.Era),
		Origin:          optional(d.Origin),
		Images:          images,
		SEOTitle:        seoTitle,
		SEODescription:  seoDescription,
		SEOKeywords:     SplitKeywords(d.SEOKeywords),
		Status:          StatusDraft,
	}
}

// SplitKeywords splits a comma-separated keyword string, trims each
// token and drops blanks. Order is preserved; duplicates are allowed.
func SplitKeywords(raw string) []string {
	keywords := make([]string, 0)
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		keywords = append(keywords, token)
	}
	return keywords
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// truncate keeps the first limit characters, never splitting a
// multibyte rune.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

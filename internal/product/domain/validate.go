package domain

import (
	"fmt"
	"strings"

	"github.com/kollect-it/catalog/internal/reference"
	skudomain "github.com/kollect-it/catalog/internal/sku/domain"
)

type Violation struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationErrors carries every violated rule at once, so a caller can
// fix all of them in one pass instead of replaying submissions.
type ValidationErrors struct {
	Violations []Violation `json:"errors"`
}

func (v *ValidationErrors) Error() string {
	if len(v.Violations) == 0 {
		return "validation error"
	}
	messages := make([]string, 0, len(v.Violations))
	for _, violation := range v.Violations {
		messages = append(messages, violation.Message)
	}
	return "validation error: " + strings.Join(messages, "; ")
}

// Messages returns the human-readable message per violation, in order.
func (v *ValidationErrors) Messages() []string {
	messages := make([]string, 0, len(v.Violations))
	for _, violation := range v.Violations {
		messages = append(messages, violation.Message)
	}
	return messages
}

// Validate checks the payload against the submission contract and
// returns a *ValidationErrors listing every violation, or nil.
func (p Payload) Validate(catalog reference.Catalog) error {
	var violations []Violation
	add := func(field, code, message string) {
		violations = append(violations, Violation{Field: field, Code: code, Message: message})
	}

	if strings.TrimSpace(p.Title) == "" {
		add("title", "missing_title", "Missing required field: title")
	}
	if !skudomain.Valid(p.SKU) {
		add("sku", "invalid_sku", "Invalid SKU format (expected: PREFIX-YYYY-NNNN)")
	}
	if strings.TrimSpace(p.Category) == "" {
		add("category", "missing_category", "Missing required field: category")
	} else if !catalog.IsCategory(p.Category) {
		add("category", "unknown_category", fmt.Sprintf("Unknown category: %s", p.Category))
	}
	if strings.TrimSpace(p.Description) == "" {
		add("description", "missing_description", "Missing required field: description")
	}
	if p.Price <= 0 {
		add("price", "invalid_price", "Price must be a positive number")
	}
	if strings.TrimSpace(p.Condition) == "" {
		add("condition", "missing_condition", "Missing required field: condition")
	}
	if len(p.Images) == 0 {
		add("images", "missing_images", "At least one image is required")
	} else {
		for i, img := range p.Images {
			if strings.TrimSpace(img.URL) == "" {
				add("images", "missing_image_url", fmt.Sprintf("Image %d missing URL", i+1))
			}
		}
	}

	if len(violations) == 0 {
		return nil
	}
	return &ValidationErrors{Violations: violations}
}

package domain

import (
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

var (
	ErrDuplicateSKU = errors.New("duplicate_sku")
	ErrNotFound     = errors.New("product_not_found")

	// ErrInvalidPageToken means the client sent a cursor it did not get
	// from us. Bad input, not a server fault.
	ErrInvalidPageToken = errors.New("invalid_page_token")
)

// Product is a stored catalog entry. Products arrive as drafts from the
// desktop pipeline and go live through admin review, never directly.
type Product struct {
	ID              int64             `json:"id" gorm:"primaryKey"`
	Slug            string            `json:"slug" gorm:"type:text;not null;uniqueIndex:ux_products_slug"`
	SKU             string            `json:"sku" gorm:"column:sku;type:text;not null;uniqueIndex:ux_products_sku"`
	Title           string            `json:"title" gorm:"type:text;not null"`
	Category        string            `json:"category" gorm:"type:text;not null;index"`
	Subcategory     string            `json:"subcategory,omitempty" gorm:"type:text"`
	Description     string            `json:"description" gorm:"type:text;not null"`
	DescriptionHTML string            `json:"descriptionHtml,omitempty" gorm:"column:description_html;type:text"`
	Price           float64           `json:"price" gorm:"not null"`
	OriginalPrice   *float64          `json:"originalPrice,omitempty"`
	Condition       string            `json:"condition" gorm:"type:text;not null"`
	Era             *string           `json:"era" gorm:"type:text"`
	Origin          *string           `json:"origin" gorm:"type:text"`
	SEOTitle        string            `json:"seoTitle" gorm:"column:seo_title;type:text"`
	SEODescription  string            `json:"seoDescription" gorm:"column:seo_description;type:text"`
	// SEOKeywords is stored as a pq array literal in a text column so
	// the same model migrates on both postgres and sqlite.
	SEOKeywords pq.StringArray    `json:"seoKeywords" gorm:"column:seo_keywords;type:text"`
	Status      string            `json:"status" gorm:"type:text;not null;default:draft"`
	Metadata    datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	Images      []ProductImage    `json:"images" gorm:"foreignKey:ProductID"`
	CreatedAt   time.Time         `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time         `json:"updated_at" gorm:"not null"`
}

func (Product) TableName() string { return "products" }

type ProductImage struct {
	ID        int64  `json:"id" gorm:"primaryKey"`
	ProductID int64  `json:"product_id" gorm:"not null;index"`
	URL       string `json:"url" gorm:"type:text;not null"`
	Alt       string `json:"alt" gorm:"type:text"`
	Order     int    `json:"order" gorm:"column:sort_order;not null"`
}

func (ProductImage) TableName() string { return "product_images" }

type ListRequest struct {
	Category  string `form:"category"`
	Status    string `form:"status"`
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size,default=20"`
}

// Response is the wire shape of a stored product. IDs are rendered as
// strings so JavaScript clients never lose snowflake precision.
type Response struct {
	ID              string         `json:"id"`
	Slug            string         `json:"slug"`
	SKU             string         `json:"sku"`
	Title           string         `json:"title"`
	Category        string         `json:"category"`
	Subcategory     string         `json:"subcategory,omitempty"`
	Description     string         `json:"description"`
	DescriptionHTML string         `json:"descriptionHtml,omitempty"`
	Price           float64        `json:"price"`
	OriginalPrice   *float64       `json:"originalPrice,omitempty"`
	Condition       string         `json:"condition"`
	Era             *string        `json:"era"`
	Origin          *string        `json:"origin"`
	SEOTitle        string         `json:"seoTitle"`
	SEODescription  string         `json:"seoDescription"`
	SEOKeywords     []string       `json:"seoKeywords"`
	Status          string         `json:"status"`
	Images          []ImageInfo    `json:"images"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

type ImageInfo struct {
	URL   string `json:"url"`
	Alt   string `json:"alt"`
	Order int    `json:"order"`
}

// ListResponse pairs a page of products with its cursor.
type ListResponse struct {
	Products      []Response `json:"products"`
	NextPageToken string     `json:"next_page_token"`
	HasMore       bool       `json:"has_more"`
}

// RebuildResult reports a counter rebuild: how many SKUs were scanned
// and the highest number found per (prefix, year).
type RebuildResult struct {
	Scanned  int            `json:"scanned"`
	Skipped  int            `json:"skipped"`
	Counters map[string]int `json:"counters"`
}

package domain

import "time"

// CatalogProduct is a product of the demo storefront.
type CatalogProduct struct {
	ID          int64     `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	Name        string    `gorm:"index" json:"name"`
	Price       float64   `json:"price"`                  // price in main currency units
	Image       string    `gorm:"size:1024" json:"image"` // URL to product image
	Description string    `gorm:"size:2048" json:"description"`
	Sort        int       `json:"sort"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName Specify table name
func (CatalogProduct) TableName() string {
	return "store_catalog_product"
}

// UploadProduct is a product record created through the upload wizard.
// Records are scoped to the session that created them.
type UploadProduct struct {
	ID          int64     `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	SessionID   string    `gorm:"index;size:64" json:"-"`
	Name        string    `gorm:"index" json:"name"`
	Price       float64   `json:"price"`
	Image       string    `gorm:"size:1024" json:"image"`
	Description string    `gorm:"size:4096" json:"description"`
	Stock       int       `json:"stock"`
	Supplier    string    `json:"supplier"`
	Variations  []string  `gorm:"serializer:json" json:"variations"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName Specify table name
func (UploadProduct) TableName() string {
	return "store_upload_product"
}

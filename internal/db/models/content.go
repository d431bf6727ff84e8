package models

import "time"

// SettingsKey is the key of the single settings row.
const SettingsKey = "global"

// ServiceRow is a catalog entry on the backend.
type ServiceRow struct {
	ID          string   `gorm:"primaryKey;size:64"       json:"id"`
	Category    string   `gorm:"size:100"                 json:"category"`
	Title       string   `gorm:"size:255;not null"        json:"title"`
	Price       float64  `                                json:"price"`
	Duration    *int     `                                json:"duration"`
	LinkURL     string   `gorm:"size:1024"                json:"link_url"`
	Description string   `gorm:"type:text"                json:"description"`
	Featured    bool     `                                json:"featured"`
	OrderIndex  int      `gorm:"index"                    json:"order_index"`
	CreatedAt   string   `gorm:"size:32"                  json:"created_at"`
	UpdatedAt   string   `gorm:"size:32"                  json:"updated_at"`
}

// TableName overrides the gorm default.
func (ServiceRow) TableName() string { return "services" }

// GalleryRow is an image of the gallery stored in object storage.
type GalleryRow struct {
	ID         string `gorm:"primaryKey;size:64" json:"id"`
	ImageURL   string `gorm:"size:1024;not null" json:"image_url"`
	Alt        string `gorm:"size:255"           json:"alt"`
	OrderIndex int    `gorm:"index"              json:"order_index"`
	CreatedAt  string `gorm:"size:32"            json:"created_at"`
	UpdatedAt  string `gorm:"size:32"            json:"updated_at"`
}

// TableName overrides the gorm default.
func (GalleryRow) TableName() string { return "gallery" }

// ReviewRow is a customer review. The author column is called name in the admin.
type ReviewRow struct {
	ID         string `gorm:"primaryKey;size:64" json:"id"`
	Author     string `gorm:"size:255;not null"  json:"author"`
	Rating     int    `gorm:"not null"           json:"rating"`
	Text       string `gorm:"type:text"          json:"text"`
	Date       string `gorm:"size:64"            json:"date"`
	OrderIndex int    `gorm:"index"              json:"order_index"`
	CreatedAt  string `gorm:"size:32"            json:"created_at"`
}

// TableName overrides the gorm default.
func (ReviewRow) TableName() string { return "reviews" }

// SettingsRow stores the settings aggregate as JSON under a fixed key.
type SettingsRow struct {
	Key       string    `gorm:"primaryKey;size:64" json:"key"`
	Value     []byte    `                          json:"-"`
	UpdatedAt time.Time `                          json:"updated_at"`
}

// TableName overrides the gorm default.
func (SettingsRow) TableName() string { return "settings" }

package property

import (
	"time"

	"github.com/lib/pq"
)

// Type is the listing category.
type Type string

const (
	ForSale Type = "SELL"
	ForRent Type = "RENT"
)

type Property struct {
	ID           string         `json:"id" db:"property_id"`
	OwnerID      string         `json:"-" db:"owner_id"`
	AgentID      string         `json:"agentId" db:"agent_id"`
	Title        string         `json:"title" db:"title"`
	Type         Type           `json:"propertyType" db:"property_type"`
	Description  string         `json:"description" db:"description"`
	State        string         `json:"state" db:"state"`
	Country      string         `json:"country" db:"country"`
	Location     string         `json:"location" db:"location"`
	Bedroom      int            `json:"bedroom" db:"bedroom"`
	Bathroom     int            `json:"bathroom" db:"bathroom"`
	Size         int            `json:"size" db:"size"`
	MainImageURL string         `json:"mainImageUrl" db:"main_image_url"`
	ImageURLs    pq.StringArray `json:"imageUrls" db:"image_urls"`
	Price        float64        `json:"price" db:"price"`
	IsPublished  bool           `json:"isPublished" db:"is_published"`
	IsActive     bool           `json:"isActive" db:"is_active"`
	CreatedAt    time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time      `json:"updatedAt" db:"updated_at"`
}

type PropertyNew struct {
	Title        string   `json:"title" validate:"required,max=50"`
	Type         string   `json:"propertyType" validate:"required,oneof=SELL RENT"`
	Description  string   `json:"description" validate:"required,max=500"`
	State        string   `json:"state" validate:"required"`
	Country      string   `json:"country" validate:"required"`
	Location     string   `json:"location" validate:"required"`
	Bedroom      int      `json:"bedroom" validate:"gte=0"`
	Bathroom     int      `json:"bathroom" validate:"gte=0"`
	Size         int      `json:"size" validate:"gte=0"`
	MainImageURL string   `json:"mainImageUrl" validate:"required"`
	ImageURLs    []string `json:"imageUrls" validate:"max=4"`
	Price        float64  `json:"price" validate:"gte=0"`
	IsPublished  bool     `json:"isPublished"`
}

type PropertyUp struct {
	Title        *string  `json:"title" validate:"omitempty,max=50"`
	Type         *string  `json:"propertyType" validate:"omitempty,oneof=SELL RENT"`
	Description  *string  `json:"description" validate:"omitempty,max=500"`
	State        *string  `json:"state"`
	Country      *string  `json:"country"`
	Location     *string  `json:"location"`
	Bedroom      *int     `json:"bedroom" validate:"omitempty,gte=0"`
	Bathroom     *int     `json:"bathroom" validate:"omitempty,gte=0"`
	Size         *int     `json:"size" validate:"omitempty,gte=0"`
	MainImageURL *string  `json:"mainImageUrl"`
	ImageURLs    []string `json:"imageUrls" validate:"omitempty,max=4"`
	Price        *float64 `json:"price" validate:"omitempty,gte=0"`
	IsPublished  *bool    `json:"isPublished"`
}

// Filter narrows the public listing search. Zero values mean "no
// constraint"; invalid price inputs are dropped before it is built.
type Filter struct {
	Type     Type
	Country  string
	State    string
	Location string
	MinPrice *float64
	MaxPrice *float64
	Search   string

	// All includes unpublished and inactive listings; only admin
	// callers get it.
	All bool
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

type User struct {
	ID             uint      `gorm:"primaryKey;autoIncrement"          json:"id"`
	Email          string    `gorm:"size:255;uniqueIndex;not null"     json:"email"`
	HashedPassword string    `gorm:"size:255;not null"                 json:"-"`
	FullName       string    `gorm:"size:255"                          json:"full_name"`
	Phone          string    `gorm:"size:20"                           json:"phone"`
	Address        string    `gorm:"type:text"                         json:"address"`
	City           string    `gorm:"size:100"                          json:"city"`
	State          string    `gorm:"size:100"                          json:"state"`
	Postcode       string    `gorm:"size:20"                           json:"postcode"`
	Country        string    `gorm:"size:100"                          json:"country"`
	IsActive       bool      `gorm:"not null"                          json:"is_active"`
	IsAdmin        bool      `gorm:"not null;default:false"            json:"is_admin"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Category struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"      json:"id"`
	Name        string    `gorm:"size:100;not null"             json:"name"`
	Slug        string    `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text"                     json:"description"`
	IsActive    bool      `gorm:"not null"                      json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Product struct {
	ID          uint                `gorm:"primaryKey;autoIncrement"       json:"id"`
	Name        string              `gorm:"size:255;not null;index"        json:"name"`
	Description string              `gorm:"type:text"                      json:"description"`
	Price       decimal.Decimal     `gorm:"type:numeric(10,2);not null"    json:"price"`
	Stock       int                 `gorm:"not null;default:0"             json:"stock"`
	Image       string              `gorm:"size:255"                       json:"image"`
	IsActive    bool                `gorm:"not null;index"                 json:"is_active"`
	CategoryID  *uint               `gorm:"index"                          json:"category_id"`
	Category    *Category           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"category,omitempty"`
	Brand       string              `gorm:"size:100"                       json:"brand"`
	Weight      decimal.NullDecimal `gorm:"type:numeric(10,2)"             json:"weight"`
	Dimensions  string              `gorm:"size:100"                       json:"dimensions"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

type Order struct {
	ID               uint            `gorm:"primaryKey;autoIncrement"           json:"id"`
	UserID           uint            `gorm:"not null;index"                     json:"user_id"`
	OrderNumber      string          `gorm:"size:50;uniqueIndex;not null"       json:"order_number"`
	Status           OrderStatus     `gorm:"size:20;not null;index"             json:"status"`
	TotalAmount      decimal.Decimal `gorm:"type:numeric(10,2);not null"        json:"total_amount"`
	PaymentMethod    PaymentMethod   `gorm:"size:20;not null"                   json:"payment_method"`
	PaymentID        string          `gorm:"size:255"                           json:"payment_id"`
	ShippingAddress  string          `gorm:"type:text;not null"                 json:"shipping_address"`
	ShippingCity     string          `gorm:"size:100;not null"                  json:"shipping_city"`
	ShippingState    string          `gorm:"size:100;not null"                  json:"shipping_state"`
	ShippingPostcode string          `gorm:"size:20;not null"                   json:"shipping_postcode"`
	ShippingCountry  string          `gorm:"size:100;not null"                  json:"shipping_country"`
	ShippingPhone    string          `gorm:"size:20"                            json:"shipping_phone"`
	ShippingFee      decimal.Decimal `gorm:"type:numeric(10,2);not null"        json:"shipping_fee"`
	Tax              decimal.Decimal `gorm:"type:numeric(10,2);not null"        json:"tax"`
	Notes            string          `gorm:"type:text"                          json:"notes"`
	Items            []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// OrderItem is written once with its order; prices are snapshots.
type OrderItem struct {
	ID         uint            `gorm:"primaryKey;autoIncrement"    json:"id"`
	OrderID    uint            `gorm:"not null;index"              json:"order_id"`
	ProductID  uint            `gorm:"not null;index"              json:"product_id"`
	Product    *Product        `json:"product,omitempty"`
	Quantity   int             `gorm:"not null"                    json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total_price"`
	CreatedAt  time.Time       `json:"created_at"`
}

type CartItem struct {
	ID        uint      `gorm:"primaryKey"                              json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_product"   json:"user_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_user_product"   json:"product_id"`
	Product   *Product  `json:"product,omitempty"`
	Quantity  int       `gorm:"not null;default:1"                      json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// All lists every persisted model in dependency order.
func All() []any {
	return []any{&User{}, &Category{}, &Product{}, &Order{}, &OrderItem{}, &CartItem{}}
}

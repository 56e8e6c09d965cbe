package client

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	Postcode  string    `json:"postcode"`
	Country   string    `json:"country"`
	IsActive  bool      `json:"is_active"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        *User     `json:"user"`
}

type Category struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CategoryRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type Product struct {
	ID          uint                `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Price       decimal.Decimal     `json:"price"`
	Stock       int                 `json:"stock"`
	Image       string              `json:"image"`
	ImageURL    string              `json:"image_url"`
	IsActive    bool                `json:"is_active"`
	CategoryID  *uint               `json:"category_id"`
	Category    *CategoryRef        `json:"category"`
	Brand       string              `json:"brand"`
	Weight      decimal.NullDecimal `json:"weight"`
	Dimensions  string              `json:"dimensions"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

type ProductInput struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Stock       *int             `json:"stock,omitempty"`
	Image       *string          `json:"image,omitempty"`
	IsActive    *bool            `json:"is_active,omitempty"`
	CategoryID  *uint            `json:"category_id,omitempty"`
	Brand       *string          `json:"brand,omitempty"`
	Weight      *decimal.Decimal `json:"weight,omitempty"`
	Dimensions  *string          `json:"dimensions,omitempty"`
}

type CategoryInput struct {
	Name        *string `json:"name,omitempty"`
	Slug        *string `json:"slug,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

type ProductQuery struct {
	Skip       int
	Limit      int
	CategoryID uint
	Search     string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
}

type ProductPage struct {
	Items []Product
	Total int64
}

type SearchMeta struct {
	Page   int    `json:"page"`
	Size   int    `json:"size"`
	Total  int64  `json:"total"`
	Pages  int64  `json:"pages"`
	Source string `json:"source"`
}

type SearchResult struct {
	Data []Product  `json:"data"`
	Meta SearchMeta `json:"meta"`
}

type Upload struct {
	Filename string `json:"filename"`
	ImageURL string `json:"image_url"`
}

type OrderItem struct {
	ID         uint            `json:"id"`
	OrderID    uint            `json:"order_id"`
	ProductID  uint            `json:"product_id"`
	Product    *Product        `json:"product,omitempty"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
	CreatedAt  time.Time       `json:"created_at"`
}

type Order struct {
	ID               uint            `json:"id"`
	UserID           uint            `json:"user_id"`
	OrderNumber      string          `json:"order_number"`
	Status           string          `json:"status"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	PaymentMethod    string          `json:"payment_method"`
	PaymentID        string          `json:"payment_id"`
	ShippingAddress  string          `json:"shipping_address"`
	ShippingCity     string          `json:"shipping_city"`
	ShippingState    string          `json:"shipping_state"`
	ShippingPostcode string          `json:"shipping_postcode"`
	ShippingCountry  string          `json:"shipping_country"`
	ShippingPhone    string          `json:"shipping_phone"`
	ShippingFee      decimal.Decimal `json:"shipping_fee"`
	Tax              decimal.Decimal `json:"tax"`
	Notes            string          `json:"notes"`
	Items            []OrderItem     `json:"items"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

type OrderLine struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type NewOrder struct {
	Items            []OrderLine `json:"items"`
	PaymentMethod    string      `json:"payment_method"`
	ShippingAddress  string      `json:"shipping_address"`
	ShippingCity     string      `json:"shipping_city"`
	ShippingState    string      `json:"shipping_state"`
	ShippingPostcode string      `json:"shipping_postcode"`
	ShippingCountry  string      `json:"shipping_country,omitempty"`
	ShippingPhone    string      `json:"shipping_phone,omitempty"`
	Notes            string      `json:"notes,omitempty"`
	ClearCart        *bool       `json:"clear_cart,omitempty"`
}

type OrderQuery struct {
	Skip   int
	Limit  int
	Status string
}

type CartItem struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	ProductID uint      `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Product   *Product  `json:"product,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type MergeResult struct {
	Merged int        `json:"merged"`
	Items  []CartItem `json:"items"`
}

type Profile struct {
	FullName *string `json:"full_name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Address  *string `json:"address,omitempty"`
	City     *string `json:"city,omitempty"`
	State    *string `json:"state,omitempty"`
	Postcode *string `json:"postcode,omitempty"`
	Country  *string `json:"country,omitempty"`
	Password *string `json:"password,omitempty"`
}

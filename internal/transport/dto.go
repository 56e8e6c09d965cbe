package transport

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/petstore/internal/models"
)

const (
	ProductImagePath = "/static/images/products/"
	PlaceholderImage = "placeholder.svg"
	DefaultCountry   = "Australia"
)

type DetailResponse struct {
	Detail string `json:"detail"`
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=1"`
	FullName string `json:"full_name" validate:"max=255"`
	Phone    string `json:"phone" validate:"max=20"`
}

// LoginRequest accepts the OAuth2 password form as well as JSON.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        *models.User `json:"user"`
}

type UpdateProfileRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,max=255"`
	Phone    *string `json:"phone" validate:"omitempty,max=20"`
	Address  *string `json:"address"`
	City     *string `json:"city" validate:"omitempty,max=100"`
	State    *string `json:"state" validate:"omitempty,max=100"`
	Postcode *string `json:"postcode" validate:"omitempty,max=20"`
	Country  *string `json:"country" validate:"omitempty,max=100"`
	Password *string `json:"password" validate:"omitempty,min=1"`
}

type AdminUpdateUserRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,max=255"`
	IsActive *bool   `json:"is_active"`
	IsAdmin  *bool   `json:"is_admin"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Slug        string `json:"slug" validate:"max=100"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Slug        *string `json:"slug" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

type CreateProductRequest struct {
	Name        string           `json:"name" validate:"required,max=255"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
	Stock       int              `json:"stock" validate:"gte=0"`
	Image       string           `json:"image" validate:"max=255"`
	IsActive    *bool            `json:"is_active"`
	CategoryID  *uint            `json:"category_id" validate:"required"`
	Brand       string           `json:"brand" validate:"max=100"`
	Weight      *decimal.Decimal `json:"weight"`
	Dimensions  string           `json:"dimensions" validate:"max=100"`
}

type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock" validate:"omitempty,gte=0"`
	Image       *string          `json:"image" validate:"omitempty,max=255"`
	IsActive    *bool            `json:"is_active"`
	CategoryID  *uint            `json:"category_id"`
	Brand       *string          `json:"brand" validate:"omitempty,max=100"`
	Weight      *decimal.Decimal `json:"weight"`
	Dimensions  *string          `json:"dimensions" validate:"omitempty,max=100"`
}

type CategoryRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type ProductResponse struct {
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

func NewProductResponse(p *models.Product) ProductResponse {
	out := ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		Image:       p.Image,
		ImageURL:    ImageURL(p.Image),
		IsActive:    p.IsActive,
		CategoryID:  p.CategoryID,
		Brand:       p.Brand,
		Weight:      p.Weight,
		Dimensions:  p.Dimensions,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.Category != nil {
		out.Category = &CategoryRef{ID: p.Category.ID, Name: p.Category.Name}
	}
	return out
}

func NewProductResponses(items []models.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(items))
	for i := range items {
		out = append(out, NewProductResponse(&items[i]))
	}
	return out
}

// ImageURL resolves a stored image value: bare file names live under the
// product image directory, absolute URLs and paths pass through.
func ImageURL(image string) string {
	switch {
	case image == "":
		return ProductImagePath + PlaceholderImage
	case strings.HasPrefix(image, "http://"), strings.HasPrefix(image, "https://"), strings.HasPrefix(image, "/"):
		return image
	default:
		return ProductImagePath + image
	}
}

type UploadResponse struct {
	Filename string `json:"filename"`
	ImageURL string `json:"image_url"`
}

type SearchMeta struct {
	Page   int    `json:"page"`
	Size   int    `json:"size"`
	Total  int64  `json:"total"`
	Pages  int64  `json:"pages"`
	Source string `json:"source"`
}

type SearchResponse struct {
	Data []ProductResponse `json:"data"`
	Meta SearchMeta        `json:"meta"`
}

type OrderItemRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity" validate:"required,gte=1,lte=10000"`
	// Client-side prices are accepted for compatibility and ignored.
	UnitPrice  *decimal.Decimal `json:"unit_price,omitempty"`
	TotalPrice *decimal.Decimal `json:"total_price,omitempty"`
}

type CreateOrderRequest struct {
	Items            []OrderItemRequest `json:"items" validate:"dive"`
	PaymentMethod    string             `json:"payment_method" validate:"required,oneof=credit_card paypal alipay"`
	ShippingAddress  string             `json:"shipping_address" validate:"required"`
	ShippingCity     string             `json:"shipping_city" validate:"required,max=100"`
	ShippingState    string             `json:"shipping_state" validate:"required,max=100"`
	ShippingPostcode string             `json:"shipping_postcode" validate:"required,max=20"`
	ShippingCountry  string             `json:"shipping_country" validate:"max=100"`
	ShippingPhone    string             `json:"shipping_phone" validate:"max=20"`
	Notes            string             `json:"notes"`
	ClearCart        *bool              `json:"clear_cart"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// CartItemRequest is shared by the user cart and the guest cart.
type CartItemRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity" validate:"required,gte=1,lte=10000"`
}

// UpdateCartItemRequest removes the line when Quantity is zero or less.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"lte=10000"`
}

type CartItemResponse struct {
	ID        uint             `json:"id"`
	UserID    uint             `json:"user_id"`
	ProductID uint             `json:"product_id"`
	Quantity  int              `json:"quantity"`
	Product   *ProductResponse `json:"product,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func NewCartItemResponse(item *models.CartItem) CartItemResponse {
	out := CartItemResponse{
		ID:        item.ID,
		UserID:    item.UserID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
	if item.Product != nil {
		p := NewProductResponse(item.Product)
		out.Product = &p
	}
	return out
}

func NewCartItemResponses(items []models.CartItem) []CartItemResponse {
	out := make([]CartItemResponse, 0, len(items))
	for i := range items {
		out = append(out, NewCartItemResponse(&items[i]))
	}
	return out
}

type GuestCartLine struct {
	ProductID uint             `json:"product_id"`
	Quantity  int              `json:"quantity"`
	Product   *ProductResponse `json:"product,omitempty"`
}

type GuestCartResponse struct {
	Token     string          `json:"token"`
	Items     []GuestCartLine `json:"items"`
	ItemCount int             `json:"item_count"`
	Total     decimal.Decimal `json:"total"`
}

type MergeCartResponse struct {
	Merged int                `json:"merged"`
	Items  []CartItemResponse `json:"items"`
}

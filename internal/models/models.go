package models

import "time"

type User struct {
	ID             uint       `gorm:"primaryKey;autoIncrement"   json:"id"`
	Email          string     `gorm:"uniqueIndex;not null"       json:"email"`
	PasswordHash   string     `gorm:"not null"                   json:"-"`
	Phone          *string    `json:"phone,omitempty"`
	IsAdmin        bool       `gorm:"not null;default:false"     json:"is_admin"`
	FailedAttempts int        `gorm:"not null;default:0"         json:"-"`
	LockedUntil    *time.Time `json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
}

// RefreshToken stores only the sha256 of the opaque token, never the
// plaintext.
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"            json:"id"`
	TokenHash string    `gorm:"uniqueIndex;not null"  json:"-"`
	UserID    uint      `gorm:"index;not null"        json:"user_id"`
	ExpiresAt time.Time `gorm:"not null"              json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

type Product struct {
	ID            uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Brand         string         `gorm:"not null;index"           json:"brand"`
	Model         string         `gorm:"not null;index"           json:"model"`
	Category      string         `gorm:"not null;index"           json:"category"`
	Color         string         `json:"color"`
	Memory        string         `json:"memory"`
	Description   string         `json:"description"`
	Price         float64        `gorm:"not null"                 json:"price"`
	StockQuantity uint           `gorm:"not null;default:0"       json:"stock_quantity"`
	Images        []ProductImage `gorm:"constraint:OnDelete:CASCADE" json:"images,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func (p Product) Name() string {
	return p.Brand + " " + p.Model
}

type ProductImage struct {
	ID        uint   `gorm:"primaryKey"     json:"id"`
	ProductID uint   `gorm:"index;not null" json:"product_id"`
	ImageURL  string `gorm:"not null"       json:"image_url"`
	IsPrimary bool   `gorm:"not null;default:false" json:"is_primary"`
	SortOrder int    `gorm:"not null;default:0"     json:"sort_order"`
}

type CartItem struct {
	ID        uint      `gorm:"primaryKey"                                    json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_cart_user_product"    json:"user_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_user_product"    json:"product_id"`
	Quantity  uint      `gorm:"not null;default:1;check:quantity>0"           json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type OrderStatus string

const (
	OrderStatusPendingPayment OrderStatus = "pending_payment"
	OrderStatusPaid           OrderStatus = "paid"
	OrderStatusShipped        OrderStatus = "shipped"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPendingPayment, OrderStatusPaid, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type Order struct {
	ID         uint        `gorm:"primaryKey"     json:"id"`
	UserID     uint        `gorm:"index;not null" json:"user_id"`
	TotalPrice float64     `gorm:"not null"       json:"total_price"`
	Status     OrderStatus `gorm:"not null"       json:"status"`
	Items      []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// OrderItem snapshots the product price at order time. It is never updated
// when the product row changes afterwards.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey"     json:"id"`
	OrderID   uint    `gorm:"index;not null" json:"order_id"`
	ProductID uint    `gorm:"not null"       json:"product_id"`
	Price     float64 `gorm:"not null"       json:"price"`
	Quantity  uint    `gorm:"not null;check:quantity>0" json:"quantity"`
}

// BestOffer is one of four fixed storefront slots. ProductID may point at a
// deleted product, the read side returns null for such slots.
type BestOffer struct {
	Position  int   `gorm:"primaryKey"  json:"position"`
	ProductID *uint `json:"product_id"`
}

func All() []any {
	return []any{
		&User{}, &RefreshToken{},
		&Product{}, &ProductImage{},
		&CartItem{},
		&Order{}, &OrderItem{},
		&BestOffer{},
	}
}

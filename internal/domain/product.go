package domain

import "time"

// ProductStatus описывает состояние карточки товара в каталоге.
type ProductStatus string

const (
	ProductStatusPublished ProductStatus = "published"
	ProductStatusDraft     ProductStatus = "draft"
	ProductStatusLowStock  ProductStatus = "low_stock"
)

// VariantType — вид варианта товара.
type VariantType string

const (
	VariantTypeSize  VariantType = "size"
	VariantTypeColor VariantType = "color"
)

// ProductVariant перечисляет доступные опции одного вида (размеры, цвета).
type ProductVariant struct {
	Type    VariantType `json:"type" yaml:"type"`
	Options []string    `json:"options" yaml:"options"`
}

// Product — карточка товара. Хранилища корзины и заказов её только читают.
type Product struct {
	ID          string           `json:"id" yaml:"id"`
	Title       string           `json:"title" yaml:"title"`
	Description string           `json:"description" yaml:"description"`
	// Price — цена за единицу в FCFA (без дробной части).
	Price int64 `json:"price" yaml:"price"`
	// OriginalPrice — зачёркнутая цена до промо-акции.
	OriginalPrice *int64           `json:"originalPrice,omitempty" yaml:"originalPrice,omitempty"`
	Stock         int              `json:"stock" yaml:"stock"`
	Images        []string         `json:"images" yaml:"images"`
	Category      string           `json:"category" yaml:"category"`
	ShopID        string           `json:"shopId" yaml:"shopId"`
	ShopName      string           `json:"shopName" yaml:"shopName"`
	Variants      []ProductVariant `json:"variants,omitempty" yaml:"variants,omitempty"`
	Status        ProductStatus    `json:"status" yaml:"status"`
	CreatedAt     time.Time        `json:"createdAt" yaml:"createdAt"`

	IsPerishable   bool       `json:"isPerishable,omitempty" yaml:"isPerishable,omitempty"`
	ExpirationDate *time.Time `json:"expirationDate,omitempty" yaml:"expirationDate,omitempty"`
	// Weight — вес в граммах.
	Weight int    `json:"weight,omitempty" yaml:"weight,omitempty"`
	Unit   string `json:"unit,omitempty" yaml:"unit,omitempty"`
}

// Clone возвращает копию товара без общих срезов и указателей.
func (p Product) Clone() Product {
	out := p
	if p.OriginalPrice != nil {
		v := *p.OriginalPrice
		out.OriginalPrice = &v
	}
	if p.ExpirationDate != nil {
		v := *p.ExpirationDate
		out.ExpirationDate = &v
	}
	if p.Images != nil {
		out.Images = append([]string(nil), p.Images...)
	}
	if p.Variants != nil {
		out.Variants = make([]ProductVariant, len(p.Variants))
		for i, v := range p.Variants {
			out.Variants[i] = ProductVariant{Type: v.Type, Options: append([]string(nil), v.Options...)}
		}
	}
	return out
}

// Category — раздел каталога.
type Category struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Slug        string `json:"slug" yaml:"slug"`
	Icon        string `json:"icon,omitempty" yaml:"icon,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// DeliveryOptions задаёт условия доставки магазина.
type DeliveryOptions struct {
	Pickup      bool  `json:"pickup" yaml:"pickup"`
	Delivery    bool  `json:"delivery" yaml:"delivery"`
	DeliveryFee int64 `json:"deliveryFee" yaml:"deliveryFee"`
	// FreeDeliveryMinimum — сумма корзины, начиная с которой доставка бесплатна (0 — не действует).
	FreeDeliveryMinimum int64    `json:"freeDeliveryMinimum,omitempty" yaml:"freeDeliveryMinimum,omitempty"`
	DeliveryZones       []string `json:"deliveryZones,omitempty" yaml:"deliveryZones,omitempty"`
}

// Shop — магазин продавца.
type Shop struct {
	ID              string           `json:"id" yaml:"id"`
	Name            string           `json:"name" yaml:"name"`
	Description     string           `json:"description" yaml:"description"`
	Logo            string           `json:"logo,omitempty" yaml:"logo,omitempty"`
	Phone           string           `json:"phone" yaml:"phone"`
	Address         string           `json:"address" yaml:"address"`
	SellerID        string           `json:"sellerId" yaml:"sellerId"`
	Rating          float64          `json:"rating" yaml:"rating"`
	DeliveryOptions *DeliveryOptions `json:"deliveryOptions,omitempty" yaml:"deliveryOptions,omitempty"`
}

package domain

import "time"

// OrderStatus описывает жизненный цикл заказа на витрине.
type OrderStatus string

const (
	// OrderStatusPending — заказ оформлен покупателем и ждёт подтверждения продавцом.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusConfirmed — продавец принял заказ.
	OrderStatusConfirmed OrderStatus = "confirmed"
	// OrderStatusPreparing — заказ собирается.
	OrderStatusPreparing OrderStatus = "preparing"
	// OrderStatusReadyForPickup — заказ готов к выдаче или передаче курьеру.
	OrderStatusReadyForPickup OrderStatus = "ready_for_pickup"
	// OrderStatusInDelivery — заказ у курьера.
	OrderStatusInDelivery OrderStatus = "in_delivery"
	// OrderStatusDelivered — заказ получен покупателем.
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled — заказ отменён до подтверждения.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderStatuses перечисляет словарь статусов в порядке жизненного цикла.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusReadyForPickup,
	OrderStatusInDelivery,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// Valid сообщает, входит ли статус в словарь.
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// PaymentMethod — способ оплаты, выбранный при оформлении.
type PaymentMethod string

const (
	PaymentMethodMobileMoney PaymentMethod = "mobile_money"
	PaymentMethodCash        PaymentMethod = "cash"
	PaymentMethodCard        PaymentMethod = "card"
)

// Valid сообщает, известен ли способ оплаты.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodMobileMoney, PaymentMethodCash, PaymentMethodCard:
		return true
	default:
		return false
	}
}

// DeliveryType — самовывоз или доставка.
type DeliveryType string

const (
	DeliveryTypePickup   DeliveryType = "pickup"
	DeliveryTypeDelivery DeliveryType = "delivery"
)

// Valid сообщает, известен ли тип доставки.
func (d DeliveryType) Valid() bool {
	return d == DeliveryTypePickup || d == DeliveryTypeDelivery
}

// Order — оформленный заказ. Позиции фиксируются снимком корзины и далее не меняются,
// изменяется только статус.
type Order struct {
	ID              string        `json:"id"`
	OrderNumber     string        `json:"orderNumber"`
	Items           []CartItem    `json:"items"`
	Total           int64         `json:"total"`
	Status          OrderStatus   `json:"status"`
	CustomerName    string        `json:"customerName"`
	CustomerPhone   string        `json:"customerPhone"`
	CustomerAddress string        `json:"customerAddress"`
	PaymentMethod   PaymentMethod `json:"paymentMethod"`
	ShopID          string        `json:"shopId"`
	ShopName        string        `json:"shopName"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`

	DeliveryType          DeliveryType `json:"deliveryType"`
	DeliveryFee           *int64       `json:"deliveryFee,omitempty"`
	DriverID              string       `json:"driverId,omitempty"`
	DriverName            string       `json:"driverName,omitempty"`
	DriverPhone           string       `json:"driverPhone,omitempty"`
	EstimatedDeliveryTime *time.Time   `json:"estimatedDeliveryTime,omitempty"`
	DeliveryNotes         string       `json:"deliveryNotes,omitempty"`
}

// Clone возвращает глубокую копию заказа.
func (o Order) Clone() Order {
	out := o
	out.Items = CloneItems(o.Items)
	if o.DeliveryFee != nil {
		v := *o.DeliveryFee
		out.DeliveryFee = &v
	}
	if o.EstimatedDeliveryTime != nil {
		v := *o.EstimatedDeliveryTime
		out.EstimatedDeliveryTime = &v
	}
	return out
}

// OrderDraft — данные для создания заказа: всё, кроме идентификатора, номера,
// статуса и отметок времени.
type OrderDraft struct {
	Items           []CartItem    `json:"items"`
	Total           int64         `json:"total"`
	CustomerName    string        `json:"customerName"`
	CustomerPhone   string        `json:"customerPhone"`
	CustomerAddress string        `json:"customerAddress"`
	PaymentMethod   PaymentMethod `json:"paymentMethod"`
	ShopID          string        `json:"shopId"`
	ShopName        string        `json:"shopName"`

	DeliveryType          DeliveryType `json:"deliveryType"`
	DeliveryFee           *int64       `json:"deliveryFee,omitempty"`
	DriverID              string       `json:"driverId,omitempty"`
	DriverName            string       `json:"driverName,omitempty"`
	DriverPhone           string       `json:"driverPhone,omitempty"`
	EstimatedDeliveryTime *time.Time   `json:"estimatedDeliveryTime,omitempty"`
	DeliveryNotes         string       `json:"deliveryNotes,omitempty"`
}

// NewOrder собирает заказ из черновика. Позиции копируются, поэтому последующие
// изменения корзины не затрагивают заказ.
func NewOrder(draft OrderDraft, id, number string, now time.Time) Order {
	order := Order{
		ID:              id,
		OrderNumber:     number,
		Items:           CloneItems(draft.Items),
		Total:           draft.Total,
		Status:          OrderStatusPending,
		CustomerName:    draft.CustomerName,
		CustomerPhone:   draft.CustomerPhone,
		CustomerAddress: draft.CustomerAddress,
		PaymentMethod:   draft.PaymentMethod,
		ShopID:          draft.ShopID,
		ShopName:        draft.ShopName,
		CreatedAt:       now,
		UpdatedAt:       now,
		DeliveryType:    draft.DeliveryType,
		DriverID:        draft.DriverID,
		DriverName:      draft.DriverName,
		DriverPhone:     draft.DriverPhone,
		DeliveryNotes:   draft.DeliveryNotes,
	}
	if draft.DeliveryFee != nil {
		v := *draft.DeliveryFee
		order.DeliveryFee = &v
	}
	if draft.EstimatedDeliveryTime != nil {
		v := *draft.EstimatedDeliveryTime
		order.EstimatedDeliveryTime = &v
	}
	return order
}

// ValidateInvariants проверяет согласованность заказа и возвращает список замечаний.
// Хранилище заказов такие заказы не отклоняет, замечания только логируются.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if !o.Status.Valid() {
		errs = append(errs, ErrUnknownOrderStatus)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	for _, item := range o.Items {
		if item.Quantity <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		if item.Product.Price < 0 {
			errs = append(errs, ErrItemPriceInvalid)
		}
	}

	// Итог заказа равен подытогу корзины плюс стоимость доставки.
	expected := CalculateTotal(o.Items)
	if o.DeliveryFee != nil {
		expected += *o.DeliveryFee
	}
	if o.Total != expected {
		errs = append(errs, ErrAmountMismatch)
	}

	return errs
}

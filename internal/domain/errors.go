package domain

import "errors"

var (
	// ErrOrderNotFound возвращается, если заказ с таким идентификатором не найден.
	ErrOrderNotFound = errors.New("order not found")
	// ErrUnknownOrderStatus — статус вне словаря жизненного цикла.
	ErrUnknownOrderStatus = errors.New("unknown order status")
	// ErrInvalidStatusTransition — переход запрещён строгой политикой статусов.
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	// ErrOrderIDRequired — пустой идентификатор заказа.
	ErrOrderIDRequired = errors.New("order id is required")
	// Ошибка отсутствия хотя бы одного товара в заказе.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// Ошибка при некорректном количестве товара (<= 0).
	ErrItemQtyInvalid = errors.New("item quantity must be greater than zero")
	// Ошибка, если цена позиции отрицательная.
	ErrItemPriceInvalid = errors.New("item price must be non-negative")
	// Ошибка несоответствия итога заказа сумме позиций и доставки.
	ErrAmountMismatch = errors.New("order total does not match items and delivery fee")
	// ErrCartEmpty — оформление заказа из пустой корзины.
	ErrCartEmpty = errors.New("cart is empty")
	// ErrProductNotFound — товара нет в каталоге.
	ErrProductNotFound = errors.New("product not found")
	// ErrShopNotFound — магазина нет в каталоге.
	ErrShopNotFound = errors.New("shop not found")
	// ErrDeliveryUnavailable — магазин не поддерживает выбранный тип доставки.
	ErrDeliveryUnavailable = errors.New("delivery type not available for shop")
	// ErrCustomerRequired — не указаны имя или телефон покупателя.
	ErrCustomerRequired = errors.New("customer name and phone are required")
	// ErrAddressRequired — доставка без адреса.
	ErrAddressRequired = errors.New("delivery address is required")
	// ErrInvalidPaymentMethod — способ оплаты вне словаря.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	// ErrInvalidDeliveryType — тип доставки вне словаря.
	ErrInvalidDeliveryType = errors.New("invalid delivery type")
	// ErrSnapshotNotFound — по ключу нет сохранённого снимка.
	ErrSnapshotNotFound = errors.New("snapshot not found")
	// ErrEmailRequired — вход или регистрация без адреса почты.
	ErrEmailRequired = errors.New("email is required")
	// ErrInvalidCredentials — провайдер идентификации отверг учётные данные.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotAuthenticated — операция требует вошедшего пользователя.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// IsNotFound проверяет, означает ли ошибка отсутствие сущности.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrShopNotFound) ||
		errors.Is(err, ErrSnapshotNotFound)
}

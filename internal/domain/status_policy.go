package domain

// StatusPolicy решает, допустим ли переход заказа из одного статуса в другой.
type StatusPolicy interface {
	CanTransition(from, to OrderStatus) bool
}

// PermissivePolicy разрешает любой переход внутри словаря статусов.
// Так продавец может, например, вернуть доставленный заказ в pending.
type PermissivePolicy struct{}

// CanTransition всегда возвращает true.
func (PermissivePolicy) CanTransition(_, _ OrderStatus) bool { return true }

// StrictPolicy разрешает только переходы из таблицы жизненного цикла.
type StrictPolicy struct{}

var strictTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:        {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:      {OrderStatusPreparing},
	OrderStatusPreparing:      {OrderStatusReadyForPickup},
	OrderStatusReadyForPickup: {OrderStatusInDelivery, OrderStatusDelivered},
	OrderStatusInDelivery:     {OrderStatusDelivered},
	OrderStatusDelivered:      nil,
	OrderStatusCancelled:      nil,
}

// CanTransition проверяет переход по таблице. Повторная установка того же статуса допустима.
func (StrictPolicy) CanTransition(from, to OrderStatus) bool {
	if from == to {
		return true
	}
	for _, next := range strictTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses возвращает статусы, в которые заказ может перейти по таблице жизненного цикла.
func NextStatuses(from OrderStatus) []OrderStatus {
	return append([]OrderStatus(nil), strictTransitions[from]...)
}

// IsTerminal сообщает, что из статуса нет переходов.
func (s OrderStatus) IsTerminal() bool {
	next, ok := strictTransitions[s]
	return ok && len(next) == 0
}

var (
	_ StatusPolicy = PermissivePolicy{}
	_ StatusPolicy = StrictPolicy{}
)

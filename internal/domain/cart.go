package domain

// VariantSelection — выбранные покупателем опции товара.
type VariantSelection struct {
	Size  string `json:"size,omitempty"`
	Color string `json:"color,omitempty"`
}

// CartItem — позиция корзины: товар, количество и выбранный вариант.
type CartItem struct {
	Product          Product           `json:"product"`
	Quantity         int               `json:"quantity"`
	SelectedVariants *VariantSelection `json:"selectedVariants,omitempty"`
}

// Subtotal возвращает стоимость позиции: цена × количество.
func (i CartItem) Subtotal() int64 {
	return i.Product.Price * int64(i.Quantity)
}

// Clone возвращает независимую копию позиции.
func (i CartItem) Clone() CartItem {
	out := CartItem{
		Product:  i.Product.Clone(),
		Quantity: i.Quantity,
	}
	if i.SelectedVariants != nil {
		v := *i.SelectedVariants
		out.SelectedVariants = &v
	}
	return out
}

// Cart — корзина покупателя. Total всегда пересчитывается из Items.
type Cart struct {
	Items []CartItem `json:"items"`
	Total int64      `json:"total"`
}

// EmptyCart возвращает пустую корзину с нулевой суммой.
func EmptyCart() Cart {
	return Cart{Items: []CartItem{}}
}

// CalculateTotal суммирует price × quantity по всем позициям.
func CalculateTotal(items []CartItem) int64 {
	var total int64
	for _, item := range items {
		total += item.Subtotal()
	}
	return total
}

// Recalculate приводит Total в соответствие с текущими позициями.
func (c *Cart) Recalculate() {
	if c.Items == nil {
		c.Items = []CartItem{}
	}
	c.Total = CalculateTotal(c.Items)
}

// ItemCount возвращает суммарное количество единиц товара в корзине.
func (c Cart) ItemCount() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// IndexOf возвращает позицию товара в корзине или -1.
func (c Cart) IndexOf(productID string) int {
	for idx, item := range c.Items {
		if item.Product.ID == productID {
			return idx
		}
	}
	return -1
}

// IsEmpty сообщает, что в корзине нет позиций.
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Clone возвращает глубокую копию корзины.
func (c Cart) Clone() Cart {
	out := Cart{Items: make([]CartItem, len(c.Items)), Total: c.Total}
	for idx, item := range c.Items {
		out.Items[idx] = item.Clone()
	}
	return out
}

// StockViolations возвращает позиции, количество которых превышает остаток товара.
func (c Cart) StockViolations() []CartItem {
	var result []CartItem
	for _, item := range c.Items {
		if item.Quantity > item.Product.Stock {
			result = append(result, item.Clone())
		}
	}
	return result
}

// CloneItems копирует срез позиций; используется для снимка корзины при оформлении заказа.
func CloneItems(items []CartItem) []CartItem {
	out := make([]CartItem, len(items))
	for idx, item := range items {
		out[idx] = item.Clone()
	}
	return out
}

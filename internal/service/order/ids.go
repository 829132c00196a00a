package order

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// IDGenerator выдаёт идентификатор нового заказа.
type IDGenerator func(now time.Time) string

// NumberGenerator выдаёт человекочитаемый номер заказа.
type NumberGenerator func(now time.Time) string

// NewOrderID формирует идентификатор вида order_{unixMillis}_{9 символов base36}.
func NewOrderID(now time.Time) string {
	var suffix strings.Builder
	suffix.Grow(9)
	for i := 0; i < 9; i++ {
		suffix.WriteByte(base36Alphabet[rand.IntN(len(base36Alphabet))])
	}
	return "order_" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + suffix.String()
}

// NewOrderNumber формирует номер JDM{YY}{MM}{DD}-{4 цифры} по дате now.
// Случайная часть даёт коллизии уже при сотне заказов в день; Store перегенерирует номер при совпадении.
func NewOrderNumber(now time.Time) string {
	return fmt.Sprintf("JDM%02d%02d%02d-%04d", now.Year()%100, int(now.Month()), now.Day(), rand.IntN(10000))
}

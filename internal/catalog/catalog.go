// Package catalog отдаёт статический каталог витрины, вшитый в бинарник.
// Каталог только читается: хранилища корзины и заказов получают из него копии товаров.
package catalog

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vladislavdragonenkov/jourmarche/internal/domain"
)

//go:embed seed.yaml
var seedYAML []byte

type seed struct {
	Categories []domain.Category `yaml:"categories"`
	Shops      []domain.Shop     `yaml:"shops"`
	Products   []domain.Product  `yaml:"products"`
	Users      []domain.User     `yaml:"users"`
}

// Catalog — неизменяемый индекс разделов, магазинов, товаров и демо-пользователей.
type Catalog struct {
	categories []domain.Category
	shops      []domain.Shop
	products   []domain.Product
	users      []domain.User

	productByID map[string]int
	shopByID    map[string]int
	userByEmail map[string]int
}

// ProductFilter сужает выборку товаров. Пустые поля не фильтруют.
type ProductFilter struct {
	// Category — slug раздела.
	Category string
	ShopID   string
	// Query ищет подстроку в названии и описании без учёта регистра.
	Query string
	// IncludeDrafts включает черновики в выдачу.
	IncludeDrafts bool
}

// Default разбирает вшитый seed.yaml.
func Default() (*Catalog, error) {
	return Parse(seedYAML)
}

// MustDefault как Default, но паникует на повреждённом seed.yaml.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse строит каталог из YAML-документа и проверяет ссылочную целостность.
func Parse(data []byte) (*Catalog, error) {
	var s seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	c := &Catalog{
		categories:  s.Categories,
		shops:       s.Shops,
		products:    s.Products,
		users:       s.Users,
		productByID: make(map[string]int, len(s.Products)),
		shopByID:    make(map[string]int, len(s.Shops)),
		userByEmail: make(map[string]int, len(s.Users)),
	}

	for i, shop := range c.shops {
		if _, dup := c.shopByID[shop.ID]; dup {
			return nil, fmt.Errorf("duplicate shop id %q", shop.ID)
		}
		c.shopByID[shop.ID] = i
	}
	for i, p := range c.products {
		if _, dup := c.productByID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate product id %q", p.ID)
		}
		if _, ok := c.shopByID[p.ShopID]; !ok {
			return nil, fmt.Errorf("product %q references unknown shop %q", p.ID, p.ShopID)
		}
		if p.Price < 0 || p.Stock < 0 {
			return nil, fmt.Errorf("product %q has negative price or stock", p.ID)
		}
		c.productByID[p.ID] = i
	}
	for i, u := range c.users {
		key := strings.ToLower(u.Email)
		if _, dup := c.userByEmail[key]; dup {
			return nil, fmt.Errorf("duplicate demo user email %q", u.Email)
		}
		c.userByEmail[key] = i
	}

	return c, nil
}

// Product возвращает копию товара или domain.ErrProductNotFound.
func (c *Catalog) Product(id string) (domain.Product, error) {
	idx, ok := c.productByID[id]
	if !ok {
		return domain.Product{}, fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
	}
	return c.products[idx].Clone(), nil
}

// Products возвращает товары, подходящие под фильтр, в порядке каталога.
func (c *Catalog) Products(filter ProductFilter) []domain.Product {
	query := strings.ToLower(strings.TrimSpace(filter.Query))

	result := make([]domain.Product, 0, len(c.products))
	for _, p := range c.products {
		if !filter.IncludeDrafts && p.Status == domain.ProductStatusDraft {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.ShopID != "" && p.ShopID != filter.ShopID {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Title), query) &&
			!strings.Contains(strings.ToLower(p.Description), query) {
			continue
		}
		result = append(result, p.Clone())
	}
	return result
}

// Categories возвращает разделы каталога.
func (c *Catalog) Categories() []domain.Category {
	return append([]domain.Category(nil), c.categories...)
}

// Shop возвращает магазин или domain.ErrShopNotFound.
func (c *Catalog) Shop(id string) (domain.Shop, error) {
	idx, ok := c.shopByID[id]
	if !ok {
		return domain.Shop{}, fmt.Errorf("%w: %s", domain.ErrShopNotFound, id)
	}
	return cloneShop(c.shops[idx]), nil
}

// Shops возвращает магазины, отсортированные по рейтингу (сначала лучшие).
func (c *Catalog) Shops() []domain.Shop {
	result := make([]domain.Shop, 0, len(c.shops))
	for _, shop := range c.shops {
		result = append(result, cloneShop(shop))
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Rating > result[j].Rating })
	return result
}

// DemoUsers возвращает таблицу демо-пользователей для симулированного входа.
func (c *Catalog) DemoUsers() []domain.User {
	return append([]domain.User(nil), c.users...)
}

// DemoUser ищет демо-пользователя по email без учёта регистра.
func (c *Catalog) DemoUser(email string) (domain.User, bool) {
	idx, ok := c.userByEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return domain.User{}, false
	}
	return c.users[idx], true
}

func cloneShop(shop domain.Shop) domain.Shop {
	if shop.DeliveryOptions != nil {
		opts := *shop.DeliveryOptions
		opts.DeliveryZones = append([]string(nil), shop.DeliveryOptions.DeliveryZones...)
		shop.DeliveryOptions = &opts
	}
	return shop
}

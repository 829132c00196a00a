package domain

import (
	"strings"
	"time"
)

// UserRole — роль пользователя витрины.
type UserRole string

const (
	UserRoleBuyer  UserRole = "buyer"
	UserRoleSeller UserRole = "seller"
	UserRoleDriver UserRole = "driver"
	UserRoleAdmin  UserRole = "admin"
	UserRoleGuest  UserRole = "guest"
)

// Valid сообщает, известна ли роль.
func (r UserRole) Valid() bool {
	switch r {
	case UserRoleBuyer, UserRoleSeller, UserRoleDriver, UserRoleAdmin, UserRoleGuest:
		return true
	default:
		return false
	}
}

// User — профиль текущего пользователя сессии.
type User struct {
	ID        string    `json:"id" yaml:"id"`
	Email     string    `json:"email" yaml:"email"`
	Phone     string    `json:"phone,omitempty" yaml:"phone,omitempty"`
	Name      string    `json:"name" yaml:"name"`
	Role      UserRole  `json:"role" yaml:"role"`
	Avatar    string    `json:"avatar,omitempty" yaml:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// UserPatch — частичное обновление профиля. Заданы только ненулевые указатели.
type UserPatch struct {
	Email  *string   `json:"email,omitempty"`
	Phone  *string   `json:"phone,omitempty"`
	Name   *string   `json:"name,omitempty"`
	Role   *UserRole `json:"role,omitempty"`
	Avatar *string   `json:"avatar,omitempty"`
}

// Apply накладывает патч поверх профиля. Идентификатор и дата создания не меняются.
func (p UserPatch) Apply(u User) User {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
	return u
}

// IsEmpty сообщает, что патч ничего не меняет.
func (p UserPatch) IsEmpty() bool {
	return p.Email == nil && p.Phone == nil && p.Name == nil && p.Role == nil && p.Avatar == nil
}

// EmailLocalPart возвращает часть адреса до "@"; для адреса без "@" возвращает адрес целиком.
func EmailLocalPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

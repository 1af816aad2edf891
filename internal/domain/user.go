package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Address is one entry of a user's address book
type Address struct {
	ID         string `json:"id"`
	FullName   string `json:"fullName"`
	Phone      string `json:"phone"`
	Address1   string `json:"address1"`
	Address2   string `json:"address2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	IsDefault  bool   `json:"isDefault"`
}

// User is a storefront account. Email is unique ignoring case.
type User struct {
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	Role         Role      `json:"role"`
	Addresses    []Address `json:"addresses"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NormalizeEmail lower-cases and trims an email for comparison
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u User) findAddress(id string) int {
	for i := range u.Addresses {
		if u.Addresses[i].ID == id {
			return i
		}
	}
	return -1
}

// DefaultAddress returns the address marked default, if any
func (u User) DefaultAddress() (Address, bool) {
	for _, a := range u.Addresses {
		if a.IsDefault {
			return a, true
		}
	}
	return Address{}, false
}

// AddAddress appends a. The first address of a book becomes the default.
func (u *User) AddAddress(a Address) {
	if len(u.Addresses) == 0 {
		a.IsDefault = true
	}
	u.Addresses = append(u.Addresses, a)
	if a.IsDefault {
		u.markDefault(a.ID)
	}
}

// UpdateAddress replaces an entry. The default flag can be moved by an update
// but not cleared; use SetDefaultAddress on another entry instead.
func (u *User) UpdateAddress(a Address) error {
	i := u.findAddress(a.ID)
	if i < 0 {
		return ErrAddressNotFound
	}
	if u.Addresses[i].IsDefault {
		a.IsDefault = true
	}
	u.Addresses[i] = a
	if a.IsDefault {
		u.markDefault(a.ID)
	}
	return nil
}

func (u *User) DeleteAddress(id string) error {
	i := u.findAddress(id)
	if i < 0 {
		return ErrAddressNotFound
	}
	u.Addresses = append(u.Addresses[:i], u.Addresses[i+1:]...)
	return nil
}

// SetDefaultAddress marks id as the only default address
func (u *User) SetDefaultAddress(id string) error {
	if u.findAddress(id) < 0 {
		return ErrAddressNotFound
	}
	u.markDefault(id)
	return nil
}

func (u *User) markDefault(id string) {
	for i := range u.Addresses {
		u.Addresses[i].IsDefault = u.Addresses[i].ID == id
	}
}

func (u User) Clone() User {
	out := u
	out.Addresses = append([]Address(nil), u.Addresses...)
	return out
}

// FindUserByEmail returns the index of the user with email, ignoring case, or -1
func FindUserByEmail(users []User, email string) int {
	email = NormalizeEmail(email)
	for i := range users {
		if NormalizeEmail(users[i].Email) == email {
			return i
		}
	}
	return -1
}

// FindUserByLogin matches identifier against email first, then name
func FindUserByLogin(users []User, identifier string) int {
	if i := FindUserByEmail(users, identifier); i >= 0 {
		return i
	}
	identifier = strings.TrimSpace(identifier)
	for i := range users {
		if strings.EqualFold(users[i].Name, identifier) {
			return i
		}
	}
	return -1
}

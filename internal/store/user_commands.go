package store

import (
	"time"

	"storefront/internal/domain"
)

// RegisterUser adds a new account. Emails are unique ignoring case.
type RegisterUser struct {
	User domain.User
}

func (c *RegisterUser) Name() string { return "auth/register" }

func (c *RegisterUser) Apply(s *State, now time.Time) error {
	if domain.FindUserByEmail(s.Users, c.User.Email) >= 0 {
		return ErrEmailTaken
	}
	u := c.User.Clone()
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	s.Users = append(s.Users, u)
	c.User = u.Clone()
	return nil
}

// UpdateProfile renames a user and optionally changes the email. The user's
// cart, wishlist and orders follow the new email.
type UpdateProfile struct {
	Email    string
	NewName  string
	NewEmail string

	User domain.User
}

func (c *UpdateProfile) Name() string { return "auth/update-profile" }

func (c *UpdateProfile) Apply(s *State, _ time.Time) error {
	i := domain.FindUserByEmail(s.Users, c.Email)
	if i < 0 {
		return domain.ErrUserNotFound
	}
	u := &s.Users[i]
	if c.NewName != "" {
		u.Name = c.NewName
	}

	if c.NewEmail != "" && domain.NormalizeEmail(c.NewEmail) != domain.NormalizeEmail(u.Email) {
		if domain.FindUserByEmail(s.Users, c.NewEmail) >= 0 {
			return ErrEmailTaken
		}
		from, to := UserOwner(u.Email), UserOwner(c.NewEmail)
		if cart, ok := s.Carts[from]; ok {
			s.Carts[to] = cart
			delete(s.Carts, from)
		}
		if w, ok := s.Wishlists[from]; ok {
			s.Wishlists[to] = w
			delete(s.Wishlists, from)
		}
		for j := range s.Orders {
			if s.Orders[j].Owner == from {
				s.Orders[j].Owner = to
			}
		}
		u.Email = c.NewEmail
	}

	c.User = u.Clone()
	return nil
}

// ChangePassword stores a new password hash. Hashing happens before dispatch.
type ChangePassword struct {
	Email        string
	PasswordHash string
}

func (c *ChangePassword) Name() string { return "auth/change-password" }

func (c *ChangePassword) Apply(s *State, _ time.Time) error {
	i := domain.FindUserByEmail(s.Users, c.Email)
	if i < 0 {
		return domain.ErrUserNotFound
	}
	s.Users[i].PasswordHash = c.PasswordHash
	return nil
}

type AddAddress struct {
	Email   string
	Address domain.Address

	User domain.User
}

func (c *AddAddress) Name() string { return "auth/add-address" }

func (c *AddAddress) Apply(s *State, _ time.Time) error {
	i := domain.FindUserByEmail(s.Users, c.Email)
	if i < 0 {
		return domain.ErrUserNotFound
	}
	s.Users[i].AddAddress(c.Address)
	c.User = s.Users[i].Clone()
	return nil
}

type UpdateAddress struct {
	Email   string
	Address domain.Address

	User domain.User
}

func (c *UpdateAddress) Name() string { return "auth/update-address" }

func (c *UpdateAddress) Apply(s *State, _ time.Time) error {
	i := domain.FindUserByEmail(s.Users, c.Email)
	if i < 0 {
		return domain.ErrUserNotFound
	}
	if err := s.Users[i].UpdateAddress(c.Address); err != nil {
		return err
	}
	c.User = s.Users[i].Clone()
	return nil
}

type DeleteAddress struct {
	Email     string
	AddressID string

	User domain.User
}

func (c *DeleteAddress) Name() string { return "auth/delete-address" }

func (c *DeleteAddress) Apply(s *State, _ time.Time) error {
	i := domain.FindUserByEmail(s.Users, c.Email)
	if i < 0 {
		return domain.ErrUserNotFound
	}
	if err := s.Users[i].DeleteAddress(c.AddressID); err != nil {
		return err
	}
	c.User = s.Users[i].Clone()
	return nil
}

type SetDefaultAddress struct {
	Email     string
	AddressID string

	User domain.User
}

func (c *SetDefaultAddress) Name() string { return "auth/set-default-address" }

func (c *SetDefaultAddress) Apply(s *State, _ time.Time) error {
	i := domain.FindUserByEmail(s.Users, c.Email)
	if i < 0 {
		return domain.ErrUserNotFound
	}
	if err := s.Users[i].SetDefaultAddress(c.AddressID); err != nil {
		return err
	}
	c.User = s.Users[i].Clone()
	return nil
}

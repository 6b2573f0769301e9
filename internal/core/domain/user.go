package domain

import "time"

// User models an account allowed to obtain access tokens.
type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	FullName       string    `json:"full_name,omitempty"`
	Email          string    `json:"email,omitempty"`
	IsActive       bool      `json:"is_active"`
	Scopes         []string  `json:"scopes"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// Clone returns a deep copy so callers never share the scopes slice.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Scopes = append([]string(nil), u.Scopes...)
	return &c
}

// UserPatch holds the optional fields of a partial user update. Username is
// immutable and therefore absent.
type UserPatch struct {
	FullName *string
	Email    *string
	IsActive *bool
	Scopes   *[]string
}

// Apply copies every present field onto u.
func (p UserPatch) Apply(u *User) {
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
	if p.Scopes != nil {
		u.Scopes = append([]string(nil), (*p.Scopes)...)
	}
}

type UserFilter struct {
	Limit  int
	Offset int
}

// Package contacts implements per-user contact records with search and
// upcoming-birthday queries.
package contacts

import "time"

// Address is the optional postal address attached to a contact.
type Address struct {
	Country   string `json:"country"`
	Index     string `json:"index"`
	City      string `json:"city"`
	Street    string `json:"street"`
	House     string `json:"house"`
	Apartment string `json:"apartment"`
}

// Contact is a single address-book entry. Birthday is date-only; its time
// component is always midnight UTC.
type Contact struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Surname   string    `json:"surname"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Birthday  time.Time `json:"birthday"`
	Address   *Address  `json:"address,omitempty"`
	UserID    string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListFilter narrows List results. Empty fields do not filter.
type ListFilter struct {
	Name    string
	Surname string
	Email   string
	Skip    int
	Limit   int
}

package contacts

import "context"

// Repository is the persistence boundary for contacts. Every method is
// scoped to an owning user; a contact belonging to somebody else behaves as
// if it does not exist.
type Repository interface {
	Create(ctx context.Context, contact *Contact) (*Contact, error)
	GetByID(ctx context.Context, userID, id string) (*Contact, error)
	List(ctx context.Context, userID string, filter ListFilter) ([]*Contact, error)
	Update(ctx context.Context, contact *Contact) (*Contact, error)
	Delete(ctx context.Context, userID, id string) error

	// UpcomingBirthdays returns contacts whose birthday falls within the
	// next days days, today included, ignoring the birth year.
	UpcomingBirthdays(ctx context.Context, userID string, days int) ([]*Contact, error)
}

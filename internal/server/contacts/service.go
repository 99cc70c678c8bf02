package contacts

import (
	"context"

	"github.com/dmitrijs2005/contacthub/internal/server/identity"
)

// defaultBirthdayWindowDays is how far ahead UpcomingBirthdays looks when the
// caller does not say.
const defaultBirthdayWindowDays = 7

const defaultListLimit = 100

// Service scopes every contact operation to the authenticated user. It never
// trusts a user id from the request body; ownership always comes from the
// resolved identity.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, who *identity.Snapshot, contact *Contact) (*Contact, error) {
	contact.UserID = who.ID
	return s.repo.Create(ctx, contact)
}

func (s *Service) Get(ctx context.Context, who *identity.Snapshot, id string) (*Contact, error) {
	return s.repo.GetByID(ctx, who.ID, id)
}

func (s *Service) List(ctx context.Context, who *identity.Snapshot, filter ListFilter) ([]*Contact, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	return s.repo.List(ctx, who.ID, filter)
}

func (s *Service) Update(ctx context.Context, who *identity.Snapshot, contact *Contact) (*Contact, error) {
	contact.UserID = who.ID
	return s.repo.Update(ctx, contact)
}

func (s *Service) Delete(ctx context.Context, who *identity.Snapshot, id string) error {
	return s.repo.Delete(ctx, who.ID, id)
}

func (s *Service) UpcomingBirthdays(ctx context.Context, who *identity.Snapshot, days int) ([]*Contact, error) {
	if days <= 0 {
		days = defaultBirthdayWindowDays
	}
	return s.repo.UpcomingBirthdays(ctx, who.ID, days)
}

package contacts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/contacthub/internal/common"
	"github.com/dmitrijs2005/contacthub/internal/server/identity"
)

type capturingRepo struct {
	Repository

	lastUserID string
	lastFilter ListFilter
	lastDays   int
	contact    *Contact
}

func (r *capturingRepo) Create(ctx context.Context, contact *Contact) (*Contact, error) {
	r.contact = contact
	return contact, nil
}

func (r *capturingRepo) GetByID(ctx context.Context, userID, id string) (*Contact, error) {
	r.lastUserID = userID
	return nil, common.ErrorNotFound
}

func (r *capturingRepo) List(ctx context.Context, userID string, filter ListFilter) ([]*Contact, error) {
	r.lastUserID = userID
	r.lastFilter = filter
	return []*Contact{}, nil
}

func (r *capturingRepo) Update(ctx context.Context, contact *Contact) (*Contact, error) {
	r.contact = contact
	return contact, nil
}

func (r *capturingRepo) UpcomingBirthdays(ctx context.Context, userID string, days int) ([]*Contact, error) {
	r.lastUserID = userID
	r.lastDays = days
	return []*Contact{}, nil
}

var owner = &identity.Snapshot{ID: "uid-1", Username: "alice"}

func TestServiceStampsOwner(t *testing.T) {
	repo := &capturingRepo{}
	svc := NewService(repo)

	c := &Contact{Name: "Bob", UserID: "somebody-else"}
	_, err := svc.Create(context.Background(), owner, c)
	require.NoError(t, err)

	// the caller-supplied user id must be overwritten
	assert.Equal(t, "uid-1", repo.contact.UserID)
}

func TestServiceScopesReads(t *testing.T) {
	repo := &capturingRepo{}
	svc := NewService(repo)

	_, err := svc.Get(context.Background(), owner, "cid-1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.Equal(t, "uid-1", repo.lastUserID)

	_, err = svc.List(context.Background(), owner, ListFilter{Name: "bo"})
	require.NoError(t, err)
	assert.Equal(t, "uid-1", repo.lastUserID)
	assert.Equal(t, "bo", repo.lastFilter.Name)
}

func TestServiceListDefaultLimit(t *testing.T) {
	repo := &capturingRepo{}
	svc := NewService(repo)

	_, err := svc.List(context.Background(), owner, ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, defaultListLimit, repo.lastFilter.Limit)

	_, err = svc.List(context.Background(), owner, ListFilter{Limit: 5, Skip: 10})
	require.NoError(t, err)
	assert.Equal(t, 5, repo.lastFilter.Limit)
	assert.Equal(t, 10, repo.lastFilter.Skip)
}

func TestServiceBirthdayWindowDefault(t *testing.T) {
	repo := &capturingRepo{}
	svc := NewService(repo)

	_, err := svc.UpcomingBirthdays(context.Background(), owner, 0)
	require.NoError(t, err)
	assert.Equal(t, defaultBirthdayWindowDays, repo.lastDays)

	_, err = svc.UpcomingBirthdays(context.Background(), owner, 30)
	require.NoError(t, err)
	assert.Equal(t, 30, repo.lastDays)
}

func TestServiceUpdateStampsOwner(t *testing.T) {
	repo := &capturingRepo{}
	svc := NewService(repo)

	c := &Contact{ID: "cid-1", Name: "Bob", Birthday: time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC)}
	_, err := svc.Update(context.Background(), owner, c)
	require.NoError(t, err)
	assert.Equal(t, "uid-1", repo.contact.UserID)
}

package repository

import (
	"context"
	"fmt"

	"github.com/yukikurage/taskboard-api/internal/docstore"
	"github.com/yukikurage/taskboard-api/internal/models"
)

// DocUserRepository is a docstore implementation of UserRepository
type DocUserRepository struct {
	store docstore.Store
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(store docstore.Store) UserRepository {
	return &DocUserRepository{store: store}
}

// Create stores a new user and sets its ID
func (r *DocUserRepository) Create(ctx context.Context, user *models.User) error {
	id, err := r.store.Insert(ctx, UsersCollection, docstore.Record{
		fieldUserName:     user.Name,
		fieldUserPassword: user.Password,
	})
	if err != nil {
		return fmt.Errorf("user repository: create user: %w", err)
	}
	user.ID = id
	return nil
}

// FindByID finds a user by ID
func (r *DocUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	rec, err := r.store.GetByID(ctx, UsersCollection, id)
	if err != nil {
		return nil, err
	}
	user := decodeUser(rec)
	return &user, nil
}

// FindByName returns the first user with the given name
func (r *DocUserRepository) FindByName(ctx context.Context, name string) (*models.User, error) {
	recs, err := r.store.Query(ctx, UsersCollection, docstore.Eq(fieldUserName, name))
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrNotFound
	}
	user := decodeUser(recs[0])
	return &user, nil
}

func decodeUser(rec docstore.Record) models.User {
	return models.User{
		ID:       stringField(rec, docstore.IDField),
		Name:     stringField(rec, fieldUserName),
		Password: stringField(rec, fieldUserPassword),
	}
}

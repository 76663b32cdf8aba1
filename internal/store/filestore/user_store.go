package filestore

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
	"storefront/internal/store"
)

type UserStore struct {
	mu   sync.Mutex
	path string
}

func NewUserStore(path string) (*UserStore, error) {
	if err := ensureFile(path); err != nil {
		return nil, err
	}
	return &UserStore{path: path}, nil
}

var _ store.UserStore = (*UserStore)(nil)

// users are persisted with the hash included, so the file schema carries it
// under the same key the Mongo backend uses.
type userRecord struct {
	models.User
	PasswordHash string `json:"password"`
}

func (s *UserStore) readAll() ([]userRecord, error) {
	var users []userRecord
	if err := load(s.path, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.readAll()
	if err != nil {
		return err
	}
	for _, u := range users {
		if u.Email == user.Email {
			return store.ErrDuplicateEmail
		}
	}

	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	users = append(users, userRecord{User: *user, PasswordHash: user.PasswordHash})
	return save(s.path, users)
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.readAll()
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Email == email {
			return u.toUser(), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.readAll()
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.ID.Hex() == id {
			return u.toUser(), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *UserStore) SetCart(ctx context.Context, userID string, cartID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.readAll()
	if err != nil {
		return err
	}
	for i := range users {
		if users[i].ID.Hex() == userID {
			users[i].CartID = cartID
			return save(s.path, users)
		}
	}
	return store.ErrNotFound
}

func (r userRecord) toUser() *models.User {
	u := r.User
	u.PasswordHash = r.PasswordHash
	return &u
}

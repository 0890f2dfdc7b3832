package auth

import (
	"context"

	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	cs "github.com/webtor-io/common-services"

	"github.com/showlog-io/showlog/models"
)

type PGUserStore struct {
	pg *cs.PG
}

func NewPGUserStore(pg *cs.PG) *PGUserStore {
	return &PGUserStore{pg: pg}
}

func (s *PGUserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	db := s.pg.Get()
	if db == nil {
		return nil, errors.New("db not initialized")
	}
	return models.GetUserByUsername(ctx, db, username)
}

func (s *PGUserStore) GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	db := s.pg.Get()
	if db == nil {
		return nil, errors.New("db not initialized")
	}
	return models.GetUserByID(ctx, db, userID)
}

func (s *PGUserStore) Create(ctx context.Context, username string, passwordHash string) (*models.User, error) {
	db := s.pg.Get()
	if db == nil {
		return nil, errors.New("db not initialized")
	}
	return models.CreateUser(ctx, db, username, passwordHash)
}

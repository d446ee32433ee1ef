package repository

import (
	"context"

	"teamline/internal/domain/entity"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)

	// List returns every user except the one identified by excludeID, for the
	// conversation sidebar.
	List(ctx context.Context, excludeID string) ([]entity.User, error)
}

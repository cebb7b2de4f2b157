package lib

import (
	"context"

	"github.com/google/uuid"
)

// Reputationable is an interface for entities that have a reputation.
type Reputationable interface {
	GetID() uuid.UUID
}

// ReputationStore defines the methods for accessing reputation-related data.
type ReputationStore interface {
	CountCommentLikesByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error)
	CountCommentsByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error)
}

// CalculateUserReputation scores a user by the likes their comments received,
// with a small bonus per comment written.
func CalculateUserReputation(ctx context.Context, store ReputationStore, user Reputationable) (int64, error) {
	likes, err := store.CountCommentLikesByAuthor(ctx, user.GetID())
	if err != nil {
		return 0, err
	}

	comments, err := store.CountCommentsByAuthor(ctx, user.GetID())
	if err != nil {
		return 0, err
	}

	return likes*10 + comments, nil
}

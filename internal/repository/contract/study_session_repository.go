package contract

import (
	"context"

	"spaced-learning-be/internal/entity"
	"spaced-learning-be/internal/repository/specification"

	"github.com/google/uuid"
)

type StudySessionRepository interface {
	Create(ctx context.Context, session *entity.StudySession) error
	Update(ctx context.Context, session *entity.StudySession) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.StudySession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.StudySession, error)

	// UpdateProgress writes the session's mutable progress fields with a
	// conditional update keyed on the version the caller read. Returns
	// false when another writer advanced the row first.
	UpdateProgress(ctx context.Context, session *entity.StudySession) (bool, error)

	// AbandonActive flips every active session of the user to abandoned and
	// returns how many rows changed.
	AbandonActive(ctx context.Context, userId uuid.UUID) (int64, error)
}

package unitofwork

import (
	"context"

	"spaced-learning-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	GoalRepository() contract.GoalRepository
	SkillNodeRepository() contract.SkillNodeRepository
	CardRepository() contract.CardRepository
	DeckRepository() contract.DeckRepository
	StudySessionRepository() contract.StudySessionRepository
	DistractorRepository() contract.DistractorRepository
	BackgroundJobRepository() contract.BackgroundJobRepository
}

package unitofwork

import (
	"context"
	"fmt"

	"spaced-learning-be/internal/repository/contract"
	"spaced-learning-be/internal/repository/implementation"

	"gorm.io/gorm"
)

type UnitOfWorkImpl struct {
	db *gorm.DB
	tx *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{
		db: db,
	}
}

// getDB returns the active transaction when one is open, otherwise the
// shared connection. Repositories obtained before Begin see no transaction.
func (u *UnitOfWorkImpl) getDB() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	u.tx = u.db.WithContext(ctx).Begin()
	return u.tx.Error
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) GoalRepository() contract.GoalRepository {
	return implementation.NewGoalRepository(u.getDB())
}

func (u *UnitOfWorkImpl) SkillNodeRepository() contract.SkillNodeRepository {
	return implementation.NewSkillNodeRepository(u.getDB())
}

func (u *UnitOfWorkImpl) CardRepository() contract.CardRepository {
	return implementation.NewCardRepository(u.getDB())
}

func (u *UnitOfWorkImpl) DeckRepository() contract.DeckRepository {
	return implementation.NewDeckRepository(u.getDB())
}

func (u *UnitOfWorkImpl) StudySessionRepository() contract.StudySessionRepository {
	return implementation.NewStudySessionRepository(u.getDB())
}

func (u *UnitOfWorkImpl) DistractorRepository() contract.DistractorRepository {
	return implementation.NewDistractorRepository(u.getDB())
}

func (u *UnitOfWorkImpl) BackgroundJobRepository() contract.BackgroundJobRepository {
	return implementation.NewBackgroundJobRepository(u.getDB())
}

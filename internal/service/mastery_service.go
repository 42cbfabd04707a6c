package service

import (
	"context"

	"spaced-learning-be/internal/entity"
	"spaced-learning-be/internal/repository/specification"
	"spaced-learning-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IMasteryService interface {
	// RecalculateForNodes recomputes mastery for the touched nodes from
	// their cards' current scheduling states, then refreshes each owning
	// goal's mastery as the mean over its nodes. Returns before/after per
	// node for user-facing feedback.
	RecalculateForNodes(ctx context.Context, uow unitofwork.UnitOfWork, nodeIds []uuid.UUID) ([]entity.NodeMasteryDelta, error)
}

type masteryService struct{}

func NewMasteryService() IMasteryService {
	return &masteryService{}
}

func (s *masteryService) RecalculateForNodes(ctx context.Context, uow unitofwork.UnitOfWork, nodeIds []uuid.UUID) ([]entity.NodeMasteryDelta, error) {
	if len(nodeIds) == 0 {
		return []entity.NodeMasteryDelta{}, nil
	}

	nodes, err := uow.SkillNodeRepository().FindAll(ctx, specification.ByIDs{IDs: nodeIds})
	if err != nil {
		return nil, err
	}

	deltas := make([]entity.NodeMasteryDelta, 0, len(nodes))
	goalIds := make(map[uuid.UUID]bool)

	for _, node := range nodes {
		mastery, err := s.nodeMastery(ctx, uow, node.Id)
		if err != nil {
			return nil, err
		}

		deltas = append(deltas, entity.NodeMasteryDelta{
			NodeId:        node.Id,
			NodeTitle:     node.Title,
			MasteryBefore: node.MasteryPercentage,
			MasteryAfter:  mastery,
		})

		if err := uow.SkillNodeRepository().UpdateMastery(ctx, node.Id, mastery); err != nil {
			return nil, err
		}
		goalIds[node.GoalId] = true
	}

	for goalId := range goalIds {
		if err := s.refreshGoalMastery(ctx, uow, goalId); err != nil {
			return nil, err
		}
	}

	return deltas, nil
}

func (s *masteryService) nodeMastery(ctx context.Context, uow unitofwork.UnitOfWork, nodeId uuid.UUID) (float64, error) {
	cards, err := uow.CardRepository().FindAll(ctx,
		specification.CardsByNode{NodeID: nodeId},
		specification.ActiveCards{},
	)
	if err != nil {
		return 0, err
	}
	if len(cards) == 0 {
		return 0, nil
	}

	mastered := 0
	for _, c := range cards {
		if c.Mastered() {
			mastered++
		}
	}
	return float64(mastered) / float64(len(cards)) * 100, nil
}

func (s *masteryService) refreshGoalMastery(ctx context.Context, uow unitofwork.UnitOfWork, goalId uuid.UUID) error {
	nodes, err := uow.SkillNodeRepository().FindAll(ctx,
		specification.NodesByGoal{GoalID: goalId},
		specification.EnabledNodes{},
	)
	if err != nil {
		return err
	}
	if len(nodes) == 0 {
		return nil
	}

	sum := 0.0
	for _, n := range nodes {
		sum += n.MasteryPercentage
	}
	return uow.GoalRepository().UpdateMastery(ctx, goalId, sum/float64(len(nodes)))
}

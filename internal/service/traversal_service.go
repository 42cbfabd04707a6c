package service

import (
	"context"
	"sort"

	"spaced-learning-be/internal/dto"
	"spaced-learning-be/internal/entity"
	"spaced-learning-be/internal/pkg/serverutils"
	"spaced-learning-be/internal/repository/specification"
	"spaced-learning-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// TraversalOutcome is the result of asking for the next node to study. When
// Node is nil, exactly one of TreeComplete or AwaitingContent explains why.
type TraversalOutcome struct {
	Node            *entity.NodeProgress
	TreeComplete    bool
	AwaitingContent bool
}

type ITraversalService interface {
	// NextNode walks the goal's enabled nodes in path order and returns the
	// first one whose cards are not all mastered. Completion is recomputed
	// from current scheduling states on every call.
	NextNode(ctx context.Context, userId, goalId uuid.UUID) (*TraversalOutcome, error)

	Progress(ctx context.Context, userId, goalId uuid.UUID) (*dto.TreeProgressResponse, error)
}

type traversalService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewTraversalService(uowFactory unitofwork.RepositoryFactory) ITraversalService {
	return &traversalService{
		uowFactory: uowFactory,
	}
}

func (s *traversalService) NextNode(ctx context.Context, userId, goalId uuid.UUID) (*TraversalOutcome, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	nodes, tallies, err := s.loadTree(ctx, uow, userId, goalId)
	if err != nil {
		return nil, err
	}

	nodesWithCards := 0
	for _, node := range nodes {
		tally := tallies[node.Id]
		if tally.total == 0 {
			continue
		}
		nodesWithCards++
		if tally.mastered < tally.total {
			return &TraversalOutcome{
				Node: &entity.NodeProgress{
					Node:            node,
					CompletedInNode: tally.mastered,
					TotalInNode:     tally.total,
				},
			}, nil
		}
	}

	// Every node that has cards is done. If some enabled nodes are still
	// empty, content is on its way and the tree is not finished yet.
	if nodesWithCards < len(nodes) {
		return &TraversalOutcome{AwaitingContent: true}, nil
	}
	return &TraversalOutcome{TreeComplete: true}, nil
}

func (s *traversalService) Progress(ctx context.Context, userId, goalId uuid.UUID) (*dto.TreeProgressResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	nodes, tallies, err := s.loadTree(ctx, uow, userId, goalId)
	if err != nil {
		return nil, err
	}

	out := &dto.TreeProgressResponse{
		GoalId: goalId,
		Nodes:  make([]dto.NodeProgressResponse, 0, len(nodes)),
	}

	masterySum := 0.0
	for _, node := range nodes {
		tally := tallies[node.Id]
		mastery := 0.0
		if tally.total > 0 {
			mastery = float64(tally.mastered) / float64(tally.total) * 100
		}
		masterySum += mastery
		out.Nodes = append(out.Nodes, dto.NodeProgressResponse{
			NodeId:          node.Id,
			Title:           node.Title,
			Path:            node.Path,
			Depth:           node.Depth,
			CardCount:       tally.total,
			CompletedInNode: tally.mastered,
			TotalInNode:     tally.total,
			Mastery:         mastery,
		})
	}
	if len(nodes) > 0 {
		out.Mastery = masterySum / float64(len(nodes))
	}

	return out, nil
}

type nodeTally struct {
	total    int
	mastered int
}

// loadTree returns the goal's enabled nodes in path order plus per-node card
// tallies computed from current scheduling states.
func (s *traversalService) loadTree(ctx context.Context, uow unitofwork.UnitOfWork, userId, goalId uuid.UUID) ([]*entity.SkillNode, map[uuid.UUID]nodeTally, error) {
	goal, err := uow.GoalRepository().FindOne(ctx, specification.ByID{ID: goalId}, specification.OwnedBy{UserID: userId})
	if err != nil {
		return nil, nil, err
	}
	if goal == nil {
		return nil, nil, serverutils.NewNotFoundError("goal not found")
	}

	nodes, err := uow.SkillNodeRepository().FindAll(ctx,
		specification.NodesByGoal{GoalID: goalId},
		specification.EnabledNodes{},
		specification.OrderByPath{},
	)
	if err != nil {
		return nil, nil, err
	}
	// The repository orders by path already; sorting again keeps the walk
	// correct even if a caller swaps in an unordered implementation.
	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].Path < nodes[j].Path })

	tallies := make(map[uuid.UUID]nodeTally, len(nodes))
	if len(nodes) == 0 {
		return nodes, tallies, nil
	}

	ids := make([]uuid.UUID, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.Id)
	}
	cards, err := uow.CardRepository().FindAll(ctx,
		specification.CardsByNodes{NodeIDs: ids},
		specification.ActiveCards{},
	)
	if err != nil {
		return nil, nil, err
	}

	for _, c := range cards {
		tally := tallies[c.NodeId]
		tally.total++
		if c.Mastered() {
			tally.mastered++
		}
		tallies[c.NodeId] = tally
	}

	return nodes, tallies, nil
}

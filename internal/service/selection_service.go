package service

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"math/rand"
	"sort"
	"time"

	"spaced-learning-be/internal/dto"
	"spaced-learning-be/internal/entity"
	"spaced-learning-be/internal/pkg/logger"
	"spaced-learning-be/internal/pkg/serverutils"
	"spaced-learning-be/internal/repository/specification"
	"spaced-learning-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// SessionScope narrows card selection to a goal tree, a node subtree, an
// exact node, or a deck. An empty scope means the user's whole collection.
type SessionScope struct {
	GoalId *uuid.UUID
	DeckId *uuid.UUID
	NodeId *uuid.UUID

	// ExactNode restricts a node scope to the node itself instead of its
	// subtree. Guided sessions always study one node at a time.
	ExactNode bool
}

type ISelectionService interface {
	// SelectCards picks and orders the cards for a new session. Due cards
	// win selection; when none are due the soonest-due cards stand in as
	// practice material. The returned order is shuffled.
	SelectCards(ctx context.Context, userId uuid.UUID, scope SessionScope, mode string, limit int, seed uuid.UUID, now time.Time) ([]*entity.StudyCard, error)

	// Materialize rebuilds study cards for an existing manifest from current
	// card rows. Cards deleted since session start are dropped from the view.
	Materialize(ctx context.Context, userId uuid.UUID, cardIds []uuid.UUID, mode string, seed uuid.UUID) ([]*entity.StudyCard, error)
}

type selectionService struct {
	uowFactory        unitofwork.RepositoryFactory
	distractorService IDistractorService
	publisherService  IPublisherService
	logger            logger.ILogger
	shuffle           func(n int, swap func(i, j int))
}

func NewSelectionService(
	uowFactory unitofwork.RepositoryFactory,
	distractorService IDistractorService,
	publisherService IPublisherService,
	log logger.ILogger,
) ISelectionService {
	return &selectionService{
		uowFactory:        uowFactory,
		distractorService: distractorService,
		publisherService:  publisherService,
		logger:            log,
		shuffle:           rand.Shuffle,
	}
}

func (s *selectionService) SelectCards(ctx context.Context, userId uuid.UUID, scope SessionScope, mode string, limit int, seed uuid.UUID, now time.Time) ([]*entity.StudyCard, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	candidates, err := s.resolveScope(ctx, uow, userId, scope)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, serverutils.NewNoCardsError("no cards available in this scope")
	}

	selected := pickByDueness(candidates, limit, now)

	// Due order decided which cards got in; presentation order is its own
	// uniform shuffle.
	s.shuffle(len(selected), func(i, j int) {
		selected[i], selected[j] = selected[j], selected[i]
	})

	return s.present(ctx, uow, userId, selected, mode, seed, true)
}

func (s *selectionService) Materialize(ctx context.Context, userId uuid.UUID, cardIds []uuid.UUID, mode string, seed uuid.UUID) ([]*entity.StudyCard, error) {
	if len(cardIds) == 0 {
		return []*entity.StudyCard{}, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	cards, err := uow.CardRepository().FindAll(ctx,
		specification.ByIDs{IDs: cardIds},
		specification.OwnedBy{UserID: userId},
		specification.ActiveCards{},
	)
	if err != nil {
		return nil, err
	}

	// Keep manifest order for the survivors.
	byId := make(map[uuid.UUID]*entity.Card, len(cards))
	for _, c := range cards {
		byId[c.Id] = c
	}
	ordered := make([]*entity.Card, 0, len(cardIds))
	for _, id := range cardIds {
		if c, ok := byId[id]; ok {
			ordered = append(ordered, c)
		}
	}

	// No new generation jobs on resume; a card whose set never arrived just
	// shows as a flashcard.
	return s.present(ctx, uow, userId, ordered, mode, seed, false)
}

// resolveScope loads the eligible active cards for the scope, verifying the
// scope object exists and belongs to the caller.
func (s *selectionService) resolveScope(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, scope SessionScope) ([]*entity.Card, error) {
	switch {
	case scope.DeckId != nil:
		deck, err := uow.DeckRepository().FindOne(ctx, specification.ByID{ID: *scope.DeckId}, specification.OwnedBy{UserID: userId})
		if err != nil {
			return nil, err
		}
		if deck == nil {
			return nil, serverutils.NewNotFoundError("deck not found")
		}
		ids, err := uow.DeckRepository().ListCardIds(ctx, deck.Id)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return []*entity.Card{}, nil
		}
		return uow.CardRepository().FindAll(ctx,
			specification.ByIDs{IDs: ids},
			specification.OwnedBy{UserID: userId},
			specification.ActiveCards{},
		)

	case scope.NodeId != nil:
		node, _, err := s.loadOwnedNode(ctx, uow, userId, *scope.NodeId)
		if err != nil {
			return nil, err
		}

		if scope.ExactNode {
			return uow.CardRepository().FindAll(ctx,
				specification.CardsByNode{NodeID: node.Id},
				specification.ActiveCards{},
			)
		}

		subtree, err := uow.SkillNodeRepository().FindAll(ctx,
			specification.NodesByGoal{GoalID: node.GoalId},
			specification.EnabledNodes{},
			specification.UnderPath{Path: node.Path},
		)
		if err != nil {
			return nil, err
		}
		return s.cardsForNodes(ctx, uow, subtree)

	case scope.GoalId != nil:
		goal, err := uow.GoalRepository().FindOne(ctx, specification.ByID{ID: *scope.GoalId}, specification.OwnedBy{UserID: userId})
		if err != nil {
			return nil, err
		}
		if goal == nil {
			return nil, serverutils.NewNotFoundError("goal not found")
		}
		nodes, err := uow.SkillNodeRepository().FindAll(ctx,
			specification.NodesByGoal{GoalID: goal.Id},
			specification.EnabledNodes{},
		)
		if err != nil {
			return nil, err
		}
		return s.cardsForNodes(ctx, uow, nodes)

	default:
		return uow.CardRepository().FindAll(ctx,
			specification.OwnedBy{UserID: userId},
			specification.ActiveCards{},
		)
	}
}

func (s *selectionService) loadOwnedNode(ctx context.Context, uow unitofwork.UnitOfWork, userId, nodeId uuid.UUID) (*entity.SkillNode, *entity.Goal, error) {
	node, err := uow.SkillNodeRepository().FindOne(ctx, specification.ByID{ID: nodeId})
	if err != nil {
		return nil, nil, err
	}
	if node == nil {
		return nil, nil, serverutils.NewNotFoundError("node not found")
	}
	goal, err := uow.GoalRepository().FindOne(ctx, specification.ByID{ID: node.GoalId}, specification.OwnedBy{UserID: userId})
	if err != nil {
		return nil, nil, err
	}
	if goal == nil {
		return nil, nil, serverutils.NewNotFoundError("node not found")
	}
	return node, goal, nil
}

func (s *selectionService) cardsForNodes(ctx context.Context, uow unitofwork.UnitOfWork, nodes []*entity.SkillNode) ([]*entity.Card, error) {
	if len(nodes) == 0 {
		return []*entity.Card{}, nil
	}
	ids := make([]uuid.UUID, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.Id)
	}
	return uow.CardRepository().FindAll(ctx,
		specification.CardsByNodes{NodeIDs: ids},
		specification.ActiveCards{},
	)
}

// pickByDueness takes up to limit due cards sorted earliest-due first. With
// nothing due it falls back to the soonest-due cards so the session still has
// practice material.
func pickByDueness(candidates []*entity.Card, limit int, now time.Time) []*entity.Card {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Scheduling.Due.Equal(candidates[j].Scheduling.Due) {
			return candidates[i].Id.String() < candidates[j].Id.String()
		}
		return candidates[i].Scheduling.Due.Before(candidates[j].Scheduling.Due)
	})

	due := make([]*entity.Card, 0, len(candidates))
	for _, c := range candidates {
		if c.IsDue(now) {
			due = append(due, c)
		}
	}

	pool := due
	if len(pool) == 0 {
		pool = candidates
	}
	if len(pool) > limit {
		pool = pool[:limit]
	}

	out := make([]*entity.Card, len(pool))
	copy(out, pool)
	return out
}

// present assigns presentation kinds and resolves distractors for the cards
// that need them.
func (s *selectionService) present(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, cards []*entity.Card, mode string, seed uuid.UUID, allowGeneration bool) ([]*entity.StudyCard, error) {
	nodeTitles, err := s.nodeTitles(ctx, uow, cards)
	if err != nil {
		return nil, err
	}

	multipleChoice := make([]*entity.Card, 0, len(cards))
	kinds := make(map[uuid.UUID]bool, len(cards))
	for _, c := range cards {
		mc := assignMultipleChoice(c, mode, seed)
		kinds[c.Id] = mc
		if mc {
			multipleChoice = append(multipleChoice, c)
		}
	}

	choices := map[uuid.UUID][]string{}
	if len(multipleChoice) > 0 {
		choices, err = s.distractorService.ChoicesForCards(ctx, multipleChoice)
		if err != nil {
			return nil, err
		}
	}

	out := make([]*entity.StudyCard, 0, len(cards))
	for _, c := range cards {
		sc := &entity.StudyCard{
			CardId:     c.Id,
			NodeId:     c.NodeId,
			NodeTitle:  nodeTitles[c.NodeId],
			Question:   c.Question,
			Scheduling: c.Scheduling,
		}

		if !kinds[c.Id] {
			sc.Presentation = entity.FlashcardPresentation{Answer: c.Answer}
			out = append(out, sc)
			continue
		}

		if set, ok := choices[c.Id]; ok {
			var fixed [ChoiceSetSize]string
			copy(fixed[:], set)
			sc.Presentation = entity.MultipleChoicePresentation{Answer: c.Answer, Distractors: fixed}
			out = append(out, sc)
			continue
		}

		if allowGeneration && entity.NeedsDistractors(mode) {
			if jobId, jobErr := s.enqueueGeneration(ctx, uow, userId, c.Id); jobErr == nil {
				sc.Presentation = entity.PendingChoicePresentation{Answer: c.Answer, JobId: jobId}
				out = append(out, sc)
				continue
			} else {
				// Fail open. The card studies fine as a flashcard.
				s.logger.Warn("SelectionService", "Distractor job creation failed, degrading to flashcard", map[string]interface{}{
					"card_id": c.Id,
					"error":   jobErr.Error(),
				})
			}
		}

		sc.Presentation = entity.FlashcardPresentation{Answer: c.Answer}
		out = append(out, sc)
	}

	return out, nil
}

func (s *selectionService) nodeTitles(ctx context.Context, uow unitofwork.UnitOfWork, cards []*entity.Card) (map[uuid.UUID]string, error) {
	idSet := make(map[uuid.UUID]bool, len(cards))
	ids := make([]uuid.UUID, 0, len(cards))
	for _, c := range cards {
		if !idSet[c.NodeId] {
			idSet[c.NodeId] = true
			ids = append(ids, c.NodeId)
		}
	}
	if len(ids) == 0 {
		return map[uuid.UUID]string{}, nil
	}

	nodes, err := uow.SkillNodeRepository().FindAll(ctx, specification.ByIDs{IDs: ids})
	if err != nil {
		return nil, err
	}
	titles := make(map[uuid.UUID]string, len(nodes))
	for _, n := range nodes {
		titles[n.Id] = n.Title
	}
	return titles, nil
}

func (s *selectionService) enqueueGeneration(ctx context.Context, uow unitofwork.UnitOfWork, userId, cardId uuid.UUID) (uuid.UUID, error) {
	job := &entity.BackgroundJob{
		Id:      uuid.New(),
		JobType: entity.JobTypeGenerateDistractors,
		Status:  entity.JobStatusPending,
		UserId:  userId,
		Payload: map[string]interface{}{
			"card_id": cardId.String(),
		},
		MaxAttempts: 3,
	}
	if err := uow.BackgroundJobRepository().Create(ctx, job); err != nil {
		return uuid.Nil, err
	}

	msg, err := json.Marshal(dto.GenerateDistractorsMessage{
		JobId:  job.Id,
		CardId: cardId,
		UserId: userId,
	})
	if err != nil {
		return uuid.Nil, err
	}
	if err := s.publisherService.Publish(ctx, msg); err != nil {
		return uuid.Nil, err
	}
	return job.Id, nil
}

// assignMultipleChoice decides a card's presentation kind under the session
// mode. Mixed mode rolls per card with even odds, seeded by session and card
// id so a resume sees the same assignment.
func assignMultipleChoice(card *entity.Card, mode string, seed uuid.UUID) bool {
	switch mode {
	case entity.ModeMultipleChoice:
		return true
	case entity.ModeFlashcard:
		return false
	case entity.ModeMixed:
		h := fnv.New32a()
		h.Write(seed[:])
		h.Write(card.Id[:])
		return h.Sum32()%2 == 0
	default:
		return card.CardType == entity.CardTypeMultipleChoice
	}
}

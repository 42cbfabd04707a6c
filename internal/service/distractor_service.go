package service

import (
	"context"

	"spaced-learning-be/internal/entity"
	"spaced-learning-be/internal/repository/memory"
	"spaced-learning-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// ChoiceSetSize is how many wrong answers a multiple-choice card carries.
const ChoiceSetSize = 3

type IDistractorService interface {
	// ChoicesForCards resolves distractor contents per card. Precedence is
	// the distractors table first, then the card's legacy metadata set. Cards
	// absent from the result have no usable set and need generation.
	ChoicesForCards(ctx context.Context, cards []*entity.Card) (map[uuid.UUID][]string, error)

	// Replace rewrites a card's distractor set and drops any cached copy.
	Replace(ctx context.Context, cardId uuid.UUID, contents []string) error
}

type distractorService struct {
	uowFactory unitofwork.RepositoryFactory
	cache      *memory.DistractorCache
}

func NewDistractorService(uowFactory unitofwork.RepositoryFactory, cache *memory.DistractorCache) IDistractorService {
	return &distractorService{
		uowFactory: uowFactory,
		cache:      cache,
	}
}

func (s *distractorService) ChoicesForCards(ctx context.Context, cards []*entity.Card) (map[uuid.UUID][]string, error) {
	out := make(map[uuid.UUID][]string, len(cards))

	missing := make([]uuid.UUID, 0, len(cards))
	for _, card := range cards {
		if cached, found := s.cache.Get(card.Id); found {
			if contents := distractorContents(cached); len(contents) >= ChoiceSetSize {
				out[card.Id] = contents[:ChoiceSetSize]
			}
			continue
		}
		missing = append(missing, card.Id)
	}

	if len(missing) > 0 {
		uow := s.uowFactory.NewUnitOfWork(ctx)
		byCard, err := uow.DistractorRepository().FindByCards(ctx, missing)
		if err != nil {
			return nil, err
		}
		for id, set := range byCard {
			s.cache.Save(id, set)
			if contents := distractorContents(set); len(contents) >= ChoiceSetSize {
				out[id] = contents[:ChoiceSetSize]
			}
		}
	}

	// Legacy metadata sets fill the gap for cards imported before the
	// distractors table existed.
	for _, card := range cards {
		if _, ok := out[card.Id]; ok {
			continue
		}
		if len(card.LegacyDistractors) >= ChoiceSetSize {
			out[card.Id] = card.LegacyDistractors[:ChoiceSetSize]
		}
	}

	return out, nil
}

func (s *distractorService) Replace(ctx context.Context, cardId uuid.UUID, contents []string) error {
	distractors := make([]*entity.Distractor, 0, len(contents))
	for i, content := range contents {
		distractors = append(distractors, &entity.Distractor{
			Id:       uuid.New(),
			CardId:   cardId,
			Content:  content,
			Position: i,
		})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.DistractorRepository().ReplaceForCard(ctx, cardId, distractors); err != nil {
		return err
	}
	s.cache.Invalidate(cardId)
	return nil
}

func distractorContents(set []*entity.Distractor) []string {
	contents := make([]string, 0, len(set))
	for _, d := range set {
		contents = append(contents, d.Content)
	}
	return contents
}

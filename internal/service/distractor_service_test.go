package service

import (
	"context"
	"testing"
	"time"

	"spaced-learning-be/internal/entity"
	"spaced-learning-be/internal/repository/memory"
	"spaced-learning-be/pkg/srs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChoicesForCardsTableBeatsLegacy(t *testing.T) {
	store := newMemStore()
	userId := uuid.New()
	goal := addGoal(store, userId)
	node := addNode(store, goal.Id, "001")

	card := addCard(store, userId, node.Id, time.Now(), srs.StateNew)
	card.LegacyDistractors = []string{"old1", "old2", "old3"}
	store.distractors[card.Id] = []*entity.Distractor{
		{Id: uuid.New(), CardId: card.Id, Content: "new1", Position: 0},
		{Id: uuid.New(), CardId: card.Id, Content: "new2", Position: 1},
		{Id: uuid.New(), CardId: card.Id, Content: "new3", Position: 2},
	}

	svc := NewDistractorService(newMemFactory(store), memory.NewDistractorCache())
	choices, err := svc.ChoicesForCards(context.Background(), []*entity.Card{card})

	require.NoError(t, err)
	assert.Equal(t, []string{"new1", "new2", "new3"}, choices[card.Id])
}

func TestChoicesForCardsPartialSetsAreUnusable(t *testing.T) {
	store := newMemStore()
	userId := uuid.New()
	goal := addGoal(store, userId)
	node := addNode(store, goal.Id, "001")

	card := addCard(store, userId, node.Id, time.Now(), srs.StateNew)
	card.LegacyDistractors = []string{"only", "two"}
	store.distractors[card.Id] = []*entity.Distractor{
		{Id: uuid.New(), CardId: card.Id, Content: "lonely", Position: 0},
	}

	svc := NewDistractorService(newMemFactory(store), memory.NewDistractorCache())
	choices, err := svc.ChoicesForCards(context.Background(), []*entity.Card{card})

	require.NoError(t, err)
	// Neither source reaches a full set, so the card needs generation.
	assert.NotContains(t, choices, card.Id)
}

func TestReplaceInvalidatesCache(t *testing.T) {
	store := newMemStore()
	userId := uuid.New()
	goal := addGoal(store, userId)
	node := addNode(store, goal.Id, "001")

	card := addCard(store, userId, node.Id, time.Now(), srs.StateNew)
	store.distractors[card.Id] = []*entity.Distractor{
		{Id: uuid.New(), CardId: card.Id, Content: "old1", Position: 0},
		{Id: uuid.New(), CardId: card.Id, Content: "old2", Position: 1},
		{Id: uuid.New(), CardId: card.Id, Content: "old3", Position: 2},
	}

	svc := NewDistractorService(newMemFactory(store), memory.NewDistractorCache())

	// Prime the cache with the old set.
	choices, err := svc.ChoicesForCards(context.Background(), []*entity.Card{card})
	require.NoError(t, err)
	assert.Equal(t, []string{"old1", "old2", "old3"}, choices[card.Id])

	require.NoError(t, svc.Replace(context.Background(), card.Id, []string{"fresh1", "fresh2", "fresh3"}))

	choices, err = svc.ChoicesForCards(context.Background(), []*entity.Card{card})
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh1", "fresh2", "fresh3"}, choices[card.Id])

	stored := store.distractors[card.Id]
	require.Len(t, stored, 3)
	for i, d := range stored {
		assert.Equal(t, i, d.Position)
	}
}

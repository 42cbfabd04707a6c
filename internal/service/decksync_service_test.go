package service

import (
	"context"
	"testing"
	"time"

	"spaced-learning-be/internal/dto"
	"spaced-learning-be/internal/entity"
	"spaced-learning-be/internal/pkg/serverutils"
	"spaced-learning-be/pkg/srs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDeckSyncService(store *memStore, now time.Time) *deckSyncService {
	return &deckSyncService{
		uowFactory: newMemFactory(store),
		logger:     noopLogger{},
		now:        func() time.Time { return now },
	}
}

type deckFixture struct {
	userId  uuid.UUID
	deck    *entity.Deck
	node    *entity.SkillNode
	session *entity.StudySession
}

func setupDeckSession(store *memStore, now time.Time, cardIds []uuid.UUID) deckFixture {
	userId := uuid.New()
	goal := addGoal(store, userId)
	node := addNode(store, goal.Id, "001")
	deck := &entity.Deck{Id: uuid.New(), UserId: userId, Name: "Deck"}
	store.decks[deck.Id] = deck

	deckId := deck.Id
	session := &entity.StudySession{
		Id:        uuid.New(),
		UserId:    userId,
		DeckId:    &deckId,
		Mode:      entity.ModeFlashcard,
		Status:    entity.SessionActive,
		CardIds:   cardIds,
		StartedAt: now,
		ExpiresAt: now.Add(24 * time.Hour),
	}
	store.sessions[session.Id] = session

	return deckFixture{userId: userId, deck: deck, node: node, session: session}
}

func addToDeck(store *memStore, deckId, cardId uuid.UUID, at time.Time) {
	store.deckCards = append(store.deckCards, &entity.DeckCard{DeckId: deckId, CardId: cardId, AddedAt: at})
}

func TestApplyChangesNoDriftMutatesNothing(t *testing.T) {
	store := newMemStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	fx := setupDeckSession(store, now, nil)
	card := addCard(store, fx.userId, fx.node.Id, now.Add(-time.Hour), srs.StateNew)
	addToDeck(store, fx.deck.Id, card.Id, now.Add(-time.Hour))
	fx.session.CardIds = []uuid.UUID{card.Id}
	store.sessions[fx.session.Id] = fx.session
	before := fx.session.LastActivityAt

	svc := newTestDeckSyncService(store, now)
	resp, err := svc.ApplyChanges(context.Background(), fx.userId, &dto.DeckChangesRequest{DeckId: fx.deck.Id})

	require.NoError(t, err)
	assert.False(t, resp.HasChanges)
	assert.Empty(t, resp.AddedCards)
	assert.Empty(t, resp.RemovedCards)
	assert.Equal(t, 1, resp.TotalCards)
	assert.Equal(t, before, store.sessions[fx.session.Id].LastActivityAt)
}

func TestApplyChangesAddsOnlyDueNewMembers(t *testing.T) {
	store := newMemStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	fx := setupDeckSession(store, now, nil)
	existing := addCard(store, fx.userId, fx.node.Id, now.Add(-time.Hour), srs.StateNew)
	dueNew := addCard(store, fx.userId, fx.node.Id, now.Add(-time.Minute), srs.StateNew)
	futureNew := addCard(store, fx.userId, fx.node.Id, now.Add(48*time.Hour), srs.StateReview)

	addToDeck(store, fx.deck.Id, existing.Id, now.Add(-2*time.Hour))
	addToDeck(store, fx.deck.Id, dueNew.Id, now.Add(-time.Hour))
	addToDeck(store, fx.deck.Id, futureNew.Id, now.Add(-time.Hour))
	fx.session.CardIds = []uuid.UUID{existing.Id}
	store.sessions[fx.session.Id] = fx.session

	svc := newTestDeckSyncService(store, now)
	resp, err := svc.ApplyChanges(context.Background(), fx.userId, &dto.DeckChangesRequest{DeckId: fx.deck.Id})

	require.NoError(t, err)
	assert.True(t, resp.HasChanges)
	assert.Equal(t, []uuid.UUID{dueNew.Id}, resp.AddedCards)
	assert.Empty(t, resp.RemovedCards)
	assert.Equal(t, []uuid.UUID{existing.Id, dueNew.Id}, store.sessions[fx.session.Id].CardIds)
}

func TestApplyChangesRemovesOnlyUnratedCards(t *testing.T) {
	store := newMemStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	fx := setupDeckSession(store, now, nil)
	rated := addCard(store, fx.userId, fx.node.Id, now.Add(-time.Hour), srs.StateNew)
	unrated := addCard(store, fx.userId, fx.node.Id, now.Add(-time.Hour), srs.StateNew)

	// Both left the deck; only the rated one keeps its slot.
	fx.session.CardIds = []uuid.UUID{rated.Id, unrated.Id}
	fx.session.CurrentIndex = 1
	fx.session.Responses = []entity.CardResponse{
		{CardId: rated.Id, Rating: srs.RatingGood, RatedAt: now},
	}
	store.sessions[fx.session.Id] = fx.session

	svc := newTestDeckSyncService(store, now)
	resp, err := svc.ApplyChanges(context.Background(), fx.userId, &dto.DeckChangesRequest{DeckId: fx.deck.Id})

	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{unrated.Id}, resp.RemovedCards)
	assert.Equal(t, []uuid.UUID{rated.Id}, store.sessions[fx.session.Id].CardIds)
	assert.Equal(t, 1, resp.CurrentIndex)
}

func TestApplyChangesKeepsRatingThatLandsMidSync(t *testing.T) {
	store := newMemStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	fx := setupDeckSession(store, now, nil)
	leaving := addCard(store, fx.userId, fx.node.Id, now.Add(-time.Hour), srs.StateNew)
	staying := addCard(store, fx.userId, fx.node.Id, now.Add(-time.Hour), srs.StateNew)

	// The leaving card is out of the deck and unrated, so sync wants to
	// drop it.
	addToDeck(store, fx.deck.Id, staying.Id, now.Add(-time.Hour))
	fx.session.CardIds = []uuid.UUID{leaving.Id, staying.Id}
	store.sessions[fx.session.Id] = fx.session

	// A rating for that card commits between sync's read and its write.
	store.sessionProgressHook = func(s *memStore) {
		stored := s.sessions[fx.session.Id]
		stored.Responses = append(stored.Responses, entity.CardResponse{
			CardId: leaving.Id, Rating: srs.RatingGood, RatedAt: now,
		})
		stored.CurrentIndex = 1
		stored.Version++
	}

	svc := newTestDeckSyncService(store, now)
	resp, err := svc.ApplyChanges(context.Background(), fx.userId, &dto.DeckChangesRequest{DeckId: fx.deck.Id})

	require.NoError(t, err)
	// The re-evaluation sees the card rated and keeps it; the rating and
	// its cursor advance survive.
	assert.False(t, resp.HasChanges)
	assert.Empty(t, resp.RemovedCards)
	stored := store.sessions[fx.session.Id]
	assert.Equal(t, []uuid.UUID{leaving.Id, staying.Id}, stored.CardIds)
	require.Len(t, stored.Responses, 1)
	assert.Equal(t, leaving.Id, stored.Responses[0].CardId)
	assert.Equal(t, 1, stored.CurrentIndex)
}

func TestApplyChangesReportsDeltaAgainstClientSnapshot(t *testing.T) {
	store := newMemStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	fx := setupDeckSession(store, now, nil)
	known := addCard(store, fx.userId, fx.node.Id, now.Add(-time.Hour), srs.StateNew)
	missed := addCard(store, fx.userId, fx.node.Id, now.Add(-time.Hour), srs.StateNew)

	addToDeck(store, fx.deck.Id, known.Id, now.Add(-2*time.Hour))
	addToDeck(store, fx.deck.Id, missed.Id, now.Add(-time.Hour))
	fx.session.CardIds = []uuid.UUID{known.Id, missed.Id}
	store.sessions[fx.session.Id] = fx.session
	before := fx.session.LastActivityAt

	// The server manifest is already current; only the client is behind.
	svc := newTestDeckSyncService(store, now)
	resp, err := svc.ApplyChanges(context.Background(), fx.userId, &dto.DeckChangesRequest{
		DeckId:          fx.deck.Id,
		OriginalCardIds: []uuid.UUID{known.Id},
	})

	require.NoError(t, err)
	assert.True(t, resp.HasChanges)
	assert.Equal(t, []uuid.UUID{missed.Id}, resp.AddedCards)
	assert.Empty(t, resp.RemovedCards)
	// No drift server-side, so nothing was written.
	assert.Equal(t, before, store.sessions[fx.session.Id].LastActivityAt)
}

func TestApplyChangesRequiresMatchingDeckSession(t *testing.T) {
	store := newMemStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	fx := setupDeckSession(store, now, nil)

	svc := newTestDeckSyncService(store, now)
	_, err := svc.ApplyChanges(context.Background(), fx.userId, &dto.DeckChangesRequest{DeckId: uuid.New()})

	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, serverutils.CodeNotFound, appErr.Code)
}

func TestApplyChangesExpiredSession(t *testing.T) {
	store := newMemStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	fx := setupDeckSession(store, now, nil)
	fx.session.ExpiresAt = now.Add(-time.Hour)
	store.sessions[fx.session.Id] = fx.session

	svc := newTestDeckSyncService(store, now)
	_, err := svc.ApplyChanges(context.Background(), fx.userId, &dto.DeckChangesRequest{DeckId: fx.deck.Id})

	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, serverutils.CodeExpired, appErr.Code)
}

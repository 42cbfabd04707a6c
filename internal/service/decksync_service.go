package service

import (
	"context"
	"time"

	"spaced-learning-be/internal/dto"
	"spaced-learning-be/internal/entity"
	"spaced-learning-be/internal/pkg/logger"
	"spaced-learning-be/internal/pkg/serverutils"
	"spaced-learning-be/internal/repository/specification"
	"spaced-learning-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IDeckSyncService interface {
	// ApplyChanges reconciles the user's active deck session against the
	// deck's current membership. Newly added members join the queue only if
	// they are due right now; removed members leave the queue unless they
	// were already rated. A drift-free session mutates nothing.
	ApplyChanges(ctx context.Context, userId uuid.UUID, req *dto.DeckChangesRequest) (*dto.DeckChangesResponse, error)
}

type deckSyncService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
	now        func() time.Time
}

func NewDeckSyncService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IDeckSyncService {
	return &deckSyncService{
		uowFactory: uowFactory,
		logger:     log,
		now:        time.Now,
	}
}

func (s *deckSyncService) ApplyChanges(ctx context.Context, userId uuid.UUID, req *dto.DeckChangesRequest) (*dto.DeckChangesResponse, error) {
	now := s.now()
	uow := s.uowFactory.NewUnitOfWork(ctx)

	// The manifest write is conditional on the session version read during
	// evaluation. Losing it means a rating landed in between; re-evaluating
	// against the fresh row keeps that rating (sync only drops unrated
	// cards, and the card is rated now).
	for attempt := 0; ; attempt++ {
		resp, retry, err := s.reconcile(ctx, uow, userId, req, now)
		if err != nil {
			return nil, err
		}
		if !retry {
			return resp, nil
		}
		if attempt > 0 {
			return nil, serverutils.NewConflictError("session was updated concurrently")
		}
	}
}

func (s *deckSyncService) reconcile(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, req *dto.DeckChangesRequest, now time.Time) (*dto.DeckChangesResponse, bool, error) {
	session, err := uow.StudySessionRepository().FindOne(ctx,
		specification.OwnedBy{UserID: userId},
		specification.SessionsByStatus{Status: entity.SessionActive},
		specification.OrderBy{Field: "started_at", Desc: true},
	)
	if err != nil {
		return nil, false, err
	}
	if session == nil || session.DeckId == nil || *session.DeckId != req.DeckId {
		return nil, false, serverutils.NewNotFoundError("no active session for this deck")
	}
	if session.Expired(now) {
		return nil, false, serverutils.NewExpiredError("session has expired")
	}

	membership, err := uow.DeckRepository().ListCardIds(ctx, req.DeckId)
	if err != nil {
		return nil, false, err
	}

	inDeck := make(map[uuid.UUID]bool, len(membership))
	for _, id := range membership {
		inDeck[id] = true
	}
	inSession := make(map[uuid.UUID]bool, len(session.CardIds))
	for _, id := range session.CardIds {
		inSession[id] = true
	}

	// Removals keep rated entries; history is immutable.
	removed := make([]uuid.UUID, 0)
	kept := make([]uuid.UUID, 0, len(session.CardIds))
	for _, id := range session.CardIds {
		if !inDeck[id] && !session.Rated(id) {
			removed = append(removed, id)
			continue
		}
		kept = append(kept, id)
	}

	// Additions join only when currently due.
	candidates := make([]uuid.UUID, 0)
	for _, id := range membership {
		if !inSession[id] {
			candidates = append(candidates, id)
		}
	}
	added := make([]uuid.UUID, 0)
	if len(candidates) > 0 {
		cards, err := uow.CardRepository().FindAll(ctx,
			specification.ByIDs{IDs: candidates},
			specification.OwnedBy{UserID: userId},
			specification.ActiveCards{},
		)
		if err != nil {
			return nil, false, err
		}
		byId := make(map[uuid.UUID]*entity.Card, len(cards))
		for _, c := range cards {
			byId[c.Id] = c
		}
		for _, id := range candidates {
			if c, ok := byId[id]; ok && c.IsDue(now) {
				added = append(added, id)
			}
		}
	}

	if len(added) > 0 || len(removed) > 0 {
		session.CardIds = append(kept, added...)
		session.LastActivityAt = now
		ok, err := uow.StudySessionRepository().UpdateProgress(ctx, session)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, true, nil
		}

		s.logger.Info("DeckSyncService", "Session reconciled with deck", map[string]interface{}{
			"session_id": session.Id,
			"added":      len(added),
			"removed":    len(removed),
		})
	}

	// A client that sent its own snapshot gets the delta against that
	// snapshot, so a missed earlier evaluation is folded into this one.
	if len(req.OriginalCardIds) > 0 {
		added, removed = diffManifests(req.OriginalCardIds, session.CardIds)
	}

	return &dto.DeckChangesResponse{
		SessionId:    session.Id,
		HasChanges:   len(added) > 0 || len(removed) > 0,
		AddedCards:   added,
		RemovedCards: removed,
		TotalCards:   len(session.CardIds),
		CurrentIndex: session.CurrentIndex,
	}, false, nil
}

func diffManifests(before, after []uuid.UUID) (added, removed []uuid.UUID) {
	inBefore := make(map[uuid.UUID]bool, len(before))
	for _, id := range before {
		inBefore[id] = true
	}
	inAfter := make(map[uuid.UUID]bool, len(after))
	for _, id := range after {
		inAfter[id] = true
	}

	added = make([]uuid.UUID, 0)
	for _, id := range after {
		if !inBefore[id] {
			added = append(added, id)
		}
	}
	removed = make([]uuid.UUID, 0)
	for _, id := range before {
		if !inAfter[id] {
			removed = append(removed, id)
		}
	}
	return added, removed
}

package service

import (
	"context"
	"math/rand"
	"time"

	"spaced-learning-be/internal/config"
	"spaced-learning-be/internal/dto"
	"spaced-learning-be/internal/entity"
	"spaced-learning-be/internal/pkg/logger"
	"spaced-learning-be/internal/pkg/serverutils"
	"spaced-learning-be/internal/repository/specification"
	"spaced-learning-be/internal/repository/unitofwork"
	"spaced-learning-be/pkg/events"
	pkgNats "spaced-learning-be/pkg/nats"
	"spaced-learning-be/pkg/srs"

	"github.com/google/uuid"
)

type ISessionService interface {
	Start(ctx context.Context, userId uuid.UUID, req *dto.StartSessionRequest) (*dto.StartSessionResult, error)
	Resume(ctx context.Context, userId, sessionId uuid.UUID) (*dto.SessionResponse, error)
	Rate(ctx context.Context, userId, sessionId uuid.UUID, req *dto.RateCardRequest) (*dto.RateCardResponse, error)
	Complete(ctx context.Context, userId, sessionId uuid.UUID, req *dto.CompleteSessionRequest) (*dto.SessionSummaryResponse, error)
	GetActive(ctx context.Context, userId uuid.UUID) (*dto.SessionResponse, error)
}

type sessionService struct {
	uowFactory       unitofwork.RepositoryFactory
	selectionService ISelectionService
	traversalService ITraversalService
	masteryService   IMasteryService
	algorithm        srs.Algorithm
	eventPublisher   *pkgNats.Publisher
	studyConfig      config.StudyConfig
	logger           logger.ILogger
	now              func() time.Time
}

func NewSessionService(
	uowFactory unitofwork.RepositoryFactory,
	selectionService ISelectionService,
	traversalService ITraversalService,
	masteryService IMasteryService,
	algorithm srs.Algorithm,
	eventPublisher *pkgNats.Publisher,
	studyConfig config.StudyConfig,
	log logger.ILogger,
) ISessionService {
	return &sessionService{
		uowFactory:       uowFactory,
		selectionService: selectionService,
		traversalService: traversalService,
		masteryService:   masteryService,
		algorithm:        algorithm,
		eventPublisher:   eventPublisher,
		studyConfig:      studyConfig,
		logger:           log,
		now:              time.Now,
	}
}

func (s *sessionService) Start(ctx context.Context, userId uuid.UUID, req *dto.StartSessionRequest) (*dto.StartSessionResult, error) {
	now := s.now()

	scope := SessionScope{
		GoalId: req.GoalId,
		DeckId: req.DeckId,
		NodeId: req.NodeId,
	}

	isGuided := req.Guided
	var guidedNode *entity.NodeProgress

	if isGuided {
		if req.GoalId == nil {
			return nil, serverutils.NewInvalidError("guided sessions require a goal")
		}
		outcome, err := s.traversalService.NextNode(ctx, userId, *req.GoalId)
		if err != nil {
			return nil, err
		}
		if outcome.Node == nil {
			// Legitimate no-session outcomes: either there is nothing left
			// to master, or content is still being produced.
			return &dto.StartSessionResult{
				TreeComplete:    outcome.TreeComplete,
				AwaitingContent: outcome.AwaitingContent,
			}, nil
		}
		guidedNode = outcome.Node
		nodeId := outcome.Node.Node.Id
		scope.NodeId = &nodeId
		scope.ExactNode = true
	} else if req.Mode == entity.ModeNode {
		if req.NodeId == nil {
			return nil, serverutils.NewInvalidError("node sessions require a node")
		}
		scope.ExactNode = true
	}

	limit := req.MaxCards
	if limit <= 0 {
		limit = s.studyConfig.DefaultSessionSize
	}
	if limit > s.studyConfig.MaxSessionSize {
		limit = s.studyConfig.MaxSessionSize
	}

	sessionId := uuid.New()
	cards, err := s.selectionService.SelectCards(ctx, userId, scope, req.Mode, limit, sessionId, now)
	if err != nil {
		return nil, err
	}

	session := &entity.StudySession{
		Id:             sessionId,
		UserId:         userId,
		GoalId:         req.GoalId,
		DeckId:         req.DeckId,
		NodeId:         scope.NodeId,
		Mode:           req.Mode,
		IsGuided:       isGuided,
		Status:         entity.SessionActive,
		CardIds:        cardIdsOf(cards),
		Responses:      []entity.CardResponse{},
		StartedAt:      now,
		LastActivityAt: now,
		ExpiresAt:      now.Add(s.studyConfig.SessionTTL),
	}

	if req.Mode == entity.ModeTimed {
		settings := entity.TimedSettings{
			DurationSeconds: int(s.studyConfig.TimedDuration.Seconds()),
			PointsPerCard:   s.studyConfig.TimedPointsPerCard,
		}
		if req.TimedSettings != nil {
			if req.TimedSettings.DurationSeconds > 0 {
				settings.DurationSeconds = req.TimedSettings.DurationSeconds
			}
			if req.TimedSettings.PointsPerCard > 0 {
				settings.PointsPerCard = req.TimedSettings.PointsPerCard
			}
		}
		session.TimedSettings = &settings
		remaining := int64(settings.DurationSeconds) * 1000
		session.TimeRemainingMs = &remaining
	}

	// Abandoning prior actives and creating the new session commit together
	// so two sessions are never simultaneously active for the user.
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	abandoned, err := uow.StudySessionRepository().AbandonActive(ctx, userId)
	if err != nil {
		return nil, err
	}
	if err := uow.StudySessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	if abandoned > 0 {
		s.logger.Info("SessionService", "Abandoned prior active sessions", map[string]interface{}{
			"user_id": userId,
			"count":   abandoned,
		})
	}

	resp := s.toSessionResponse(session, cards)
	if guidedNode != nil {
		resp.NodeTitle = guidedNode.Node.Title
	}
	return &dto.StartSessionResult{Session: resp}, nil
}

func (s *sessionService) Resume(ctx context.Context, userId, sessionId uuid.UUID) (*dto.SessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.loadOwnedSession(ctx, uow, userId, sessionId)
	if err != nil {
		return nil, err
	}
	if session.Status != entity.SessionActive {
		return nil, serverutils.NewConflictError("session is no longer active")
	}
	if session.Expired(s.now()) {
		return nil, serverutils.NewExpiredError("session has expired")
	}

	// Re-materialize from current card rows so edits made since session
	// start are visible and deleted cards drop out of the view.
	cards, err := s.selectionService.Materialize(ctx, userId, session.CardIds, session.Mode, session.Id)
	if err != nil {
		return nil, err
	}

	// The activity touch is best effort; losing the version race to a
	// concurrent rating only skips the bump.
	session.LastActivityAt = s.now()
	if _, err := uow.StudySessionRepository().UpdateProgress(ctx, session); err != nil {
		return nil, err
	}

	return s.toSessionResponse(session, cards), nil
}

func (s *sessionService) Rate(ctx context.Context, userId, sessionId uuid.UUID, req *dto.RateCardRequest) (*dto.RateCardResponse, error) {
	now := s.now()
	rating := srs.Rating(req.Rating)
	if !rating.IsValid() {
		return nil, serverutils.NewInvalidError("rating must be between 1 and 4")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.ratableSession(ctx, uow, userId, sessionId, req.CardId, now)
	if err != nil {
		return nil, err
	}

	card, err := uow.CardRepository().FindOne(ctx,
		specification.ByID{ID: req.CardId},
		specification.OwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}

	var nextState srs.SchedulingState
	if card != nil {
		nextState, err = s.applyRating(ctx, uow, card, rating, now)
		if err != nil {
			return nil, err
		}
	}
	// A card deleted mid-session still gets its response recorded so the
	// session can run to completion.

	// The progress write is conditional on the version read above. Losing
	// it means a deck sync (or a replayed request) moved the session first;
	// reload, re-check the preconditions, and try once more.
	for attempt := 0; ; attempt++ {
		session.Responses = append(session.Responses, entity.CardResponse{
			CardId:         req.CardId,
			Rating:         rating,
			ResponseTimeMs: req.ResponseTimeMs,
			RatedAt:        now,
		})
		session.CurrentIndex++
		session.LastActivityAt = now

		if session.Mode == entity.ModeTimed && session.TimedSettings != nil && rating.Remembered() {
			session.Score += session.TimedSettings.PointsPerCard
		}
		if session.Mode == entity.ModeTimed && session.TimeRemainingMs != nil {
			remaining := *session.TimeRemainingMs - req.ResponseTimeMs
			if remaining < 0 {
				remaining = 0
			}
			session.TimeRemainingMs = &remaining
		}

		ok, err := uow.StudySessionRepository().UpdateProgress(ctx, session)
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		if attempt > 0 {
			return nil, serverutils.NewConflictError("session was updated concurrently")
		}
		session, err = s.ratableSession(ctx, uow, userId, sessionId, req.CardId, now)
		if err != nil {
			return nil, err
		}
	}

	resp := &dto.RateCardResponse{
		CardId:          req.CardId,
		CurrentIndex:    session.CurrentIndex,
		Progress:        session.ProgressPercentage(),
		Score:           session.Score,
		TimeRemainingMs: session.TimeRemainingMs,
		Finished:        session.CurrentIndex >= len(session.CardIds),
	}
	if card != nil {
		resp.State = nextState.State.String()
		resp.Due = nextState.Due
	}
	return resp, nil
}

// ratableSession loads the session and checks every precondition a rating
// must hold against the row as currently stored.
func (s *sessionService) ratableSession(ctx context.Context, uow unitofwork.UnitOfWork, userId, sessionId, cardId uuid.UUID, now time.Time) (*entity.StudySession, error) {
	session, err := s.loadOwnedSession(ctx, uow, userId, sessionId)
	if err != nil {
		return nil, err
	}
	if session.Status != entity.SessionActive {
		return nil, serverutils.NewConflictError("session is no longer active")
	}
	if session.Expired(now) {
		return nil, serverutils.NewExpiredError("session has expired")
	}
	if !session.HasCard(cardId) {
		return nil, serverutils.NewInvalidError("card is not part of this session")
	}
	if session.Rated(cardId) {
		return nil, serverutils.NewConflictError("card already rated in this session")
	}
	if session.CurrentIndex >= len(session.CardIds) || session.CardIds[session.CurrentIndex] != cardId {
		// A stale client rated out of manifest order.
		return nil, serverutils.NewConflictError("ratings must follow the session card order")
	}
	return session, nil
}

// applyRating runs the scheduler and persists the result with a conditional
// write keyed on the card version. One concurrent-writer retry before giving
// up keeps replayed requests from losing updates.
func (s *sessionService) applyRating(ctx context.Context, uow unitofwork.UnitOfWork, card *entity.Card, rating srs.Rating, now time.Time) (srs.SchedulingState, error) {
	for attempt := 0; attempt < 2; attempt++ {
		next := s.algorithm.ComputeNext(card.Scheduling, rating, now)
		card.Scheduling = next

		ok, err := uow.CardRepository().UpdateScheduling(ctx, card)
		if err != nil {
			return srs.SchedulingState{}, err
		}
		if ok {
			return next, nil
		}

		fresh, err := uow.CardRepository().FindOne(ctx, specification.ByID{ID: card.Id})
		if err != nil {
			return srs.SchedulingState{}, err
		}
		if fresh == nil {
			return srs.SchedulingState{}, serverutils.NewNotFoundError("card not found")
		}
		*card = *fresh
	}
	return srs.SchedulingState{}, serverutils.NewConflictError("card was updated concurrently")
}

func (s *sessionService) Complete(ctx context.Context, userId, sessionId uuid.UUID, req *dto.CompleteSessionRequest) (*dto.SessionSummaryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.loadOwnedSession(ctx, uow, userId, sessionId)
	if err != nil {
		return nil, err
	}

	// Idempotent on retry: a completed session replays its stored summary.
	if session.Status == entity.SessionCompleted && session.Summary != nil {
		return s.toSummaryResponse(session.Id, session.Summary), nil
	}
	if session.Status != entity.SessionActive {
		return nil, serverutils.NewConflictError("session is no longer active")
	}

	summary := buildSummary(session, req)

	// Mastery recalculation is best effort: the rating history is already
	// durable, so a failure here is logged and the summary ships without
	// deltas instead of blocking completion.
	if touched, err := s.touchedNodes(ctx, uow, session, req.Ratings); err != nil {
		s.logger.Error("SessionService", "Failed to resolve nodes for mastery recalculation", map[string]interface{}{
			"session_id": session.Id,
			"error":      err.Error(),
		})
	} else if deltas, err := s.masteryService.RecalculateForNodes(ctx, uow, touched); err != nil {
		s.logger.Error("SessionService", "Mastery recalculation failed", map[string]interface{}{
			"session_id": session.Id,
			"error":      err.Error(),
		})
	} else {
		summary.MasteryChanges = deltas
	}

	session.Status = entity.SessionCompleted
	session.Summary = summary
	session.LastActivityAt = s.now()
	if req.TimedScore != nil {
		session.Score = *req.TimedScore
	}
	ok, err := uow.StudySessionRepository().UpdateProgress(ctx, session)
	if err != nil {
		return nil, err
	}
	if !ok {
		// A concurrent rating or sync advanced the session; a retried
		// complete folds the newer responses into the summary.
		return nil, serverutils.NewConflictError("session was updated concurrently")
	}

	if s.eventPublisher != nil {
		event := events.NewSessionCompleted(userId, session.Id, summary.CardsStudied, summary.RetentionRate)
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("SessionService", "Failed to publish SESSION_COMPLETED", map[string]interface{}{
				"session_id": session.Id,
				"error":      err.Error(),
			})
		}
	}

	return s.toSummaryResponse(session.Id, summary), nil
}

func (s *sessionService) GetActive(ctx context.Context, userId uuid.UUID) (*dto.SessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	// Most recent start wins if a race ever left two actives behind.
	session, err := uow.StudySessionRepository().FindOne(ctx,
		specification.OwnedBy{UserID: userId},
		specification.SessionsByStatus{Status: entity.SessionActive},
		specification.OrderBy{Field: "started_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, serverutils.NewNotFoundError("no active session")
	}
	if session.Expired(s.now()) {
		return nil, serverutils.NewExpiredError("session has expired")
	}

	cards, err := s.selectionService.Materialize(ctx, userId, session.CardIds, session.Mode, session.Id)
	if err != nil {
		return nil, err
	}
	return s.toSessionResponse(session, cards), nil
}

func (s *sessionService) loadOwnedSession(ctx context.Context, uow unitofwork.UnitOfWork, userId, sessionId uuid.UUID) (*entity.StudySession, error) {
	session, err := uow.StudySessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, serverutils.NewNotFoundError("session not found")
	}
	if session.UserId != userId {
		return nil, serverutils.NewForbiddenError("session belongs to another user")
	}
	return session, nil
}

func (s *sessionService) touchedNodes(ctx context.Context, uow unitofwork.UnitOfWork, session *entity.StudySession, reported []dto.RatedCardDTO) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(session.Responses))
	seenCard := make(map[uuid.UUID]bool, len(session.Responses))
	for _, r := range session.Responses {
		if !seenCard[r.CardId] {
			seenCard[r.CardId] = true
			ids = append(ids, r.CardId)
		}
	}
	// Client-echoed ratings may widen the recalculation set but never
	// narrow it, and only manifest members count.
	for _, r := range reported {
		if session.HasCard(r.CardId) && !seenCard[r.CardId] {
			seenCard[r.CardId] = true
			ids = append(ids, r.CardId)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	cards, err := uow.CardRepository().FindAll(ctx, specification.ByIDs{IDs: ids})
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]bool, len(cards))
	nodes := make([]uuid.UUID, 0, len(cards))
	for _, c := range cards {
		if !seen[c.NodeId] {
			seen[c.NodeId] = true
			nodes = append(nodes, c.NodeId)
		}
	}
	return nodes, nil
}

func buildSummary(session *entity.StudySession, req *dto.CompleteSessionRequest) *entity.SessionSummary {
	summary := &entity.SessionSummary{
		CardsStudied:  len(session.Responses),
		TotalTimeSecs: req.DurationSeconds,
	}

	if len(session.Responses) > 0 {
		ratingSum := 0
		remembered := 0
		totalMs := int64(0)
		for _, r := range session.Responses {
			ratingSum += int(r.Rating)
			totalMs += r.ResponseTimeMs
			if r.Rating.Remembered() {
				remembered++
			}
		}
		summary.AverageRating = float64(ratingSum) / float64(len(session.Responses))
		summary.RetentionRate = float64(remembered) / float64(len(session.Responses)) * 100
		if summary.TotalTimeSecs == 0 {
			summary.TotalTimeSecs = int(totalMs / 1000)
		}
	}

	if session.Mode == entity.ModeTimed {
		score := session.Score
		if req.TimedScore != nil {
			score = *req.TimedScore
		}
		summary.TimedScore = &score
	}

	return summary
}

func (s *sessionService) toSessionResponse(session *entity.StudySession, cards []*entity.StudyCard) *dto.SessionResponse {
	resp := &dto.SessionResponse{
		SessionId:       session.Id,
		Mode:            session.Mode,
		IsGuided:        session.IsGuided,
		Status:          session.Status,
		GoalId:          session.GoalId,
		DeckId:          session.DeckId,
		NodeId:          session.NodeId,
		CurrentIndex:    session.CurrentIndex,
		TotalCards:      len(session.CardIds),
		Progress:        session.ProgressPercentage(),
		Cards:           make([]dto.StudyCardResponse, 0, len(cards)),
		TimeRemainingMs: session.TimeRemainingMs,
		Score:           session.Score,
		StartedAt:       session.StartedAt,
		ExpiresAt:       session.ExpiresAt,
	}
	if session.TimedSettings != nil {
		resp.TimedSettings = &dto.TimedSettingsDTO{
			DurationSeconds: session.TimedSettings.DurationSeconds,
			PointsPerCard:   session.TimedSettings.PointsPerCard,
		}
	}
	for _, c := range cards {
		resp.Cards = append(resp.Cards, toStudyCardResponse(c))
	}
	return resp
}

func toStudyCardResponse(card *entity.StudyCard) dto.StudyCardResponse {
	resp := dto.StudyCardResponse{
		CardId:    card.CardId,
		NodeId:    card.NodeId,
		NodeTitle: card.NodeTitle,
		Question:  card.Question,
		State:     card.Scheduling.State.String(),
		Due:       card.Scheduling.Due,
	}

	switch p := card.Presentation.(type) {
	case entity.FlashcardPresentation:
		resp.Kind = "flashcard"
		resp.Answer = p.Answer
	case entity.MultipleChoicePresentation:
		resp.Kind = "multiple_choice"
		resp.Answer = p.Answer
		choices := append([]string{p.Answer}, p.Distractors[:]...)
		rand.Shuffle(len(choices), func(i, j int) {
			choices[i], choices[j] = choices[j], choices[i]
		})
		resp.Choices = choices
	case entity.PendingChoicePresentation:
		resp.Kind = "pending_choice"
		resp.Answer = p.Answer
		jobId := p.JobId
		resp.PendingJobId = &jobId
	}

	return resp
}

func (s *sessionService) toSummaryResponse(sessionId uuid.UUID, summary *entity.SessionSummary) *dto.SessionSummaryResponse {
	resp := &dto.SessionSummaryResponse{
		SessionId:     sessionId,
		CardsStudied:  summary.CardsStudied,
		AverageRating: summary.AverageRating,
		TotalTimeSecs: summary.TotalTimeSecs,
		RetentionRate: summary.RetentionRate,
		TimedScore:    summary.TimedScore,
	}
	for _, d := range summary.MasteryChanges {
		resp.MasteryChanges = append(resp.MasteryChanges, dto.NodeMasteryChangeResponse{
			NodeId:        d.NodeId,
			NodeTitle:     d.NodeTitle,
			MasteryBefore: d.MasteryBefore,
			MasteryAfter:  d.MasteryAfter,
		})
	}
	return resp
}

func cardIdsOf(cards []*entity.StudyCard) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(cards))
	for _, c := range cards {
		ids = append(ids, c.CardId)
	}
	return ids
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"

	"spaced-learning-be/internal/dto"
	"spaced-learning-be/internal/entity"
	"spaced-learning-be/internal/pkg/logger"
	"spaced-learning-be/internal/repository/specification"
	"spaced-learning-be/internal/repository/unitofwork"
	"spaced-learning-be/pkg/events"
	pkgNats "spaced-learning-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IGeneratorService consumes distractor generation jobs off the queue.
type IGeneratorService interface {
	Consume(ctx context.Context) error
}

type generatorService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	distractorService IDistractorService
	eventPublisher    *pkgNats.Publisher
	logger            logger.ILogger
}

func NewGeneratorService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	distractorService IDistractorService,
	eventPublisher *pkgNats.Publisher,
	log logger.ILogger,
) IGeneratorService {
	return &generatorService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		distractorService: distractorService,
		eventPublisher:    eventPublisher,
		logger:            log,
	}
}

func (gs *generatorService) Consume(ctx context.Context) error {
	messages, err := gs.pubSub.Subscribe(ctx, gs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			gs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (gs *generatorService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.GenerateDistractorsMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		gs.logger.Error("GeneratorService", "Failed to unmarshal message", map[string]interface{}{"error": err.Error()})
		// Ack invalid messages to prevent infinite retry
		msg.Ack()
		return
	}

	uow := gs.uowFactory.NewUnitOfWork(ctx)

	job, err := uow.BackgroundJobRepository().FindOne(ctx, specification.ByID{ID: payload.JobId})
	if err != nil {
		gs.logger.Error("GeneratorService", "Failed to load job", map[string]interface{}{"job_id": payload.JobId, "error": err.Error()})
		msg.Nack()
		return
	}
	if job == nil || job.Terminal() {
		msg.Ack()
		return
	}

	job.Status = entity.JobStatusProcessing
	job.Attempts++
	if err := uow.BackgroundJobRepository().Update(ctx, job); err != nil {
		gs.logger.Error("GeneratorService", "Failed to mark job processing", map[string]interface{}{"job_id": job.Id, "error": err.Error()})
		msg.Nack()
		return
	}

	card, err := uow.CardRepository().FindOne(ctx, specification.ByID{ID: payload.CardId})
	if err != nil {
		gs.retryOrFail(ctx, uow, job, msg, err)
		return
	}
	if card == nil {
		gs.failJob(ctx, uow, job, "card no longer exists")
		msg.Ack()
		return
	}

	contents, err := gs.buildChoices(ctx, uow, card)
	if err != nil {
		gs.retryOrFail(ctx, uow, job, msg, err)
		return
	}
	if len(contents) < ChoiceSetSize {
		gs.failJob(ctx, uow, job, "not enough sibling material to build a choice set")
		msg.Ack()
		return
	}

	if err := gs.distractorService.Replace(ctx, card.Id, contents); err != nil {
		gs.retryOrFail(ctx, uow, job, msg, err)
		return
	}

	job.Status = entity.JobStatusCompleted
	job.Result = map[string]interface{}{
		"card_id":     card.Id.String(),
		"distractors": contents,
	}
	if err := uow.BackgroundJobRepository().Update(ctx, job); err != nil {
		gs.logger.Error("GeneratorService", "Failed to mark job completed", map[string]interface{}{"job_id": job.Id, "error": err.Error()})
		msg.Nack()
		return
	}

	if gs.eventPublisher != nil {
		if err := gs.eventPublisher.Publish(ctx, events.NewDistractorsReady(job.UserId, card.Id, job.Id)); err != nil {
			// The distractors are persisted; a lost event only delays the push.
			gs.logger.Warn("GeneratorService", "Failed to publish DISTRACTORS_READY", map[string]interface{}{"job_id": job.Id, "error": err.Error()})
		}
	}

	gs.logger.Info("GeneratorService", "Distractors generated", map[string]interface{}{"card_id": card.Id, "job_id": job.Id})
	msg.Ack()
}

// buildChoices pulls answers from sibling cards in the same node, widening to
// the user's whole collection when the node is too thin.
func (gs *generatorService) buildChoices(ctx context.Context, uow unitofwork.UnitOfWork, card *entity.Card) ([]string, error) {
	siblings, err := uow.CardRepository().FindAll(ctx,
		specification.CardsByNode{NodeID: card.NodeId},
		specification.ActiveCards{},
	)
	if err != nil {
		return nil, err
	}

	pool := answerPool(siblings, card)
	if len(pool) < ChoiceSetSize {
		all, err := uow.CardRepository().FindAll(ctx,
			specification.OwnedBy{UserID: card.UserId},
			specification.ActiveCards{},
		)
		if err != nil {
			return nil, err
		}
		pool = answerPool(all, card)
	}

	rand.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	if len(pool) > ChoiceSetSize {
		pool = pool[:ChoiceSetSize]
	}
	return pool, nil
}

func answerPool(cards []*entity.Card, target *entity.Card) []string {
	seen := map[string]bool{target.Answer: true}
	pool := make([]string, 0, len(cards))
	for _, c := range cards {
		if c.Id == target.Id || c.Answer == "" || seen[c.Answer] {
			continue
		}
		seen[c.Answer] = true
		pool = append(pool, c.Answer)
	}
	return pool
}

func (gs *generatorService) failJob(ctx context.Context, uow unitofwork.UnitOfWork, job *entity.BackgroundJob, reason string) {
	job.Status = entity.JobStatusFailed
	job.LastError = reason
	if err := uow.BackgroundJobRepository().Update(ctx, job); err != nil {
		gs.logger.Error("GeneratorService", "Failed to mark job failed", map[string]interface{}{"job_id": job.Id, "error": err.Error()})
	}
}

func (gs *generatorService) retryOrFail(ctx context.Context, uow unitofwork.UnitOfWork, job *entity.BackgroundJob, msg *message.Message, cause error) {
	if job.Attempts >= job.MaxAttempts {
		gs.failJob(ctx, uow, job, fmt.Sprintf("gave up after %d attempts: %v", job.Attempts, cause))
		msg.Ack()
		return
	}
	gs.logger.Warn("GeneratorService", "Job attempt failed, requeueing", map[string]interface{}{
		"job_id":  job.Id,
		"attempt": job.Attempts,
		"error":   cause.Error(),
	})
	msg.Nack()
}

package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"spaced-learning-be/internal/dto"
	"spaced-learning-be/internal/entity"
	"spaced-learning-be/internal/repository/memory"
	"spaced-learning-be/pkg/srs"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGeneratorService(store *memStore) *generatorService {
	factory := newMemFactory(store)
	return &generatorService{
		topicName:         "GENERATE_DISTRACTORS",
		uowFactory:        factory,
		distractorService: NewDistractorService(factory, memory.NewDistractorCache()),
		logger:            noopLogger{},
	}
}

func generationMessage(t *testing.T, jobId, cardId, userId uuid.UUID) *message.Message {
	t.Helper()
	payload, err := json.Marshal(dto.GenerateDistractorsMessage{JobId: jobId, CardId: cardId, UserId: userId})
	require.NoError(t, err)
	return message.NewMessage(watermill.NewUUID(), payload)
}

func acked(msg *message.Message) bool {
	select {
	case <-msg.Acked():
		return true
	default:
		return false
	}
}

func nacked(msg *message.Message) bool {
	select {
	case <-msg.Nacked():
		return true
	default:
		return false
	}
}

func seedGenerationJob(store *memStore, userId, cardId uuid.UUID) *entity.BackgroundJob {
	job := &entity.BackgroundJob{
		Id:          uuid.New(),
		JobType:     entity.JobTypeGenerateDistractors,
		Status:      entity.JobStatusPending,
		UserId:      userId,
		Payload:     map[string]interface{}{"card_id": cardId.String()},
		MaxAttempts: 3,
	}
	store.jobs[job.Id] = job
	return job
}

func TestProcessMessageGeneratesFromSiblings(t *testing.T) {
	store := newMemStore()
	userId := uuid.New()
	goal := addGoal(store, userId)
	node := addNode(store, goal.Id, "001")
	now := time.Now()

	target := addCard(store, userId, node.Id, now, srs.StateNew)
	target.Answer = "correct"
	answers := []string{"alpha", "beta", "gamma", "delta"}
	for _, a := range answers {
		sibling := addCard(store, userId, node.Id, now, srs.StateNew)
		sibling.Answer = a
	}

	job := seedGenerationJob(store, userId, target.Id)
	gs := newTestGeneratorService(store)
	msg := generationMessage(t, job.Id, target.Id, userId)

	gs.processMessage(context.Background(), msg)

	assert.True(t, acked(msg))
	stored := store.jobs[job.Id]
	assert.Equal(t, entity.JobStatusCompleted, stored.Status)
	assert.Equal(t, 1, stored.Attempts)

	set := store.distractors[target.Id]
	require.Len(t, set, ChoiceSetSize)
	for _, d := range set {
		assert.NotEqual(t, "correct", d.Content)
		assert.Contains(t, answers, d.Content)
	}
}

func TestProcessMessageWidensToCollectionWhenNodeIsThin(t *testing.T) {
	store := newMemStore()
	userId := uuid.New()
	goal := addGoal(store, userId)
	thin := addNode(store, goal.Id, "001")
	other := addNode(store, goal.Id, "002")
	now := time.Now()

	target := addCard(store, userId, thin.Id, now, srs.StateNew)
	target.Answer = "correct"
	for _, a := range []string{"alpha", "beta", "gamma"} {
		c := addCard(store, userId, other.Id, now, srs.StateNew)
		c.Answer = a
	}

	job := seedGenerationJob(store, userId, target.Id)
	gs := newTestGeneratorService(store)
	msg := generationMessage(t, job.Id, target.Id, userId)

	gs.processMessage(context.Background(), msg)

	assert.True(t, acked(msg))
	assert.Equal(t, entity.JobStatusCompleted, store.jobs[job.Id].Status)
	assert.Len(t, store.distractors[target.Id], ChoiceSetSize)
}

func TestProcessMessageFailsWithoutEnoughMaterial(t *testing.T) {
	store := newMemStore()
	userId := uuid.New()
	goal := addGoal(store, userId)
	node := addNode(store, goal.Id, "001")
	now := time.Now()

	target := addCard(store, userId, node.Id, now, srs.StateNew)
	target.Answer = "correct"
	lone := addCard(store, userId, node.Id, now, srs.StateNew)
	lone.Answer = "only one"

	job := seedGenerationJob(store, userId, target.Id)
	gs := newTestGeneratorService(store)
	msg := generationMessage(t, job.Id, target.Id, userId)

	gs.processMessage(context.Background(), msg)

	// A permanently thin collection is a terminal failure, not a retry loop.
	assert.True(t, acked(msg))
	stored := store.jobs[job.Id]
	assert.Equal(t, entity.JobStatusFailed, stored.Status)
	assert.NotEmpty(t, stored.LastError)
	assert.Empty(t, store.distractors[target.Id])
}

func TestProcessMessageDeletedCardFailsJob(t *testing.T) {
	store := newMemStore()
	userId := uuid.New()
	cardId := uuid.New()

	job := seedGenerationJob(store, userId, cardId)
	gs := newTestGeneratorService(store)
	msg := generationMessage(t, job.Id, cardId, userId)

	gs.processMessage(context.Background(), msg)

	assert.True(t, acked(msg))
	assert.Equal(t, entity.JobStatusFailed, store.jobs[job.Id].Status)
}

func TestProcessMessageSkipsTerminalJob(t *testing.T) {
	store := newMemStore()
	userId := uuid.New()
	cardId := uuid.New()

	job := seedGenerationJob(store, userId, cardId)
	job.Status = entity.JobStatusCompleted

	gs := newTestGeneratorService(store)
	msg := generationMessage(t, job.Id, cardId, userId)

	gs.processMessage(context.Background(), msg)

	assert.True(t, acked(msg))
	assert.Equal(t, 0, store.jobs[job.Id].Attempts)
}

func TestProcessMessageAcksMalformedPayload(t *testing.T) {
	store := newMemStore()
	gs := newTestGeneratorService(store)
	msg := message.NewMessage(watermill.NewUUID(), []byte("{not json"))

	gs.processMessage(context.Background(), msg)

	assert.True(t, acked(msg))
	assert.False(t, nacked(msg))
}

func TestAnswerPoolExcludesTargetAndDuplicates(t *testing.T) {
	target := &entity.Card{Id: uuid.New(), Answer: "correct"}
	cards := []*entity.Card{
		target,
		{Id: uuid.New(), Answer: "alpha"},
		{Id: uuid.New(), Answer: "alpha"},
		{Id: uuid.New(), Answer: "correct"},
		{Id: uuid.New(), Answer: ""},
		{Id: uuid.New(), Answer: "beta"},
	}

	pool := answerPool(cards, target)

	assert.ElementsMatch(t, []string{"alpha", "beta"}, pool)
}

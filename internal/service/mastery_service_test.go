package service

import (
	"context"
	"testing"
	"time"

	"spaced-learning-be/pkg/srs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecalculateForNodesUpdatesGoalMean(t *testing.T) {
	store := newMemStore()
	userId := uuid.New()
	goal := addGoal(store, userId)
	now := time.Now()

	touched := addNode(store, goal.Id, "001")
	untouched := addNode(store, goal.Id, "002")
	untouched.MasteryPercentage = 40

	// Three cards, two graduated: node mastery lands on 66.67.
	addCard(store, userId, touched.Id, now, srs.StateReview)
	addCard(store, userId, touched.Id, now, srs.StateReview)
	addCard(store, userId, touched.Id, now, srs.StateLearning)

	svc := NewMasteryService()
	uow := (&memFactory{store: store}).NewUnitOfWork(context.Background())
	deltas, err := svc.RecalculateForNodes(context.Background(), uow, []uuid.UUID{touched.Id})

	require.NoError(t, err)
	require.Len(t, deltas, 1)
	assert.Equal(t, touched.Id, deltas[0].NodeId)
	assert.InDelta(t, 0.0, deltas[0].MasteryBefore, 0.001)
	assert.InDelta(t, 66.667, deltas[0].MasteryAfter, 0.01)

	assert.InDelta(t, 66.667, store.nodes[touched.Id].MasteryPercentage, 0.01)
	// Goal mastery averages every enabled node, touched or not.
	assert.InDelta(t, (66.667+40)/2, store.goals[goal.Id].MasteryPercentage, 0.01)
}

func TestRecalculateForNodesEmptyInput(t *testing.T) {
	store := newMemStore()
	svc := NewMasteryService()
	uow := (&memFactory{store: store}).NewUnitOfWork(context.Background())

	deltas, err := svc.RecalculateForNodes(context.Background(), uow, nil)

	require.NoError(t, err)
	assert.Empty(t, deltas)
}

func TestRecalculateForNodesEmptyNodeIsZero(t *testing.T) {
	store := newMemStore()
	userId := uuid.New()
	goal := addGoal(store, userId)

	node := addNode(store, goal.Id, "001")
	node.MasteryPercentage = 80 // stale value from before its cards were removed

	svc := NewMasteryService()
	uow := (&memFactory{store: store}).NewUnitOfWork(context.Background())
	deltas, err := svc.RecalculateForNodes(context.Background(), uow, []uuid.UUID{node.Id})

	require.NoError(t, err)
	require.Len(t, deltas, 1)
	assert.InDelta(t, 80.0, deltas[0].MasteryBefore, 0.001)
	assert.InDelta(t, 0.0, deltas[0].MasteryAfter, 0.001)
	assert.InDelta(t, 0.0, store.nodes[node.Id].MasteryPercentage, 0.001)
}

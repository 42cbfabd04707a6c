package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"spaced-learning-be/internal/entity"
	"spaced-learning-be/internal/repository/contract"
	"spaced-learning-be/internal/repository/specification"
	"spaced-learning-be/internal/repository/unitofwork"
	"spaced-learning-be/pkg/srs"

	"github.com/google/uuid"
)

// memStore backs the in-memory repository fakes. Filtering interprets the
// same specification values the SQL implementations translate to WHERE
// clauses, so service tests exercise the real query intent.
type memStore struct {
	goals       map[uuid.UUID]*entity.Goal
	nodes       map[uuid.UUID]*entity.SkillNode
	cards       map[uuid.UUID]*entity.Card
	decks       map[uuid.UUID]*entity.Deck
	deckCards   []*entity.DeckCard
	sessions    map[uuid.UUID]*entity.StudySession
	distractors map[uuid.UUID][]*entity.Distractor
	jobs        map[uuid.UUID]*entity.BackgroundJob

	jobCreateErr error
	cardFindErr  error

	// sessionProgressHook runs once at the next UpdateProgress call, before
	// the version check, so tests can interleave a concurrent writer.
	sessionProgressHook func(*memStore)
}

func newMemStore() *memStore {
	return &memStore{
		goals:       map[uuid.UUID]*entity.Goal{},
		nodes:       map[uuid.UUID]*entity.SkillNode{},
		cards:       map[uuid.UUID]*entity.Card{},
		decks:       map[uuid.UUID]*entity.Deck{},
		sessions:    map[uuid.UUID]*entity.StudySession{},
		distractors: map[uuid.UUID][]*entity.Distractor{},
		jobs:        map[uuid.UUID]*entity.BackgroundJob{},
	}
}

type memUow struct {
	store *memStore
}

func (u *memUow) Begin(ctx context.Context) error { return nil }
func (u *memUow) Commit() error                   { return nil }
func (u *memUow) Rollback() error                 { return nil }

func (u *memUow) GoalRepository() contract.GoalRepository       { return &memGoalRepo{u.store} }
func (u *memUow) SkillNodeRepository() contract.SkillNodeRepository {
	return &memNodeRepo{u.store}
}
func (u *memUow) CardRepository() contract.CardRepository { return &memCardRepo{u.store} }
func (u *memUow) DeckRepository() contract.DeckRepository { return &memDeckRepo{u.store} }
func (u *memUow) StudySessionRepository() contract.StudySessionRepository {
	return &memSessionRepo{u.store}
}
func (u *memUow) DistractorRepository() contract.DistractorRepository {
	return &memDistractorRepo{u.store}
}
func (u *memUow) BackgroundJobRepository() contract.BackgroundJobRepository {
	return &memJobRepo{u.store}
}

type memFactory struct {
	store *memStore
}

func newMemFactory(store *memStore) unitofwork.RepositoryFactory {
	return &memFactory{store: store}
}

func (f *memFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &memUow{store: f.store}
}

// --- card repo ---

type memCardRepo struct{ store *memStore }

func (r *memCardRepo) Create(ctx context.Context, card *entity.Card) error {
	clone := *card
	r.store.cards[card.Id] = &clone
	return nil
}

func (r *memCardRepo) Update(ctx context.Context, card *entity.Card) error {
	clone := *card
	r.store.cards[card.Id] = &clone
	return nil
}

func (r *memCardRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.store.cards, id)
	return nil
}

func (r *memCardRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Card, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *memCardRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Card, error) {
	if r.store.cardFindErr != nil {
		return nil, r.store.cardFindErr
	}
	out := make([]*entity.Card, 0, len(r.store.cards))
	orderByDue := false
	for _, c := range r.store.cards {
		if matchCard(c, specs) {
			clone := *c
			out = append(out, &clone)
		}
	}
	for _, spec := range specs {
		if _, ok := spec.(specification.OrderByDue); ok {
			orderByDue = true
		}
	}
	if orderByDue {
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Scheduling.Due.Equal(out[j].Scheduling.Due) {
				return out[i].Id.String() < out[j].Id.String()
			}
			return out[i].Scheduling.Due.Before(out[j].Scheduling.Due)
		})
	}
	return out, nil
}

func (r *memCardRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	return int64(len(all)), err
}

func (r *memCardRepo) UpdateScheduling(ctx context.Context, card *entity.Card) (bool, error) {
	stored, ok := r.store.cards[card.Id]
	if !ok || stored.Version != card.Version {
		return false, nil
	}
	stored.Scheduling = card.Scheduling
	stored.Version++
	card.Version = stored.Version
	return true, nil
}

func matchCard(c *entity.Card, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if c.Id != s.ID {
				return false
			}
		case specification.ByIDs:
			if !containsId(s.IDs, c.Id) {
				return false
			}
		case specification.OwnedBy:
			if c.UserId != s.UserID {
				return false
			}
		case specification.ActiveCards:
			if !c.Active {
				return false
			}
		case specification.CardsByNode:
			if c.NodeId != s.NodeID {
				return false
			}
		case specification.CardsByNodes:
			if !containsId(s.NodeIDs, c.NodeId) {
				return false
			}
		case specification.DueBefore:
			if c.Scheduling.Due.After(s.Cutoff) {
				return false
			}
		}
	}
	return true
}

// --- skill node repo ---

type memNodeRepo struct{ store *memStore }

func (r *memNodeRepo) Create(ctx context.Context, node *entity.SkillNode) error {
	clone := *node
	r.store.nodes[node.Id] = &clone
	return nil
}

func (r *memNodeRepo) Update(ctx context.Context, node *entity.SkillNode) error {
	clone := *node
	r.store.nodes[node.Id] = &clone
	return nil
}

func (r *memNodeRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SkillNode, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *memNodeRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SkillNode, error) {
	out := make([]*entity.SkillNode, 0, len(r.store.nodes))
	orderByPath := false
	for _, n := range r.store.nodes {
		if matchNode(n, specs) {
			clone := *n
			out = append(out, &clone)
		}
	}
	for _, spec := range specs {
		if _, ok := spec.(specification.OrderByPath); ok {
			orderByPath = true
		}
	}
	if orderByPath {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	}
	return out, nil
}

func (r *memNodeRepo) UpdateMastery(ctx context.Context, id uuid.UUID, mastery float64) error {
	node, ok := r.store.nodes[id]
	if !ok {
		return errors.New("node not found")
	}
	node.MasteryPercentage = mastery
	return nil
}

func matchNode(n *entity.SkillNode, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if n.Id != s.ID {
				return false
			}
		case specification.ByIDs:
			if !containsId(s.IDs, n.Id) {
				return false
			}
		case specification.NodesByGoal:
			if n.GoalId != s.GoalID {
				return false
			}
		case specification.EnabledNodes:
			if !n.Enabled {
				return false
			}
		case specification.UnderPath:
			if n.Path != s.Path && !hasPathPrefix(n.Path, s.Path+".") {
				return false
			}
		}
	}
	return true
}

func hasPathPrefix(path, prefix string) bool {
	return len(path) >= len(prefix) && path[:len(prefix)] == prefix
}

// --- goal repo ---

type memGoalRepo struct{ store *memStore }

func (r *memGoalRepo) Create(ctx context.Context, goal *entity.Goal) error {
	clone := *goal
	r.store.goals[goal.Id] = &clone
	return nil
}

func (r *memGoalRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Goal, error) {
	for _, g := range r.store.goals {
		if matchGoal(g, specs) {
			clone := *g
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memGoalRepo) UpdateMastery(ctx context.Context, id uuid.UUID, mastery float64) error {
	goal, ok := r.store.goals[id]
	if !ok {
		return errors.New("goal not found")
	}
	goal.MasteryPercentage = mastery
	return nil
}

func matchGoal(g *entity.Goal, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if g.Id != s.ID {
				return false
			}
		case specification.OwnedBy:
			if g.UserId != s.UserID {
				return false
			}
		}
	}
	return true
}

// --- deck repo ---

type memDeckRepo struct{ store *memStore }

func (r *memDeckRepo) Create(ctx context.Context, deck *entity.Deck) error {
	clone := *deck
	r.store.decks[deck.Id] = &clone
	return nil
}

func (r *memDeckRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Deck, error) {
	for _, d := range r.store.decks {
		if matchDeck(d, specs) {
			clone := *d
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memDeckRepo) ListCardIds(ctx context.Context, deckId uuid.UUID) ([]uuid.UUID, error) {
	members := make([]*entity.DeckCard, 0)
	for _, dc := range r.store.deckCards {
		if dc.DeckId == deckId {
			members = append(members, dc)
		}
	}
	sort.SliceStable(members, func(i, j int) bool { return members[i].AddedAt.Before(members[j].AddedAt) })
	ids := make([]uuid.UUID, 0, len(members))
	for _, dc := range members {
		ids = append(ids, dc.CardId)
	}
	return ids, nil
}

func (r *memDeckRepo) AddCard(ctx context.Context, deckId, cardId uuid.UUID) error {
	for _, dc := range r.store.deckCards {
		if dc.DeckId == deckId && dc.CardId == cardId {
			return nil
		}
	}
	r.store.deckCards = append(r.store.deckCards, &entity.DeckCard{DeckId: deckId, CardId: cardId, AddedAt: time.Now()})
	return nil
}

func (r *memDeckRepo) RemoveCard(ctx context.Context, deckId, cardId uuid.UUID) error {
	kept := r.store.deckCards[:0]
	for _, dc := range r.store.deckCards {
		if dc.DeckId != deckId || dc.CardId != cardId {
			kept = append(kept, dc)
		}
	}
	r.store.deckCards = kept
	return nil
}

func matchDeck(d *entity.Deck, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if d.Id != s.ID {
				return false
			}
		case specification.OwnedBy:
			if d.UserId != s.UserID {
				return false
			}
		}
	}
	return true
}

// --- study session repo ---

type memSessionRepo struct{ store *memStore }

func (r *memSessionRepo) Create(ctx context.Context, session *entity.StudySession) error {
	clone := *session
	r.store.sessions[session.Id] = &clone
	return nil
}

func (r *memSessionRepo) Update(ctx context.Context, session *entity.StudySession) error {
	clone := *session
	r.store.sessions[session.Id] = &clone
	return nil
}

func (r *memSessionRepo) UpdateProgress(ctx context.Context, session *entity.StudySession) (bool, error) {
	if hook := r.store.sessionProgressHook; hook != nil {
		r.store.sessionProgressHook = nil
		hook(r.store)
	}
	stored, ok := r.store.sessions[session.Id]
	if !ok || stored.Version != session.Version {
		return false, nil
	}
	clone := *session
	clone.Version = stored.Version + 1
	r.store.sessions[session.Id] = &clone
	session.Version = clone.Version
	return true, nil
}

func (r *memSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.StudySession, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *memSessionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.StudySession, error) {
	out := make([]*entity.StudySession, 0)
	newestFirst := false
	for _, s := range r.store.sessions {
		if matchSession(s, specs) {
			clone := *s
			out = append(out, &clone)
		}
	}
	for _, spec := range specs {
		if o, ok := spec.(specification.OrderBy); ok && o.Field == "started_at" && o.Desc {
			newestFirst = true
		}
	}
	if newestFirst {
		sort.SliceStable(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	}
	return out, nil
}

func (r *memSessionRepo) AbandonActive(ctx context.Context, userId uuid.UUID) (int64, error) {
	var n int64
	for _, s := range r.store.sessions {
		if s.UserId == userId && s.Status == entity.SessionActive {
			s.Status = entity.SessionAbandoned
			n++
		}
	}
	return n, nil
}

func matchSession(s *entity.StudySession, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch v := spec.(type) {
		case specification.ByID:
			if s.Id != v.ID {
				return false
			}
		case specification.OwnedBy:
			if s.UserId != v.UserID {
				return false
			}
		case specification.SessionsByStatus:
			if s.Status != v.Status {
				return false
			}
		}
	}
	return true
}

// --- distractor repo ---

type memDistractorRepo struct{ store *memStore }

func (r *memDistractorRepo) FindByCard(ctx context.Context, cardId uuid.UUID) ([]*entity.Distractor, error) {
	return r.store.distractors[cardId], nil
}

func (r *memDistractorRepo) FindByCards(ctx context.Context, cardIds []uuid.UUID) (map[uuid.UUID][]*entity.Distractor, error) {
	out := make(map[uuid.UUID][]*entity.Distractor)
	for _, id := range cardIds {
		if set, ok := r.store.distractors[id]; ok && len(set) > 0 {
			out[id] = set
		}
	}
	return out, nil
}

func (r *memDistractorRepo) ReplaceForCard(ctx context.Context, cardId uuid.UUID, distractors []*entity.Distractor) error {
	r.store.distractors[cardId] = distractors
	return nil
}

// --- background job repo ---

type memJobRepo struct{ store *memStore }

func (r *memJobRepo) Create(ctx context.Context, job *entity.BackgroundJob) error {
	if r.store.jobCreateErr != nil {
		return r.store.jobCreateErr
	}
	clone := *job
	r.store.jobs[job.Id] = &clone
	return nil
}

func (r *memJobRepo) Update(ctx context.Context, job *entity.BackgroundJob) error {
	clone := *job
	r.store.jobs[job.Id] = &clone
	return nil
}

func (r *memJobRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.BackgroundJob, error) {
	for _, j := range r.store.jobs {
		if matchJob(j, specs) {
			clone := *j
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memJobRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.BackgroundJob, error) {
	out := make([]*entity.BackgroundJob, 0)
	for _, j := range r.store.jobs {
		if matchJob(j, specs) {
			clone := *j
			out = append(out, &clone)
		}
	}
	return out, nil
}

func matchJob(j *entity.BackgroundJob, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if j.Id != s.ID {
				return false
			}
		case specification.OwnedBy:
			if j.UserId != s.UserID {
				return false
			}
		}
	}
	return true
}

// --- misc fakes ---

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }

type capturePublisher struct {
	published [][]byte
	err       error
}

func (p *capturePublisher) Publish(ctx context.Context, payload []byte) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, payload)
	return nil
}

// --- fixture builders ---

func containsId(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func addGoal(store *memStore, userId uuid.UUID) *entity.Goal {
	goal := &entity.Goal{Id: uuid.New(), UserId: userId, Title: "Goal"}
	store.goals[goal.Id] = goal
	return goal
}

func addNode(store *memStore, goalId uuid.UUID, path string) *entity.SkillNode {
	node := &entity.SkillNode{
		Id:      uuid.New(),
		GoalId:  goalId,
		Title:   "Node " + path,
		Path:    path,
		Enabled: true,
	}
	store.nodes[node.Id] = node
	return node
}

func addCard(store *memStore, userId, nodeId uuid.UUID, due time.Time, state srs.State) *entity.Card {
	card := &entity.Card{
		Id:       uuid.New(),
		UserId:   userId,
		NodeId:   nodeId,
		Question: "Q",
		Answer:   "A",
		CardType: entity.CardTypeFlashcard,
		Active:   true,
		Scheduling: srs.SchedulingState{
			State: state,
			Due:   due,
		},
	}
	store.cards[card.Id] = card
	return card
}

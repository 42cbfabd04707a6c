package entity

import (
	"github.com/google/uuid"

	"spaced-learning-be/pkg/srs"
)

// Presentation is the sealed variant describing how a study card is shown.
// Keying the shape on a closed interface (instead of optional fields) keeps
// the consuming switch exhaustive at compile time.
type Presentation interface {
	PresentationType() string
}

// FlashcardPresentation shows question then answer.
type FlashcardPresentation struct {
	Answer string
}

func (FlashcardPresentation) PresentationType() string { return CardTypeFlashcard }

// MultipleChoicePresentation carries the correct answer plus exactly three
// provisioned distractors.
type MultipleChoicePresentation struct {
	Answer      string
	Distractors [3]string
}

func (MultipleChoicePresentation) PresentationType() string { return CardTypeMultipleChoice }

// PendingChoicePresentation is a multiple-choice card whose distractors are
// still being generated. The client polls the job and falls back to
// flashcard presentation if generation never completes.
type PendingChoicePresentation struct {
	Answer string
	JobId  uuid.UUID
}

func (PendingChoicePresentation) PresentationType() string { return CardTypeMultipleChoice }

// StudyCard is the ephemeral per-request materialization of a card inside a
// session. It is never persisted; the card row stays authoritative.
type StudyCard struct {
	CardId       uuid.UUID
	NodeId       uuid.UUID
	NodeTitle    string
	Question     string
	Presentation Presentation
	Scheduling   srs.SchedulingState
}

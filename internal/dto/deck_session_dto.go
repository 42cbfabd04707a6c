package dto

import "github.com/google/uuid"

// DeckChangesRequest asks the engine to reconcile the user's active deck
// session against the deck's current membership. OriginalCardIds is the
// client's snapshot of the manifest; when present, the response delta is
// computed against it so a client that missed an earlier evaluation still
// catches up in one call.
type DeckChangesRequest struct {
	DeckId          uuid.UUID   `json:"deck_id" validate:"required"`
	OriginalCardIds []uuid.UUID `json:"original_card_ids,omitempty"`
}

type DeckChangesResponse struct {
	SessionId    uuid.UUID   `json:"session_id"`
	HasChanges   bool        `json:"has_changes"`
	AddedCards   []uuid.UUID `json:"added_cards"`
	RemovedCards []uuid.UUID `json:"removed_cards"`
	TotalCards   int         `json:"total_cards"`
	CurrentIndex int         `json:"current_index"`
}

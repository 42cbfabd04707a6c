package entity

import (
	"time"

	"github.com/google/uuid"
)

type Deck struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt *time.Time
}

type DeckCard struct {
	DeckId  uuid.UUID
	CardId  uuid.UUID
	AddedAt time.Time
}

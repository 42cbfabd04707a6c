package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Deck is a user-editable card collection. Membership can drift while a
// deck-scoped session is running; the sync service reconciles it.
type Deck struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    uuid.UUID      `gorm:"type:uuid;not null;index"`
	Name      string         `gorm:"type:varchar(255);not null"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Deck) TableName() string {
	return "decks"
}

// DeckCard is the deck membership join table.
type DeckCard struct {
	DeckId  uuid.UUID `gorm:"type:uuid;primaryKey"`
	CardId  uuid.UUID `gorm:"type:uuid;primaryKey"`
	AddedAt time.Time `gorm:"autoCreateTime"`
}

func (DeckCard) TableName() string {
	return "deck_cards"
}

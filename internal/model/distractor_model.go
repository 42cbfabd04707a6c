package model

import (
	"time"

	"github.com/google/uuid"
)

// Distractor is one alternate answer for a multiple-choice card.
// Exactly three (positions 0..2) exist once a card is provisioned.
type Distractor struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CardId    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_distractors_card_position,priority:1"`
	Content   string    `gorm:"type:text;not null"`
	Position  int       `gorm:"not null;uniqueIndex:idx_distractors_card_position,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Distractor) TableName() string {
	return "distractors"
}

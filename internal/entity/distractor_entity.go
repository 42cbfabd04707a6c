package entity

import (
	"time"

	"github.com/google/uuid"
)

type Distractor struct {
	Id        uuid.UUID
	CardId    uuid.UUID
	Content   string
	Position  int
	CreatedAt time.Time
}

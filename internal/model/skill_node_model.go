package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SkillNode is a topic node inside a goal tree. Path encodes depth-first
// order with zero-padded numeric segments ("001.002.003") so that plain
// lexicographic ordering walks the tree and prefix matching selects a
// subtree. Path is unique per goal.
type SkillNode struct {
	Id                uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	GoalId            uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_skill_nodes_goal_path,priority:1;index"`
	ParentId          *uuid.UUID     `gorm:"type:uuid;index"`
	Title             string         `gorm:"type:varchar(255);not null"`
	Depth             int            `gorm:"not null;default:0"`
	Path              string         `gorm:"type:varchar(255);not null;uniqueIndex:idx_skill_nodes_goal_path,priority:2"`
	Enabled           bool           `gorm:"not null;default:true"`
	CardCount         int            `gorm:"not null;default:0"`
	MasteryPercentage float64        `gorm:"not null;default:0"`
	CreatedAt         time.Time      `gorm:"autoCreateTime"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime"`
	DeletedAt         gorm.DeletedAt `gorm:"index"`
}

func (SkillNode) TableName() string {
	return "skill_nodes"
}

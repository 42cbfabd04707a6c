package dto

import "github.com/google/uuid"

// NextNodeResponse points the client at the next node to study under guided
// traversal. Exactly one of Node, TreeComplete, or AwaitingContent carries
// the outcome.
type NextNodeResponse struct {
	Node            *NodeProgressResponse `json:"node,omitempty"`
	TreeComplete    bool                  `json:"tree_complete"`
	AwaitingContent bool                  `json:"awaiting_content"`
}

type NodeProgressResponse struct {
	NodeId          uuid.UUID `json:"node_id"`
	Title           string    `json:"title"`
	Path            string    `json:"path"`
	Depth           int       `json:"depth"`
	CardCount       int       `json:"card_count"`
	CompletedInNode int       `json:"completed_in_node"`
	TotalInNode     int       `json:"total_in_node"`
	Mastery         float64   `json:"mastery"`
}

type TreeProgressResponse struct {
	GoalId  uuid.UUID              `json:"goal_id"`
	Mastery float64                `json:"mastery"`
	Nodes   []NodeProgressResponse `json:"nodes"`
}

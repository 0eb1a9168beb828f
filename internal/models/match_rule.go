package models

import (
	"github.com/google/uuid"
)

// MatchRule is a rule to assign a category to imported transactions
// whose description matches a glob pattern.
type MatchRule struct {
	DefaultModel
	User     User      `json:"-"`
	UserID   uuid.UUID `json:"userId"`
	Priority uint      `json:"priority" example:"1"`                 // The priority of the match rule
	Match    string    `json:"match" example:"Bank*"`                // The matching pattern for the description
	Category string    `json:"category" example:"Fees & Interest"`   // The category to assign on a match
}

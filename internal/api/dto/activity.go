package dto

import (
	"time"

	"github.com/goccy/go-json"
)

type ActivityDTO struct {
	ID        uint64          `json:"id"`
	Action    string          `json:"action"`
	Details   json.RawMessage `json:"details"`
	CreatedAt time.Time       `json:"created_at"`
}

package models

import "time"

type ChatRequest struct {
	Message   string   `json:"message" validate:"required,max=1000"`
	Latitude  *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
}

type ChatResponse struct {
	Reply       string    `json:"reply"`
	Intent      string    `json:"intent"`
	Suggestions []string  `json:"suggestions,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

package dto

import (
	"time"

	"github.com/google/uuid"
)

type StaffPin struct {
	UserID uuid.UUID `json:"userId"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
	Pin    string    `json:"pin"`
}

type StaffPinsResponse struct {
	OK    bool       `json:"ok"`
	Staff []StaffPin `json:"staff"`
}

type TimeClockRequest struct {
	Action string `json:"action"`
	Note   string `json:"note"`
	Pin    string `json:"pin"`
}

type TimeClockResponse struct {
	OK     bool      `json:"ok"`
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"userId"`
	Action string    `json:"action"`
	At     time.Time `json:"at"`
}

type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatResponse struct {
	OK    bool   `json:"ok"`
	Reply string `json:"reply"`
}

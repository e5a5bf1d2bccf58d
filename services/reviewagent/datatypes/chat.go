// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// This file contains request and response types for the per-analysis chat
// endpoints. For the analysis aggregate types, see analysis.go.
package datatypes

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// MaxChatContentBytes is the maximum size of one chat message body.
// Checked as byte length, not rune count, to bound memory per request.
const MaxChatContentBytes = 32 * 1024

// chatValidate is the validator instance for chat datatypes.
var chatValidate *validator.Validate

func init() {
	chatValidate = validator.New()
	_ = chatValidate.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= MaxChatContentBytes
	})
}

// =============================================================================
// Chat Request Types
// =============================================================================

// ChatRequest is the body of POST /api/chat/:prId.
//
// # Fields
//
//   - Content: Required. The user's question about the analysis.
//     Limited to 32KB.
//   - MentorMode: Optional persona selector for the responder's tone:
//     "sarah_lead", "alex_security", "jordan_perf", or "balanced" (default).
//     Unknown values fall back to "balanced".
type ChatRequest struct {
	Content    string `json:"content" validate:"required,maxbytes"`
	MentorMode string `json:"mentor_mode"`
}

// Validate validates the ChatRequest fields.
func (r *ChatRequest) Validate() error {
	return chatValidate.Struct(r)
}

// =============================================================================
// Chat Response Types
// =============================================================================

// ChatResponse is the reply to a chat request.
//
// # Fields
//
//   - ResponseID: Server-generated UUID v4 for audit correlation.
//   - Response: The responder's answer text.
//   - MentorName: Display name of the persona that answered.
//   - Timestamp: UTC time the answer was produced.
type ChatResponse struct {
	ResponseID string    `json:"response_id"`
	Response   string    `json:"response"`
	MentorName string    `json:"mentor_name"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewChatResponse creates a ChatResponse with a generated ID and the
// current UTC timestamp.
func NewChatResponse(answer, mentorName string) *ChatResponse {
	return &ChatResponse{
		ResponseID: uuid.NewString(),
		Response:   answer,
		MentorName: mentorName,
		Timestamp:  time.Now().UTC(),
	}
}

// ChatTurn is one stored exchange in an analysis's chat history.
type ChatTurn struct {
	User      string    `json:"user"`
	AI        string    `json:"ai"`
	Mentor    string    `json:"mentor"`
	Timestamp time.Time `json:"timestamp"`
}

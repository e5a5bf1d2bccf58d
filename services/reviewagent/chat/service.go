// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package chat answers natural-language questions about a stored analysis.
//
// # Description
//
// The service holds an ordered list of responder strategies. Each request
// is offered to the strategies in order until one produces an answer; the
// canned responder sits last in the chain and cannot fail, so the service
// as a whole always answers. An analysis is consumed as a plain key-value
// context bag, never as a typed dependency.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/AleutianAI/AleutianReview/services/llm"
	"github.com/AleutianAI/AleutianReview/services/reviewagent/datatypes"
)

// maxHistoryTurns bounds the per-analysis chat history. Older turns are
// dropped oldest-first once the bound is reached.
const maxHistoryTurns = 200

// Mentor persona identifiers. Unknown modes fall back to MentorBalanced.
const (
	MentorSarah    = "sarah_lead"
	MentorAlex     = "alex_security"
	MentorJordan   = "jordan_perf"
	MentorBalanced = "balanced"
)

// mentorNames maps persona identifiers to display names.
var mentorNames = map[string]string{
	MentorSarah:    "Sarah (Team Lead)",
	MentorAlex:     "Alex (Security Expert)",
	MentorJordan:   "Jordan (Performance Guru)",
	MentorBalanced: "AI Reviewer",
}

// mentorPrompts maps persona identifiers to system prompts.
var mentorPrompts = map[string]string{
	MentorSarah: "You are Sarah, an experienced team lead. " +
		"Focus on architecture, maintainability, and team standards. " +
		"Give thorough explanations and help developers understand the 'why' behind recommendations. " +
		"Be patient and educational.",
	MentorAlex: "You are Alex, a security expert. " +
		"Focus on security vulnerabilities and compliance issues. " +
		"Be direct and prioritize security above all else. " +
		"Explain security risks clearly.",
	MentorJordan: "You are Jordan, a performance optimization expert. " +
		"Focus on metrics, scalability, and efficiency. " +
		"Back up recommendations with data and focus on performance impact.",
	MentorBalanced: "You are an AI code reviewer providing balanced, helpful feedback " +
		"covering functionality, maintainability, and best practices.",
}

// MentorName returns the display name for a persona identifier.
func MentorName(mode string) string {
	if name, ok := mentorNames[mode]; ok {
		return name
	}
	return mentorNames[MentorBalanced]
}

// =============================================================================
// Responder Strategies
// =============================================================================

// Responder is one strategy for producing an answer about an analysis.
//
// Implementations must be safe for concurrent use. A returned error means
// "try the next strategy"; the terminal strategy in a chain must never
// return one.
type Responder interface {
	Respond(ctx context.Context, message, mentorMode string, prContext map[string]any) (string, error)
}

// LLMResponder answers through an LLM backend with a persona system prompt
// and the analysis context bag folded into the user prompt.
type LLMResponder struct {
	client llm.LLMClient
}

// NewLLMResponder wraps an LLM client as a responder strategy.
func NewLLMResponder(client llm.LLMClient) *LLMResponder {
	return &LLMResponder{client: client}
}

// contextValue returns the bag entry for key, or fallback when the key is
// absent. Responses must never render a missing key as "<nil>".
func contextValue(bag map[string]any, key string, fallback any) any {
	if v, ok := bag[key]; ok {
		return v
	}
	return fallback
}

// Respond implements Responder.
func (r *LLMResponder) Respond(ctx context.Context, message, mentorMode string, prContext map[string]any) (string, error) {
	systemPrompt, ok := mentorPrompts[mentorMode]
	if !ok {
		systemPrompt = mentorPrompts[MentorBalanced]
	}

	prompt := fmt.Sprintf(`You are reviewing a Pull Request.

Title: %v
Risk Score: %v/100
Risk Level: %v
Issues Found: %v
Auto-Fixes Proposed: %v
Predicted Bug Likelihood: %v

Developer's Question:
%s

Please:
- Highlight security, performance, and maintainability concerns.
- Give concrete suggestions for improvements.
- Tailor tone based on your persona (%s).`,
		contextValue(prContext, "title", "Untitled PR"),
		contextValue(prContext, "risk_score", 0),
		contextValue(prContext, "risk_level", "unknown"),
		contextValue(prContext, "issues", 0),
		contextValue(prContext, "auto_fixes", 0),
		contextValue(prContext, "bug_likelihood", 0),
		message,
		mentorMode,
	)

	maxTokens := 800
	temperature := float32(0.5)
	return r.client.Generate(ctx, prompt, llm.GenerationParams{
		SystemPrompt: systemPrompt,
		MaxTokens:    &maxTokens,
		Temperature:  &temperature,
	})
}

// CannedResponder is the guaranteed-success terminal strategy: a templated
// reply built from the context bag. It never returns an error.
type CannedResponder struct{}

// cannedIntros are per-persona openers for the templated reply.
var cannedIntros = map[string]string{
	MentorSarah:    "As your team lead, I want to help you understand the architectural implications.",
	MentorAlex:     "From a security standpoint, I'm concerned about the vulnerabilities I've identified.",
	MentorJordan:   "Looking at performance metrics, I can see several optimization opportunities.",
	MentorBalanced: "Based on my analysis,",
}

// Respond implements Responder.
func (CannedResponder) Respond(_ context.Context, _ string, mentorMode string, prContext map[string]any) (string, error) {
	intro, ok := cannedIntros[mentorMode]
	if !ok {
		intro = cannedIntros[MentorBalanced]
	}
	return fmt.Sprintf("%s Your PR has %v issues with a risk score of %v/100. "+
		"What specific aspect would you like me to explain?",
		intro,
		contextValue(prContext, "issues", 0),
		contextValue(prContext, "risk_score", 0)), nil
}

// =============================================================================
// Service
// =============================================================================

// Service runs the responder chain and records per-analysis chat history.
//
// # Thread Safety
//
// Safe for concurrent use; the history map is guarded by a mutex.
type Service struct {
	responders []Responder

	// OnFallback, when non-nil, is invoked each time the chain falls
	// through to the canned responder. Used to feed the fallback counter
	// without coupling this package to the metrics registry.
	OnFallback func()

	mu      sync.Mutex
	history map[string][]datatypes.ChatTurn
}

// NewService builds a chat service over an optional LLM client. When the
// client is nil only the canned responder is installed; otherwise the LLM
// strategy is tried first and the canned responder backs it.
func NewService(client llm.LLMClient) *Service {
	var responders []Responder
	if client != nil {
		responders = append(responders, NewLLMResponder(client))
	}
	responders = append(responders, CannedResponder{})
	return &Service{
		responders: responders,
		history:    make(map[string][]datatypes.ChatTurn),
	}
}

// Respond answers one question about an analysis and records the exchange.
//
// # Description
//
// Strategies are tried in order; the first answer wins. Failures short of
// the terminal strategy are logged and skipped. Because the canned
// responder cannot fail, Respond never returns an error for well-formed
// input. The mentor display name in the response reflects which persona
// answered; when the LLM chain fell through to the canned responder the
// generic reviewer name is used, mirroring the degraded reply.
func (s *Service) Respond(ctx context.Context, prID string, req *datatypes.ChatRequest, prContext map[string]any) *datatypes.ChatResponse {
	mentorMode := req.MentorMode
	if mentorMode == "" {
		mentorMode = MentorBalanced
	}

	var answer string
	var degraded bool
	for i, responder := range s.responders {
		text, err := responder.Respond(ctx, req.Content, mentorMode, prContext)
		if err != nil {
			slog.Error("responder failed, falling through", "strategy", i, "error", err)
			degraded = true
			continue
		}
		answer = text
		break
	}

	mentorName := MentorName(mentorMode)
	if degraded {
		mentorName = mentorNames[MentorBalanced]
		if s.OnFallback != nil {
			s.OnFallback()
		}
	}
	resp := datatypes.NewChatResponse(answer, mentorName)

	s.mu.Lock()
	turns := append(s.history[prID], datatypes.ChatTurn{
		User:      req.Content,
		AI:        resp.Response,
		Mentor:    mentorMode,
		Timestamp: resp.Timestamp,
	})
	if len(turns) > maxHistoryTurns {
		turns = turns[len(turns)-maxHistoryTurns:]
	}
	s.history[prID] = turns
	s.mu.Unlock()

	return resp
}

// History returns a copy of the recorded chat turns for an analysis,
// oldest first. Unknown identifiers yield an empty list.
func (s *Service) History(prID string) []datatypes.ChatTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]datatypes.ChatTurn(nil), s.history[prID]...)
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package llm

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// groqBaseURL is Groq's OpenAI-compatible endpoint.
const groqBaseURL = "https://api.groq.com/openai/v1"

// OpenAIClient talks to any OpenAI-compatible chat completion API. It
// backs both the OpenAI and the Groq configurations; only the base URL,
// key, and default model differ.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates a client against api.openai.com.
//
// The API key comes from OPENAI_API_KEY, falling back to the container
// secret at /run/secrets/openai_api_key. The model comes from OPENAI_MODEL,
// defaulting to gpt-4o-mini.
func NewOpenAIClient() (*OpenAIClient, error) {
	apiKey, err := readKey("OPENAI_API_KEY", "/run/secrets/openai_api_key")
	if err != nil {
		return nil, err
	}
	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
		slog.Warn("OPENAI_MODEL not set, defaulting to gpt-4o-mini")
	}
	slog.Info("Initializing OpenAI client", "model", model)
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		model:  model,
	}, nil
}

// NewGroqClient creates a client against Groq's OpenAI-compatible API.
//
// The API key comes from GROQ_API_KEY, falling back to the container
// secret at /run/secrets/groq_api_key. The model comes from GROQ_MODEL,
// defaulting to llama3-70b-8192.
func NewGroqClient() (*OpenAIClient, error) {
	apiKey, err := readKey("GROQ_API_KEY", "/run/secrets/groq_api_key")
	if err != nil {
		return nil, err
	}
	model := os.Getenv("GROQ_MODEL")
	if model == "" {
		model = "llama3-70b-8192"
		slog.Warn("GROQ_MODEL not set, defaulting to llama3-70b-8192")
	}
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = groqBaseURL
	slog.Info("Initializing Groq client", "model", model)
	return &OpenAIClient{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}, nil
}

// Generate implements the LLMClient interface.
func (o *OpenAIClient) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	slog.Debug("Generating text via OpenAI-compatible API", "model", o.model)

	systemPrompt := params.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = "You are a helpful assistant."
	}
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if params.Temperature != nil {
		req.Temperature = *params.Temperature
	}
	if params.MaxTokens != nil {
		req.MaxCompletionTokens = *params.MaxTokens
	}
	if params.TopP != nil {
		req.TopP = *params.TopP
	}
	if len(params.Stop) > 0 {
		req.Stop = params.Stop
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		slog.Error("chat completion call failed", "error", err)
		return "", fmt.Errorf("chat completion call failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		slog.Warn("backend returned no choices")
		return "", fmt.Errorf("backend returned no choices")
	}
	slog.Debug("Received completion", "finish_reason", resp.Choices[0].FinishReason)
	return resp.Choices[0].Message.Content, nil
}

// readKey resolves an API key from the environment, falling back to a
// mounted container secret.
func readKey(envVar, secretPath string) (string, error) {
	if key := os.Getenv(envVar); key != "" {
		return key, nil
	}
	keyBytes, err := os.ReadFile(secretPath)
	if err == nil {
		slog.Info("Read the API key from container secrets", "env", envVar)
		return strings.TrimSpace(string(keyBytes)), nil
	}
	slog.Error("API key not set and secret not found", "env", envVar, "path", secretPath)
	return "", fmt.Errorf("%s environment variable not set", envVar)
}

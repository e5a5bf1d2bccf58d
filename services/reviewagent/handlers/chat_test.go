// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianReview/services/reviewagent/analysis"
	"github.com/AleutianAI/AleutianReview/services/reviewagent/chat"
	"github.com/AleutianAI/AleutianReview/services/reviewagent/store"
)

// chatRouter builds a router with the chat endpoints over a canned-only
// chat service.
func chatRouter(st *store.AnalysisStore) (*gin.Engine, *chat.Service) {
	svc := chat.NewService(nil)
	router := gin.New()
	router.POST("/api/chat/*prId", HandleChat(svc, st, nil))
	router.GET("/api/chat/history/*prId", GetChatHistory(svc))
	return router, svc
}

func TestHandleChat_WithStoredAnalysis(t *testing.T) {
	st := store.New()
	defer st.Close()

	analyzer := analysis.NewAnalyzer(0)
	result, err := analyzer.Analyze(t.Context(), "123", mockSnapshot(""), "")
	require.NoError(t, err)
	st.Put("123", result)

	router, _ := chatRouter(st)
	body := strings.NewReader(`{"content": "Why is the score high?", "mentor_mode": "alex_security"}`)
	w := performRequest(router, http.MethodPost, "/api/chat/123", body)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Alex (Security Expert)", resp["mentor_name"])
	assert.Contains(t, resp["response"], "/100")
	assert.NotEmpty(t, resp["response_id"])
}

func TestHandleChat_WithoutStoredAnalysis(t *testing.T) {
	st := store.New()
	defer st.Close()
	router, _ := chatRouter(st)

	body := strings.NewReader(`{"content": "hello"}`)
	w := performRequest(router, http.MethodPost, "/api/chat/unknown", body)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	// With no stored analysis the context bag is empty; missing keys must
	// default to zero values instead of rendering as "<nil>".
	assert.NotContains(t, resp["response"], "<nil>")
	assert.Contains(t, resp["response"], "0 issues with a risk score of 0/100")
}

func TestHandleChat_CompositeAnalysisID(t *testing.T) {
	st := store.New()
	defer st.Close()
	router, svc := chatRouter(st)

	body := strings.NewReader(`{"content": "hello"}`)
	w := performRequest(router, http.MethodPost, "/api/chat/acme/api-42", body)
	require.Equal(t, http.StatusOK, w.Code)

	// The wildcard delivered the slash-bearing ID intact.
	assert.Len(t, svc.History("acme/api-42"), 1)
}

func TestHandleChat_ValidationFailures(t *testing.T) {
	st := store.New()
	defer st.Close()
	router, _ := chatRouter(st)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"content":`},
		{"empty content", `{"content": ""}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(router, http.MethodPost, "/api/chat/123",
				strings.NewReader(tt.body))
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestGetChatHistory(t *testing.T) {
	st := store.New()
	defer st.Close()
	router, _ := chatRouter(st)

	performRequest(router, http.MethodPost, "/api/chat/123",
		strings.NewReader(`{"content": "first"}`))
	performRequest(router, http.MethodPost, "/api/chat/123",
		strings.NewReader(`{"content": "second"}`))

	w := performRequest(router, http.MethodGet, "/api/chat/history/123", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		PRID    string `json:"pr_id"`
		History []struct {
			User string `json:"user"`
		} `json:"history"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "123", resp.PRID)
	require.Len(t, resp.History, 2)
	assert.Equal(t, "first", resp.History[0].User)
}

func TestGetChatHistory_EmptyForUnknownID(t *testing.T) {
	st := store.New()
	defer st.Close()
	router, _ := chatRouter(st)

	w := performRequest(router, http.MethodGet, "/api/chat/history/nobody", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp["history"])
}

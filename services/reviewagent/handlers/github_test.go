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
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianReview/services/github"
	"github.com/AleutianAI/AleutianReview/services/reviewagent/analysis"
	"github.com/AleutianAI/AleutianReview/services/reviewagent/store"
)

// githubRouter builds a router with the GitHub endpoints backed by a stub
// GitHub API server.
func githubRouter(st *store.AnalysisStore, apiURL string) *gin.Engine {
	gh := github.NewClientWithBaseURL(apiURL, "")
	analyzer := analysis.NewAnalyzer(0)
	router := gin.New()
	router.POST("/api/github/analyze-pr", AnalyzeGitHubPR(gh, analyzer, st, nil))
	router.POST("/api/github/validate-token", ValidateGitHubToken(gh))
	return router
}

// stubGitHub serves a single PR with one flagged file.
func stubGitHub(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/acme/api/pulls/42":
			w.Write([]byte(`{
				"title": "Add login flow",
				"additions": 600,
				"deletions": 10,
				"changed_files": 12,
				"state": "open",
				"user": {"login": "octocat"}
			}`))
		case "/repos/acme/api/pulls/42/files":
			w.Write([]byte(`[{"filename": "auth.js", "patch": "+ q = \"SELECT * FROM u WHERE id=\" + id;"}]`))
		case "/user":
			w.Header().Set("X-RateLimit-Remaining", "4999")
			w.Write([]byte(`{"login": "octocat"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestAnalyzeGitHubPR(t *testing.T) {
	server := stubGitHub(t)
	defer server.Close()

	st := store.New()
	defer st.Close()
	router := githubRouter(st, server.URL)

	body := strings.NewReader(`{"repository": "acme/api", "pr_number": 42}`)
	w := performRequest(router, http.MethodPost, "/api/github/analyze-pr", body)
	require.Equal(t, http.StatusOK, w.Code)

	result := decodeAnalysis(t, w)
	assert.Equal(t, "acme/api-42", result.PRID)
	assert.Equal(t, "Add login flow", result.Title)
	assert.Equal(t, "acme/api", result.Repository)
	// No per-request token was supplied.
	assert.False(t, result.GithubAuthenticated)
	require.NotEmpty(t, result.Issues)
	assert.Equal(t, "Potential SQL injection vulnerability", result.Issues[0].Description)

	_, ok := st.Get("acme/api-42")
	assert.True(t, ok)
}

func TestAnalyzeGitHubPR_TokenMarksAuthenticated(t *testing.T) {
	server := stubGitHub(t)
	defer server.Close()

	st := store.New()
	defer st.Close()
	router := githubRouter(st, server.URL)

	body := strings.NewReader(`{"repository": "acme/api", "pr_number": 42, "github_token": "tok"}`)
	w := performRequest(router, http.MethodPost, "/api/github/analyze-pr", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeAnalysis(t, w).GithubAuthenticated)
}

func TestAnalyzeGitHubPR_ValidationFailures(t *testing.T) {
	st := store.New()
	defer st.Close()
	router := githubRouter(st, "http://unused.invalid")

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"repository":`},
		{"bad repository shape", `{"repository": "acmeapi", "pr_number": 1}`},
		{"missing pr number", `{"repository": "acme/api"}`},
		{"negative pr number", `{"repository": "acme/api", "pr_number": -2}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(router, http.MethodPost, "/api/github/analyze-pr",
				strings.NewReader(tt.body))
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
	assert.Equal(t, 0, st.Len())
}

func TestAnalyzeGitHubPR_UpstreamStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		upstream   int
		wantStatus int
	}{
		{"invalid token", http.StatusUnauthorized, http.StatusUnauthorized},
		{"rate limited", http.StatusForbidden, http.StatusTooManyRequests},
		{"missing pr", http.StatusNotFound, http.StatusNotFound},
		{"server error", http.StatusBadGateway, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.upstream)
			}))
			defer server.Close()

			st := store.New()
			defer st.Close()
			router := githubRouter(st, server.URL)

			body := strings.NewReader(`{"repository": "acme/api", "pr_number": 42}`)
			w := performRequest(router, http.MethodPost, "/api/github/analyze-pr", body)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestValidateGitHubToken(t *testing.T) {
	server := stubGitHub(t)
	defer server.Close()

	st := store.New()
	defer st.Close()
	router := githubRouter(st, server.URL)

	body := strings.NewReader(`{"token": "tok123"}`)
	w := performRequest(router, http.MethodPost, "/api/github/validate-token", body)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["valid"])
	assert.Equal(t, "octocat", resp["user"])
	assert.Equal(t, "4999", resp["rate_limit"])
}

func TestValidateGitHubToken_EmptyToken(t *testing.T) {
	st := store.New()
	defer st.Close()
	router := githubRouter(st, "http://unused.invalid")

	w := performRequest(router, http.MethodPost, "/api/github/validate-token",
		strings.NewReader(`{"token": ""}`))
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["valid"])
	assert.Equal(t, "No token provided", resp["error"])
}

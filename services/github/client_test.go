// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchPR_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "token tok123", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/repos/acme/api/pulls/42":
			w.Write([]byte(`{
				"title": "Add login flow",
				"body": "Adds the login endpoint",
				"additions": 300,
				"deletions": 12,
				"changed_files": 7,
				"state": "open",
				"user": {"login": "octocat"}
			}`))
		case "/repos/acme/api/pulls/42/files":
			w.Write([]byte(`[
				{"filename": "auth.js", "patch": "+ console.log(1);", "additions": 3, "deletions": 1, "status": "modified"}
			]`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL, "")
	pr, err := client.FetchPR(context.Background(), "acme/api", 42, "tok123")
	require.NoError(t, err)

	assert.Equal(t, "Add login flow", pr.Title)
	assert.Equal(t, "Adds the login endpoint", pr.Description)
	assert.Equal(t, "acme/api", pr.Repository)
	assert.Equal(t, 300, pr.Additions)
	assert.Equal(t, 7, pr.ChangedFiles)
	assert.Equal(t, "octocat", pr.Author)
	assert.Equal(t, "open", pr.State)
	assert.True(t, pr.Authenticated)
	require.Len(t, pr.Files, 1)
	assert.Equal(t, "auth.js", pr.Files[0].Filename)
	assert.Equal(t, "+ console.log(1);", pr.Files[0].Patch)
}

func TestFetchPR_FallsBackToServerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "token server-tok", r.Header.Get("Authorization"))
		if r.URL.Path == "/repos/acme/api/pulls/1" {
			w.Write([]byte(`{"title": "t"}`))
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL, "server-tok")
	pr, err := client.FetchPR(context.Background(), "acme/api", 1, "")
	require.NoError(t, err)
	assert.True(t, pr.Authenticated)
}

func TestFetchPR_UnauthenticatedWithoutAnyToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		if r.URL.Path == "/repos/acme/api/pulls/1" {
			w.Write([]byte(`{"title": "t"}`))
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL, "")
	pr, err := client.FetchPR(context.Background(), "acme/api", 1, "")
	require.NoError(t, err)
	assert.False(t, pr.Authenticated)
}

func TestFetchPR_FilesFailureDegradesToEmptyList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/repos/acme/api/pulls/1" {
			w.Write([]byte(`{"title": "t", "changed_files": 3}`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL, "")
	pr, err := client.FetchPR(context.Background(), "acme/api", 1, "")
	require.NoError(t, err)
	assert.Empty(t, pr.Files)
	assert.Equal(t, 3, pr.ChangedFiles)
}

func TestFetchPR_ErrorKinds(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, ErrInvalidToken},
		{"rate limited", http.StatusForbidden, ErrRateLimited},
		{"missing", http.StatusNotFound, ErrNotFound},
		{"server error", http.StatusBadGateway, ErrUpstream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := NewClientWithBaseURL(server.URL, "")
			_, err := client.FetchPR(context.Background(), "acme/api", 1, "")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidateToken_Valid(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/user", r.URL.Path)
		assert.Equal(t, "token tok123", r.Header.Get("Authorization"))
		w.Header().Set("X-RateLimit-Remaining", "4999")
		w.Header().Set("X-OAuth-Scopes", "repo, read:user")
		w.Write([]byte(`{"login": "octocat"}`))
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL, "")
	result, err := client.ValidateToken(context.Background(), "tok123")
	require.NoError(t, err)

	assert.True(t, result.Valid)
	assert.Equal(t, "octocat", result.User)
	assert.Equal(t, "4999", result.RateLimit)
	assert.Equal(t, "repo, read:user", result.Scopes)
}

func TestValidateToken_MissingHeadersFallBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"login": "octocat"}`))
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL, "")
	result, err := client.ValidateToken(context.Background(), "tok123")
	require.NoError(t, err)
	assert.Equal(t, "unknown", result.RateLimit)
	assert.Equal(t, "unknown", result.Scopes)
}

func TestValidateToken_Invalid(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL, "")
	result, err := client.ValidateToken(context.Background(), "bad")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "Invalid token", result.Error)
}

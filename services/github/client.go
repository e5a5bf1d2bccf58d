// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package github fetches pull-request snapshots from the GitHub REST API.
//
// The client maps upstream failures into distinguishable error kinds
// (invalid credential, rate limited, not found, timeout, generic upstream
// failure) before they reach the analysis layer; the analyzer itself never
// interprets transport-level failures.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/AleutianAI/AleutianReview/services/reviewagent/datatypes"
)

// Error kinds for upstream failures. Handlers match these with errors.Is
// to pick status codes; the wrapped message carries the human detail.
var (
	ErrInvalidToken = errors.New("invalid GitHub token")
	ErrRateLimited  = errors.New("GitHub API rate limit exceeded or insufficient permissions")
	ErrNotFound     = errors.New("pull request not found")
	ErrTimeout      = errors.New("GitHub API request timed out")
	ErrUpstream     = errors.New("GitHub API error")
)

const (
	defaultBaseURL = "https://api.github.com"

	// fetchTimeout bounds each metadata request. GitHub PR fetches are
	// small; anything slower than this is treated as an outage.
	fetchTimeout = 10 * time.Second
)

// Client is a minimal GitHub REST v3 client scoped to pull-request reads.
//
// # Thread Safety
//
// Client is immutable after construction and safe for concurrent use.
type Client struct {
	baseURL    string
	baseToken  string
	httpClient *http.Client
}

// NewClient creates a GitHub client. The server-wide token comes from the
// GITHUB_TOKEN environment variable and may be empty, in which case
// unauthenticated requests are made (subject to GitHub's anonymous rate
// limits) unless a per-request token is supplied.
func NewClient() *Client {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		slog.Info("GITHUB_TOKEN not set, GitHub requests will be unauthenticated")
	}
	return &Client{
		baseURL:    defaultBaseURL,
		baseToken:  token,
		httpClient: &http.Client{Timeout: fetchTimeout},
	}
}

// NewClientWithBaseURL creates a client against a non-default API root.
// Used by tests to point at an httptest server.
func NewClientWithBaseURL(baseURL, token string) *Client {
	return &Client{
		baseURL:    baseURL,
		baseToken:  token,
		httpClient: &http.Client{Timeout: fetchTimeout},
	}
}

// prPayload is the subset of GitHub's pull-request resource we consume.
type prPayload struct {
	Title        string `json:"title"`
	Body         string `json:"body"`
	Additions    int    `json:"additions"`
	Deletions    int    `json:"deletions"`
	ChangedFiles int    `json:"changed_files"`
	State        string `json:"state"`
	User         struct {
		Login string `json:"login"`
	} `json:"user"`
}

// FetchPR fetches one pull request's metadata and changed files and
// assembles them into a snapshot.
//
// # Description
//
// Two sequential GET calls: /repos/{repo}/pulls/{n} for metadata and
// /repos/{repo}/pulls/{n}/files for the file list. A failure on the files
// call degrades to an empty file list rather than failing the fetch, which
// matches how the analysis pipeline treats missing patches.
//
// # Inputs
//
//   - ctx: Context for cancellation; the client also enforces its own
//     per-request timeout.
//   - repo: "owner/repo" identifier. Assumed pre-validated.
//   - number: Pull request number.
//   - token: Optional per-request token overriding the server-wide one.
//
// # Outputs
//
//   - *datatypes.PullRequestSnapshot: The assembled snapshot, with
//     Authenticated set when any token was used.
//   - error: One of the package error kinds, wrapped with detail.
func (c *Client) FetchPR(ctx context.Context, repo string, number int, token string) (*datatypes.PullRequestSnapshot, error) {
	effectiveToken := token
	if effectiveToken == "" {
		effectiveToken = c.baseToken
	}

	prURL := fmt.Sprintf("%s/repos/%s/pulls/%d", c.baseURL, repo, number)
	var pr prPayload
	if err := c.getJSON(ctx, prURL, effectiveToken, &pr); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: PR #%d in repository %s", ErrNotFound, number, repo)
		}
		return nil, err
	}

	filesURL := prURL + "/files"
	var files []datatypes.ChangedFile
	if err := c.getJSON(ctx, filesURL, effectiveToken, &files); err != nil {
		slog.Warn("failed to fetch PR file list, continuing without patches",
			"repo", repo, "pr", number, "error", err)
		files = nil
	}

	return &datatypes.PullRequestSnapshot{
		Title:         pr.Title,
		Description:   pr.Body,
		Repository:    repo,
		Files:         files,
		Additions:     pr.Additions,
		Deletions:     pr.Deletions,
		ChangedFiles:  pr.ChangedFiles,
		Author:        pr.User.Login,
		State:         pr.State,
		Authenticated: effectiveToken != "",
	}, nil
}

// ValidateToken checks a token against GET /user and reports the login and
// rate-limit headroom it grants. A bad token is a negative result, not an
// error; errors are reserved for transport failures.
func (c *Client) ValidateToken(ctx context.Context, token string) (*datatypes.ValidateTokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/user", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	req.Header.Set("Authorization", "token "+token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &datatypes.ValidateTokenResponse{Valid: false, Error: "Invalid token"}, nil
	}

	var user struct {
		Login string `json:"login"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("%w: decoding user payload: %v", ErrUpstream, err)
	}
	return &datatypes.ValidateTokenResponse{
		Valid:     true,
		User:      user.Login,
		RateLimit: headerOr(resp, "X-RateLimit-Remaining", "unknown"),
		Scopes:    headerOr(resp, "X-OAuth-Scopes", "unknown"),
	}, nil
}

// getJSON performs an authenticated GET and decodes the response body,
// translating HTTP failures into the package error kinds.
func (c *Client) getJSON(ctx context.Context, url, token string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if token != "" {
		req.Header.Set("Authorization", "token "+token)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
			slog.Error("GitHub API request timed out", "url", url)
			return ErrTimeout
		}
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to decode
	case http.StatusUnauthorized:
		slog.Error("GitHub API authentication failed - invalid token")
		return ErrInvalidToken
	case http.StatusForbidden:
		slog.Error("GitHub API rate limit exceeded or insufficient permissions")
		return ErrRateLimited
	case http.StatusNotFound:
		return ErrNotFound
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		slog.Error("GitHub API request failed", "status", resp.StatusCode, "body", string(body))
		return fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", ErrUpstream, err)
	}
	return nil
}

// headerOr returns a response header value or a fallback when unset.
func headerOr(resp *http.Response, key, fallback string) string {
	if v := resp.Header.Get(key); v != "" {
		return v
	}
	return fallback
}

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
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianReview/services/github"
	"github.com/AleutianAI/AleutianReview/services/reviewagent/analysis"
	"github.com/AleutianAI/AleutianReview/services/reviewagent/datatypes"
	"github.com/AleutianAI/AleutianReview/services/reviewagent/observability"
	"github.com/AleutianAI/AleutianReview/services/reviewagent/store"
)

// AnalyzeGitHubPR handles POST /api/github/analyze-pr: fetches a real
// pull request from GitHub, runs the analysis pipeline over its files,
// and stores the result under "<owner>/<repo>-<number>".
//
// Upstream failures surface as:
//   - 401 when the token is rejected,
//   - 429 when GitHub rate-limits the request,
//   - 404 when the repository or PR does not exist,
//   - 504 when GitHub does not answer in time,
//   - 500 for anything else.
func AnalyzeGitHubPR(gh *github.Client, analyzer *analysis.Analyzer, st *store.AnalysisStore, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := analysisTracer.Start(c.Request.Context(), "AnalyzeGitHubPR")
		defer span.End()

		var req datatypes.AnalyzePRRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}

		snapshot, err := gh.FetchPR(ctx, req.Repository, req.PRNumber, req.GithubToken)
		if err != nil {
			slog.Warn("github fetch failed",
				"repository", req.Repository, "pr_number", req.PRNumber, "error", err)
			if metrics != nil {
				metrics.RecordAnalysis(observability.SourceGitHub, false, 0)
			}
			c.JSON(githubStatus(err), gin.H{"error": err.Error()})
			return
		}

		analysisID := req.AnalysisID()
		result, err := analyzer.Analyze(ctx, analysisID, snapshot, req.Repository)
		if err != nil {
			slog.Error("github analysis failed", "analysis_id", analysisID, "error", err)
			if metrics != nil {
				metrics.RecordAnalysis(observability.SourceGitHub, false, 0)
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Analysis failed"})
			return
		}
		result.GithubAuthenticated = req.GithubToken != ""

		st.Put(analysisID, result)
		if metrics != nil {
			metrics.RecordAnalysis(observability.SourceGitHub, true, result.AnalysisTime)
			metrics.SetStoredAnalyses(st.Len())
		}
		c.JSON(http.StatusOK, result)
	}
}

// ValidateGitHubToken handles POST /api/github/validate-token. The
// response is always 200: validity and any failure detail travel in
// the body so the frontend can show them inline.
func ValidateGitHubToken(gh *github.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.ValidateTokenRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}
		if req.Token == "" {
			c.JSON(http.StatusOK, datatypes.ValidateTokenResponse{
				Valid: false,
				Error: "No token provided",
			})
			return
		}

		result, err := gh.ValidateToken(c.Request.Context(), req.Token)
		if err != nil {
			c.JSON(http.StatusOK, datatypes.ValidateTokenResponse{
				Valid: false,
				Error: err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// githubStatus maps a GitHub client error kind to an HTTP status code.
func githubStatus(err error) int {
	switch {
	case errors.Is(err, github.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, github.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, github.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, github.ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

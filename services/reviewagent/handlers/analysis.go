// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers contains the Gin HTTP handlers for the review agent.
// Handlers are thin: they bind and validate requests, delegate to the
// injected collaborators, and map error kinds to status codes.
package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"

	"github.com/AleutianAI/AleutianReview/services/reviewagent/analysis"
	"github.com/AleutianAI/AleutianReview/services/reviewagent/datatypes"
	"github.com/AleutianAI/AleutianReview/services/reviewagent/observability"
	"github.com/AleutianAI/AleutianReview/services/reviewagent/store"
)

var analysisTracer = otel.Tracer("aleutian.reviewagent.handlers")

// defaultMockTitle is the PR title used when the caller does not override
// it on a mock analysis.
const defaultMockTitle = "Add user authentication system"

// mockSnapshot builds the demo pull-request snapshot used by the mock
// analysis endpoints. The single file deliberately trips the SQL-injection
// rule so demo analyses always carry a meaningful issue.
func mockSnapshot(title string) *datatypes.PullRequestSnapshot {
	if title == "" {
		title = defaultMockTitle
	}
	return &datatypes.PullRequestSnapshot{
		Title:       title,
		Description: "Mock PR for demonstration",
		Files: []datatypes.ChangedFile{
			{
				Filename: "auth.js",
				Patch:    `+ const query = "SELECT * FROM users WHERE id = " + userId;`,
				Status:   "modified",
			},
		},
		ChangedFiles: 5,
		Additions:    100,
		Deletions:    20,
	}
}

// AnalyzeMockPR handles POST /api/analysis/pr/:prId: runs the pipeline
// over mock data, stores the result, and returns it. The title may be
// overridden with the "title" query parameter.
func AnalyzeMockPR(analyzer *analysis.Analyzer, st *store.AnalysisStore, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := analysisTracer.Start(c.Request.Context(), "AnalyzeMockPR")
		defer span.End()

		prID := c.Param("prId")
		title := c.DefaultQuery("title", defaultMockTitle)

		result, err := analyzer.Analyze(ctx, prID, mockSnapshot(title), "")
		if err != nil {
			slog.Error("mock analysis failed", "pr_id", prID, "error", err)
			if metrics != nil {
				metrics.RecordAnalysis(observability.SourceMock, false, 0)
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Analysis failed"})
			return
		}

		st.Put(prID, result)
		if metrics != nil {
			metrics.RecordAnalysis(observability.SourceMock, true, result.AnalysisTime)
			metrics.SetStoredAnalyses(st.Len())
		}
		c.JSON(http.StatusOK, result)
	}
}

// GetAnalysis handles GET /api/analysis/pr/:prId: returns the stored
// analysis, running an on-demand mock analysis when none exists yet.
func GetAnalysis(analyzer *analysis.Analyzer, st *store.AnalysisStore, metrics *observability.Metrics) gin.HandlerFunc {
	runMock := AnalyzeMockPR(analyzer, st, metrics)
	return func(c *gin.Context) {
		prID := c.Param("prId")
		if existing, ok := st.Get(prID); ok {
			c.JSON(http.StatusOK, existing)
			return
		}
		slog.Info("no stored analysis, running on demand", "pr_id", prID)
		runMock(c)
	}
}

// ApplyFix handles POST /api/analysis/apply-fix/:prId/:fixId: marks the
// fix applied and returns the recomputed risk score and level.
func ApplyFix(st *store.AnalysisStore, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		prID := c.Param("prId")
		fixID := c.Param("fixId")

		result, err := st.ApplyFix(prID, fixID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			if metrics != nil {
				metrics.RecordFixApplication(observability.OutcomeNotFound)
			}
			c.JSON(http.StatusNotFound, gin.H{"error": "PR analysis not found"})
			return
		case errors.Is(err, store.ErrFixNotFound):
			if metrics != nil {
				metrics.RecordFixApplication(observability.OutcomeNotFound)
			}
			c.JSON(http.StatusNotFound, gin.H{"error": "Fix not found"})
			return
		case err != nil:
			slog.Error("fix application failed", "pr_id", prID, "fix_id", fixID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to apply fix"})
			return
		}

		message := fmt.Sprintf("Fix %s applied successfully", fixID)
		outcome := observability.OutcomeApplied
		if result.AlreadyApplied {
			message = fmt.Sprintf("Fix %s was already applied", fixID)
			outcome = observability.OutcomeAlreadyApplied
		}
		if metrics != nil {
			metrics.RecordFixApplication(outcome)
		}

		c.JSON(http.StatusOK, gin.H{
			"success":        true,
			"message":        message,
			"new_risk_score": result.NewRiskScore,
			"new_risk_level": result.NewRiskLevel,
		})
	}
}

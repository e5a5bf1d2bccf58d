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
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianReview/services/reviewagent/chat"
	"github.com/AleutianAI/AleutianReview/services/reviewagent/datatypes"
	"github.com/AleutianAI/AleutianReview/services/reviewagent/observability"
	"github.com/AleutianAI/AleutianReview/services/reviewagent/store"
)

// HandleChat handles POST /api/chat/*prId. The wildcard lets composite
// analysis IDs like "owner/repo-42" appear in the path. Chat works even
// when no analysis is stored for the ID; the mentor just answers without
// PR context.
func HandleChat(svc *chat.Service, st *store.AnalysisStore, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := analysisTracer.Start(c.Request.Context(), "HandleChat")
		defer span.End()

		prID := strings.TrimPrefix(c.Param("prId"), "/")

		var req datatypes.ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}

		prContext := map[string]any{}
		if analysis, ok := st.Get(prID); ok {
			prContext = analysis.ContextBag()
		}

		if metrics != nil {
			mode := req.MentorMode
			if mode == "" {
				mode = chat.MentorBalanced
			}
			metrics.RecordChatRequest(mode)
		}
		resp := svc.Respond(ctx, prID, &req, prContext)
		c.JSON(http.StatusOK, resp)
	}
}

// GetChatHistory handles GET /api/chat/history/*prId and returns the
// bounded conversation history for the analysis ID.
func GetChatHistory(svc *chat.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		prID := strings.TrimPrefix(c.Param("prId"), "/")
		c.JSON(http.StatusOK, gin.H{
			"pr_id":   prID,
			"history": svc.History(prID),
		})
	}
}

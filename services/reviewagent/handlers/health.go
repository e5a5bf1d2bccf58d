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
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianReview/services/reviewagent/store"
)

// ServiceBanner handles GET /: a small identity payload so a browser hit
// on the bare port confirms which service answered.
func ServiceBanner() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Aleutian Review API",
			"status":  "running",
		})
	}
}

// HealthCheck handles GET /health and reports liveness plus the number
// of analyses currently held in memory.
func HealthCheck(st *store.AnalysisStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":          "healthy",
			"timestamp":       time.Now().UTC().Format(time.RFC3339),
			"active_analyses": st.Len(),
		})
	}
}

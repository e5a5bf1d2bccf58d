// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AleutianAI/AleutianReview/services/github"
	"github.com/AleutianAI/AleutianReview/services/reviewagent/analysis"
	"github.com/AleutianAI/AleutianReview/services/reviewagent/chat"
	"github.com/AleutianAI/AleutianReview/services/reviewagent/handlers"
	"github.com/AleutianAI/AleutianReview/services/reviewagent/observability"
	"github.com/AleutianAI/AleutianReview/services/reviewagent/store"
)

// Dependencies carries the collaborators the handlers close over.
type Dependencies struct {
	Analyzer *analysis.Analyzer
	Store    *store.AnalysisStore
	GitHub   *github.Client
	Chat     *chat.Service
	Metrics  *observability.Metrics
}

func SetupRoutes(router *gin.Engine, deps Dependencies) {

	router.GET("/", handlers.ServiceBanner())
	router.GET("/health", handlers.HealthCheck(deps.Store))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		analysisGroup := api.Group("/analysis")
		{
			analysisGroup.POST("/pr/:prId", handlers.AnalyzeMockPR(deps.Analyzer, deps.Store, deps.Metrics))
			analysisGroup.GET("/pr/:prId", handlers.GetAnalysis(deps.Analyzer, deps.Store, deps.Metrics))
			analysisGroup.POST("/apply-fix/:prId/:fixId", handlers.ApplyFix(deps.Store, deps.Metrics))
		}

		githubGroup := api.Group("/github")
		{
			githubGroup.POST("/analyze-pr", handlers.AnalyzeGitHubPR(deps.GitHub, deps.Analyzer, deps.Store, deps.Metrics))
			githubGroup.POST("/validate-token", handlers.ValidateGitHubToken(deps.GitHub))
		}

		chatGroup := api.Group("/chat")
		{
			// The wildcard admits composite IDs like "owner/repo-42".
			chatGroup.GET("/history/*prId", handlers.GetChatHistory(deps.Chat))
			chatGroup.POST("/*prId", handlers.HandleChat(deps.Chat, deps.Store, deps.Metrics))
		}
	}
}

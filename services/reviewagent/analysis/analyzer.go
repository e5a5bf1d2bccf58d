// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package analysis

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/AleutianReview/services/reviewagent/datatypes"
)

// analyzerTracer is the OpenTelemetry tracer for analyzer operations.
var analyzerTracer = otel.Tracer("aleutian.reviewagent.analysis")

// DefaultProcessingDelay is the simulated analysis time applied when the
// Analyzer is constructed with a negative delay. It represents "analysis
// takes time" for interactive clients; no work happens during the wait.
const DefaultProcessingDelay = 1500 * time.Millisecond

// Analyzer composes the risk calculator, issue detector, fix proposer, and
// prediction generator into one analysis run.
//
// # Description
//
// Analyze is total over well-formed input: none of the four computations can
// fail, so the only error it returns is context cancellation during the
// simulated processing delay. The Analyzer holds no mutable state and is
// safe for concurrent use; the delay yields to the scheduler and never
// blocks other in-flight analyses.
type Analyzer struct {
	delay time.Duration
}

// NewAnalyzer creates an Analyzer with the given simulated processing
// delay. Zero disables the delay (used in tests); a negative value selects
// DefaultProcessingDelay.
func NewAnalyzer(delay time.Duration) *Analyzer {
	if delay < 0 {
		delay = DefaultProcessingDelay
	}
	return &Analyzer{delay: delay}
}

// Analyze runs the full pipeline over one pull request snapshot.
//
// # Description
//
// Sequence: simulated delay (context aware) -> risk score -> risk level ->
// issue detection -> fix proposal -> time-machine prediction -> assembly.
// The returned Analysis has GithubAuthenticated false; callers that fetched
// the snapshot with a token override it afterwards.
//
// # Inputs
//
//   - ctx: Context for cancellation during the simulated delay.
//   - id: Caller-supplied analysis identifier (a PR number, or a
//     "{repo}-{number}" composite for GitHub-sourced analyses).
//   - pr: The snapshot to analyze. Must not be nil.
//   - repository: Optional "owner/repo" identifier recorded on the result.
//
// # Outputs
//
//   - *datatypes.Analysis: The assembled analysis record.
//   - error: Non-nil only when ctx was canceled during the delay.
func (a *Analyzer) Analyze(ctx context.Context, id string, pr *datatypes.PullRequestSnapshot, repository string) (*datatypes.Analysis, error) {
	ctx, span := analyzerTracer.Start(ctx, "Analyzer.Analyze")
	defer span.End()
	span.SetAttributes(attribute.String("analysis.id", id))

	start := time.Now()

	if a.delay > 0 {
		select {
		case <-time.After(a.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	riskScore := Score(pr)
	riskLevel := datatypes.RiskLevelFor(riskScore)
	issues := Detect(pr.Files)
	autoFixes := Propose(issues)
	timeMachine := Predict(pr, riskScore)

	title := pr.Title
	if title == "" {
		title = "Unknown PR"
	}

	result := &datatypes.Analysis{
		PRID:         id,
		Title:        title,
		Repository:   repository,
		RiskScore:    riskScore,
		RiskLevel:    riskLevel,
		TimeMachine:  timeMachine,
		Issues:       issues,
		AutoFixes:    autoFixes,
		AnalysisTime: time.Since(start).Seconds(),
		CreatedAt:    time.Now().UTC(),
	}

	slog.Info("analysis complete",
		"pr_id", id,
		"risk_score", riskScore,
		"risk_level", riskLevel,
		"issues", len(issues),
		"auto_fixes", len(autoFixes),
		"duration_s", result.AnalysisTime,
	)
	return result, nil
}

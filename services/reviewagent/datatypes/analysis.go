// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes provides data structures for the review agent service.
//
// This file contains the analysis aggregate and its component types. The
// Analysis record is the unit stored in the analysis store and returned by
// the analysis endpoints. For GitHub request types see github.go, for chat
// types see chat.go.
package datatypes

import "time"

// =============================================================================
// Risk Levels
// =============================================================================

// RiskLevel is the three-band classification derived from a risk score.
type RiskLevel string

const (
	// RiskGreen covers scores below 50.
	RiskGreen RiskLevel = "green"

	// RiskYellow covers scores from 50 up to (but excluding) 75.
	RiskYellow RiskLevel = "yellow"

	// RiskRed covers scores of 75 and above.
	RiskRed RiskLevel = "red"
)

// RiskLevelFor derives the risk level band for a score.
//
// # Description
//
// This is the single source of truth for the score->level mapping. Any code
// that changes a risk score must call this immediately afterwards; the level
// is never cached independently of the score.
//
// # Inputs
//
//   - score: The risk score, conceptually 0-100.
//
// # Outputs
//
//   - RiskLevel: green for score < 50, yellow for 50 <= score < 75,
//     red for score >= 75.
func RiskLevelFor(score float64) RiskLevel {
	switch {
	case score < 50:
		return RiskGreen
	case score < 75:
		return RiskYellow
	default:
		return RiskRed
	}
}

// =============================================================================
// Issue Severity
// =============================================================================

// Severity is the ordered issue severity scale: low < medium < high.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Issue categories. The category set is open: detectors may emit categories
// beyond these two, so Issue.Type is a plain string rather than an enum.
const (
	IssueSecurity = "security"
	IssueQuality  = "quality"
)

// =============================================================================
// Pull Request Input Types
// =============================================================================

// ChangedFile is one file entry in a pull request, as supplied by the PR
// source (GitHub fetch or mock data). Immutable once constructed.
//
// # Fields
//
//   - Filename: Path of the file within the repository.
//   - Patch: Unified diff text for the file. May be empty (GitHub omits
//     patches for binary or very large files).
//   - Additions, Deletions: Per-file line counters.
//   - Status: One of "added", "modified", "removed", "renamed".
type ChangedFile struct {
	Filename  string `json:"filename"`
	Patch     string `json:"patch,omitempty"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Status    string `json:"status"`
}

// PullRequestSnapshot is the immutable input to the analyzer: the metadata
// and file list of one pull request at fetch time.
//
// # Fields
//
//   - Title, Description: PR metadata.
//   - Repository: "owner/repo" identifier. Empty for mock analyses.
//   - Files: Changed files with their patches.
//   - Additions, Deletions: Aggregate line counters across all files.
//   - ChangedFiles: Number of files changed (GitHub's counter, which may
//     differ from len(Files) when the file list was truncated upstream).
//   - Author: PR author login.
//   - State: PR state ("open", "closed", ...).
//   - Authenticated: Whether the snapshot was fetched with a token.
type PullRequestSnapshot struct {
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Repository    string        `json:"repository,omitempty"`
	Files         []ChangedFile `json:"files"`
	Additions     int           `json:"additions"`
	Deletions     int           `json:"deletions"`
	ChangedFiles  int           `json:"changed_files"`
	Author        string        `json:"author,omitempty"`
	State         string        `json:"state,omitempty"`
	Authenticated bool          `json:"authenticated,omitempty"`
}

// =============================================================================
// Analysis Output Types
// =============================================================================

// Issue is one detected problem in a pull request. Issues are created by the
// issue detector and are immutable after creation; they are owned by their
// parent Analysis.
//
// Line numbers are best-effort. The pattern detector does not parse the
// diff, so lines are illustrative rather than exact.
type Issue struct {
	Type          string   `json:"type"`
	Severity      Severity `json:"severity"`
	File          string   `json:"file"`
	Line          int      `json:"line"`
	Description   string   `json:"description"`
	FixSuggestion string   `json:"fix_suggestion"`
	Code          string   `json:"code,omitempty"`
}

// AutoFix is a proposed patch for a detected issue.
//
// # Fields
//
//   - ID: Positional identifier, unique within the parent Analysis
//     ("fix_001", "fix_002", ...). Insertion order is significant.
//   - Description: Human-readable summary of the fix.
//   - Diff: Diff-formatted patch text.
//   - Confidence: Value in [0.0, 1.0].
//   - Applied: The one mutable field in the whole model. Set by the
//     fix-application workflow, never at construction time.
type AutoFix struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Diff        string  `json:"diff"`
	Confidence  float64 `json:"confidence"`
	Applied     bool    `json:"applied"`
}

// TimeMachine is the forward-looking prediction bundle: speculative
// future-defect metrics derived from the PR shape and its risk score.
// Immutable once generated.
//
// # Fields
//
//   - BugLikelihood: Probability-like value, capped at 0.45.
//   - MaintainabilityImpact: Signed integer; negative values are harmful.
//   - PerformanceRegression: Probability-like value, capped at 0.20.
//   - PredictedIssues: At most 4 short forward-looking statements.
type TimeMachine struct {
	BugLikelihood         float64  `json:"bug_likelihood"`
	MaintainabilityImpact int      `json:"maintainability_impact"`
	PerformanceRegression float64  `json:"performance_regression"`
	PredictedIssues       []string `json:"predicted_issues"`
}

// Analysis is the aggregate result of running the pipeline over one pull
// request snapshot. It is created once by the analyzer; after creation the
// only mutations are RiskScore, RiskLevel, and AutoFix.Applied, all of which
// happen through the store's fix-application workflow.
//
// # Lifetime
//
// Held in the analysis store for the process lifetime unless a TTL policy
// is enabled on the store.
type Analysis struct {
	PRID                string      `json:"pr_id"`
	Title               string      `json:"title"`
	Repository          string      `json:"repository,omitempty"`
	RiskScore           float64     `json:"risk_score"`
	RiskLevel           RiskLevel   `json:"risk_level"`
	TimeMachine         TimeMachine `json:"time_machine"`
	Issues              []Issue     `json:"issues"`
	AutoFixes           []AutoFix   `json:"auto_fixes"`
	AnalysisTime        float64     `json:"analysis_time"`
	GithubAuthenticated bool        `json:"github_authenticated"`
	CreatedAt           time.Time   `json:"created_at"`
}

// ContextBag flattens the analysis into a plain key-value bag for the chat
// collaborator. The chat service consumes an analysis as free-form context,
// not as a typed dependency, so only scalar summaries are exposed.
func (a *Analysis) ContextBag() map[string]any {
	return map[string]any{
		"pr_id":          a.PRID,
		"title":          a.Title,
		"repository":     a.Repository,
		"risk_score":     a.RiskScore,
		"risk_level":     string(a.RiskLevel),
		"issues":         len(a.Issues),
		"auto_fixes":     len(a.AutoFixes),
		"bug_likelihood": a.TimeMachine.BugLikelihood,
	}
}

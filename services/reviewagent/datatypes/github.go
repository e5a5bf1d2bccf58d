// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// This file contains request types for the GitHub analysis endpoints.
package datatypes

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// githubValidate is the validator instance for GitHub request types.
// Initialized in init() with custom validators.
var githubValidate *validator.Validate

func init() {
	githubValidate = validator.New()
	_ = githubValidate.RegisterValidation("ownerrepo", validateOwnerRepo)
}

// validateOwnerRepo checks that a repository identifier has the
// "owner/repo" shape: exactly one slash with non-empty halves.
func validateOwnerRepo(fl validator.FieldLevel) bool {
	owner, repo, ok := strings.Cut(fl.Field().String(), "/")
	return ok && owner != "" && repo != "" && !strings.Contains(repo, "/")
}

// AnalyzePRRequest is the body of POST /api/github/analyze-pr.
//
// # Fields
//
//   - Repository: Required. "owner/repo" identifier.
//   - PRNumber: Required. Pull request number, > 0.
//   - Title: Optional. Display title override; the fetched PR title wins
//     when present.
//   - GithubToken: Optional. Per-request token. When set, it takes
//     precedence over the server's configured token and the resulting
//     analysis is marked as authenticated.
//
// # Validation
//
// Uses go-playground/validator:
//   - Repository: required, "owner/repo" shape (custom ownerrepo validator)
//   - PRNumber: required, > 0
type AnalyzePRRequest struct {
	Repository  string `json:"repository" validate:"required,ownerrepo"`
	PRNumber    int    `json:"pr_number" validate:"required,gt=0"`
	Title       string `json:"title,omitempty"`
	GithubToken string `json:"github_token,omitempty"`
}

// Validate validates the AnalyzePRRequest fields.
func (r *AnalyzePRRequest) Validate() error {
	return githubValidate.Struct(r)
}

// AnalysisID returns the store key for this request:
// "{owner/repo}-{number}", e.g. "octo/widgets-42".
func (r *AnalyzePRRequest) AnalysisID() string {
	return r.Repository + "-" + strconv.Itoa(r.PRNumber)
}

// ValidateTokenRequest is the body of POST /api/github/validate-token.
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// ValidateTokenResponse reports whether a GitHub token is usable and, when
// it is, the login and rate-limit headroom it grants.
type ValidateTokenResponse struct {
	Valid     bool   `json:"valid"`
	User      string `json:"user,omitempty"`
	RateLimit string `json:"rate_limit,omitempty"`
	Scopes    string `json:"scopes,omitempty"`
	Error     string `json:"error,omitempty"`
}

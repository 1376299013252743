// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Galion Labs

// Package app contains shared application-layer constants used across the
// Nexus server handlers and middleware.
//
// All Msg* constants are human-readable message strings that are written into
// HTTP response bodies or log entries to describe the outcome of an operation.
// Keeping them in one place ensures consistent wording throughout the API.
package app

const (
	// MsgInvalidRequestBody is returned when the request body cannot be
	// decoded as JSON.
	MsgInvalidRequestBody = "invalid request body"

	// MsgInvalidDataProvided is returned when a decoded request fails basic
	// validation (e.g. missing required fields).
	MsgInvalidDataProvided = "invalid data provided"

	// MsgInternalServerError is returned when an unexpected server-side
	// failure occurs that the client cannot resolve.
	MsgInternalServerError = "internal server error"

	// MsgInvalidCredentials is returned when the supplied email/password
	// combination does not match any account. The wording never reveals
	// whether the email exists.
	MsgInvalidCredentials = "invalid email or password"

	// MsgTokenIsExpiredOrInvalid is returned when a JWT bearer token is
	// either expired or cannot be verified (e.g. wrong signature).
	MsgTokenIsExpiredOrInvalid = "token is expired or invalid"

	// MsgNoUserIDProvided is returned when a handler requires a user ID
	// (extracted from the JWT claim) but none is present in the request
	// context.
	MsgNoUserIDProvided = "no user ID provided"

	// MsgAdminRequired is returned when a non-admin account calls a plan
	// management endpoint.
	MsgAdminRequired = "admin role required"

	// MsgTooManyRequests is returned when a rate limit trips.
	MsgTooManyRequests = "too many requests"

	// MsgResetCodeIssued is returned by the password-reset request endpoint
	// regardless of whether the email matched an account.
	MsgResetCodeIssued = "if the email matches an account, a reset code has been sent"
)

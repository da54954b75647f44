// Package errors provides structured error handling with i18n support.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Authorization errors
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeMissingPermissions Code = "MISSING_PERMISSIONS"

	// Concurrency errors
	CodePreconditionFailed Code = "PRECONDITION_FAILED"
	CodeInvalidState       Code = "INVALID_STATE"

	// Storage and dispatch errors
	CodeNotFound            Code = "NOT_FOUND"
	CodeDatabaseUnavailable Code = "DATABASE_UNAVAILABLE"
	CodeDatabaseError       Code = "DATABASE_ERROR"
	CodeDispatchUnavailable Code = "DISPATCH_UNAVAILABLE"

	// Submission errors
	CodeBannedFromSubmissions Code = "BANNED_FROM_SUBMISSIONS"
	CodePlayerBanned          Code = "PLAYER_BANNED"
	CodeSubmitLegacy          Code = "SUBMIT_LEGACY"
	CodeNon100Extended        Code = "NON_100_EXTENDED"
	CodeInvalidProgress       Code = "INVALID_PROGRESS"
	CodeSubmissionExists      Code = "SUBMISSION_EXISTS"

	// Account errors
	CodeInvalidUsername Code = "INVALID_USERNAME"
	CodeInvalidPassword Code = "INVALID_PASSWORD"
	CodeNameTaken       Code = "NAME_TAKEN"

	// Patch validation errors
	CodeInvalidName        Code = "INVALID_NAME"
	CodeInvalidPosition    Code = "INVALID_POSITION"
	CodeInvalidRequirement Code = "INVALID_REQUIREMENT"
	CodeInvalidVideo       Code = "INVALID_VIDEO"
	CodeInvalidStatus      Code = "INVALID_STATUS"

	// Pagination errors
	CodeInvalidFilter Code = "INVALID_FILTER"
	CodeInvalidLimit  Code = "INVALID_LIMIT"
)

// GRPCCode maps the domain error code to a gRPC status code.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeInvalidProgress,
		CodeInvalidUsername,
		CodeInvalidPassword,
		CodeInvalidName,
		CodeInvalidPosition,
		CodeInvalidRequirement,
		CodeInvalidVideo,
		CodeInvalidStatus,
		CodeInvalidFilter,
		CodeInvalidLimit:
		return codes.InvalidArgument

	// Unauthenticated - missing or bad credentials
	case CodeUnauthorized:
		return codes.Unauthenticated

	// PermissionDenied - authenticated but not allowed
	case CodeMissingPermissions,
		CodeBannedFromSubmissions,
		CodePlayerBanned:
		return codes.PermissionDenied

	// FailedPrecondition - state disallows the operation
	case CodePreconditionFailed,
		CodeSubmitLegacy,
		CodeNon100Extended:
		return codes.FailedPrecondition

	// NotFound - missing entities
	case CodeNotFound:
		return codes.NotFound

	// AlreadyExists - uniqueness conflicts
	case CodeSubmissionExists,
		CodeNameTaken:
		return codes.AlreadyExists

	// Unavailable - transient resource exhaustion
	case CodeDatabaseUnavailable,
		CodeDispatchUnavailable:
		return codes.Unavailable

	// Internal - contract violations and wrapped storage failures
	default:
		return codes.Internal
	}
}

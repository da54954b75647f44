package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeUnknown               = "UNKNOWN"
	CodeUnauthorized          = "UNAUTHORIZED"
	CodeMissingPermissions    = "MISSING_PERMISSIONS"
	CodePreconditionFailed    = "PRECONDITION_FAILED"
	CodeInvalidState          = "INVALID_STATE"
	CodeNotFound              = "NOT_FOUND"
	CodeDatabaseUnavailable   = "DATABASE_UNAVAILABLE"
	CodeDatabaseError         = "DATABASE_ERROR"
	CodeDispatchUnavailable   = "DISPATCH_UNAVAILABLE"
	CodeBannedFromSubmissions = "BANNED_FROM_SUBMISSIONS"
	CodePlayerBanned          = "PLAYER_BANNED"
	CodeSubmitLegacy          = "SUBMIT_LEGACY"
	CodeNon100Extended        = "NON_100_EXTENDED"
	CodeInvalidProgress       = "INVALID_PROGRESS"
	CodeSubmissionExists      = "SUBMISSION_EXISTS"
	CodeInvalidUsername       = "INVALID_USERNAME"
	CodeInvalidPassword       = "INVALID_PASSWORD"
	CodeNameTaken             = "NAME_TAKEN"
	CodeInvalidName           = "INVALID_NAME"
	CodeInvalidPosition       = "INVALID_POSITION"
	CodeInvalidRequirement    = "INVALID_REQUIREMENT"
	CodeInvalidVideo          = "INVALID_VIDEO"
	CodeInvalidStatus         = "INVALID_STATUS"
	CodeInvalidFilter         = "INVALID_FILTER"
	CodeInvalidLimit          = "INVALID_LIMIT"
)

var enUSCatalog = &Catalog{
	locale: "en-US",
	messages: map[Code]string{
		CodeUnknown: "An unexpected error occurred",

		// Authorization errors
		CodeUnauthorized:       "This operation requires authentication",
		CodeMissingPermissions: "You do not have the permissions required for this operation",

		// Concurrency errors
		CodePreconditionFailed: "The resource was modified since you last retrieved it",
		CodeInvalidState:       "The request did not carry the state token this operation requires",

		// Storage and dispatch errors
		CodeNotFound:            "The requested resource does not exist",
		CodeDatabaseUnavailable: "No database connection is available, try again later",
		CodeDatabaseError:       "A database error occurred",
		CodeDispatchUnavailable: "The service is shutting down",

		// Submission errors
		CodeBannedFromSubmissions: "You are banned from submitting records",
		CodePlayerBanned:          "Records cannot be submitted for banned players",
		CodeSubmitLegacy:          "Records cannot be submitted for demons on the legacy list",
		CodeNon100Extended:        "Only 100% records can be submitted for demons on the extended list",
		CodeInvalidProgress:       "Record progress must lie between {{.Requirement}}% and 100%",
		CodeSubmissionExists:      "An equivalent record (ID {{.RecordID}}, status {{.Status}}) already exists",

		// Account errors
		CodeInvalidUsername: "Usernames must be at least 3 characters long and must not start or end with spaces",
		CodeInvalidPassword: "Passwords must be at least 10 characters long",
		CodeNameTaken:       "This username is already taken",

		// Patch validation errors
		CodeInvalidName:        "Names cannot be empty or start or end with spaces",
		CodeInvalidPosition:    "Demon position must lie between 1 and {{.Maximal}}",
		CodeInvalidRequirement: "Demon requirement must lie between 0% and 100%",
		CodeInvalidVideo:       "The video link must point at a supported host",
		CodeInvalidStatus:      "Unknown record status {{.Status}}",

		// Pagination errors
		CodeInvalidFilter: "The provided filter expression is invalid",
		CodeInvalidLimit:  "Limit must lie between 1 and {{.Maximal}}",
	},
}

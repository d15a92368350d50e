package constants

// ============================================================================
// AUTHENTICATION & SUBSCRIPTION
// ============================================================================

const (
	ErrPleaseLogin    = "Please login to continue."
	ErrNoSubscription = "An active subscription is required for this feature"
)

// ============================================================================
// REQUEST ERRORS
// ============================================================================

const (
	ErrInvalidJSON      = "Invalid JSON"
	ErrMissingFile      = "A file upload is required in form field 'file'"
	ErrUploadTooLarge   = "Upload exceeds the maximum allowed size"
	ErrChecksumMismatch = "Uploaded file does not match the announced checksum"
	ErrSchemaValidation = "Upload failed schema validation"
	ErrUnknownDataset   = "Unknown export dataset"
	ErrNoCeilings       = "No price ceilings stored; upload a price list first"
	ErrInternal         = "Internal server error"
)

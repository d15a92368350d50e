package constants

// Content Types
const (
	ContentTypeJSON      = "application/json"
	ContentTypeText      = "Content-Type"
	ContentTypeMultipart = "multipart/form-data"
)

// Response keys
const (
	ValueSuccess = "success"
	ValueError   = "error"
	ValueData    = "data"
)

// Form fields and query parameters
const (
	FormFile           = "file"
	FormSchema         = "schema"
	FormGroupBy        = "group_by"
	FormClaimBasis     = "claim_basis"
	FormRollUpQuarters = "roll_up_quarters"
	FormDataset        = "dataset"
	FormFormat         = "format"
	FormSave           = "save"
)

// HeaderContentSHA256 carries the client's digest of the uploaded file.
const HeaderContentSHA256 = "X-Content-Sha256"

// Export datasets
const (
	DatasetRows       = "rows"
	DatasetAggregates = "aggregates"
	DatasetWaterfall  = "waterfall"
)

package constants

// Common error messages
const (
	ErrInvalidSession     = "Your session has expired or is invalid. Please login again"
	ErrMissingUserID      = "Missing or invalid user_id in body"
	ErrInvalidJSON        = "invalid json or missing fields"
	ErrInvalidRequestBody = "Invalid request body"
	ErrMethodNotAllowed   = "Method Not Allowed"
	ErrDB                 = "DB error"
	ErrInternalServer     = "Internal server error. Please contact support"
)

// Roster and fetch errors
const (
	ErrRosterUnavailable = "Client roster could not be loaded. Please retry"
	ErrClientNotFound    = "Client not found in the system"
	ErrPaymentNotFound   = "Payment not found in the system"
	ErrVATNotConfigured  = "VAT percentage is not configured; tax-inclusive figures are unavailable"
)

// File upload errors
const (
	ErrFileUploadFailed  = "File upload failed. Please check the file format and try again"
	ErrInvalidFileFormat = "Invalid file format. Please upload a .xls or .xlsx file"
	ErrEmptyFile         = "Uploaded file is empty"
	ErrDuplicateUpload   = "This file was already uploaded as %s"
	ErrInvalidDataRow    = "Invalid data found in row %d: %s"
)

// Export errors
const (
	ErrExportFailed = "Export failed. The on-screen data is unaffected; please retry"
)

// Success messages
const (
	SuccessUploaded = "File uploaded successfully. %d records processed"
)

// Content types
const (
	ContentTypeJSON = "application/json"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	HeaderContent   = "Content-Type"
)

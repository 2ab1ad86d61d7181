package apperror

// ErrorCode is the system-level error category. Every AppError carries
// exactly one of these; the REST layer maps them to transport status codes.
type ErrorCode string

const (
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeForbidden        ErrorCode = "FORBIDDEN"
	CodeUnauthorized     ErrorCode = "UNAUTHORIZED"
	CodeConflict         ErrorCode = "CONFLICT"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeInternalError    ErrorCode = "INTERNAL_ERROR"
)

// BusinessCode identifies the specific business reason behind an error.
type BusinessCode string

const (
	BusinessCodeGeneral BusinessCode = "GENERAL"

	// Not found
	BusinessCodeUserNotFound        BusinessCode = "USER_NOT_FOUND"
	BusinessCodePharmacyNotFound    BusinessCode = "PHARMACY_NOT_FOUND"
	BusinessCodeMedicineNotFound    BusinessCode = "MEDICINE_NOT_FOUND"
	BusinessCodeReservationNotFound BusinessCode = "RESERVATION_NOT_FOUND"

	// Forbidden
	BusinessCodePermissionDenied BusinessCode = "PERMISSION_DENIED"

	// Conflict
	BusinessCodeMedicineUnavailable  BusinessCode = "MEDICINE_UNAVAILABLE"
	BusinessCodeDuplicateReservation BusinessCode = "DUPLICATE_PENDING_RESERVATION"
	BusinessCodePharmacyExists       BusinessCode = "PHARMACY_ALREADY_EXISTS"
	BusinessCodeDuplicateLicense     BusinessCode = "DUPLICATE_LICENSE"
	BusinessCodeUserExists           BusinessCode = "USER_ALREADY_EXISTS"

	// Validation
	BusinessCodeInvalidFormat BusinessCode = "INVALID_FORMAT"
	BusinessCodeInvalidStatus BusinessCode = "INVALID_STATUS"
	BusinessCodeInvalidRole   BusinessCode = "INVALID_ROLE"
)

package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is a parsed error: a stable code plus a user-facing message
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError translates low-level database errors into user-facing codes.
// Sensitive details are hidden, but the user still learns what to fix.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "something went wrong",
		}
	}

	errStr := err.Error()
	errStrLower := strings.ToLower(errStr)

	// 1. GORM sentinel errors
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: getNotFoundMessage(context),
		}
	}

	// 2. PostgreSQL constraint violations

	// 2-1. Unique constraint violation (23505)
	if strings.Contains(errStrLower, "duplicate key") || strings.Contains(errStrLower, "unique constraint") {
		return parseDuplicateKeyError(errStr)
	}

	// 2-2. Foreign key constraint violation (23503)
	if strings.Contains(errStrLower, "foreign key constraint") {
		return parseForeignKeyError(errStr, context)
	}

	// 2-3. Not null constraint violation (23502)
	if strings.Contains(errStrLower, "null value") && strings.Contains(errStrLower, "violates not-null constraint") {
		return ErrorInfo{
			Code:    ValidationRequired,
			Message: "a required field is missing",
		}
	}

	// 2-4. Check constraint violation (23514)
	if strings.Contains(errStrLower, "check constraint") {
		return parseCheckConstraintError(errStr)
	}

	// 3. Network/connection errors
	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalDatabaseError,
			Message: "a backing service is unavailable, please try again later",
		}
	}

	// 4. Default internal error
	return ErrorInfo{
		Code:    InternalServerError,
		Message: getDefaultErrorMessage(context),
	}
}

func parseDuplicateKeyError(errStr string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	// one review per user per establishment
	if strings.Contains(errLower, "idx_reviews_user_establishment") ||
		(strings.Contains(errLower, "reviews") && strings.Contains(errLower, "user_id")) {
		return ErrorInfo{
			Code:    ReviewAlreadyExists,
			Message: "you have already reviewed this establishment",
		}
	}

	if strings.Contains(errLower, "place_id") || strings.Contains(errLower, "idx_establishments_place_id") {
		return ErrorInfo{
			Code:    EstablishmentPlaceExists,
			Message: "this establishment has already been imported",
		}
	}

	if strings.Contains(errLower, "email") || strings.Contains(errLower, "idx_users_email") {
		return ErrorInfo{
			Code:    AuthEmailAlreadyExists,
			Message: "this email address is already in use",
		}
	}

	if strings.Contains(errLower, "pkey") || strings.Contains(errLower, "primary key") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "this record already exists, please try again",
		}
	}

	return ErrorInfo{
		Code:    ResourceAlreadyExists,
		Message: "this record already exists",
	}
}

func parseForeignKeyError(errStr string, context string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	if strings.Contains(errLower, "still referenced") || strings.Contains(errLower, "is still referenced by") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "other records depend on this one, it cannot be deleted",
		}
	}

	if strings.Contains(errLower, "user_id") || strings.Contains(errLower, "fk_users") {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: "the referenced user does not exist",
		}
	}
	if strings.Contains(errLower, "establishment_id") || strings.Contains(errLower, "fk_establishments") {
		return ErrorInfo{
			Code:    EstablishmentNotFound,
			Message: "the referenced establishment does not exist",
		}
	}
	if strings.Contains(errLower, "allergen_id") || strings.Contains(errLower, "fk_allergens") {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: "the referenced allergen does not exist",
		}
	}

	return ErrorInfo{
		Code:    ResourceNotFound,
		Message: "a referenced record does not exist",
	}
}

func parseCheckConstraintError(errStr string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	if strings.Contains(errLower, "rating") {
		return ErrorInfo{
			Code:    ReviewInvalidRating,
			Message: "rating must be between 1 and 5",
		}
	}
	if strings.Contains(errLower, "score") {
		return ErrorInfo{
			Code:    ReviewInvalidScore,
			Message: "allergen scores must be between 1 and 5",
		}
	}
	if strings.Contains(errLower, "latitude") || strings.Contains(errLower, "longitude") {
		return ErrorInfo{
			Code:    ValidationInvalidRange,
			Message: "latitude/longitude is out of range",
		}
	}

	return ErrorInfo{
		Code:    ValidationInvalidInput,
		Message: "invalid input",
	}
}

func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	if strings.Contains(contextLower, "establishment") {
		return "establishment not found"
	}
	if strings.Contains(contextLower, "chain") {
		return "chain not found"
	}
	if strings.Contains(contextLower, "user") {
		return "user not found"
	}
	if strings.Contains(contextLower, "review") {
		return "review not found"
	}
	if strings.Contains(contextLower, "allergen") {
		return "allergen not found"
	}
	if strings.Contains(contextLower, "question") {
		return "question not found"
	}

	return "the requested record was not found"
}

func getDefaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)

	if strings.Contains(contextLower, "create") {
		return "creation failed, please try again later"
	}
	if strings.Contains(contextLower, "update") {
		return "update failed, please try again later"
	}
	if strings.Contains(contextLower, "delete") {
		return "deletion failed, please try again later"
	}

	return "something went wrong, please try again later"
}

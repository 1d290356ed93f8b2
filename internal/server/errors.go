package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/sentrakoop/sentra/internal/auth/domain"
	"github.com/sentrakoop/sentra/internal/authorization"
	catalogdomain "github.com/sentrakoop/sentra/internal/catalog/domain"
	koperasidomain "github.com/sentrakoop/sentra/internal/koperasi/domain"
	marginruledomain "github.com/sentrakoop/sentra/internal/marginrule/domain"
	membershipdomain "github.com/sentrakoop/sentra/internal/membership/domain"
	productdomain "github.com/sentrakoop/sentra/internal/product/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrTooManyApplies = errors.New("too_many_applies")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if hErr := asHierarchyViolation(err); hErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "hierarchy_violation",
			Message: hErr.Error(),
			Errors: []ValidationError{
				{
					Field:   "value",
					Code:    "hierarchy_violation",
					Message: fmt.Sprintf("%s may not undercut %s", hErr.Tier, hErr.UpperTier),
				},
			},
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case isUnauthorizedError(err):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case isForbiddenError(err):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: conflictMessage(err),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrTooManyApplies):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many applications, try again later",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func asHierarchyViolation(err error) *marginruledomain.HierarchyViolationError {
	var hErr *marginruledomain.HierarchyViolationError
	if errors.As(err, &hErr) && hErr != nil {
		return hErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isKoperasiValidationError(err),
		isProductValidationError(err),
		isMarginRuleValidationError(err),
		isMembershipValidationError(err):
		return true
	default:
		return false
	}
}

func isUnauthorizedError(err error) bool {
	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidSession),
		errors.Is(err, authdomain.ErrSessionExpired),
		errors.Is(err, authdomain.ErrSessionRevoked),
		errors.Is(err, authdomain.ErrUserNotFound),
		errors.Is(err, authdomain.ErrUserInactive),
		errors.Is(err, koperasidomain.ErrUnauthorized),
		errors.Is(err, membershipdomain.ErrUnauthorized):
		return true
	default:
		return false
	}
}

func isForbiddenError(err error) bool {
	switch {
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden),
		errors.Is(err, koperasidomain.ErrForbidden),
		errors.Is(err, productdomain.ErrForbidden),
		errors.Is(err, marginruledomain.ErrForbidden),
		errors.Is(err, membershipdomain.ErrForbidden),
		errors.Is(err, catalogdomain.ErrForbidden):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, membershipdomain.ErrDuplicateApplication),
		errors.Is(err, membershipdomain.ErrInvalidTransition),
		errors.Is(err, koperasidomain.ErrSlugConflict),
		errors.Is(err, productdomain.ErrDuplicateCode):
		return true
	default:
		return false
	}
}

func conflictMessage(err error) string {
	switch {
	case errors.Is(err, membershipdomain.ErrDuplicateApplication):
		return "a pending application already exists"
	case errors.Is(err, membershipdomain.ErrInvalidTransition):
		return "application already decided"
	case errors.Is(err, koperasidomain.ErrSlugConflict):
		return "koperasi name already taken"
	case errors.Is(err, productdomain.ErrDuplicateCode):
		return "product code already exists"
	default:
		return "conflict"
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, koperasidomain.ErrNotFound),
		errors.Is(err, productdomain.ErrNotFound),
		errors.Is(err, marginruledomain.ErrNotFound),
		errors.Is(err, membershipdomain.ErrNotFound),
		errors.Is(err, catalogdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isKoperasiValidationError(err error) bool {
	switch err {
	case koperasidomain.ErrInvalidName,
		koperasidomain.ErrInvalidID:
		return true
	default:
		return false
	}
}

func isProductValidationError(err error) bool {
	switch err {
	case productdomain.ErrInvalidKoperasi,
		productdomain.ErrInvalidCode,
		productdomain.ErrInvalidName,
		productdomain.ErrInvalidBasePrice,
		productdomain.ErrInvalidStock,
		productdomain.ErrInvalidID:
		return true
	default:
		return false
	}
}

func isMarginRuleValidationError(err error) bool {
	switch err {
	case marginruledomain.ErrInvalidKoperasi,
		marginruledomain.ErrInvalidTier,
		marginruledomain.ErrInvalidType,
		marginruledomain.ErrInvalidValue,
		marginruledomain.ErrInvalidEffectiveFrom,
		marginruledomain.ErrInvalidID:
		return true
	default:
		return false
	}
}

func isMembershipValidationError(err error) bool {
	switch err {
	case membershipdomain.ErrInvalidKoperasi,
		membershipdomain.ErrInvalidKind,
		membershipdomain.ErrInvalidDecision,
		membershipdomain.ErrInvalidID,
		catalogdomain.ErrInvalidKoperasi:
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return err.Error()
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}

// classifyErrorForLog feeds the request logger a stable (type, code)
// pair without leaking internals into log cardinality.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	switch {
	case status >= http.StatusInternalServerError:
		return "internal_error", payload.Type
	case status == http.StatusBadRequest:
		code := payload.Type
		if len(payload.Errors) > 0 {
			code = payload.Errors[0].Code
		}
		return "validation_error", code
	default:
		return payload.Type, payload.Type
	}
}

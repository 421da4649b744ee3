package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/personal-ledger/internal/api_gateway/middleware"
	"github.com/personal-ledger/internal/domain/ledger"
	"github.com/personal-ledger/internal/domain/shared"
)

// codeTransactionNotFound is only produced by the archive read model
const codeTransactionNotFound shared.FailureReason = "TRANSACTION_NOT_FOUND"

// Response represents a standard API response
type Response struct {
	Data          interface{} `json:"data,omitempty"`
	Error         *ErrorInfo  `json:"error,omitempty"`
	CorrelationID string      `json:"correlation_id,omitempty"`
	Meta          *MetaInfo   `json:"meta,omitempty"`
}

// ErrorInfo represents error information in a response.
// Code is one of the ledger failure reasons.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MetaInfo represents pagination metadata in a response
type MetaInfo struct {
	Page       int   `json:"page,omitempty"`
	PerPage    int   `json:"per_page,omitempty"`
	TotalPages int   `json:"total_pages,omitempty"`
	TotalItems int64 `json:"total_items,omitempty"`
}

// NewPaginatedResponse creates a new paginated response
func NewPaginatedResponse(data interface{}, page, perPage int, totalItems int64) *Response {
	totalPages := int(totalItems / int64(perPage))
	if totalItems%int64(perPage) > 0 {
		totalPages++
	}

	return &Response{
		Data: data,
		Meta: &MetaInfo{
			Page:       page,
			PerPage:    perPage,
			TotalPages: totalPages,
			TotalItems: totalItems,
		},
	}
}

// RespondWithData sends a JSON response with data
func RespondWithData(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, &Response{Data: data, CorrelationID: middleware.GetCorrelationID(c)})
}

// RespondWithError sends a JSON response with an error
func RespondWithError(c *gin.Context, statusCode int, code shared.FailureReason, message string) {
	c.JSON(statusCode, &Response{
		Error:         &ErrorInfo{Code: string(code), Message: message},
		CorrelationID: middleware.GetCorrelationID(c),
	})
}

// RespondWithPaginatedData sends a JSON response with paginated data
func RespondWithPaginatedData(c *gin.Context, data interface{}, page, perPage int, totalItems int64) {
	response := NewPaginatedResponse(data, page, perPage, totalItems)
	response.CorrelationID = middleware.GetCorrelationID(c)
	c.JSON(http.StatusOK, response)
}

// RespondOK sends a 200 OK response with data
func RespondOK(c *gin.Context, data interface{}) {
	RespondWithData(c, http.StatusOK, data)
}

// RespondCreated sends a 201 Created response with data
func RespondCreated(c *gin.Context, data interface{}) {
	RespondWithData(c, http.StatusCreated, data)
}

// RespondAccepted sends a 202 Accepted response with data
func RespondAccepted(c *gin.Context, data interface{}) {
	RespondWithData(c, http.StatusAccepted, data)
}

// RespondBadRequest sends a 400 INVALID_INPUT response
func RespondBadRequest(c *gin.Context, message string) {
	RespondWithError(c, http.StatusBadRequest, shared.FailureReasonInvalidInput, message)
}

// RespondError maps a ledger error onto its HTTP status and failure code.
// Internal details are never returned to the client.
func RespondError(c *gin.Context, err error) {
	_ = c.Error(err)

	if errors.Is(err, ledger.ErrArchivedTransactionNotFound{}) {
		RespondWithError(c, http.StatusNotFound, codeTransactionNotFound, err.Error())
		return
	}

	reason := shared.ReasonOf(err)
	status := StatusFor(reason)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "An internal error occurred"
	}
	RespondWithError(c, status, reason, message)
}

// StatusFor returns the HTTP status of a failure reason
func StatusFor(reason shared.FailureReason) int {
	switch reason {
	case shared.FailureReasonAccountNotFound:
		return http.StatusNotFound
	case shared.FailureReasonInvalidAmount, shared.FailureReasonInvalidInput:
		return http.StatusBadRequest
	case shared.FailureReasonAccountInactive,
		shared.FailureReasonAccountFrozen,
		shared.FailureReasonInsufficientFunds,
		shared.FailureReasonDailyLimitExceeded,
		shared.FailureReasonSelfTransfer,
		shared.FailureReasonInvalidInitialDeposit,
		shared.FailureReasonNonZeroBalance:
		return http.StatusUnprocessableEntity
	case shared.FailureReasonDuplicateRequest, shared.FailureReasonStorageConflict:
		return http.StatusConflict
	case shared.FailureReasonStorageTimeout:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondBindError reports a malformed body or query. Amount parse errors keep their own code.
func respondBindError(c *gin.Context, err error) {
	_ = c.Error(err)
	if shared.ReasonOf(err) == shared.FailureReasonInvalidAmount {
		RespondWithError(c, http.StatusBadRequest, shared.FailureReasonInvalidAmount, err.Error())
		return
	}
	RespondBadRequest(c, "Invalid request: "+err.Error())
}

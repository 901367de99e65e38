package errors

import (
	"net/http"
	"os"
	"strings"

	"codeberg.org/parley/server/internal/logger"
	"github.com/gin-gonic/gin"
)

// Error Handling Guidelines:
//
// For HTTP REST handlers:
//   - Use errors.InternalError(), errors.BadRequest(), etc. for critical errors
//     These functions handle both logging and HTTP response automatically
//   - Use logger.ErrorErr() only for non-critical errors where processing continues
//   - Never call both logger.ErrorErr() and errors.InternalError() for the same error
//
// For WebSocket handlers:
//   - Use logger.ErrorErr() + client.SendError() + return err
//
// For the chat engine and other internal packages:
//   - Return sentinel errors (chat.ErrNotFound, chat.ErrChatClosed, ...) or
//     wrapped errors with context using fmt.Errorf("context: %w", err)
//   - Let the caller (handler) decide how to log and respond

// represents a standardized error response
type ErrorResponse struct {
	Error   string `json:"error"`             // error code (e.g., "chat_not_found", "visitor_blocked")
	Message string `json:"message"`           // user-friendly message
	Details string `json:"details,omitempty"` // optional details (sanitized in production)
}

// standard error codes
const (
	CodeNotFound        = "not_found"
	CodeValidationError = "validation_error"
	CodeServerError     = "server_error"
	CodeBadRequest      = "bad_request"
	CodeTooManyRequests = "too_many_requests"
	CodeChatNotFound    = "chat_not_found"
	CodeChatClosed      = "chat_closed"
	CodeVisitorBlocked  = "visitor_blocked"
	CodeAlreadyAccepted = "already_accepted"
	CodeNotEntitled     = "not_entitled"
	CodeInvalidLicense  = "invalid_license"
)

// returns a 404 not found error
func NotFound(c *gin.Context, resource string) {
	message := "resource not found"

	if resource != "" {
		message = resource + " not found"
	}

	c.JSON(http.StatusNotFound, ErrorResponse{
		Error:   CodeNotFound,
		Message: message,
	})
}

// returns a 400 bad request error
func BadRequest(c *gin.Context, message string, err error) {
	if message == "" {
		message = "invalid request"
	}

	response := ErrorResponse{
		Error:   CodeBadRequest,
		Message: message,
	}

	if err != nil {
		response.Details = sanitizeError(err)
	}

	c.JSON(http.StatusBadRequest, response)
}

// returns a 400 bad request error for validation failures
func ValidationError(c *gin.Context, err error) {
	details := ""

	if err != nil {
		details = sanitizeError(err)
	}

	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   CodeValidationError,
		Message: "request validation failed",
		Details: details,
	})
}

// returns a 500 internal server error
func InternalError(c *gin.Context, message string, err error) {
	if message == "" {
		message = "an error occurred"
	}

	// log full error server-side with context
	logger.ErrorErr(err, message,
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)

	// return sanitized error to client
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   CodeServerError,
		Message: message,
		Details: sanitizeError(err),
	})
}

// returns a 429 too many requests error
func TooManyRequests(c *gin.Context, message string) {
	if message == "" {
		message = "too many requests"
	}

	c.JSON(http.StatusTooManyRequests, ErrorResponse{
		Error:   CodeTooManyRequests,
		Message: message,
	})
}

// returns a 404 error for chat not found
func ChatNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, ErrorResponse{
		Error:   CodeChatNotFound,
		Message: "chat not found",
	})
}

// returns a 409 error for operations refused on a closed chat
func ChatClosed(c *gin.Context) {
	c.JSON(http.StatusConflict, ErrorResponse{
		Error:   CodeChatClosed,
		Message: "chat is closed",
	})
}

// returns a 409 error when a chat already has an agent
func AlreadyAccepted(c *gin.Context) {
	c.JSON(http.StatusConflict, ErrorResponse{
		Error:   CodeAlreadyAccepted,
		Message: "chat has already been accepted",
	})
}

// returns a 403 error for blocked visitors
func VisitorBlocked(c *gin.Context) {
	c.JSON(http.StatusForbidden, ErrorResponse{
		Error:   CodeVisitorBlocked,
		Message: "visitor is blocked",
	})
}

// returns a 403 error when the agent lacks a valid license
func NotEntitled(c *gin.Context) {
	c.JSON(http.StatusForbidden, ErrorResponse{
		Error:   CodeNotEntitled,
		Message: "agent is not entitled to accept chats",
	})
}

// returns a 400 error for invalid or expired license keys
func InvalidLicense(c *gin.Context, message string) {
	if message == "" {
		message = "invalid or expired license key"
	}

	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   CodeInvalidLicense,
		Message: message,
	})
}

// sanitizes error messages for production
func sanitizeError(err error) string {
	if err == nil {
		return ""
	}

	errMsg := err.Error()
	env := os.Getenv("ENVIRONMENT")

	if env != "production" {
		return errMsg
	}

	if strings.Contains(errMsg, "connection") || strings.Contains(errMsg, "network") {
		return "connection error occurred"
	}

	if strings.Contains(errMsg, "timeout") {
		return "request timed out"
	}

	if strings.Contains(errMsg, "not found") {
		return "resource not found"
	}

	return "an error occurred"
}

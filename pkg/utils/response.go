package utils

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/frostdev-ops/pbi-monitor-go/pkg/errors"
)

// Response represents a standard API response
type Response struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Details   interface{} `json:"details,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// SendSuccess sends a successful response
func SendSuccess(c *gin.Context, data interface{}) {
	SendSuccessWithStatus(c, http.StatusOK, data)
}

// SendSuccessWithStatus sends a successful response with a specific status
func SendSuccessWithStatus(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, Response{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// SendError sends an error response
func SendError(c *gin.Context, statusCode int, message string) {
	resp := Response{
		Success:   false,
		Error:     message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if statusCode == http.StatusNotFound && c.FullPath() == "" {
		if suggestions := generateNotFoundSuggestions(c.Request.URL.Path); len(suggestions) > 0 {
			resp.Details = map[string]interface{}{
				"suggestions": suggestions,
			}
		}
	}

	c.JSON(statusCode, resp)
}

// SendAppError sends err with the status it carries, 500 for plain errors
func SendAppError(c *gin.Context, err error) {
	statusCode := apperrors.GetStatusCode(err)
	message := err.Error()
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
		if appErr.Details != "" {
			c.JSON(statusCode, Response{
				Success:   false,
				Error:     message,
				Details:   appErr.Details,
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			})
			return
		}
	}
	SendError(c, statusCode, message)
}

var knownEndpoints = []string{
	"/health",
	"/metrics",
	"/ws",
	"/api/v1/dashboard",
	"/api/v1/performance",
	"/api/v1/categorize",
	"/api/v1/workspaces",
	"/api/v1/capacity-metrics",
}

// generateNotFoundSuggestions lists known endpoints sharing a path segment with path
func generateNotFoundSuggestions(path string) []string {
	var suggestions []string
	for _, segment := range strings.Split(strings.ToLower(path), "/") {
		if len(segment) < 3 || segment == "api" || segment == "v1" {
			continue
		}
		for _, endpoint := range knownEndpoints {
			if strings.Contains(endpoint, segment) && !contains(suggestions, endpoint) {
				suggestions = append(suggestions, endpoint)
			}
		}
	}
	if len(suggestions) > 5 {
		suggestions = suggestions[:5]
	}
	return suggestions
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

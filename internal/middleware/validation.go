package middleware

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/kkdai/youtube/v2"
)

// MaxVideoIDLen matches the width of videos.id.
const MaxVideoIDLen = 16

// videoIDRe matches YouTube video IDs: alphanumeric, dash, underscore.
var videoIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ErrorResponse is a helper that returns a standard API error response.
func ErrorResponse(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// ValidateVideoID accepts a bare video id or a watch/share URL and returns
// the id, or an error message for the user.
func ValidateVideoID(input string) (string, string) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", "video id is required"
	}
	id, err := youtube.ExtractVideoID(input)
	if err != nil {
		return "", "invalid video id"
	}
	if len(id) > MaxVideoIDLen {
		return "", "video id must be at most 16 characters"
	}
	if !videoIDRe.MatchString(id) {
		return "", "video id contains invalid characters"
	}
	return id, ""
}

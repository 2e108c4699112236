package utils

import (
	"context"
	"errors"
	"os"
	"strings"
)

// --- Sentinel Errors for Categorization ---
//
// The splitting transform itself never fails; every sentinel here belongs to
// a collaborator around it (file reading, HTML conversion, the section DB,
// configuration). Wrap with %w so errors.Is keeps working.
var (
	ErrInputAcquisition = errors.New("input acquisition failed")           // Unreadable file, bad encoding, unsupported format
	ErrHTMLConversion   = errors.New("failed to convert HTML to markdown") // Wraps html-to-markdown/goquery errors
	ErrFilesystem       = errors.New("filesystem error")                   // Wraps os errors
	ErrDatabase         = errors.New("database error")                     // Wraps badger errors
	ErrConfigValidation = errors.New("configuration validation error")
)

// CategorizeError maps an error to a predefined category string for logging/metrics.
func CategorizeError(err error) string {
	if err == nil {
		return "None"
	}

	switch {
	case errors.Is(err, ErrInputAcquisition):
		if errors.Is(err, os.ErrNotExist) {
			return "Input_NotExist"
		}
		if errors.Is(err, os.ErrPermission) {
			return "Input_Permission"
		}
		if strings.Contains(err.Error(), "UTF-8") {
			return "Input_Encoding"
		}
		if errors.Is(err, ErrHTMLConversion) {
			return "Input_HTMLConversion"
		}
		return "Input_Other"
	case errors.Is(err, ErrHTMLConversion):
		return "Content_HTMLConversion"
	case errors.Is(err, ErrFilesystem):
		if errors.Is(err, os.ErrPermission) {
			return "Filesystem_Permission"
		}
		if errors.Is(err, os.ErrNotExist) {
			return "Filesystem_NotExist"
		}
		return "Filesystem_Other"
	case errors.Is(err, ErrDatabase):
		return "Database_Other"
	case errors.Is(err, ErrConfigValidation):
		return "Config_Validation"
	}

	if errors.Is(err, context.Canceled) {
		return "System_ContextCanceled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "System_ContextDeadlineExceeded"
	}

	return "Unknown"
}

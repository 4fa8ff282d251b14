// Package errors provides structured error handling for pio.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Board registry errors
//   - 2XX: Project configuration errors
//   - 3XX: Platform management errors
//   - 4XX: Validation errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryBoard indicates board registry errors.
	CategoryBoard Category = "BOARD"
	// CategoryConfig indicates project configuration errors.
	CategoryConfig Category = "CONFIG"
	// CategoryPlatform indicates platform management errors.
	CategoryPlatform Category = "PLATFORM"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Error codes organized by category.
const (
	// Board registry errors (100-199)
	ErrCodeUnknownBoard    = "ERR_101_UNKNOWN_BOARD"
	ErrCodeBoardNotDefined = "ERR_102_BOARD_NOT_DEFINED"
	ErrCodeBoardManifest   = "ERR_103_BOARD_MANIFEST"

	// Project configuration errors (200-299)
	ErrCodeConfigParse = "ERR_201_CONFIG_PARSE"
	ErrCodeConfigWrite = "ERR_202_CONFIG_WRITE"
	ErrCodeSectionDup  = "ERR_203_SECTION_DUPLICATE"

	// Platform management errors (300-399)
	ErrCodePlatformInstall = "ERR_301_PLATFORM_INSTALL"
	ErrCodePlatformList    = "ERR_302_PLATFORM_LIST"

	// Validation errors (400-499)
	ErrCodeInvalidInput   = "ERR_401_INVALID_INPUT"
	ErrCodeUnsupportedIDE = "ERR_402_UNSUPPORTED_IDE"

	// Internal errors (500-599)
	ErrCodeInternal = "ERR_501_INTERNAL"
)

// categoryFromCode extracts the category from an error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	switch code[4] {
	case '1':
		return CategoryBoard
	case '2':
		return CategoryConfig
	case '3':
		return CategoryPlatform
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

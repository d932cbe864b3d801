package errors

import (
	"strings"
	"unicode"
)

// ValidateSeed validates a run seed for safety and correctness.
//
// Seeds are opaque strings, so the rules are intentionally loose:
//   - No empty seeds
//   - No control characters or null bytes
//   - Maximum length of 256 characters
//
// Anything that survives these checks is a legal seed; the generator
// hashes it, so there is no structural requirement on the content.
func ValidateSeed(seed string) error {
	if seed == "" {
		return New(ErrCodeInvalidSeed, "seed cannot be empty")
	}

	if len(seed) > 256 {
		return New(ErrCodeInvalidSeed, "seed too long (max 256 characters)")
	}

	for _, r := range seed {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidSeed, "seed contains invalid control characters")
		}
	}

	return nil
}

// ValidatePresetName validates a rules preset name.
// It ensures the name is a simple identifier without path components,
// so preset names can be used directly in file and cache paths.
func ValidatePresetName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPreset, "preset name cannot be empty")
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidPreset, "preset name cannot contain path separators")
	}

	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidPreset, "preset name cannot be a hidden file")
	}

	return nil
}

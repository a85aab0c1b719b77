package notes

import (
	"strings"
	"unicode/utf8"
)

const (
	MaxContentLen = 280
	MinAuthorLen  = 2
	MaxAuthorLen  = 50
)

// ValidateNote checks a candidate note and returns the trimmed content and
// author ready for persistence. It assigns no id or timestamps; that is the
// store's job. Pure function, so it can be tested without a store.
func ValidateNote(content, author string) (string, string, error) {
	content = strings.TrimSpace(content)
	author = strings.TrimSpace(author)

	if content == "" {
		return "", "", &ValidationError{Field: "content", Message: "Content is required"}
	}
	if utf8.RuneCountInString(content) > MaxContentLen {
		return "", "", &ValidationError{Field: "content", Message: "Content cannot exceed 280 characters"}
	}
	if author == "" {
		return "", "", &ValidationError{Field: "author", Message: "Author is required"}
	}
	if utf8.RuneCountInString(author) < MinAuthorLen {
		return "", "", &ValidationError{Field: "author", Message: "Author name must be at least 2 characters"}
	}
	if utf8.RuneCountInString(author) > MaxAuthorLen {
		return "", "", &ValidationError{Field: "author", Message: "Author name cannot exceed 50 characters"}
	}

	return content, author, nil
}

package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// Field length limits enforced before any write.
const (
	AuthorNameMax  = 100
	GenreNameMax   = 50
	MemberNameMax  = 100
	MemberEmailMax = 255
	BookTitleMax   = 200
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateAuthorName checks the required-name rule for authors.
func ValidateAuthorName(name string) error {
	return validateRequiredText("Author name", name, AuthorNameMax)
}

// ValidateGenreName checks the required-name rule for genres.
func ValidateGenreName(name string) error {
	return validateRequiredText("Genre name", name, GenreNameMax)
}

// ValidateMemberName checks the required-name rule for members.
func ValidateMemberName(name string) error {
	return validateRequiredText("Member name", name, MemberNameMax)
}

// ValidateBookTitle checks the required-title rule for books.
func ValidateBookTitle(title string) error {
	return validateRequiredText("Book title", title, BookTitleMax)
}

// ValidateMemberEmail checks the email shape (local@domain.tld) and length.
func ValidateMemberEmail(email string) error {
	if len(email) > MemberEmailMax {
		return NewValidationError(fmt.Sprintf("Email must not exceed %d characters", MemberEmailMax))
	}
	if !emailPattern.MatchString(email) {
		return NewValidationError("Invalid email format")
	}
	return nil
}

// NormalizeISBN strips hyphens and spaces and checks for a 10- or 13-digit
// form. It returns the normalized ISBN.
func NormalizeISBN(isbn string) (string, error) {
	if strings.TrimSpace(isbn) == "" {
		return "", NewValidationError("ISBN is required")
	}
	clean := strings.NewReplacer("-", "", " ", "").Replace(isbn)
	if n := len(clean); n != 10 && n != 13 {
		return "", NewValidationError(fmt.Sprintf("Invalid ISBN length (must be 10 or 13 digits, received %d)", n))
	}
	return clean, nil
}

// ValidateInitialCopies rejects negative initial-copy counts.
func ValidateInitialCopies(n int) error {
	if n < 0 {
		return NewValidationError("Initial copies cannot be negative")
	}
	return nil
}

func validateRequiredText(field, value string, max int) error {
	if strings.TrimSpace(value) == "" {
		return NewValidationError(field + " is required")
	}
	if len(value) > max {
		return NewValidationError(fmt.Sprintf("%s must not exceed %d characters", field, max))
	}
	return nil
}

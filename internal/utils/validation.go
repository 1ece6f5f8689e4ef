package utils

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/asaskevich/govalidator"
	"golang.org/x/net/html"
)

var (
	ErrEmptyEmail = fmt.Errorf("email field is required")
)

func ValidateAmount(amount string) error {
	if amount == "" {
		return fmt.Errorf("amount cannot be empty")
	}

	value, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return fmt.Errorf("the provided amount is not a valid number")
	}

	if value <= 0 {
		return fmt.Errorf("the provided amount must be greater than zero")
	}

	return nil
}

// rxEmail validates e-mail addresses, per https://www.alexedwards.net/blog/validation-snippets-for-go#email-validation.
// It's free to use under the [MIT Licence](https://opensource.org/licenses/MIT).
var rxEmail = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+\\/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")

func ValidateEmail(email string) error {
	if email == "" {
		return ErrEmptyEmail
	}

	if !rxEmail.MatchString(email) {
		return fmt.Errorf("the email address provided is not valid")
	}

	return nil
}

// SanitizeAndValidateEmail lower-cases and trims an email address before validating it.
func SanitizeAndValidateEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return email, ValidateEmail(email)
}

// ValidateStringLength validates that a string is not empty and does not exceed the maximum length.
func ValidateStringLength(field, fieldName string, maxLength int) error {
	if strings.TrimSpace(field) == "" {
		return fmt.Errorf("%s field is required", fieldName)
	}

	if len(field) > maxLength {
		return fmt.Errorf("%s cannot exceed %d characters", fieldName, maxLength)
	}

	return nil
}

// ValidateDNS validates the given string as a DNS name.
func ValidateDNS(domain string) error {
	isDNS := govalidator.IsDNSName(domain)
	if !isDNS {
		return fmt.Errorf("%q is not a valid DNS name", domain)
	}

	return nil
}

// ValidatePathIsNotTraversal validates the given path to ensure it does not contain path traversal.
func ValidatePathIsNotTraversal(p string) error {
	if pathTraversalPattern.MatchString(p) {
		return errors.New("path cannot contain path traversal")
	}

	return nil
}

var pathTraversalPattern = regexp.MustCompile(`(^|[\\/])\.\.([\\/]|$)`)

// ValidateURLScheme checks if a URL is valid and, if schemes are given, if it uses one of them.
func ValidateURLScheme(link string, scheme ...string) error {
	if !govalidator.IsURL(link) {
		return errors.New("invalid URL format")
	}

	parsedURL, err := url.ParseRequestURI(link)
	if err != nil {
		return errors.New("invalid URL format")
	}

	if len(scheme) > 0 {
		if !slices.Contains(scheme, parsedURL.Scheme) {
			return fmt.Errorf("invalid URL scheme is not part of %v", scheme)
		}
	}

	return nil
}

// ValidateNoHTML returns an error if the input contains any of [<, >, &, ', "], encoded or decoded.
func ValidateNoHTML(input string) error {
	if escapedStr := html.EscapeString(input); escapedStr != input {
		return errors.New(`input contains one or more of the following HTML-related charactetes [<, >, &, ', "]`)
	}

	if unescapedStr := html.UnescapeString(input); unescapedStr != input {
		return errors.New("input contains HTML entities")
	}

	return nil
}

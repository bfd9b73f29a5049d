// Package citizen holds the personal data a citizen submits with the ticket.
package citizen

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// MaxNoteRunes bounds the free-text note.
const MaxNoteRunes = 500

var (
	dniPattern  = regexp.MustCompile(`^\d{7,8}$`)
	namePattern = regexp.MustCompile(`^[a-zA-ZáéíóúÁÉÍÓÚüÜñÑ\s]+$`)
)

// Profile is immutable once built and only feeds the prompt.
type Profile struct {
	Nombres              string
	Apellidos            string
	DNI                  string
	FueNotificado        bool
	InformacionAdicional string
}

// FullName joins given and family names.
func (p Profile) FullName() string {
	return strings.TrimSpace(p.Nombres + " " + p.Apellidos)
}

// NormalizeDNI strips thousands separators and blanks: "12.345.678" -> "12345678".
func NormalizeDNI(raw string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', ' ', '\t':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))
}

// ValidDNI reports whether raw is 7 or 8 digits once normalized.
func ValidDNI(raw string) bool {
	return dniPattern.MatchString(NormalizeDNI(raw))
}

// ValidName reports whether s has at least two letters-or-spaces characters.
func ValidName(s string) bool {
	s = strings.TrimSpace(s)
	return utf8.RuneCountInString(s) >= 2 && namePattern.MatchString(s)
}

// RegisterValidators adds the "dni", "personname" and "maxrunes500" tags.
func RegisterValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("dni", func(fl validator.FieldLevel) bool {
		return ValidDNI(fl.Field().String())
	}); err != nil {
		return err
	}
	if err := v.RegisterValidation("personname", func(fl validator.FieldLevel) bool {
		return ValidName(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("maxrunes500", func(fl validator.FieldLevel) bool {
		return utf8.RuneCountInString(fl.Field().String()) <= MaxNoteRunes
	})
}

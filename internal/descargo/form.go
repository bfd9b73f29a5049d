package descargo

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"reclamala-backend/internal/citizen"
)

// Form is the text part of the multipart request. Tags "personname", "dni" and
// "maxrunes500" come from citizen.RegisterValidators.
type Form struct {
	Nombres              string `form:"nombres" binding:"required,personname"`
	Apellidos            string `form:"apellidos" binding:"required,personname"`
	DNI                  string `form:"dni" binding:"required,dni"`
	FueNotificado        string `form:"fueNotificado" binding:"required,oneof=si no"`
	InformacionAdicional string `form:"informacionAdicional" binding:"maxrunes500"`
}

// Profile converts the bound form into the citizen profile fed to the prompt.
func (f Form) Profile() citizen.Profile {
	return citizen.Profile{
		Nombres:              strings.TrimSpace(f.Nombres),
		Apellidos:            strings.TrimSpace(f.Apellidos),
		DNI:                  citizen.NormalizeDNI(f.DNI),
		FueNotificado:        f.FueNotificado == "si",
		InformacionAdicional: strings.TrimSpace(f.InformacionAdicional),
	}
}

var fieldMessages = map[string]struct {
	key     string
	message string
}{
	"Nombres":              {"nombres", "El nombre debe tener al menos 2 letras"},
	"Apellidos":            {"apellidos", "El apellido debe tener al menos 2 letras"},
	"DNI":                  {"dni", "El DNI debe tener 7 u 8 dígitos"},
	"FueNotificado":        {"fueNotificado", "Indicá si fuiste notificado (si/no)"},
	"InformacionAdicional": {"informacionAdicional", "La información adicional no puede superar los 500 caracteres"},
}

// fieldErrors maps validator failures to form keys with user-facing messages.
func fieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if m, ok := fieldMessages[fe.Field()]; ok {
			out[m.key] = m.message
			continue
		}
		out[fe.Field()] = "Valor inválido"
	}
	return out
}

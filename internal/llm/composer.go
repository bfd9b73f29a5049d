package llm

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"reclamala-backend/internal/citizen"
)

// NoteNotSpecified replaces an omitted free-text note.
const NoteNotSpecified = "No especificada"

var (
	//go:embed prompts/descargo.tmpl
	descargoPrompt string

	descargoTemplate = template.Must(template.New("descargo").Option("missingkey=error").Parse(descargoPrompt))
)

type promptData struct {
	FullName   string
	DNI        string
	Notificado string
	Nota       string
	TextoMulta string
}

// Compose builds the generation prompt. It is deterministic: identical
// inputs always yield byte-identical prompts.
func Compose(extractedText string, profile citizen.Profile) string {
	data := promptData{
		FullName:   profile.FullName(),
		DNI:        citizen.NormalizeDNI(profile.DNI),
		Notificado: "No",
		Nota:       strings.TrimSpace(profile.InformacionAdicional),
		TextoMulta: strings.TrimSpace(extractedText),
	}
	if profile.FueNotificado {
		data.Notificado = "Sí"
	}
	if data.Nota == "" {
		data.Nota = NoteNotSpecified
	}

	var b strings.Builder
	if err := descargoTemplate.Execute(&b, data); err != nil {
		// promptData always satisfies the embedded template.
		panic(fmt.Sprintf("descargo prompt template: %v", err))
	}
	return b.String()
}

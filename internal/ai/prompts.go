package ai

import (
	"bytes"
	"fmt"
	"text/template"
)

// PromptData holds the parameters for template rendering
type PromptData struct {
	Branch       string
	ParentBranch string
	Commits      string
	Diff         string
	PlanTitle    string
	PlanBody     string
}

const descriptionTemplateEN = `You are writing a pull request description for a code change.

Branch: {{.Branch}} (target: {{.ParentBranch}})

Commit messages on this branch:
{{.Commits}}
{{if .PlanTitle}}
This change implements the following plan:
Title: {{.PlanTitle}}
{{.PlanBody}}
{{end}}
Diff:
{{.Diff}}

Respond in exactly this format:

## Title
<a single imperative sentence, at most 80 characters, no trailing period>

## Body
<a markdown description: what changed, why, and anything reviewers should watch for>`

const descriptionTemplateES = `Estás escribiendo la descripción de un pull request para un cambio de código.

Rama: {{.Branch}} (destino: {{.ParentBranch}})

Mensajes de commit en esta rama:
{{.Commits}}
{{if .PlanTitle}}
Este cambio implementa el siguiente plan:
Título: {{.PlanTitle}}
{{.PlanBody}}
{{end}}
Diff:
{{.Diff}}

Respondé exactamente en este formato:

## Title
<una sola oración imperativa, máximo 80 caracteres, sin punto final>

## Body
<una descripción en markdown: qué cambió, por qué, y qué deberían mirar los reviewers>`

// GetDescriptionTemplate returns the PR description prompt for the language.
func GetDescriptionTemplate(lang string) string {
	if lang == "es" {
		return descriptionTemplateES
	}
	return descriptionTemplateEN
}

// RenderPrompt renders a prompt template with the provided data
func RenderPrompt(name, tmplStr string, data interface{}) (string, error) {
	tmpl, err := template.New(name).Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("error parsing template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("error rendering template %s: %w", name, err)
	}
	return buf.String(), nil
}

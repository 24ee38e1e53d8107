package commands

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/rios0rios0/forkfix/internal/domain/entities"
)

//go:embed templates/*.md.tmpl
var templateFS embed.FS

// bodyTemplates parses every kind template together with the shared partials.
var bodyTemplates = template.Must( //nolint:gochecknoglobals // parsed once
	template.New("bodies").ParseFS(templateFS, "templates/*.md.tmpl"),
)

// PullRequestBodyData feeds the kind templates.
type PullRequestBodyData struct {
	AppName  string
	Upstream entities.Repository
	Fork     entities.Repository
	Branch   string
	Changes  []entities.Change
}

// RenderPullRequestBody renders the body template of kind.
func RenderPullRequestBody(kind entities.RemediationKind, data PullRequestBodyData) (string, error) {
	var buf bytes.Buffer
	if err := bodyTemplates.ExecuteTemplate(&buf, string(kind)+".md.tmpl", data); err != nil {
		return "", fmt.Errorf("failed to render %s body: %w", kind, err)
	}
	return buf.String(), nil
}

// renderChangeComment lists the detector's changes for the follow-up comment.
func renderChangeComment(changes []entities.Change) string {
	var sb strings.Builder
	sb.WriteString("Changes in this pull request:\n\n")
	for _, change := range changes {
		sb.WriteString("- ")
		sb.WriteString(change.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

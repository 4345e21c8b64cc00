// Package motd renders the lobby's player-facing messages from embedded
// templates.
package motd

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
)

//go:embed templates/lobby.tmpl
var templatesFS embed.FS

// Template names.
const (
	Default            = "motd_default"
	LastHostedGame     = "motd_last_hosted"
	UnsupportedHost    = "unsupported_host"
	WelcomeRelease     = "welcome_release"
	WelcomePrerelease  = "welcome_prerelease"
	WelcomeDevelopment = "welcome_development"
	UpgradeRequired    = "upgrade_required"
)

// Data is the template model.
type Data struct {
	LatestTag string
	SiteURL   string
	// UnsupportedNote is appended to the last-hosted-game banner when set.
	UnsupportedNote string
}

type Renderer struct {
	tmpl *template.Template
}

func New() (*Renderer, error) {
	b, err := templatesFS.ReadFile("templates/lobby.tmpl")
	if err != nil {
		return nil, fmt.Errorf("read embedded motd templates: %w", err)
	}
	t, err := template.New("lobby.tmpl").Option("missingkey=zero").Parse(string(b))
	if err != nil {
		return nil, fmt.Errorf("parse embedded motd templates: %w", err)
	}
	return &Renderer{tmpl: t}, nil
}

// Render executes the named message template.
func (r *Renderer) Render(name string, d Data) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, d); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

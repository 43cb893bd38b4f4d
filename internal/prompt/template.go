// Package prompt fills the fixed analysis prompts with run parameters.
package prompt

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/bobmcallan/stock-radar/internal/models"
)

// Parameter names.
const (
	ParamDate      = "date"
	ParamCapital   = "capital"
	ParamPortfolio = "portfolio"
)

// SwingFile is the prompt file name looked up in the prompt directory.
const SwingFile = "prompt_swing_v3_1.txt"

// placeholders maps each literal token to the parameter that replaces it.
var placeholders = map[string]string{
	"[INSERTAR FECHA ACTUAL]": ParamDate,
	"[INSERTAR €XXX]":         ParamCapital,
	"[INSERTAR CARTERA]":      ParamPortfolio,
}

var placeholderPattern = regexp.MustCompile(`\[INSERTAR [^\]]*\]`)

//go:embed templates/*.txt
var embedded embed.FS

// Template is a prompt body with [INSERTAR ...] placeholders.
type Template struct {
	Name     string
	Body     string
	Defaults map[string]string
}

// Fill substitutes params into the body. A placeholder with no parameter
// and no default, or an unknown placeholder, is a configuration error.
// Only the body is scanned, so substituted values are passed through as-is.
func (t *Template) Fill(params map[string]string) (string, error) {
	values := make(map[string]string)
	for _, token := range placeholderPattern.FindAllString(t.Body, -1) {
		if _, done := values[token]; done {
			continue
		}
		name, known := placeholders[token]
		if !known {
			return "", models.NewConfigurationError(
				fmt.Sprintf("prompt %s has unknown placeholder %s", t.Name, token), nil)
		}
		value, ok := params[name]
		if !ok {
			value, ok = t.Defaults[name]
		}
		if !ok {
			return "", models.NewConfigurationError(
				fmt.Sprintf("prompt %s needs parameter %q for %s", t.Name, name, token), nil)
		}
		values[token] = value
	}

	return placeholderPattern.ReplaceAllStringFunc(t.Body, func(token string) string {
		return values[token]
	}), nil
}

// Placeholders lists the parameter names the body refers to, in order of
// first appearance.
func (t *Template) Placeholders() []string {
	var names []string
	seen := make(map[string]bool)
	for _, token := range placeholderPattern.FindAllString(t.Body, -1) {
		name, ok := placeholders[token]
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// Set holds the two analysis templates.
type Set struct {
	Swing     *Template
	Portfolio *Template
	// SwingSource is the file the swing body came from, or "embedded".
	SwingSource string
}

// Load reads the swing prompt from dir/SwingFile, falling back to the
// embedded copy when the file does not exist.
func Load(dir string) (*Set, error) {
	swingBody, source, err := readSwing(dir)
	if err != nil {
		return nil, err
	}
	portfolioBody, err := embedded.ReadFile("templates/portfolio.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded portfolio prompt: %w", err)
	}

	return &Set{
		Swing: &Template{Name: "swing", Body: swingBody},
		Portfolio: &Template{
			Name: "portfolio",
			Body: string(portfolioBody),
		},
		SwingSource: source,
	}, nil
}

func readSwing(dir string) (string, string, error) {
	if dir != "" {
		path := filepath.Join(dir, SwingFile)
		data, err := os.ReadFile(path)
		if err == nil {
			return string(data), path, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", "", fmt.Errorf("failed to read prompt %s: %w", path, err)
		}
	}
	data, err := embedded.ReadFile("templates/swing.txt")
	if err != nil {
		return "", "", fmt.Errorf("failed to read embedded swing prompt: %w", err)
	}
	return string(data), "embedded", nil
}

package outreach

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Template ready-made message
type Template struct {
	ID      string `json:"id" yaml:"id"`
	Label   string `json:"label" yaml:"label"`
	Message string `json:"message" yaml:"message"`
}

// templateFile YAML layout of TEMPLATES_FILE
type templateFile struct {
	Templates []Template `yaml:"templates"`
}

// DefaultTemplates built-in messages
func DefaultTemplates() []Template {
	return []Template{
		{
			ID:      "review",
			Label:   "Revisão",
			Message: "Olá! 😊\n\nEstá na hora da sua revisão periódica. Gostaria de agendar uma consulta?\n\nEstou à disposição!",
		},
		{
			ID:      "promo",
			Label:   "Promoção",
			Message: "Oi! ✨\n\nTemos uma promoção especial este mês! Entre em contato para saber mais sobre nossos serviços.\n\nAproveite!",
		},
		{
			ID:      "reminder",
			Label:   "Lembrete",
			Message: "Olá! 🔔\n\nEste é um lembrete amigável sobre sua próxima consulta. Confirma presença?\n\nQualquer dúvida, estou aqui!",
		},
		{
			ID:      "return",
			Label:   "Retorno",
			Message: "Oi! 📅\n\nGostaria de saber como você está se sentindo após a última consulta. Precisando de algo?\n\nEstou à disposição!",
		},
	}
}

// LoadTemplates returns the defaults merged with the YAML file at path.
// Entries with a known id replace the default, new ids are appended.
// An empty path returns the defaults.
func LoadTemplates(path string) ([]Template, error) {
	templates := DefaultTemplates()
	if path == "" {
		return templates, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read templates: %w", err)
	}

	var file templateFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse templates %s: %w", path, err)
	}

	return mergeTemplates(templates, file.Templates)
}

func mergeTemplates(base, overrides []Template) ([]Template, error) {
	index := make(map[string]int, len(base))
	for i, t := range base {
		index[t.ID] = i
	}

	for _, t := range overrides {
		if t.ID == "" || t.Message == "" {
			return nil, fmt.Errorf("template %q: id and message are required", t.Label)
		}
		if t.Label == "" {
			t.Label = t.ID
		}
		if i, ok := index[t.ID]; ok {
			base[i] = t
			continue
		}
		index[t.ID] = len(base)
		base = append(base, t)
	}
	return base, nil
}

// FindTemplate template by id
func FindTemplate(templates []Template, id string) (Template, bool) {
	for _, t := range templates {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}

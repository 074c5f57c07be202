package domain

// DefaultTemplateID is used when an event has no template or an unknown one.
const DefaultTemplateID = "shabby-chic"

// Palette holds the colors an email template is rendered with.
type Palette struct {
	Background string `json:"bg"`
	Accent     string `json:"accent"`
	Text       string `json:"text"`
	Button     string `json:"button"`
}

// Template is a named presentation preset for invitations.
// swagger:model Template
type Template struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Preview     string  `json:"preview"`
	Palette     Palette `json:"palette"`
	Dark        bool    `json:"dark"`
}

var templates = []Template{
	{
		ID:          "shabby-chic",
		Name:        "Shabby Chic",
		Description: "Vintage floral design with pink stripes and elegant script fonts",
		Preview:     "Soft pinks, florals, oval frames",
		Palette:     Palette{Background: "#fef9f6", Accent: "#b87878", Text: "#806868", Button: "#c49090"},
	},
	{
		ID:          "modern-dark",
		Name:        "Modern Elegance",
		Description: "Sleek dark theme with gold accents and contemporary styling",
		Preview:     "Dark background, gold details",
		Palette:     Palette{Background: "#1a1a2e", Accent: "#d4af37", Text: "#e0e0e0", Button: "#d4af37"},
		Dark:        true,
	},
	{
		ID:          "garden-party",
		Name:        "Garden Party",
		Description: "Fresh green botanical design with nature-inspired elements",
		Preview:     "Greens, botanicals, natural",
		Palette:     Palette{Background: "#f0f7f0", Accent: "#4a7c59", Text: "#2d5a3d", Button: "#4a7c59"},
	},
	{
		ID:          "classic-formal",
		Name:        "Classic Formal",
		Description: "Timeless black and white design with traditional elegance",
		Preview:     "Black, white, serif fonts",
		Palette:     Palette{Background: "#ffffff", Accent: "#2c2c2c", Text: "#333333", Button: "#2c2c2c"},
	},
}

// Templates returns all presentation presets in display order.
func Templates() []Template {
	out := make([]Template, len(templates))
	copy(out, templates)
	return out
}

// LookupTemplate returns the preset with the given id and whether it exists.
func LookupTemplate(id string) (Template, bool) {
	for _, t := range templates {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}

// TemplateOrDefault returns the preset with the given id, falling back to shabby-chic.
func TemplateOrDefault(id string) Template {
	if t, ok := LookupTemplate(id); ok {
		return t
	}
	t, _ := LookupTemplate(DefaultTemplateID)
	return t
}

// Package prompts holds the configurable prompt templates used to enrich brand
// content through the text-generation provider. Templates come from an optional
// YAML file; anything the file does not set keeps its built-in default. The
// placeholder {brand} is substituted with the brand display name.
package prompts

import (
	"os"
	"strings"

	"coupon-sync/internal/pkg/errs"

	"gopkg.in/yaml.v3"
)

type Templates struct {
	Description string `yaml:"description"`
	WhyWeLove   string `yaml:"why_we_love"`
	Hashtags    string `yaml:"hashtags"`
}

func Defaults() Templates {
	return Templates{
		Description: "Write a concise two-sentence shop description for the brand {brand}. Plain text, no markdown.",
		WhyWeLove:   "In one enthusiastic sentence, explain why shoppers love the brand {brand}.",
		Hashtags:    "Suggest five short social media hashtags for the brand {brand}. Answer with the hashtags only, separated by spaces.",
	}
}

// Load reads templates from path, falling back to defaults for unset fields.
// An empty path returns the defaults.
func Load(path string) (Templates, error) {
	tpl := Defaults()
	if path == "" {
		return tpl, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Templates{}, errs.Wrap(err, "failed to read prompt template file")
	}
	if err := yaml.Unmarshal(data, &tpl); err != nil {
		return Templates{}, errs.Wrap(err, "failed to parse prompt template file")
	}
	return tpl, nil
}

func (t Templates) RenderDescription(brandName string) string {
	return render(t.Description, brandName)
}

func (t Templates) RenderWhyWeLove(brandName string) string {
	return render(t.WhyWeLove, brandName)
}

func (t Templates) RenderHashtags(brandName string) string {
	return render(t.Hashtags, brandName)
}

func render(tpl, brandName string) string {
	return strings.ReplaceAll(tpl, "{brand}", brandName)
}

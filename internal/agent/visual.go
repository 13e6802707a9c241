package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/vyralflow/vyralflow/internal/domain"
	"github.com/vyralflow/vyralflow/internal/provider"
)

// VisualDesigner curates image candidates, a recommended style and a color
// palette, steered by the content stage's tone when available.
type VisualDesigner struct {
	images *provider.ImagesClient
}

// NewVisualDesigner creates the visual curation stage.
func NewVisualDesigner(images *provider.ImagesClient) *VisualDesigner {
	return &VisualDesigner{images: images}
}

func (a *VisualDesigner) Kind() domain.AgentKind {
	return domain.AgentVisualDesigner
}

// Execute searches the image provider for the campaign's visual themes.
func (a *VisualDesigner) Execute(ctx context.Context, in *Input) (*Output, error) {
	themes := visualThemes(&in.Brief)

	in.report(25, "Searching visual candidates")

	query := in.Brief.Industry + " " + strings.Join(themes[:min(2, len(themes))], " ")
	photos, err := a.images.SearchPhotos(ctx, query, 6)
	if err != nil {
		return nil, classify(a.Kind(), err)
	}
	if len(photos) == 0 {
		return nil, domain.PermanentAgentError(a.Kind(), fmt.Errorf("image search returned no photos for %q", query))
	}

	in.report(70, "Curating style and palette")

	suggestions := make([]domain.ImageSuggestion, 0, len(photos))
	palette := make([]string, 0, len(photos))
	for _, photo := range photos {
		if photo.URL == "" {
			continue
		}
		description := photo.Description
		if description == "" {
			description = fmt.Sprintf("%s visual concept", in.Brief.Industry)
		}
		suggestions = append(suggestions, domain.ImageSuggestion{
			URL:          photo.URL,
			Description:  description,
			Photographer: photo.Photographer,
			Source:       "unsplash",
		})
		if photo.Color != "" {
			palette = appendUnique(palette, photo.Color)
		}
	}
	if len(suggestions) == 0 {
		return nil, domain.PermanentAgentError(a.Kind(), fmt.Errorf("image search returned only unusable results for %q", query))
	}
	if len(palette) == 0 {
		palette = fallbackPaletteFor(in.Brief.Industry)
	}
	if len(palette) > 5 {
		palette = palette[:5]
	}

	return &Output{Visuals: &domain.VisualResult{
		RecommendedStyle: recommendedStyle(&in.Brief, themes),
		ImageSuggestions: suggestions,
		ColorPalette:     palette,
		VisualThemes:     themes,
	}}, nil
}

// Fallback synthesizes a default palette and placeholder image list.
func (a *VisualDesigner) Fallback(in *Input) *Output {
	themes := visualThemes(&in.Brief)

	suggestions := make([]domain.ImageSuggestion, 0, 3)
	for i := 1; i <= 3; i++ {
		suggestions = append(suggestions, domain.ImageSuggestion{
			URL:         fmt.Sprintf("https://images.unsplash.com/photo-14973662165%d-37526070297c", i),
			Description: fmt.Sprintf("Professional %s concept %d", in.Brief.Industry, i),
			Source:      "baseline",
		})
	}

	return &Output{Visuals: &domain.VisualResult{
		RecommendedStyle: recommendedStyle(&in.Brief, themes),
		ImageSuggestions: suggestions,
		ColorPalette:     fallbackPaletteFor(in.Brief.Industry),
		VisualThemes:     themes,
	}}
}

var industryThemes = map[string][]string{
	"food & beverage": {"warm colors", "appetizing", "cozy atmosphere", "fresh ingredients"},
	"technology":      {"modern", "clean lines", "futuristic", "innovation-focused"},
	"retail":          {"trendy", "lifestyle-focused", "product-centric", "fashionable"},
	"healthcare":      {"clean", "trustworthy", "calming", "wellness-focused"},
	"finance":         {"professional", "trustworthy", "sophisticated", "secure"},
}

var voiceThemes = map[string][]string{
	"professional":  {"corporate", "clean"},
	"friendly":      {"warm", "approachable"},
	"casual":        {"relaxed", "informal"},
	"humorous":      {"playful", "fun"},
	"authoritative": {"strong", "confident"},
	"inspirational": {"uplifting", "aspirational"},
}

var industryPalettes = map[string][]string{
	"food & beverage": {"#D2691E", "#8B4513", "#F4A460", "#FFF8DC"},
	"technology":      {"#0B3D91", "#1E90FF", "#F5F7FA", "#2F4F4F"},
	"retail":          {"#C2185B", "#F8BBD0", "#212121", "#FAFAFA"},
	"healthcare":      {"#00796B", "#B2DFDB", "#FFFFFF", "#37474F"},
	"finance":         {"#1B5E20", "#A5D6A7", "#263238", "#ECEFF1"},
}

func visualThemes(brief *domain.CampaignBrief) []string {
	themes := append([]string(nil), industryThemes[strings.ToLower(brief.Industry)]...)
	if len(themes) == 0 {
		themes = []string{"professional", "modern", "clean"}
	}
	themes = append(themes, voiceThemes[strings.ToLower(brief.BrandVoice)]...)

	goal := strings.ToLower(brief.CampaignGoal)
	switch {
	case strings.Contains(goal, "launch") || strings.Contains(goal, "new"):
		themes = append(themes, "fresh", "innovative")
	case strings.Contains(goal, "sale") || strings.Contains(goal, "discount"):
		themes = append(themes, "value-focused")
	case strings.Contains(goal, "awareness"):
		themes = append(themes, "memorable")
	}

	unique := make([]string, 0, len(themes))
	for _, t := range themes {
		unique = appendUnique(unique, t)
	}
	if len(unique) > 8 {
		unique = unique[:8]
	}
	return unique
}

func recommendedStyle(brief *domain.CampaignBrief, themes []string) string {
	lead := "modern"
	if len(themes) > 0 {
		lead = themes[0]
	}
	return fmt.Sprintf("%s %s aesthetic", capitalize(lead), strings.ToLower(brief.Industry))
}

func fallbackPaletteFor(industry string) []string {
	if palette, ok := industryPalettes[strings.ToLower(industry)]; ok {
		return append([]string(nil), palette...)
	}
	return []string{"#2C3E50", "#3498DB", "#ECF0F1", "#E74C3C"}
}

func appendUnique(list []string, item string) []string {
	for _, existing := range list {
		if existing == item {
			return list
		}
	}
	return append(list, item)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

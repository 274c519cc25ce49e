package render

import (
	"encoding/base64"
	"fmt"
	"html/template"
	"math"
	"os"
	"strings"
	"sync"
)

// EmailImage is one rendered result image.
type EmailImage struct {
	// Src is the data URI embedding the image payload. Typed template.URL
	// because html/template would otherwise reject the data: scheme.
	Src template.URL

	// WidthPct is the image column width within its row.
	WidthPct int
}

// Section is one titled row of result images.
type Section struct {
	Title  string
	Images []EmailImage
}

var (
	resultsTemplate *template.Template
	once            sync.Once
)

const resultsTemplateText = `<div style="display: flex; flex-direction: column; gap: 20px;">
{{- range . }}
  <div style="display: flex; flex-direction: column; align-items: center; width: 95%;">
    <div style="display: flex; flex-direction: column; gap: 20px;">
      <h2>{{ .Title }}</h2>
      <div class="row" style="display: flex; flex-wrap: wrap; justify-content: space-between; width: 100%; align-items: flex-start;">
      {{- range .Images }}
        <div style="width: {{ .WidthPct }}%;">
          <div style="height: 600px; overflow: hidden;">
            <img src="{{ .Src }}" style="width: 100%;">
          </div>
        </div>
      {{- end }}
      </div>
    </div>
  </div>
{{- end }}
</div>
`

// templates returns the singleton instance of the parsed template.
func templates() *template.Template {
	once.Do(func() {
		resultsTemplate = template.Must(template.New("results").Parse(resultsTemplateText))
	})
	return resultsTemplate
}

// NewSection builds a titled section from image file paths. Empty paths are
// skipped; an unreadable image fails the section.
func NewSection(title string, imagePaths []string) (Section, error) {
	var paths []string
	for _, p := range imagePaths {
		if p != "" {
			paths = append(paths, p)
		}
	}

	section := Section{Title: title}
	if len(paths) == 0 {
		return section, nil
	}

	widthPct := int(math.Floor(100 / float64(len(paths))))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return Section{}, fmt.Errorf("reading result image %s: %w", p, err)
		}
		section.Images = append(section.Images, EmailImage{
			Src:      template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(data)),
			WidthPct: widthPct,
		})
	}
	return section, nil
}

// ResultsHTML renders the titled result sections as a standalone HTML
// fragment.
func ResultsHTML(sections []Section) (string, error) {
	var b strings.Builder
	if err := templates().Execute(&b, sections); err != nil {
		return "", err
	}
	return b.String(), nil
}

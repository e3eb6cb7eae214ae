// Package reporter renders analyses and shareable reports to JSON, HTML and
// Markdown.
package reporter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/geopulse/geopulse/internal/models"
)

// Reporter renders analysis output in the supported formats.
type Reporter struct {
	htmlTmpl *template.Template
}

// New creates a reporter with the HTML template parsed up front.
func New() (*Reporter, error) {
	t, err := template.New("report").Parse(htmlTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse report template: %w", err)
	}
	return &Reporter{htmlTmpl: t}, nil
}

// Render produces the analysis in the requested format: json, html or
// markdown.
func (r *Reporter) Render(analysis *models.CombinedAnalysis, format string) (string, error) {
	switch format {
	case "json":
		return r.renderJSON(analysis)
	case "html":
		return r.RenderHTML(&models.ShareableReport{
			WebsiteURL: analysis.URL,
			Branding:   models.Branding{CompanyName: "GeoPulse", PrimaryColor: "#2563eb", SecondaryColor: "#0f172a"},
			Analysis:   *analysis,
		})
	case "markdown":
		return r.RenderMarkdown(analysis), nil
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func (r *Reporter) renderJSON(analysis *models.CombinedAnalysis) (string, error) {
	data, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal analysis: %w", err)
	}
	return string(data), nil
}

// RenderHTML renders a branded shareable report page.
func (r *Reporter) RenderHTML(rep *models.ShareableReport) (string, error) {
	var buf bytes.Buffer
	if err := r.htmlTmpl.Execute(&buf, rep); err != nil {
		return "", fmt.Errorf("failed to execute report template: %w", err)
	}
	return buf.String(), nil
}

// RenderMarkdown renders the analysis as a Markdown document.
func (r *Reporter) RenderMarkdown(a *models.CombinedAnalysis) string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# SEO & GEO Report for %s\n\n", a.Title)
	fmt.Fprintf(&buf, "*Analyzed on %s*\n\n", a.AnalyzedAt.Format("January 2, 2006"))
	fmt.Fprintf(&buf, "**Overall Score:** %d/100\n\n", a.OverallScore)
	if a.SEOMessage != "" {
		fmt.Fprintf(&buf, "%s. %s.\n\n", a.SEOMessage, a.GEOMessage)
	}
	if a.Explanation != "" {
		fmt.Fprintf(&buf, "> %s\n\n", a.Explanation)
	}

	fmt.Fprintf(&buf, "## Scores\n\n")
	fmt.Fprintf(&buf, "| Category | Score |\n")
	fmt.Fprintf(&buf, "|----------|-------|\n")
	fmt.Fprintf(&buf, "| SEO | %d |\n", a.SEO.Score)
	fmt.Fprintf(&buf, "| Technical SEO | %d |\n", a.SEO.Technical.Score)
	fmt.Fprintf(&buf, "| Content | %d |\n", a.SEO.Content.Score)
	fmt.Fprintf(&buf, "| Authority | %d |\n", a.SEO.Authority.Score)
	fmt.Fprintf(&buf, "| User Experience | %d |\n", a.SEO.UserExperience.Score)
	fmt.Fprintf(&buf, "| GEO | %d |\n", a.GEO.Score)
	fmt.Fprintf(&buf, "| AI Visibility | %d |\n", a.GEO.AIVisibility.Score)
	fmt.Fprintf(&buf, "| Information Accuracy | %d |\n", a.GEO.InformationAccuracy.Score)
	fmt.Fprintf(&buf, "| Content Structure | %d |\n", a.GEO.ContentStructure.Score)
	fmt.Fprintf(&buf, "| Competitive Position | %d |\n", a.GEO.CompetitivePosition.Score)
	fmt.Fprintf(&buf, "| Optimization | %d |\n\n", a.GEO.Optimization.Score)

	fmt.Fprintf(&buf, "## AI Assistant Visibility\n\n")
	fmt.Fprintf(&buf, "- ChatGPT: %s\n", presence(a.GEO.AIVisibility.ChatGPT))
	fmt.Fprintf(&buf, "- Claude: %s\n", presence(a.GEO.AIVisibility.Claude))
	fmt.Fprintf(&buf, "- Perplexity: %s\n", presence(a.GEO.AIVisibility.Perplexity))
	fmt.Fprintf(&buf, "- Gemini: %s\n\n", presence(a.GEO.AIVisibility.Gemini))

	if len(a.Competitors) > 0 {
		fmt.Fprintf(&buf, "## Competitors\n\n")
		for _, c := range a.Competitors {
			fmt.Fprintf(&buf, "%d. %s\n", c.Position, c.Domain)
		}
		fmt.Fprintf(&buf, "\n")
	}

	if len(a.Recommendations) > 0 {
		fmt.Fprintf(&buf, "## Recommendations\n\n")
		for i, rec := range a.Recommendations {
			fmt.Fprintf(&buf, "### %d. %s\n", i+1, rec.Title)
			fmt.Fprintf(&buf, "- **Priority:** %s\n", rec.Priority)
			fmt.Fprintf(&buf, "- **Category:** %s\n", rec.Category)
			fmt.Fprintf(&buf, "- **Impact:** %s\n", rec.Impact)
			fmt.Fprintf(&buf, "- **Effort:** %s\n", rec.Effort)
			fmt.Fprintf(&buf, "- **Timeline:** %s\n", rec.Timeline)
			fmt.Fprintf(&buf, "\n%s\n\n", rec.Description)
		}
	}

	return buf.String()
}

func presence(visible bool) string {
	if visible {
		return "cited"
	}
	return "not cited"
}

const htmlTemplate = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>SEO &amp; GEO Report - {{.Analysis.Title}}</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            line-height: 1.6;
            color: #333;
            max-width: 1100px;
            margin: 0 auto;
            padding: 20px;
            background: #f5f5f5;
        }
        .header {
            background: {{.Branding.PrimaryColor}};
            color: white;
            padding: 2rem;
            border-radius: 10px;
            margin-bottom: 2rem;
        }
        .card {
            background: white;
            border-radius: 10px;
            padding: 1.5rem;
            margin-bottom: 1.5rem;
            box-shadow: 0 2px 10px rgba(0,0,0,0.1);
        }
        .score-grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(180px, 1fr));
            gap: 1rem;
            margin: 1rem 0;
        }
        .score-item {
            text-align: center;
            padding: 1rem;
            background: #f8f9fa;
            border-radius: 8px;
        }
        .score-value {
            font-size: 2rem;
            font-weight: bold;
            color: {{.Branding.PrimaryColor}};
        }
        .score-label {
            color: #666;
            font-size: 0.9rem;
            margin-top: 0.5rem;
        }
        .recommendation {
            background: white;
            padding: 1.25rem;
            margin: 1rem 0;
            border-radius: 8px;
            box-shadow: 0 2px 5px rgba(0,0,0,0.1);
        }
        .priority-badge {
            display: inline-block;
            padding: 0.25rem 0.75rem;
            border-radius: 4px;
            font-size: 0.85rem;
            font-weight: bold;
            margin-right: 0.5rem;
        }
        .priority-critical { background: #dc3545; color: white; }
        .priority-high { background: #fd7e14; color: white; }
        .priority-medium { background: #ffc107; color: #333; }
        .priority-low { background: #28a745; color: white; }
        .footer { color: #666; font-size: 0.85rem; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <h1>SEO &amp; GEO Report for {{.Analysis.Title}}</h1>
        <p>{{.Analysis.URL}} &middot; {{.Analysis.AnalyzedAt.Format "January 2, 2006"}}</p>
        {{if .ClientName}}<p>Prepared for {{.ClientName}}</p>{{end}}
    </div>

    <div class="card">
        <h2>Scores</h2>
        <div class="score-grid">
            <div class="score-item">
                <div class="score-value">{{.Analysis.OverallScore}}</div>
                <div class="score-label">Overall</div>
            </div>
            <div class="score-item">
                <div class="score-value">{{.Analysis.SEO.Score}}</div>
                <div class="score-label">{{if .Analysis.SEOMessage}}{{.Analysis.SEOMessage}}{{else}}SEO{{end}}</div>
            </div>
            <div class="score-item">
                <div class="score-value">{{.Analysis.GEO.Score}}</div>
                <div class="score-label">{{if .Analysis.GEOMessage}}{{.Analysis.GEOMessage}}{{else}}GEO{{end}}</div>
            </div>
            <div class="score-item">
                <div class="score-value">{{.Analysis.GEO.AIVisibility.Score}}</div>
                <div class="score-label">AI Visibility</div>
            </div>
        </div>
        {{if .Analysis.Explanation}}<p>{{.Analysis.Explanation}}</p>{{end}}
    </div>

    {{if .Analysis.Competitors}}
    <div class="card">
        <h2>Competitors</h2>
        <ol>
            {{range .Analysis.Competitors}}
            <li>{{.Domain}}</li>
            {{end}}
        </ol>
    </div>
    {{end}}

    {{if .Analysis.Recommendations}}
    <div class="card">
        <h2>Recommendations</h2>
        {{range .Analysis.Recommendations}}
        <div class="recommendation">
            <span class="priority-badge priority-{{.Priority}}">{{.Priority}}</span>
            <h4>{{.Title}}</h4>
            <p>{{.Description}}</p>
            <p><small>Impact: {{.Impact}} | Effort: {{.Effort}} | Timeline: {{.Timeline}}</small></p>
        </div>
        {{end}}
    </div>
    {{end}}

    <div class="footer">
        <p>Generated by {{.Branding.CompanyName}}</p>
    </div>
</body>
</html>
`

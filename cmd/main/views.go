package main

import (
	"encoding/json"
	"fmt"
	"html"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/CTAG07/Libation/pkg/dataset"
	"github.com/dustin/go-humanize"
)

// Tokens substituted into the page templates.
const (
	tokenNav     = "{{NAV}}"
	tokenCount   = "{{COUNT}}"
	tokenTitle   = "{{TITLE}}"
	tokenColumn  = "{{COLUMN}}"
	tokenRows    = "{{ROWS}}"
	tokenCountry = "{{COUNTRY}}"
	tokenDetail  = "{{DETAIL}}"
)

// Page templates, relative to the template directory.
const (
	templateHome     = "index.html"
	templateCategory = "category.html"
	templateCountry  = "country.html"
)

const noDataRow = `<tr class="no-data"><td colspan="3">No data available.</td></tr>`

// countryLink links text to the detail page for name. A name with an empty
// slug has no reachable page, so text is wrapped in a span instead. text must
// already be escaped.
func countryLink(name, class, text string) string {
	slug := dataset.Slugify(name)
	if slug == "" {
		if class == "" {
			return "<span>" + text + "</span>"
		}
		return fmt.Sprintf("<span class=\"%s\">%s</span>", class, text)
	}
	if class == "" {
		return fmt.Sprintf("<a href=\"/country/%s\">%s</a>", slug, text)
	}
	return fmt.Sprintf("<a class=\"%s\" rel=\"%s\" href=\"/country/%s\">%s</a>", class, class, slug, text)
}

// formatMeasure renders a measure with thousands separators and no trailing
// zeros. Values that failed to parse render as "n/a".
func formatMeasure(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return humanize.Commaf(v)
}

// columnLabel turns a column header like "beer_servings" into "Beer servings".
func columnLabel(column string) string {
	label := strings.TrimSpace(strings.ReplaceAll(column, "_", " "))
	if label == "" {
		return column
	}
	first, size := utf8.DecodeRuneInString(label)
	return string(unicode.ToUpper(first)) + label[size:]
}

// navFragment builds the home page list of category links.
func navFragment(categories []Category) string {
	var b strings.Builder
	b.WriteString("<ul class=\"nav\">\n")
	for _, c := range categories {
		fmt.Fprintf(&b, "  <li><a href=\"/%s\">%s</a></li>\n", c.Slug, html.EscapeString(c.Title))
	}
	b.WriteString("</ul>")
	return b.String()
}

// tableRows builds one table row per record, in the order given.
func tableRows(records []dataset.Record, column string) string {
	if len(records) == 0 {
		return noDataRow
	}
	var b strings.Builder
	for i, rec := range records {
		fmt.Fprintf(&b, "<tr><td>%d</td><td>%s</td><td>%s</td></tr>\n",
			i+1,
			countryLink(rec.Name, "", html.EscapeString(rec.Name)),
			formatMeasure(rec.Measure(column)),
		)
	}
	return b.String()
}

// chartData is the JSON document the detail page script draws from.
type chartData struct {
	Title  string     `json:"title"`
	Labels []string   `json:"labels"`
	Values []*float64 `json:"values"` // null where a measure is NaN
}

// detailFragment builds the body of a detail page: a list of every measure,
// previous/next links, and the chart data.
func detailFragment(rec dataset.Record, columns []string, prev, next string) (string, error) {
	var b strings.Builder

	b.WriteString("<dl class=\"measures\">\n")
	chart := chartData{Title: rec.Name}
	for _, col := range columns {
		v := rec.Measure(col)
		label := columnLabel(col)
		fmt.Fprintf(&b, "  <dt>%s</dt><dd>%s</dd>\n", html.EscapeString(label), formatMeasure(v))

		chart.Labels = append(chart.Labels, label)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			chart.Values = append(chart.Values, nil)
		} else {
			chart.Values = append(chart.Values, &v)
		}
	}
	b.WriteString("</dl>\n")

	b.WriteString("<nav class=\"pager\">\n")
	fmt.Fprintf(&b, "  %s\n", countryLink(prev, "prev", "&larr; "+html.EscapeString(prev)))
	fmt.Fprintf(&b, "  %s\n", countryLink(next, "next", html.EscapeString(next)+" &rarr;"))
	b.WriteString("</nav>\n")

	// encoding/json escapes <, > and &, so the payload cannot close the script element.
	payload, err := json.Marshal(chart)
	if err != nil {
		return "", fmt.Errorf("failed to encode chart data: %w", err)
	}
	b.WriteString("<canvas id=\"chart\" width=\"640\" height=\"320\"></canvas>\n")
	fmt.Fprintf(&b, "<script type=\"application/json\" id=\"chart-data\">%s</script>", payload)

	return b.String(), nil
}

package render

import (
	"fmt"
	"strings"
)

// tableHTML renders a frame as a plain table. Cells are written as-is;
// converted cells already hold markup.
func tableHTML(f *frame, class string) string {
	var b strings.Builder
	classes := strings.TrimSpace("table " + class)
	fmt.Fprintf(&b, "<table class=\"%s\">\n", classes)
	b.WriteString("<thead>\n<tr>\n")
	for _, col := range f.header {
		fmt.Fprintf(&b, "<th>%s</th>\n", col)
	}
	b.WriteString("</tr>\n</thead>\n<tbody>\n")
	for _, row := range f.rows {
		b.WriteString("<tr>\n")
		for _, cell := range row {
			fmt.Fprintf(&b, "<td>%s</td>\n", cell)
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</tbody>\n</table>")
	return b.String()
}

// flextableHTML renders a frame as a responsive grid. Each cell repeats
// its column header as a category label unless the cell is empty; the last
// column gets an end-of-row marker, or a last-row marker on the final row.
func flextableHTML(f *frame) string {
	cols := len(f.header)
	var b strings.Builder
	fmt.Fprintf(&b, "<div class=\"flextable\" style=\"grid-template-columns: repeat(%d, auto)\">\n", cols)
	for _, col := range f.header {
		fmt.Fprintf(&b, "<div class=\"flextable__header\">%s</div>\n", strings.TrimSpace(col))
	}
	for i, row := range f.rows {
		for j, cell := range row {
			class := ""
			if j == cols-1 {
				if i == len(f.rows)-1 {
					class = " flextable__item__last-row"
				} else {
					class = " flextable__item__end-of-row"
				}
			}
			category := ""
			if cell == "" {
				class = " remove_padding"
			} else {
				category = fmt.Sprintf("\t<div class=\"flextable__category\">%s</div>\n", strings.TrimSpace(f.header[j]))
			}
			fmt.Fprintf(&b, "<div class=\"flextable__item%s\">\n%s\t<div>%s</div>\n</div>\n", class, category, cell)
		}
	}
	b.WriteString("\n</div>\n")
	return b.String()
}

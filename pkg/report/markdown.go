package report

import (
	"fmt"

	md "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// Markdown renders the report's summary section as a markdown digest.
// The chart views have no textual form and are omitted.
func Markdown(data *Data) (string, error) {
	tables, err := renderTables(data)
	if err != nil {
		return "", fmt.Errorf("rendering summary tables: %w", err)
	}

	markdown, err := md.ConvertString(tables)
	if err != nil {
		return "", fmt.Errorf("converting summary to markdown: %w", err)
	}
	return markdown, nil
}

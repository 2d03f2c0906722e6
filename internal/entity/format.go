package entity

import "fmt"

type ResultFormat string

const (
	FormatMarkdown ResultFormat = "md"
	FormatPDF      ResultFormat = "pdf"
	FormatDOCX     ResultFormat = "docx"
)

// ParseResultFormat parses an export format query value. Empty defaults to
// markdown.
func ParseResultFormat(s string) (ResultFormat, error) {
	switch ResultFormat(s) {
	case FormatMarkdown, FormatPDF, FormatDOCX:
		return ResultFormat(s), nil
	case "":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: unsupported export format %q", ErrInvalidParameter, s)
	}
}

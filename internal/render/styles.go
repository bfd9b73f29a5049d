package render

// Layout values are in points on an A4 page.
const (
	Title = "DESCARGO ADMINISTRATIVO"

	FontFamily    = "Times"
	TitleSize     = 16
	BodySize      = 12
	LineHeight    = 16
	ParagraphGap  = 10
	FirstIndent   = 30
	MarginLeft    = 72
	MarginTop     = 72
	MarginRight   = 72
	MarginBottom  = 72
	titleBlankGap = LineHeight
)

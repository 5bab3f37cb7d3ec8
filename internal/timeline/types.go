// Package timeline turns header-keyed tabular rows into the nested event
// document consumed by the timeline widget.
//
// Everything in this package is pure: no I/O, no shared mutable state beyond
// the injected IDSource. A Converter may be used from several goroutines.
package timeline

// RawRecord maps a header name to the cell value of one data row.
// Missing keys and blank cells both mean "not provided".
type RawRecord map[string]string

// DatePart is a partial calendar date. Only Year is mandatory.
type DatePart struct {
	Year   int  `json:"year"`
	Month  *int `json:"month,omitempty"`
	Day    *int `json:"day,omitempty"`
	Hour   *int `json:"hour,omitempty"`
	Minute *int `json:"minute,omitempty"`
	Second *int `json:"second,omitempty"`
}

// MediaBlock describes the media attached to an event or to the title slide.
type MediaBlock struct {
	URL        string `json:"url"`
	Caption    string `json:"caption,omitempty"`
	Credit     string `json:"credit,omitempty"`
	Thumbnail  string `json:"thumbnail,omitempty"`
	Alt        string `json:"alt,omitempty"`
	Title      string `json:"title,omitempty"`
	Link       string `json:"link,omitempty"`
	LinkTarget string `json:"link_target,omitempty"`
}

// BackgroundBlock is only built when at least one of URL or Color is set.
type BackgroundBlock struct {
	URL   string `json:"url,omitempty"`
	Color string `json:"color,omitempty"`
}

// EventText holds the headline and body of a slide.
type EventText struct {
	Headline string `json:"headline"`
	Text     string `json:"text"`
}

// Event is one slide of the timeline.
type Event struct {
	StartDate   DatePart         `json:"start_date"`
	EndDate     *DatePart        `json:"end_date,omitempty"`
	Text        EventText        `json:"text"`
	Group       string           `json:"group"`
	UniqueID    string           `json:"unique_id"`
	DisplayDate string           `json:"display_date,omitempty"`
	Media       *MediaBlock      `json:"media,omitempty"`
	Background  *BackgroundBlock `json:"background,omitempty"`

	// Autolink is nil unless the source explicitly disabled it.
	Autolink *bool `json:"autolink,omitempty"`
}

// TitleText holds the title slide headline.
type TitleText struct {
	Headline string `json:"headline"`
}

// Title is the opening slide of the document.
type Title struct {
	Text       TitleText        `json:"text"`
	Media      *MediaBlock      `json:"media,omitempty"`
	Background *BackgroundBlock `json:"background,omitempty"`
}

// Document is the complete widget input. It never references the source records.
type Document struct {
	Events []Event `json:"events"`
	Title  Title   `json:"title"`
}

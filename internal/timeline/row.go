package timeline

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/tartampluch/go-timeline/internal/config"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Options holds the visualization defaults that are not derived from data.
type Options struct {
	// TitleHeadline is the headline of the title slide.
	TitleHeadline string
}

// Converter turns raw records into events and documents.
type Converter struct {
	Options Options
	IDs     IDSource
	Logger  *slog.Logger

	// OnReject, when set, is called for every candidate row that could not
	// become an event. index is the position of the row in the input.
	OnReject func(index int, err error)
}

// NewConverter returns a Converter using the process-level id source and the default logger.
func NewConverter(opts Options) *Converter {
	return &Converter{
		Options: opts,
		IDs:     DefaultIDSource(),
		Logger:  slog.Default(),
	}
}

// mediaColumns names the source columns feeding a MediaBlock.
type mediaColumns struct {
	url, caption, credit, thumbnail, alt, title, link, linkTarget string
}

var (
	eventMedia = mediaColumns{
		url:        config.ColMedia,
		caption:    config.ColMediaCaption,
		credit:     config.ColMediaCredit,
		thumbnail:  config.ColMediaThumbnail,
		alt:        config.ColMediaAlt,
		title:      config.ColMediaTitle,
		link:       config.ColMediaLink,
		linkTarget: config.ColMediaLinkTarget,
	}
	titleMedia = mediaColumns{
		url:        config.ColTitleMedia,
		caption:    config.ColTitleCaption,
		credit:     config.ColTitleCredit,
		thumbnail:  config.ColTitleThumbnail,
		alt:        config.ColTitleAlt,
		title:      config.ColTitleTitle,
		link:       config.ColTitleLink,
		linkTarget: config.ColTitleLinkTarget,
	}
)

// dateColumns names the source columns feeding a DatePart.
type dateColumns struct {
	year, month, day, time string
}

var (
	startDate = dateColumns{config.ColYear, config.ColMonth, config.ColDay, config.ColTime}
	endDate   = dateColumns{config.ColEndYear, config.ColEndMonth, config.ColEndDay, config.ColEndTime}
)

// Transform converts one record into an Event.
// It returns ErrMissingYear or ErrInvalidYear when the row is unusable.
func (c *Converter) Transform(rec RawRecord) (Event, error) {
	yearCell, ok := trimmed(rec, config.ColYear)
	if !ok {
		return Event{}, ErrMissingYear
	}
	year, err := strconv.Atoi(yearCell)
	if err != nil {
		return Event{}, fmt.Errorf("%w: %q", ErrInvalidYear, yearCell)
	}

	headline := rec[config.ColHeadline]
	group, _ := trimmed(rec, config.ColGroup)

	ev := Event{
		StartDate: DatePart{Year: year},
		Text: EventText{
			Headline: headline,
			Text:     rec[config.ColText],
		},
		Group:    group,
		UniqueID: c.uniqueID(rec, year, headline),
	}

	refineDate(&ev.StartDate, rec, startDate)

	if endCell, ok := trimmed(rec, endDate.year); ok {
		if endYear, err := strconv.Atoi(endCell); err == nil {
			end := DatePart{Year: endYear}
			refineDate(&end, rec, endDate)
			ev.EndDate = &end
		}
	}

	if display, ok := trimmed(rec, config.ColDisplayDate); ok {
		ev.DisplayDate = display
	}

	ev.Media = buildMedia(rec, eventMedia)
	ev.Background = buildBackground(rec, config.ColBackground, config.ColBackgroundColor)

	if rec[config.ColAutolink] == config.AutolinkDisabled {
		disabled := false
		ev.Autolink = &disabled
	}

	return ev, nil
}

// uniqueID prefers the source id, then a headline slug, then a random token.
func (c *Converter) uniqueID(rec RawRecord, year int, headline string) string {
	if id, ok := trimmed(rec, config.ColUniqueID); ok {
		return id
	}
	var slug string
	if headline != "" {
		slug = whitespaceRun.ReplaceAllString(headline, "-")
	} else {
		slug = c.idSource().Token()
	}
	return fmt.Sprintf(config.FormatEventID, config.EventIDPrefix, year, slug)
}

func (c *Converter) idSource() IDSource {
	if c.IDs == nil {
		return DefaultIDSource()
	}
	return c.IDs
}

// refineDate attaches month, day and time parts that parse and fall in range.
// Each part is judged on its own; a bad part never removes a good one.
func refineDate(d *DatePart, rec RawRecord, cols dateColumns) {
	if v, ok := trimmed(rec, cols.month); ok {
		d.Month = parseInRange(v, config.MinMonth, config.MaxMonth)
	}
	if v, ok := trimmed(rec, cols.day); ok {
		d.Day = parseInRange(v, config.MinDay, config.MaxDay)
	}

	clock, ok := trimmed(rec, cols.time)
	if !ok || !strings.Contains(clock, config.TimeSeparator) {
		return
	}
	parts := strings.Split(clock, config.TimeSeparator)
	if len(parts) < 2 {
		return
	}
	d.Hour = parseInRange(parts[0], config.MinHour, config.MaxHour)
	d.Minute = parseInRange(parts[1], config.MinMinute, config.MaxMinute)
	if len(parts) > 2 {
		d.Second = parseInRange(parts[2], config.MinSecond, config.MaxSecond)
	}
}

// parseInRange returns nil unless s is an integer within [lo, hi].
func parseInRange(s string, lo, hi int) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < lo || n > hi {
		return nil
	}
	return &n
}

// buildMedia returns nil unless the url column is provided.
// Secondary fields are copied verbatim.
func buildMedia(rec RawRecord, cols mediaColumns) *MediaBlock {
	url, ok := trimmed(rec, cols.url)
	if !ok {
		return nil
	}
	return &MediaBlock{
		URL:        url,
		Caption:    rec[cols.caption],
		Credit:     rec[cols.credit],
		Thumbnail:  rec[cols.thumbnail],
		Alt:        rec[cols.alt],
		Title:      rec[cols.title],
		Link:       rec[cols.link],
		LinkTarget: rec[cols.linkTarget],
	}
}

// buildBackground returns nil unless the url or color column is provided.
func buildBackground(rec RawRecord, urlCol, colorCol string) *BackgroundBlock {
	url, hasURL := trimmed(rec, urlCol)
	color, hasColor := trimmed(rec, colorCol)
	if !hasURL && !hasColor {
		return nil
	}
	return &BackgroundBlock{URL: url, Color: color}
}

// trimmed returns the trimmed cell and whether it is non-blank.
func trimmed(rec RawRecord, key string) (string, bool) {
	v := strings.TrimSpace(rec[key])
	return v, v != ""
}

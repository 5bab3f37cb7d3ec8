package timeline

import (
	"log/slog"

	"github.com/tartampluch/go-timeline/internal/config"
)

// Assemble builds a Document from records in input order.
//
// It fails with ErrNoData for empty input, ErrNoCandidateRows when no row has a
// year, ErrNoSurvivingEvents when every candidate is unusable, and a
// *ConversionError when assembly panics. Title media and background come from
// the first record of the input, whether or not that record is a candidate.
func (c *Converter) Assemble(records []RawRecord) (doc *Document, err error) {
	if len(records) == 0 {
		return nil, ErrNoData
	}

	candidates := make([]int, 0, len(records))
	for i, rec := range records {
		if _, ok := trimmed(rec, config.ColYear); ok {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNoCandidateRows
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger().Error(config.MsgRecovered,
				config.LogKeyComponent, config.CompTimeline,
				config.LogKeyError, r,
			)
			doc, err = nil, newConversionError(r)
		}
	}()

	events := make([]Event, 0, len(candidates))
	for _, i := range candidates {
		ev, rowErr := c.Transform(records[i])
		if rowErr != nil {
			c.reject(i, records[i], rowErr)
			continue
		}
		events = append(events, ev)
	}
	if len(events) == 0 {
		return nil, ErrNoSurvivingEvents
	}

	return &Document{
		Events: events,
		Title:  c.buildTitle(records[0]),
	}, nil
}

// buildTitle assembles the title slide from the configured headline and the first record.
func (c *Converter) buildTitle(first RawRecord) Title {
	headline := c.Options.TitleHeadline
	if headline == "" {
		headline = config.DefaultTitleHeadline
	}
	return Title{
		Text:       TitleText{Headline: headline},
		Media:      buildMedia(first, titleMedia),
		Background: buildBackground(first, config.ColTitleBackground, config.ColTitleBackgroundColor),
	}
}

// reject reports an unusable row on the diagnostic side channel.
func (c *Converter) reject(index int, rec RawRecord, err error) {
	c.logger().Warn(config.MsgRowRejected,
		config.LogKeyComponent, config.CompTimeline,
		config.LogKeyRow, index,
		config.LogKeyValue, rec[config.ColYear],
		config.LogKeyError, err,
	)
	if c.OnReject != nil {
		c.OnReject(index, err)
	}
}

func (c *Converter) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

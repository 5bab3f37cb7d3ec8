package engine

import (
	"bytes"
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/go-timeline/internal/config"
	"github.com/tartampluch/go-timeline/internal/timeline"
)

// ExportICS renders the document as an iCalendar feed and returns the number
// of exported events. Events whose year cannot be represented are skipped.
func ExportICS(doc *timeline.Document, now time.Time) ([]byte, int, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)
	if doc.Title.Text.Headline != "" {
		cal.Props.SetText(config.PropXWRCalName, doc.Title.Text.Headline)
	}

	dtStamp := ical.NewProp(config.PropDTStamp)
	dtStamp.SetDateTime(now.UTC())

	for _, ev := range doc.Events {
		if !icalYear(ev.StartDate.Year) {
			slog.Debug(config.MsgICalSkipped,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyUniqueID, ev.UniqueID,
				config.LogKeyValue, ev.StartDate.Year)
			continue
		}
		event := buildVEvent(ev)
		event.Props.Set(dtStamp)
		cal.Children = append(cal.Children, event.Component)
	}

	if len(cal.Children) == 0 {
		return []byte(config.StubVCalendar), 0, nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}
	return buf.Bytes(), len(cal.Children), nil
}

func buildVEvent(ev timeline.Event) *ical.Event {
	event := ical.NewEvent()
	event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatICalUID, ev.UniqueID, config.ICalDomain))

	summary := ev.Text.Headline
	if summary == "" {
		summary = ev.DisplayDate
	}
	if summary == "" {
		summary = ev.UniqueID
	}
	event.Props.SetText(config.PropSummary, summary)

	if ev.Text.Text != "" {
		event.Props.SetText(config.PropDescription, ev.Text.Text)
	}
	if ev.Group != "" {
		event.Props.SetText(config.PropCategories, ev.Group)
	}
	if ev.Media != nil && ev.Media.Link != "" {
		event.Props.SetText(config.PropURL, ev.Media.Link)
	}

	start, startTimed := icalTime(ev.StartDate)
	event.Props.Set(dateProp(config.PropDTStart, start, startTimed))

	if ev.EndDate != nil && icalYear(ev.EndDate.Year) {
		end, endTimed := icalTime(*ev.EndDate)
		if !endTimed {
			// DATE end values are exclusive.
			end = end.AddDate(0, 0, 1)
		}
		if endTimed == startTimed && end.After(start) {
			event.Props.Set(dateProp(config.PropDTEnd, end, endTimed))
		}
	}
	return event
}

func dateProp(name string, t time.Time, timed bool) *ical.Prop {
	prop := ical.NewProp(name)
	if timed {
		prop.SetDateTime(t)
	} else {
		prop.SetDate(t)
	}
	return prop
}

// icalTime maps a DatePart to a UTC time. Missing parts default to their
// minimum; out-of-month days roll over. timed is true when an hour is known.
func icalTime(d timeline.DatePart) (t time.Time, timed bool) {
	month, day := 1, 1
	if d.Month != nil {
		month = *d.Month
	}
	if d.Day != nil {
		day = *d.Day
	}
	var hour, minute, second int
	if d.Hour != nil {
		hour, timed = *d.Hour, true
	}
	if d.Minute != nil {
		minute = *d.Minute
	}
	if d.Second != nil {
		second = *d.Second
	}
	return time.Date(d.Year, time.Month(month), day, hour, minute, second, 0, time.UTC), timed
}

func icalYear(year int) bool {
	return year >= config.ICalMinYear && year <= config.ICalMaxYear
}

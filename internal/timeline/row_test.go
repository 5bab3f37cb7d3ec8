package timeline_test

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-timeline/internal/timeline"
)

// newTestConverter returns a converter with a pinned id source.
func newTestConverter() *timeline.Converter {
	c := timeline.NewConverter(timeline.Options{TitleHeadline: "Test"})
	c.IDs = timeline.NewSeededIDSource(42)
	return c
}

func intPtr(n int) *int { return &n }

func TestTransform_YearParsing(t *testing.T) {
	tests := []struct {
		name     string
		year     string
		present  bool
		wantYear int
		wantErr  error
	}{
		{"Plain", "1947", true, 1947, nil},
		{"Padded", "  2001 ", true, 2001, nil},
		{"Negative (BCE)", "-500", true, -500, nil},
		{"Zero", "0", true, 0, nil},
		{"Absent", "", false, 0, timeline.ErrMissingYear},
		{"Blank", "   ", true, 0, timeline.ErrMissingYear},
		{"Non-numeric", "nineteen", true, 0, timeline.ErrInvalidYear},
		{"Decimal", "1947.5", true, 0, timeline.ErrInvalidYear},
	}

	c := newTestConverter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := timeline.RawRecord{"Headline": "x"}
			if tt.present {
				rec["Year"] = tt.year
			}

			ev, err := c.Transform(rec)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantYear, ev.StartDate.Year)
		})
	}
}

func TestTransform_IdentityFields(t *testing.T) {
	c := newTestConverter()

	ev, err := c.Transform(timeline.RawRecord{
		"Year":     "1947",
		"Headline": "Independence",
		"Group":    "  Politics ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Politics", ev.Group)
	assert.Equal(t, "event-1947-Independence", ev.UniqueID)
	assert.Equal(t, "Independence", ev.Text.Headline)
	assert.Equal(t, "", ev.Text.Text)

	ev, err = c.Transform(timeline.RawRecord{
		"Year":      "1947",
		"Headline":  "Independence",
		"Unique ID": "india-1947",
	})
	require.NoError(t, err)
	assert.Equal(t, "india-1947", ev.UniqueID, "Explicit id wins over the slug")
	assert.Equal(t, "", ev.Group)
}

func TestTransform_HeadlineSlug(t *testing.T) {
	c := newTestConverter()

	ev, err := c.Transform(timeline.RawRecord{
		"Year":     "1969",
		"Headline": "Moon \t landing\n  day",
	})
	require.NoError(t, err)
	assert.Equal(t, "event-1969-Moon-landing-day", ev.UniqueID, "Whitespace runs collapse to one hyphen")
}

func TestTransform_RandomFallbackID(t *testing.T) {
	pattern := regexp.MustCompile(`^event-2000-[0-9a-z]{7}$`)

	first, err := newTestConverter().Transform(timeline.RawRecord{"Year": "2000"})
	require.NoError(t, err)
	assert.Regexp(t, pattern, first.UniqueID)

	second, err := newTestConverter().Transform(timeline.RawRecord{"Year": "2000"})
	require.NoError(t, err)
	assert.Equal(t, first.UniqueID, second.UniqueID, "Same seed must yield the same token")

	def := timeline.NewConverter(timeline.Options{})
	ev, err := def.Transform(timeline.RawRecord{"Year": "2000"})
	require.NoError(t, err)
	assert.Regexp(t, pattern, ev.UniqueID)
}

func TestTransform_DateBoundaries(t *testing.T) {
	tests := []struct {
		name  string
		cells timeline.RawRecord
		want  timeline.DatePart
	}{
		{
			name:  "All valid",
			cells: timeline.RawRecord{"Month": "6", "Day": "15", "Time": "13:45:30"},
			want:  timeline.DatePart{Year: 2000, Month: intPtr(6), Day: intPtr(15), Hour: intPtr(13), Minute: intPtr(45), Second: intPtr(30)},
		},
		{
			name:  "Month 0",
			cells: timeline.RawRecord{"Month": "0", "Day": "15"},
			want:  timeline.DatePart{Year: 2000, Day: intPtr(15)},
		},
		{
			name:  "Month 13",
			cells: timeline.RawRecord{"Month": "13", "Day": "15"},
			want:  timeline.DatePart{Year: 2000, Day: intPtr(15)},
		},
		{
			name:  "Day 0",
			cells: timeline.RawRecord{"Month": "6", "Day": "0"},
			want:  timeline.DatePart{Year: 2000, Month: intPtr(6)},
		},
		{
			name:  "Day 32",
			cells: timeline.RawRecord{"Month": "6", "Day": "32"},
			want:  timeline.DatePart{Year: 2000, Month: intPtr(6)},
		},
		{
			name:  "February 31 is kept",
			cells: timeline.RawRecord{"Month": "2", "Day": "31"},
			want:  timeline.DatePart{Year: 2000, Month: intPtr(2), Day: intPtr(31)},
		},
		{
			name:  "Hour 24",
			cells: timeline.RawRecord{"Time": "24:10:05"},
			want:  timeline.DatePart{Year: 2000, Minute: intPtr(10), Second: intPtr(5)},
		},
		{
			name:  "Minute 60",
			cells: timeline.RawRecord{"Time": "10:60:05"},
			want:  timeline.DatePart{Year: 2000, Hour: intPtr(10), Second: intPtr(5)},
		},
		{
			name:  "Second 60",
			cells: timeline.RawRecord{"Time": "10:20:60"},
			want:  timeline.DatePart{Year: 2000, Hour: intPtr(10), Minute: intPtr(20)},
		},
		{
			name:  "Midnight is a valid hour",
			cells: timeline.RawRecord{"Time": "00:00"},
			want:  timeline.DatePart{Year: 2000, Hour: intPtr(0), Minute: intPtr(0)},
		},
		{
			name:  "Time without colon is ignored",
			cells: timeline.RawRecord{"Time": "1030"},
			want:  timeline.DatePart{Year: 2000},
		},
		{
			name:  "Garbage parts are dropped one by one",
			cells: timeline.RawRecord{"Time": "ab:15"},
			want:  timeline.DatePart{Year: 2000, Minute: intPtr(15)},
		},
	}

	c := newTestConverter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := timeline.RawRecord{"Year": "2000", "Headline": "h"}
			for k, v := range tt.cells {
				rec[k] = v
			}

			ev, err := c.Transform(rec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ev.StartDate)
		})
	}
}

func TestTransform_EndDate(t *testing.T) {
	c := newTestConverter()

	t.Run("End month without end year is dropped", func(t *testing.T) {
		ev, err := c.Transform(timeline.RawRecord{"Year": "2000", "Headline": "h", "End Month": "6"})
		require.NoError(t, err)
		assert.Nil(t, ev.EndDate)
		assert.Nil(t, ev.StartDate.Month, "End month must not leak into the start date")
	})

	t.Run("Invalid end year drops the end date", func(t *testing.T) {
		ev, err := c.Transform(timeline.RawRecord{"Year": "2000", "Headline": "h", "End Year": "soon", "End Day": "3"})
		require.NoError(t, err)
		assert.Nil(t, ev.EndDate)
	})

	t.Run("Full end date", func(t *testing.T) {
		ev, err := c.Transform(timeline.RawRecord{
			"Year": "2000", "Headline": "h",
			"End Year": "2003", "End Month": "13", "End Day": "4", "End Time": "7:30",
		})
		require.NoError(t, err)
		require.NotNil(t, ev.EndDate)
		assert.Equal(t, timeline.DatePart{Year: 2003, Day: intPtr(4), Hour: intPtr(7), Minute: intPtr(30)}, *ev.EndDate)
	})
}

func TestTransform_OptionalBlocks(t *testing.T) {
	c := newTestConverter()

	t.Run("Display date is trimmed", func(t *testing.T) {
		ev, err := c.Transform(timeline.RawRecord{"Year": "2000", "Headline": "h", "Display Date": "  Spring 2000 "})
		require.NoError(t, err)
		assert.Equal(t, "Spring 2000", ev.DisplayDate)
	})

	t.Run("Media needs a url", func(t *testing.T) {
		ev, err := c.Transform(timeline.RawRecord{"Year": "2000", "Headline": "h", "Media": "  ", "Media Caption": "cap"})
		require.NoError(t, err)
		assert.Nil(t, ev.Media)
	})

	t.Run("Media secondary fields are verbatim", func(t *testing.T) {
		ev, err := c.Transform(timeline.RawRecord{
			"Year": "2000", "Headline": "h",
			"Media":         " http://x/a.png ",
			"Media Caption": " A caption ",
			"Media Credit":  "AP",
			"Thumbnail":     "http://x/t.png",
			"Alt":           "alt",
			"Title":         "title",
			"Link":          "http://x",
			"Link Target":   "_blank",
		})
		require.NoError(t, err)
		require.NotNil(t, ev.Media)
		assert.Equal(t, timeline.MediaBlock{
			URL:        "http://x/a.png",
			Caption:    " A caption ",
			Credit:     "AP",
			Thumbnail:  "http://x/t.png",
			Alt:        "alt",
			Title:      "title",
			Link:       "http://x",
			LinkTarget: "_blank",
		}, *ev.Media)
	})

	t.Run("Background color alone", func(t *testing.T) {
		ev, err := c.Transform(timeline.RawRecord{"Year": "2000", "Headline": "h", "Background Color": " #fff "})
		require.NoError(t, err)
		require.NotNil(t, ev.Background)
		assert.Equal(t, timeline.BackgroundBlock{Color: "#fff"}, *ev.Background)
	})

	t.Run("No background", func(t *testing.T) {
		ev, err := c.Transform(timeline.RawRecord{"Year": "2000", "Headline": "h", "Background": " "})
		require.NoError(t, err)
		assert.Nil(t, ev.Background)
	})
}

func TestTransform_Autolink(t *testing.T) {
	tests := []struct {
		value string
		want  *bool
	}{
		{"FALSE", new(bool)},
		{"false", nil},
		{"False", nil},
		{" FALSE", nil},
		{"TRUE", nil},
		{"", nil},
	}

	c := newTestConverter()
	for _, tt := range tests {
		t.Run("Value "+tt.value, func(t *testing.T) {
			ev, err := c.Transform(timeline.RawRecord{"Year": "2000", "Autolink": tt.value})
			require.NoError(t, err)
			assert.Equal(t, tt.want, ev.Autolink)
		})
	}
}

func TestTransform_ErrorsAreDistinct(t *testing.T) {
	_, err := newTestConverter().Transform(timeline.RawRecord{"Year": "abc"})
	assert.True(t, errors.Is(err, timeline.ErrInvalidYear))
	assert.False(t, errors.Is(err, timeline.ErrMissingYear))
	assert.Contains(t, err.Error(), `"abc"`)
}

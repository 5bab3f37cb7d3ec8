package engine_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-timeline/internal/config"
	"github.com/tartampluch/go-timeline/internal/engine"
	"github.com/tartampluch/go-timeline/internal/metrics"
	"github.com/tartampluch/go-timeline/internal/timeline"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

// MockFetcher simulates the network layer for unit tests using `testify/mock`.
type MockFetcher struct {
	mock.Mock
}

// Fetch implements the engine.SourceFetcher interface.
func (m *MockFetcher) Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error) {
	args := m.Called(ctx, url, user, pass)
	if r := args.Get(0); r != nil {
		return r.(io.ReadCloser), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

const sampleCSV = `Year,Month,Day,Headline,Text,Group,Title Media
1947,8,15,Independence,Midnight,Politics,http://x/cover.png
oops,,,Broken,,,
,,,No year,,,
1969,7,20,Moon landing,,Space,
`

func newGenerator(fetcher engine.SourceFetcher) *engine.Generator {
	return &engine.Generator{
		Clock:   MockClock{CurrentTime: fixedNow},
		Fetcher: fetcher,
		Options: timeline.Options{TitleHeadline: "History"},
		IDs:     timeline.NewSeededIDSource(1),
		Metrics: metrics.New(),
	}
}

// -----------------------------------------------------------------------------
// Test Cases
// -----------------------------------------------------------------------------

func TestRunSync_Local_Success(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), config.FilePermUserRW))

	res, err := newGenerator(nil).RunSync(context.Background(), engine.SyncConfig{
		Mode:      config.SourceModeLocal,
		LocalPath: path,
	})
	require.NoError(t, err)

	assert.Equal(t, 4, res.Records)
	assert.Equal(t, 1, res.Rejected)
	assert.Equal(t, 2, res.Exported)
	assert.Equal(t, fixedNow, res.GeneratedAt)

	require.NotNil(t, res.Document)
	require.Len(t, res.Document.Events, 2)
	assert.Equal(t, "event-1947-Independence", res.Document.Events[0].UniqueID)
	assert.Equal(t, "History", res.Document.Title.Text.Headline)
	require.NotNil(t, res.Document.Title.Media)
	assert.Equal(t, "http://x/cover.png", res.Document.Title.Media.URL)

	var decoded timeline.Document
	require.NoError(t, json.Unmarshal(res.JSON, &decoded))
	assert.Equal(t, *res.Document, decoded, "JSON bytes match the returned document")

	ics := string(res.ICS)
	assert.Contains(t, ics, "BEGIN:VCALENDAR")
	assert.Contains(t, ics, "SUMMARY:Moon landing")
}

func TestRunSync_Web_Delimiter(t *testing.T) {
	body := "Year;Headline\n2001;Odyssey\n"
	mockFetcher := new(MockFetcher)
	mockFetcher.On("Fetch", mock.Anything, "http://example.com/events.csv", "alice", "s3cret").
		Return(io.NopCloser(strings.NewReader(body)), nil)

	res, err := newGenerator(mockFetcher).RunSync(context.Background(), engine.SyncConfig{
		Mode:      config.SourceModeWeb,
		WebURL:    "http://example.com/events.csv",
		WebUser:   "alice",
		WebPass:   "s3cret",
		Delimiter: config.DelimiterSemicolon,
	})
	require.NoError(t, err)
	require.Len(t, res.Document.Events, 1)
	assert.Equal(t, "Odyssey", res.Document.Events[0].Text.Headline)

	mockFetcher.AssertExpectations(t)
}

func TestRunSync_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name    string
		cfg     engine.SyncConfig
		fetcher engine.SourceFetcher
		wantErr string
	}{
		{"Local path empty", engine.SyncConfig{Mode: config.SourceModeLocal}, nil, config.ErrLocalPathEmpty},
		{"Web URL empty", engine.SyncConfig{Mode: config.SourceModeWeb}, nil, config.ErrWebURLEmpty},
		{"Fetcher missing", engine.SyncConfig{Mode: config.SourceModeWeb, WebURL: "http://x"}, nil, config.ErrFetcherMissing},
		{"Unknown mode", engine.SyncConfig{Mode: "carrier-pigeon"}, nil, config.ErrModeUnsupport},
		{"Unknown delimiter", engine.SyncConfig{Mode: config.SourceModeLocal, LocalPath: "x", Delimiter: "colon"}, nil, config.ErrDelimiter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newGenerator(tt.fetcher).RunSync(context.Background(), tt.cfg)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestRunSync_SourceErrors(t *testing.T) {
	mockFetcher := new(MockFetcher)
	mockFetcher.On("Fetch", mock.Anything, "http://example.com", "", "").
		Return(nil, errors.New("connection refused"))

	_, err := newGenerator(mockFetcher).RunSync(context.Background(), engine.SyncConfig{
		Mode:   config.SourceModeWeb,
		WebURL: "http://example.com",
	})

	var srcErr *engine.SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.ErrorContains(t, err, "connection refused")

	_, err = newGenerator(nil).RunSync(context.Background(), engine.SyncConfig{
		Mode:      config.SourceModeLocal,
		LocalPath: filepath.Join(t.TempDir(), "missing.csv"),
	})
	assert.ErrorAs(t, err, &srcErr)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunSync_ContextCancelled(t *testing.T) {
	mockFetcher := new(MockFetcher)
	mockFetcher.On("Fetch", mock.Anything, "http://example.com", "", "").
		Return(nil, context.Canceled)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newGenerator(mockFetcher).RunSync(ctx, engine.SyncConfig{
		Mode:   config.SourceModeWeb,
		WebURL: "http://example.com",
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConvert_DocumentFailures(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"Empty", "", timeline.ErrNoData},
		{"Header only", "Year,Headline\n", timeline.ErrNoData},
		{"No year", "Headline\nSomething\n", timeline.ErrNoCandidateRows},
		{"All invalid", "Year\nabc\n12.5\n", timeline.ErrNoSurvivingEvents},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := newGenerator(nil).Convert(context.Background(), strings.NewReader(tt.input), ',')
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, res.Document)
		})
	}
}

func TestConvert_MalformedSource(t *testing.T) {
	_, err := newGenerator(nil).Convert(context.Background(), strings.NewReader(",,\n1,2,3\n"), ',')

	var srcErr *engine.SourceError
	assert.ErrorAs(t, err, &srcErr)
}

func TestConvert_Deterministic(t *testing.T) {
	input := "Year,Headline\n2000,\n2001,\n"

	first, err := newGenerator(nil).Convert(context.Background(), strings.NewReader(input), ',')
	require.NoError(t, err)
	second, err := newGenerator(nil).Convert(context.Background(), strings.NewReader(input), ',')
	require.NoError(t, err)

	assert.Equal(t, first.JSON, second.JSON, "Seeded ids and a fixed clock give identical output")
	assert.Equal(t, first.ICS, second.ICS)
}

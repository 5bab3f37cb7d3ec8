package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/tartampluch/go-timeline/internal/config"
	"github.com/tartampluch/go-timeline/internal/metrics"
	"github.com/tartampluch/go-timeline/internal/schema"
	"github.com/tartampluch/go-timeline/internal/timeline"
)

// SyncConfig contains all parameters required to perform a synchronization.
type SyncConfig struct {
	Mode      string // config.SourceModeLocal or config.SourceModeWeb
	LocalPath string // Path to the delimited file
	WebURL    string // http(s) URL of the delimited file
	WebUser   string // HTTP Basic Auth Username
	WebPass   string // HTTP Basic Auth Password
	Delimiter string // Named delimiter, see config.Delimiters
}

// Result is the output of one conversion.
type Result struct {
	Document    *timeline.Document
	JSON        []byte
	ICS         []byte
	GeneratedAt time.Time

	Records  int // Rows read from the source
	Rejected int // Candidate rows that could not become events
	Exported int // Events present in the iCalendar export
}

// Generator fetches the source file and converts it into a timeline document.
type Generator struct {
	Clock   Clock
	Fetcher SourceFetcher
	Options timeline.Options

	// IDs overrides the id source used for rows without id or headline.
	IDs     timeline.IDSource
	Metrics *metrics.Metrics
}

// RunSync executes the fetch, convert and encode pipeline for the configured source.
func (g *Generator) RunSync(ctx context.Context, cfg SyncConfig) (Result, error) {
	start := g.now()
	log := slog.With(
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyMode, cfg.Mode,
	)
	log.InfoContext(ctx, config.MsgSyncStarted)

	res, err := g.runSync(ctx, cfg)
	g.Metrics.ObserveSync(start, g.now(), len(eventsOf(res.Document)), err)
	if err != nil {
		return Result{}, err
	}

	log.DebugContext(ctx, "Sync finished", config.LogKeyDuration, g.now().Sub(start).Milliseconds())
	return res, nil
}

func (g *Generator) runSync(ctx context.Context, cfg SyncConfig) (Result, error) {
	delim, err := config.DelimiterRune(cfg.Delimiter)
	if err != nil {
		return Result{}, err
	}

	reader, err := g.acquireStream(ctx, cfg)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, &SourceError{Err: err}
	}
	defer func() { _ = reader.Close() }()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	return g.convert(ctx, reader, delim, config.MetricsSourceSync)
}

// Convert turns delimited text into a Result without touching the configured source.
func (g *Generator) Convert(ctx context.Context, r io.Reader, delim rune) (Result, error) {
	return g.convert(ctx, r, delim, config.MetricsSourceUpload)
}

func (g *Generator) convert(ctx context.Context, r io.Reader, delim rune, source string) (res Result, err error) {
	defer func() { g.Metrics.ObserveConversion(source, err) }()

	records, err := ReadRecords(r, delim)
	if err != nil {
		return Result{}, &SourceError{Err: err}
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	rejected := 0
	conv := timeline.NewConverter(g.Options)
	conv.Logger = slog.Default().With(config.LogKeyComponent, config.CompTimeline)
	if g.IDs != nil {
		conv.IDs = g.IDs
	}
	conv.OnReject = func(int, error) { rejected++ }

	doc, err := conv.Assemble(records)
	if err != nil {
		return Result{}, err
	}
	g.Metrics.ObserveRows(len(doc.Events), rejected)

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	res, err = g.encode(doc)
	if err != nil {
		return Result{}, err
	}
	res.Records = len(records)
	res.Rejected = rejected

	slog.Info(config.MsgGenSuccess,
		config.LogKeyComponent, config.CompEngine,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyRecords, res.Records),
			slog.Int(config.LogKeyEvents, len(doc.Events)),
			slog.Int(config.LogKeyRejected, res.Rejected),
			slog.Int(config.LogKeyExported, res.Exported),
		),
	)
	return res, nil
}

// encode validates a document and renders its JSON and iCalendar forms.
func (g *Generator) encode(doc *timeline.Document) (Result, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return Result{}, fmt.Errorf("%s: %w", config.ErrJSONEncode, err)
	}
	if err := schema.ValidateJSON(buf.Bytes()); err != nil {
		return Result{}, err
	}

	now := g.now()
	ics, exported, err := ExportICS(doc, now)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Document:    doc,
		JSON:        buf.Bytes(),
		ICS:         ics,
		GeneratedAt: now,
		Exported:    exported,
	}, nil
}

// acquireStream opens the appropriate data source based on configuration.
func (g *Generator) acquireStream(ctx context.Context, cfg SyncConfig) (io.ReadCloser, error) {
	switch cfg.Mode {
	case config.SourceModeLocal:
		if cfg.LocalPath == "" {
			return nil, errors.New(config.ErrLocalPathEmpty)
		}
		return os.Open(cfg.LocalPath)
	case config.SourceModeWeb:
		if cfg.WebURL == "" {
			return nil, errors.New(config.ErrWebURLEmpty)
		}
		if g.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		return g.Fetcher.Fetch(ctx, cfg.WebURL, cfg.WebUser, cfg.WebPass)
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrModeUnsupport, cfg.Mode)
	}
}

func (g *Generator) now() time.Time {
	if g.Clock == nil {
		return time.Now()
	}
	return g.Clock.Now()
}

func eventsOf(doc *timeline.Document) []timeline.Event {
	if doc == nil {
		return nil
	}
	return doc.Events
}

// SourceError reports that the source file could not be opened or parsed.
type SourceError struct {
	Err error
}

func (e *SourceError) Error() string {
	return e.Err.Error()
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

package dbexport

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"sqlexport/exporterr"
	"sqlexport/metrics"
)

// State is a step of a pipeline run.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateCountingRows
	StateStreaming
	StateFlushing
	StateClosed
	StateError
)

var stateNames = [...]string{"idle", "connecting", "counting_rows", "streaming", "flushing", "closed", "error"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Options tune a run.
type Options struct {
	ChunkSize      int    // rows per file in multi-file mode
	SingleFileMax  int64  // largest count exported as a single file; 0 means the default, negative always splits
	FetchSize      int    // driver fetch batch size
	Output         string // output base name
	Dir            string // output directory
	Ext            string // output extension; set from the writer when empty
	ClientDir      string // resolved native client directory, "" for the system path
	SkipValidation bool
}

// DefaultOptions returns the standard thresholds.
func DefaultOptions() Options {
	return Options{
		ChunkSize:     200_000,
		SingleFileMax: 500_000,
		FetchSize:     10_000,
		Output:        "output",
		Ext:           "xlsx",
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ChunkSize <= 0 {
		o.ChunkSize = d.ChunkSize
	}
	if o.SingleFileMax == 0 {
		o.SingleFileMax = d.SingleFileMax
	}
	if o.FetchSize <= 0 {
		o.FetchSize = d.FetchSize
	}
	if o.Output == "" {
		o.Output = d.Output
	}
	if o.Ext == "" {
		o.Ext = d.Ext
	}
	return o
}

// Target identifies the database to export from.
type Target struct {
	Dialect  Dialect
	User     string
	Password string
	DSN      string
}

var clientInit struct {
	once sync.Once
	dir  string
}

// InitClient fixes the native client directory for the process. Drivers load
// their client library once, so only the first call's dir takes effect.
func InitClient(dir string) string {
	clientInit.once.Do(func() { clientInit.dir = dir })
	return clientInit.dir
}

// Pipeline exports the result of one query into chunked spreadsheet files.
// A Pipeline runs once; it owns one connection and one cursor at a time.
type Pipeline struct {
	target   Target
	writer   ChunkWriter
	opts     Options
	log      *zap.SugaredLogger
	metrics  *metrics.Recorder
	progress Progress
	state    State
}

// NewPipeline creates a pipeline writing with w. A nil log discards output.
func NewPipeline(t Target, w ChunkWriter, opts Options, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	opts = opts.withDefaults()
	if w != nil {
		opts.Ext = w.Ext()
	}
	return &Pipeline{
		target:   t,
		writer:   w,
		opts:     opts,
		log:      log.Sugar(),
		metrics:  metrics.New(),
		progress: noProgress{},
	}
}

// SetMetrics replaces the run's metrics recorder.
func (p *Pipeline) SetMetrics(r *metrics.Recorder) {
	if r != nil {
		p.metrics = r
	}
}

// SetProgress installs a progress reporter.
func (p *Pipeline) SetProgress(pr Progress) {
	if pr != nil {
		p.progress = pr
	}
}

// State returns the current state.
func (p *Pipeline) State() State { return p.state }

func (p *Pipeline) setState(s State) {
	p.log.Debugf("pipeline state: %s -> %s", p.state, s)
	p.state = s
}

// fail moves to the error state and logs err once.
func (p *Pipeline) fail(err error) error {
	p.setState(StateError)
	kind := exporterr.KindOf(err)
	p.metrics.Error(string(kind))
	switch kind {
	case exporterr.KindConnection:
		p.log.Errorf("Database connection error: %v", err)
	case exporterr.KindQuerySyntax:
		p.log.Errorf("SQL validation failed: %v", err)
	case exporterr.KindWrite:
		p.log.Errorf("Write error: %v", err)
	default:
		p.log.Errorf("Export failed: %v", err)
	}
	return err
}

// Run executes query and writes the output files. The connection and cursor
// are released on every return path. Fatal errors are logged before being
// returned; the manifest describes whatever was written.
func (p *Pipeline) Run(ctx context.Context, query string) (*Manifest, error) {
	start := time.Now()
	m := &Manifest{}
	err := p.run(ctx, query, m, true)
	if err == nil {
		p.setState(StateClosed)
		p.log.Infof("Export finished: %d rows in %d file(s), %d skipped, %s",
			m.Exported, len(m.Files), m.Skipped, time.Since(start).Round(time.Millisecond))
	}
	p.metrics.Finish(time.Since(start), err == nil)
	return m, err
}

// DryRun connects, validates and counts like Run, then returns the files Run
// would write for that count without reading any row.
func (p *Pipeline) DryRun(ctx context.Context, query string) (*Manifest, error) {
	m := &Manifest{}
	if err := p.run(ctx, query, m, false); err != nil {
		return m, err
	}
	p.setState(StateClosed)
	return m, nil
}

func (p *Pipeline) run(ctx context.Context, query string, m *Manifest, export bool) error {
	if export && p.writer == nil {
		return p.fail(exporterr.Write("init", errors.New("no chunk writer configured")))
	}
	db, conn, err := p.connect(ctx)
	if err != nil {
		return p.fail(err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			p.log.Warnf("error closing connection: %v", err)
		}
		if err := db.Close(); err != nil {
			p.log.Warnf("error closing database: %v", err)
		}
		p.log.Debug("Database connection closed")
	}()

	if !p.opts.SkipValidation {
		stmt, warning, err := CheckQuery(p.target.Dialect, query)
		if err != nil {
			return p.fail(err)
		}
		switch {
		case warning != nil:
			p.log.Warnf("query not recognized by the generic SQL grammar, sending it unchanged: %v", warning)
		case !IsSelect(stmt):
			p.log.Warn("query is not a SELECT statement; the row count may fail")
		}
	}

	p.setState(StateCountingRows)
	src := NewSource(conn, p.target.Dialect, p.opts.FetchSize)
	defer func() {
		if err := src.Close(); err != nil {
			p.log.Warnf("error closing cursor: %v", err)
		}
		p.log.Debug("Cursor closed")
	}()
	total, err := src.Count(ctx, query)
	if err != nil {
		return p.fail(err)
	}
	m.TotalRows = total
	p.metrics.QueryRows(total)
	p.log.Infof("Total rows: %d", total)
	if !export {
		m.Mode, m.Files = Plan(total, p.opts)
		return nil
	}

	if err := src.Open(ctx, query); err != nil {
		return p.fail(err)
	}
	m.Mode = ChooseMode(total, p.opts.SingleFileMax)
	if m.Mode == ModeSingle {
		err = p.exportSingle(ctx, src, m)
	} else {
		err = p.exportMulti(ctx, src, m)
	}
	if err != nil {
		return p.fail(err)
	}
	return nil
}

func (p *Pipeline) connect(ctx context.Context) (*sql.DB, *sql.Conn, error) {
	p.setState(StateConnecting)
	d := p.target.Dialect
	libDir := ""
	if d.NeedsClient {
		libDir = InitClient(p.opts.ClientDir)
		if libDir != "" {
			p.log.Infof("Client library initialized: %s", libDir)
		} else {
			p.log.Warn("No client library directory; using the system library search path")
		}
	}
	dsn, err := d.BuildDSN(p.target.User, p.target.Password, p.target.DSN, libDir)
	if err != nil {
		return nil, nil, exporterr.Connection("build dsn", err)
	}
	db, err := sqlOpen(d.Driver, dsn)
	if err != nil {
		return nil, nil, exporterr.Connection("open", fmt.Errorf("error creating connection pool: %w", err))
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, exporterr.Connection("ping", fmt.Errorf("cannot connect to database: %w", err))
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, nil, exporterr.Connection("acquire connection", err)
	}
	p.log.Infof("Connected to %s", d.Name)
	return db, conn, nil
}

// exportSingle materializes every row into one chunk and writes it, even
// when the result is empty.
func (p *Pipeline) exportSingle(ctx context.Context, src *Source, m *Manifest) error {
	p.setState(StateStreaming)
	var rows []Row
	err := p.collect(ctx, src, m, 0, func(batch []Row) error {
		rows = batch
		return nil
	})
	if err != nil {
		return err
	}
	p.setState(StateFlushing)
	name := SingleFileName(p.opts.Dir, p.opts.Output, p.opts.Ext)
	if err := p.writeChunk(Chunk{Columns: src.Columns(), Rows: rows}, name, m); err != nil {
		return err
	}
	p.log.Infof("Data exported to %s", name)
	return nil
}

// exportMulti writes every ChunkSize rows to the next numbered file and the
// remaining partial chunk, if any, after the stream ends.
func (p *Pipeline) exportMulti(ctx context.Context, src *Source, m *Manifest) error {
	p.setState(StateStreaming)
	counter := 1
	write := func(batch []Row) error {
		name := ChunkFileName(p.opts.Dir, p.opts.Output, counter, p.opts.Ext)
		if err := p.writeChunk(Chunk{Columns: src.Columns(), Rows: batch}, name, m); err != nil {
			return err
		}
		p.log.Infof("Saved file: %s", name)
		counter++
		return nil
	}
	return p.collect(ctx, src, m, p.opts.ChunkSize, write)
}

// collect reads the stream, handing full batches of limit rows to flush.
// With limit 0 all rows form one batch. The final partial batch is flushed
// only when non-empty, except in unbounded mode where it is always handed
// over. Unreadable rows are logged and dropped.
func (p *Pipeline) collect(ctx context.Context, src *Source, m *Manifest, limit int, flush func([]Row) error) error {
	capHint := m.TotalRows
	if limit > 0 {
		capHint = min(capHint, int64(limit))
	}
	batch := make([]Row, 0, max(capHint, 0))
	cols := src.Columns()
	var read int64

	p.progress.Start(m.TotalRows)
	defer p.progress.Finish()
	for {
		if err := ctx.Err(); err != nil {
			return exporterr.Query("fetch rows", err)
		}
		row, err := src.Next()
		if err == io.EOF {
			break
		}
		read++
		p.progress.Update(read)
		var rowErr *RowError
		if errors.As(err, &rowErr) {
			m.Skipped++
			p.metrics.RowSkipped()
			p.metrics.Error(string(exporterr.KindRowProcessing))
			p.log.Errorf("Row %d failed: columns: %v data: %v, error: %v", rowErr.Index, cols, rowErr.Values, rowErr.Err)
			continue
		}
		if err != nil {
			return err
		}
		batch = append(batch, row)
		if limit > 0 && len(batch) >= limit {
			if err := flush(batch); err != nil {
				return err
			}
			batch = make([]Row, 0, limit)
		}
	}
	if limit > 0 {
		if len(batch) == 0 {
			return nil
		}
		p.setState(StateFlushing)
	}
	return flush(batch)
}

func (p *Pipeline) writeChunk(c Chunk, name string, m *Manifest) error {
	if err := p.writer.Write(Sanitize(c), name); err != nil {
		return err
	}
	m.Files = append(m.Files, FileEntry{Name: name, Rows: c.Len()})
	m.Exported += int64(c.Len())
	p.metrics.FileWritten()
	p.metrics.RowsExported(c.Len())
	return nil
}

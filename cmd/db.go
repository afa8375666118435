// Package cmd contains the command-line interface of sqlexport.
//
// This file prepares everything a command needs before the first database
// round trip: settings, the run log, the query, the credentials and the
// native client directory, plus context and signal handling.
//
// The credential file holds key=value lines:
//   - user:       database user
//   - password:   database password
//   - dsn:        connect string, host:port/service for Oracle
//   - driver:     oracle (default), sqlserver, postgres, mysql, snowflake,
//     odbc, sqlite3, sqlite or duckdb
//   - client_dir: native client directory (optional)
//
// SQLEXPORT_USER, SQLEXPORT_PASSWORD, SQLEXPORT_DSN, SQLEXPORT_DRIVER and
// SQLEXPORT_CLIENT_DIR override the file. A .env file can be used for local
// development.
package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sqlexport/config"
	"sqlexport/dbexport"
	"sqlexport/exporterr"
	"sqlexport/logging"
	"sqlexport/metrics"
)

// run is what a command gets once its inputs are loaded.
type run struct {
	settings  config.Settings
	query     string
	target    dbexport.Target
	clientDir string
	log       *zap.Logger
	metrics   *metrics.Recorder
}

// newPipeline builds the export pipeline for r.
func (r *run) newPipeline() (*dbexport.Pipeline, error) {
	w, err := dbexport.NewChunkWriter(r.settings.Format, r.settings.Sheet)
	if err != nil {
		return nil, exporterr.ConfigMissing("format", err)
	}
	p := dbexport.NewPipeline(r.target, w, pipelineOptions(r.settings, r.clientDir), r.log)
	p.SetMetrics(r.metrics)
	return p, nil
}

// withRun loads settings, opens the run log, reads the query and the
// credentials and calls fn with a signal-aware context. A missing credential
// file is replaced by a template and the command ends successfully without
// calling fn. Errors logged here or by fn come back as reportedError.
//
// Usage:
//
//	err := withRun(cmd, func(ctx context.Context, r *run) error {
//	    // use r.target here
//	    return nil
//	})
func withRun(cmd *cobra.Command, fn func(ctx context.Context, r *run) error) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Config{Dir: s.LogDir, Level: s.LogLevel, Console: cmd.OutOrStdout()})
	if err != nil {
		return err
	}
	defer logger.Close()
	log := logger.Sugar()

	r := &run{settings: s, log: logger.Logger, metrics: metrics.New()}
	defer func() {
		if s.MetricsFile == "" {
			return
		}
		if err := r.metrics.WriteTextfile(s.MetricsFile); err != nil {
			log.Warnf("error writing metrics file: %v", err)
		}
	}()

	query, created, err := config.ReadQuery(s.QueryFile)
	if err != nil {
		log.Error(err)
		return reportedError{exporterr.ConfigMissing("query file", err)}
	}
	if created {
		log.Warnf("Query file %s not found; created it with the default query: %s", s.QueryFile, config.DefaultQuery)
	}
	r.query = query

	if err := config.LoadDotEnv(); err != nil {
		log.Warn(err)
	}
	creds, err := config.LoadCredentials(s.DBFile)
	if errors.Is(err, exporterr.ErrCredentialsCreated) {
		log.Warnf("Credential file %s not found; created a template. Fill in user, password and dsn, then run again.", s.DBFile)
		return nil
	}
	if err != nil {
		log.Error(err)
		return reportedError{err}
	}
	if r.target, err = resolveTarget(creds); err != nil {
		log.Error(err)
		return reportedError{err}
	}
	if r.target.Dialect.NeedsClient {
		dir := s.ClientDir
		if creds.ClientDir != "" && !cmd.Flags().Changed("client-dir") {
			dir = creds.ClientDir
		}
		resolved, err := config.ResolveClientDir(dir)
		if err != nil {
			log.Warnf("Client library directory not usable (%v); falling back to the system library search path", err)
		} else {
			r.clientDir = resolved
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := fn(ctx, r); err != nil {
		if hint := invalidObjectHint(err); hint != "" {
			log.Warn(hint)
		}
		return reportedError{err}
	}
	return nil
}

// resolveTarget picks the dialect named by the credentials and checks that
// the keys it needs are present.
func resolveTarget(c config.Credentials) (dbexport.Target, error) {
	d, err := dbexport.LookupDialect(c.Driver)
	if err != nil {
		return dbexport.Target{}, exporterr.ConfigMissing("driver", err)
	}
	if err := c.Require(d.RequiredKeys()...); err != nil {
		return dbexport.Target{}, err
	}
	return dbexport.Target{Dialect: d, User: c.User, Password: c.Password, DSN: c.DSN}, nil
}

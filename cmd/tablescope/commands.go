package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/koustreak/tablescope/internal/config"
	"github.com/koustreak/tablescope/internal/errs"
	"github.com/koustreak/tablescope/internal/schema"
	"github.com/koustreak/tablescope/internal/server"
	"github.com/koustreak/tablescope/internal/snapshot"
)

// schemaFlags parses the flags shared by the per-schema commands.
func schemaFlags(name string, args []string, extra func(fs *flag.FlagSet)) (string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	schemaName := fs.String("schema", "", "schema (database) to inspect")
	if extra != nil {
		extra(fs)
	}
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if *schemaName == "" {
		return "", errs.New(errs.ErrKindInvalidInput, "-schema is required")
	}
	return *schemaName, nil
}

func runList(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	var format string
	var stream bool
	schemaName, err := schemaFlags("list", args, func(fs *flag.FlagSet) {
		fs.StringVar(&format, "format", "text", "output format: text or json")
		fs.BoolVar(&stream, "stream", false, "print one JSON object per table as rows arrive")
	})
	if err != nil {
		return err
	}
	if format != "text" && format != "json" {
		return errs.Newf(errs.ErrKindInvalidInput, "unknown format %q", format)
	}

	a, err := newApp(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer a.Close()

	if stream {
		return streamTables(ctx, a.tables, schemaName, out)
	}

	records, err := a.tables.ListTables(ctx, schemaName)
	if err != nil {
		return err
	}
	if format == "json" {
		return writeJSON(out, records)
	}
	return writeTableText(out, records)
}

// streamTables writes NDJSON straight from the row iterator; the first error
// of any kind ends the stream.
func streamTables(ctx context.Context, tables *schema.Introspector, schemaName string, out io.Writer) error {
	enc := json.NewEncoder(out)
	for rec, err := range tables.Tables(ctx, schemaName) {
		if err != nil {
			return err
		}
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}

func runNames(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	var rawKind string
	schemaName, err := schemaFlags("names", args, func(fs *flag.FlagSet) {
		fs.StringVar(&rawKind, "kind", schema.BaseTable.String(), "relation kind: BASE TABLE, VIEW or SYSTEM VIEW")
	})
	if err != nil {
		return err
	}
	kind, err := schema.ParseTableKind(rawKind)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer a.Close()

	names, err := a.tables.ListTableNames(ctx, schemaName, kind)
	if err != nil {
		return err
	}
	for _, n := range names {
		if _, err := fmt.Fprintln(out, n); err != nil {
			return err
		}
	}
	return nil
}

func runSnapshot(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	schemaName, err := schemaFlags("snapshot", args, nil)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.tables.ListTables(ctx, schemaName)
	if err != nil {
		return err
	}
	info, err := snapshot.Save(ctx, a.store, cfg.FileStore.DefaultBucket, schemaName, records)
	if err != nil {
		return err
	}

	a.log.InfoWith("snapshot stored", map[string]interface{}{
		"schema": schemaName,
		"key":    info.Key,
		"tables": len(records),
	})
	_, err = fmt.Fprintln(out, info.Key)
	return err
}

func runDiff(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	schemaName, err := schemaFlags("diff", args, nil)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer a.Close()

	prev, err := snapshot.Latest(ctx, a.store, cfg.FileStore.DefaultBucket, schemaName)
	if err != nil {
		return err
	}
	records, err := a.tables.ListTables(ctx, schemaName)
	if err != nil {
		return err
	}
	return writeJSON(out, snapshot.Compare(prev.Tables, records))
}

func runServe(ctx context.Context, cfg *config.Config, args []string, _ io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", cfg.HTTP.ListenAddr, "listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newServeApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := server.New(
		server.Options{
			ListenAddr:   *addr,
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
		},
		server.Deps{
			Tables:     a.tables,
			DB:         a.db,
			Store:      a.store,
			Bucket:     cfg.FileStore.DefaultBucket,
			PresignTTL: cfg.HTTP.PresignTTL,
		},
		a.log,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTableText(out io.Writer, records []schema.TableRecord) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tENGINE\tAUTO_INCREMENT\tCOLLATION\tCREATE_OPTIONS\tCOMMENT")
	for _, r := range records {
		autoInc := "-"
		if r.AutoIncrement > 0 {
			autoInc = strconv.FormatUint(r.AutoIncrement, 10)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Name, r.Engine, autoInc, r.Collation, r.CreateOptions, r.Comment)
	}
	return tw.Flush()
}


package gtfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jamespfennell/gtfs"

	"bdeb.transit/board/internal/logging"
	"bdeb.transit/board/internal/schedule"
)

const maxZipBytes = 512 << 20

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// loadIndex builds the index of one source.
func (manager *Manager) loadIndex(ctx context.Context, src Source) (*schedule.Index, error) {
	switch {
	case src.Dir != "":
		return loadDir(src.Dir, src.UseRouteShortName, manager.logger)
	case src.Zip != "":
		b, err := manager.rawZip(ctx, src)
		if err != nil {
			return nil, err
		}
		static, err := gtfs.ParseStatic(b, gtfs.ParseStaticOptions{})
		if err != nil {
			return nil, fmt.Errorf("error parsing GTFS data: %w", err)
		}
		return schedule.FromStatic(static, schedule.StaticOptions{UseRouteShortName: src.UseRouteShortName}), nil
	default:
		return nil, fmt.Errorf("agency %s: no static source configured", src.Agency)
	}
}

// loadDir reads trips.txt and stop_times.txt. routes.txt is only read, when
// present, if route ids are to be replaced by short names.
func loadDir(dir string, useRouteShortName bool, logger *slog.Logger) (idx *schedule.Index, err error) {
	var closers []io.Closer
	defer func() {
		for _, c := range closers {
			logging.SafeCloseWithLogging(c, logger, "gtfs_table")
		}
	}()

	open := func(name string, required bool) (io.Reader, error) {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			if !required && errors.Is(err, fs.ErrNotExist) {
				return nil, nil
			}
			return nil, fmt.Errorf("error reading local GTFS table: %w", err)
		}
		closers = append(closers, f)
		return f, nil
	}

	var src schedule.Sources
	if src.Trips, err = open("trips.txt", true); err != nil {
		return nil, err
	}
	if src.StopTimes, err = open("stop_times.txt", true); err != nil {
		return nil, err
	}
	if useRouteShortName {
		if src.Routes, err = open("routes.txt", false); err != nil {
			return nil, err
		}
	}
	return schedule.Build(src)
}

func (manager *Manager) rawZip(ctx context.Context, src Source) ([]byte, error) {
	if !src.isRemote() {
		b, err := os.ReadFile(src.Zip)
		if err != nil {
			return nil, fmt.Errorf("error reading local GTFS file: %w", err)
		}
		return b, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.Zip, nil)
	if err != nil {
		return nil, err
	}
	resp, err := manager.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error downloading GTFS data: %w", err)
	}
	defer logging.SafeCloseWithLogging(resp.Body, manager.logger, "http_response_body")

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error downloading GTFS data: status %d", resp.StatusCode)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxZipBytes))
	if err != nil {
		return nil, fmt.Errorf("error reading GTFS data: %w", err)
	}
	return b, nil
}

// refreshPeriodically reloads a remote source until shutdown. Failures keep
// the previous index.
func (manager *Manager) refreshPeriodically(src Source) {
	defer manager.wg.Done()

	ticker := time.NewTicker(src.Refresh)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			err := manager.Reload(ctx, src.Agency)
			cancel()
			if err != nil {
				logging.LogError(manager.logger, "Error updating GTFS data", err,
					slog.String("agency", src.Agency))
			}
		case <-manager.shutdownChan:
			manager.logger.Info("shutting down static GTFS updates", slog.String("agency", src.Agency))
			return
		}
	}
}

package client

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/rsclarke/citybus/internal/api"
	"github.com/rsclarke/citybus/internal/archive"
	"github.com/rsclarke/citybus/internal/logging"
	"github.com/rsclarke/citybus/internal/models"
)

// Recorder keeps a history of downloaded archives.
type Recorder interface {
	RecordFetch(ctx context.Context, f *models.Fetch) (int64, error)
	RecordExtraction(ctx context.Context, id int64, extractErr error) error
}

// FetchResult describes a downloaded archive and its extraction.
type FetchResult struct {
	Name           string
	CurrentVersion string
	Job            archive.Job
	Size           int64
	SHA256         string
	Task           *archive.Task

	recorded chan struct{}
}

// Wait blocks until extraction has finished and, when a Recorder is
// configured, its outcome has been recorded.
func (r *FetchResult) Wait() error {
	err := r.Task.Wait()
	if r.recorded != nil {
		<-r.recorded
	}
	return err
}

// DatabaseURL returns the download URL for the database name.
func DatabaseURL(base, name, query string) string {
	if name == api.CitiesDB {
		return base + api.CountryDB + "/" + api.CitiesDB + "?" + query
	}
	return base + name + "/db?" + query
}

// DatabasePassword returns the archive password for name at version.
func DatabasePassword(name, version string) string {
	if name == api.CitiesDB {
		name = api.CountryDB
	}
	return name + "/" + version
}

// FetchDatabase downloads the database archive name, writes it to
// <OutputDir>/<name>.zip and starts unpacking it into <OutputDir>/<name>.
//
// Nothing is written unless the server answers 200 with a current-version
// header. Extraction runs in the background: its failure is logged and
// reported through the result's task, never returned here.
func (c *Client) FetchDatabase(ctx context.Context, name string) (*FetchResult, error) {
	query := c.versionQuery()
	url := DatabaseURL(c.DBBaseURL, name, query)
	logger := c.logger().With(logging.DBName(name))

	resp, err := c.Do(ctx, http.MethodGet, url, query)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	version := resp.Header.Get(api.HeaderCurrentVersion)
	if resp.StatusCode != http.StatusOK {
		return nil, &ProtocolError{StatusCode: resp.StatusCode, URL: url}
	}
	if version == "" {
		return nil, &ProtocolError{StatusCode: resp.StatusCode, URL: url, Reason: "missing " + api.HeaderCurrentVersion + " header"}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: http.MethodGet, URL: url, Err: err}
	}

	zipPath, outDir := c.archivePaths(name)
	if err := os.WriteFile(zipPath, body, 0o644); err != nil {
		return nil, fmt.Errorf("write archive: %w", err)
	}
	sum := sha256.Sum256(body)
	logger.Info("wrote archive", logging.Path(zipPath), logging.Version(version), zap.Int("bytes", len(body)))

	result := &FetchResult{
		Name:           name,
		CurrentVersion: version,
		Job: archive.Job{
			Archive:   zipPath,
			OutputDir: outDir,
			Password:  DatabasePassword(name, version),
		},
		Size:   int64(len(body)),
		SHA256: hex.EncodeToString(sum[:]),
	}

	fetchID := c.record(ctx, result, logger)

	// Extraction outlives the request context.
	bg := context.WithoutCancel(ctx)
	result.Task = c.extractor().Extract(bg, result.Job)
	if result.Task == nil {
		result.Task = archive.NewTask(result.Job)
		result.Task.Finish(archive.ErrNoTask)
		logger.Error("extraction not started", zap.Error(archive.ErrNoTask))
	}
	logger.Debug("dispatched extraction", logging.TaskID(result.Task.ID))

	if fetchID > 0 {
		result.recorded = make(chan struct{})
		go func() {
			defer close(result.recorded)
			extractErr := result.Task.Wait()
			if err := c.Recorder.RecordExtraction(bg, fetchID, extractErr); err != nil {
				logger.Warn("failed to record extraction", zap.Error(err))
			}
		}()
	}

	return result, nil
}

func (c *Client) record(ctx context.Context, r *FetchResult, logger *zap.Logger) int64 {
	if c.Recorder == nil {
		return 0
	}
	id, err := c.Recorder.RecordFetch(ctx, &models.Fetch{
		Name:           r.Name,
		CurrentVersion: r.CurrentVersion,
		ArchivePath:    r.Job.Archive,
		Size:           r.Size,
		SHA256:         r.SHA256,
	})
	if err != nil {
		logger.Warn("failed to record fetch", zap.Error(err))
		return 0
	}
	return id
}

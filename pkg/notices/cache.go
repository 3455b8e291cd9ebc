package notices

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/klothoplatform/cdk-notices/pkg/logging"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	CacheFileName   = "notices.json"
	DefaultCacheTTL = 24 * time.Hour
)

type (
	// CachedDataSource serves notices from a file until it expires, refreshing it from Delegate otherwise. It never
	// fails: delegate errors produce an empty list.
	CachedDataSource struct {
		FileName    string
		Delegate    DataSource
		IgnoreCache bool

		TTL time.Duration
		Fs  afero.Fs
		Now func() time.Time
	}

	// CacheFile is the on-disk format. Expiration is in epoch milliseconds.
	CacheFile struct {
		Notices    []Notice `json:"notices"`
		Expiration int64    `json:"expiration"`
	}
)

func NewCachedDataSource(fileName string, delegate DataSource, ignoreCache bool) *CachedDataSource {
	return &CachedDataSource{
		FileName:    fileName,
		Delegate:    delegate,
		IgnoreCache: ignoreCache,
		TTL:         DefaultCacheTTL,
		Fs:          afero.NewOsFs(),
		Now:         time.Now,
	}
}

func (ds *CachedDataSource) Fetch(ctx context.Context) ([]Notice, error) {
	log := logging.GetLogger(ctx).Named("notices.cache").With(zap.String("file", ds.FileName))

	cached, err := ds.load()
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		log.Debug("Ignoring notices cache", zap.Error(err))
	case !ds.IgnoreCache && ds.now().UnixMilli() < cached.Expiration:
		log.Debug("Using cached notices", zap.Int("count", len(cached.Notices)))
		return cached.Notices, nil
	}

	fresh, err := ds.Delegate.Fetch(ctx)
	if err != nil {
		log.Debug("Could not refresh notices", zap.Error(err))
		return []Notice{}, nil
	}
	if fresh == nil {
		fresh = []Notice{}
	}

	err = ds.save(CacheFile{
		Notices:    fresh,
		Expiration: ds.now().Add(ds.ttl()).UnixMilli(),
	})
	if err != nil {
		log.Debug("Failed to write notices cache", zap.Error(err))
	}
	return fresh, nil
}

func (ds *CachedDataSource) load() (CacheFile, error) {
	var cached CacheFile
	content, err := afero.ReadFile(ds.fs(), ds.FileName)
	if err != nil {
		return cached, err
	}
	if len(content) == 0 {
		return cached, errors.New("cache file is empty")
	}
	if err := json.Unmarshal(content, &cached); err != nil {
		return cached, errors.Wrap(err, "cache file is corrupt")
	}
	return cached, nil
}

func (ds *CachedDataSource) save(cached CacheFile) error {
	content, err := json.Marshal(cached)
	if err != nil {
		return err
	}
	fs := ds.fs()
	if err := fs.MkdirAll(filepath.Dir(ds.FileName), 0755); err != nil {
		return errors.Wrap(err, "could not create cache directory")
	}
	return afero.WriteFile(fs, ds.FileName, content, 0644)
}

func (ds *CachedDataSource) fs() afero.Fs {
	if ds.Fs == nil {
		return afero.NewOsFs()
	}
	return ds.Fs
}

func (ds *CachedDataSource) now() time.Time {
	if ds.Now == nil {
		return time.Now()
	}
	return ds.Now()
}

func (ds *CachedDataSource) ttl() time.Duration {
	if ds.TTL <= 0 {
		return DefaultCacheTTL
	}
	return ds.TTL
}

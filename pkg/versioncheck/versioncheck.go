// Package versioncheck tells the user when a newer CLI has been published, at most once per interval.
package versioncheck

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/coreos/go-semver/semver"
	"github.com/fatih/color"
	"github.com/gojek/heimdall/v7/httpclient"
	"github.com/klothoplatform/cdk-notices/pkg/cli_config"
	"github.com/klothoplatform/cdk-notices/pkg/closenicely"
	"github.com/klothoplatform/cdk-notices/pkg/logging"
	"github.com/pborman/ansi"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	DefaultRegistryURL = "https://registry.npmjs.org/aws-cdk/latest"
	CacheFileName      = "repo-version-ttl"
	DefaultInterval    = 24 * time.Hour

	// DisableVersionCheck turns the check off when set to anything.
	DisableVersionCheck cli_config.EnvVar = "CDK_DISABLE_VERSION_CHECK"

	upgradeCommand = "npm install -g aws-cdk"
)

var upgradeDocs = map[int64]string{
	1: "https://docs.aws.amazon.com/cdk/v2/guide/migrating-v2.html",
}

type Checker struct {
	RegistryURL string
	// CacheFile holds the latest version seen. Its modification time is when the registry was last asked.
	CacheFile string
	Interval  time.Duration

	Client *httpclient.Client
	Fs     afero.Fs
	Now    func() time.Time
}

func NewChecker() (*Checker, error) {
	cacheFile, err := cli_config.CdkCachePath(CacheFileName)
	if err != nil {
		return nil, err
	}
	return &Checker{
		RegistryURL: DefaultRegistryURL,
		CacheFile:   cacheFile,
		Interval:    DefaultInterval,
		Client:      httpclient.NewClient(httpclient.WithHTTPTimeout(3 * time.Second)),
		Fs:          afero.NewOsFs(),
		Now:         time.Now,
	}, nil
}

// LatestIfNewer returns the latest published version if it is newer than currentVersion. It returns "" without asking
// the registry if the last check was less than an interval ago.
func (c *Checker) LatestIfNewer(ctx context.Context, currentVersion string) (string, error) {
	if !c.expired() {
		return "", nil
	}

	current, err := semver.NewVersion(strings.TrimPrefix(currentVersion, "v"))
	if err != nil {
		return "", errors.Wrapf(err, "invalid version %s", currentVersion)
	}
	latest, err := c.latest(ctx)
	if err != nil {
		return "", err
	}
	if err := c.touch(latest.String()); err != nil {
		logging.GetLogger(ctx).Debug("Could not record version check", zap.Error(err))
	}

	if current.LessThan(*latest) {
		return latest.String(), nil
	}
	return "", nil
}

// Message returns the upgrade banner, or "" if there's nothing newer or the check failed.
func (c *Checker) Message(ctx context.Context, currentVersion string) string {
	if DisableVersionCheck.GetOr("") != "" {
		return ""
	}
	latest, err := c.LatestIfNewer(ctx, currentVersion)
	if err != nil {
		logging.GetLogger(ctx).Debug("Could not check for a newer version", zap.Error(err))
		return ""
	}
	if latest == "" {
		return ""
	}
	return FormatMessage(currentVersion, latest)
}

// FormatMessage renders the upgrade hint as a banner of asterisks.
func FormatMessage(currentVersion, latestVersion string) string {
	lines := []string{
		fmt.Sprintf("Newer version of CDK is available [%s]", color.GreenString(latestVersion)),
	}
	current, errCurrent := semver.NewVersion(strings.TrimPrefix(currentVersion, "v"))
	latest, errLatest := semver.NewVersion(strings.TrimPrefix(latestVersion, "v"))
	if errCurrent == nil && errLatest == nil && latest.Major > current.Major {
		if link, ok := upgradeDocs[current.Major]; ok {
			lines = append(lines, fmt.Sprintf(
				"Information about upgrading from version %d.x to version %d.x is available here:",
				current.Major, latest.Major,
			), link)
		}
	}
	lines = append(lines, fmt.Sprintf("Upgrade recommended (%s)", upgradeCommand))
	return banner(lines)
}

func banner(lines []string) string {
	width := 0
	for _, line := range lines {
		if w := printableWidth(line); w > width {
			width = w
		}
	}

	var sb strings.Builder
	border := strings.Repeat("*", width+10)
	sb.WriteString(border)
	sb.WriteByte('\n')
	for _, line := range lines {
		fmt.Fprintf(&sb, "***  %s%s  ***\n", line, strings.Repeat(" ", width-printableWidth(line)))
	}
	sb.WriteString(border)
	return sb.String()
}

func printableWidth(s string) int {
	if s2, err := ansi.Strip([]byte(s)); err == nil {
		s = string(s2)
	}
	return len([]rune(s))
}

func (c *Checker) latest(ctx context.Context) (*semver.Version, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.RegistryURL, nil)
	if err != nil {
		return nil, err
	}
	res, err := c.client().Do(req)
	if res != nil {
		defer closenicely.OrDebug(ctx, res.Body)
	}
	if res != nil && res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to query for latest version, bad response from registry: %d", res.StatusCode)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query for latest version: %v", err)
	}

	var result struct {
		Version string `json:"version"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode body: %v", err)
	}
	if result.Version == "" {
		return nil, errors.New("no version found in result")
	}
	latest, err := semver.NewVersion(result.Version)
	if err != nil {
		return nil, fmt.Errorf("strange version received: %s", result.Version)
	}
	return latest, nil
}

func (c *Checker) expired() bool {
	info, err := c.fs().Stat(c.CacheFile)
	if err != nil {
		return true
	}
	interval := c.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	return c.now().Sub(info.ModTime()) >= interval
}

func (c *Checker) touch(latest string) error {
	fs := c.fs()
	if err := fs.MkdirAll(filepath.Dir(c.CacheFile), 0755); err != nil {
		return err
	}
	if err := afero.WriteFile(fs, c.CacheFile, []byte(latest), 0644); err != nil {
		return err
	}
	now := c.now()
	return fs.Chtimes(c.CacheFile, now, now)
}

func (c *Checker) client() *httpclient.Client {
	if c.Client == nil {
		return httpclient.NewClient()
	}
	return c.Client
}

func (c *Checker) fs() afero.Fs {
	if c.Fs == nil {
		return afero.NewOsFs()
	}
	return c.Fs
}

func (c *Checker) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

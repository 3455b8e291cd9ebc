// Package notices fetches the CDK CLI notices feed, selects the notices that affect the running CLI, the framework
// an app was synthesized with, or its bootstrap stack, and renders them for the terminal.
package notices

import (
	"context"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klothoplatform/cdk-notices/pkg/cloudassembly"
	"github.com/klothoplatform/cdk-notices/pkg/logging"
	"github.com/klothoplatform/cdk-notices/pkg/multierr"
	"github.com/klothoplatform/cdk-notices/pkg/set"
	"github.com/klothoplatform/cdk-notices/pkg/versionrange"
	"go.uber.org/zap"
)

type (
	Options struct {
		// AcknowledgedIssueNumbers are the notices the user no longer wants to see.
		AcknowledgedIssueNumbers []int
		// Output receives rendered notices when no printer is given. Defaults to stderr.
		Output io.Writer
		Logger *zap.Logger
	}

	Notices struct {
		acknowledged set.Set[int]
		output       io.Writer
		log          *zap.Logger

		data   []Notice
		staged []Notice
	}

	PrintOptions struct {
		// Printer receives the whole rendered report, including the empty report.
		Printer   func(string)
		ShowTotal bool
	}

	DisplayOptions struct {
		CliVersion string
		// OutDir is the cloud assembly directory. Framework notices are skipped when empty.
		OutDir string
		// BootstrapVersion is skipped when zero or negative.
		BootstrapVersion int
		// Unacknowledged hides acknowledged notices and reports how many remain.
		Unacknowledged bool
	}
)

func New(opts Options) *Notices {
	n := &Notices{
		acknowledged: set.SetOf(opts.AcknowledgedIssueNumbers...),
		output:       opts.Output,
		log:          opts.Logger,
	}
	if n.output == nil {
		n.output = os.Stderr
	}
	if n.log == nil {
		n.log = zap.L()
	}
	return n
}

// Refresh replaces the working set with the data source's notices. A failing data source leaves the working set empty.
func (n *Notices) Refresh(ctx context.Context, ds DataSource) {
	data, err := ds.Fetch(ctx)
	if err != nil {
		logging.GetLogger(ctx).Debug("Could not refresh notices", zap.Error(err))
		data = nil
	}
	n.data = data
}

func (n *Notices) ForCliVersion(cliVersion string, onlyUnacknowledged bool) []Notice {
	used := map[string][]string{CliComponent: {cliVersion}}
	matched := n.filter(used)
	if onlyUnacknowledged {
		matched = n.unacknowledged(matched)
	}
	return matched
}

// ForFrameworkVersion matches notices against the constructs recorded in the cloud assembly at outDir. An assembly
// that cannot be read yields no notices.
func (n *Notices) ForFrameworkVersion(outDir string) []Notice {
	asm, err := cloudassembly.Load(outDir)
	if err != nil {
		n.log.Debug("Could not read cloud assembly", zap.String("dir", outDir), zap.Error(err))
		return []Notice{}
	}
	return n.filter(asm.Tree.UsedNames())
}

func (n *Notices) ForBootstrapVersion(bootstrapVersion int) []Notice {
	used := map[string][]string{BootstrapComponent: {strconv.Itoa(bootstrapVersion)}}
	return n.filter(used)
}

// Matches reports whether one of the notice's components is named name and its version range contains version.
func (n *Notices) Matches(notice Notice, name string, version string) bool {
	return n.matches(notice, map[string][]string{name: {version}})
}

func (n *Notices) filter(used map[string][]string) []Notice {
	matched := []Notice{}
	for _, notice := range n.data {
		if n.matches(notice, used) {
			matched = append(matched, notice)
		}
	}
	return matched
}

// matches is true if any component names something in used, and one of the versions it was used at satisfies every
// clause of the component's range. A component whose range does not parse never matches.
func (n *Notices) matches(notice Notice, used map[string][]string) bool {
	var errs multierr.Error
	defer func() {
		if err := errs.ErrOrNil(); err != nil {
			n.log.Debug("Skipped notice components",
				zap.Int("issue", notice.IssueNumber),
				zap.Error(err),
			)
		}
	}()

	for _, component := range notice.Components {
		var versions []string
		for _, name := range component.names() {
			versions = append(versions, used[name]...)
		}
		if len(versions) == 0 {
			continue
		}
		r, err := versionrange.Parse(component.Version)
		if err != nil {
			errs.Append(err)
			continue
		}
		for _, version := range versions {
			v, err := versionrange.Coerce(version)
			if err != nil {
				errs.Append(err)
				continue
			}
			if r.Contains(*v) {
				return true
			}
		}
	}
	return false
}

func (n *Notices) unacknowledged(notices []Notice) []Notice {
	result := []Notice{}
	for _, notice := range notices {
		if !n.acknowledged.Contains(notice.IssueNumber) {
			result = append(result, notice)
		}
	}
	return result
}

// EnqueuePrint stages notices for the next Print. A notice already staged is not staged again.
func (n *Notices) EnqueuePrint(notices []Notice) {
	staged := make(set.Set[int])
	for _, notice := range n.staged {
		staged.Add(notice.IssueNumber)
	}
	for _, notice := range notices {
		if staged.Contains(notice.IssueNumber) {
			continue
		}
		staged.Add(notice.IssueNumber)
		n.staged = append(n.staged, notice)
	}
}

// Print renders the staged notices. It does not clear them, so printing again gives the same output.
func (n *Notices) Print(opts PrintOptions) {
	r := report{
		notices:   n.staged,
		showTotal: opts.ShowTotal,
		total:     len(n.unacknowledged(n.staged)),
	}
	var sb strings.Builder
	if _, err := r.WriteTo(&sb); err != nil {
		n.log.Debug("Failed to render notices", zap.Error(err))
	}

	printer := opts.Printer
	if printer == nil {
		printer = func(s string) {
			if s == "" {
				return
			}
			if _, err := io.WriteString(n.output, s+"\n"); err != nil {
				n.log.Debug("Failed to print notices", zap.Error(err))
			}
		}
	}
	printer(sb.String())
}

// Display refreshes from ds, stages every notice relevant to opts and prints them to the output.
func (n *Notices) Display(ctx context.Context, ds DataSource, opts DisplayOptions) {
	n.Refresh(ctx, ds)

	var relevant []Notice
	if opts.CliVersion != "" {
		relevant = append(relevant, n.ForCliVersion(opts.CliVersion, false)...)
	}
	if opts.OutDir != "" {
		relevant = append(relevant, n.ForFrameworkVersion(opts.OutDir)...)
	}
	if opts.BootstrapVersion > 0 {
		relevant = append(relevant, n.ForBootstrapVersion(opts.BootstrapVersion)...)
	}
	if opts.Unacknowledged {
		relevant = n.unacknowledged(relevant)
	}

	n.EnqueuePrint(relevant)
	n.Print(PrintOptions{ShowTotal: opts.Unacknowledged})
}

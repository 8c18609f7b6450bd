package doctor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/multifx/pedalctl/internal/device"
	"github.com/multifx/pedalctl/internal/layout"
	"github.com/multifx/pedalctl/internal/logging"
	"github.com/multifx/pedalctl/internal/manifest"
	"github.com/multifx/pedalctl/internal/storage"
	"github.com/multifx/pedalctl/internal/syncer"
)

// ConfigCheck reports the outcome of loading the configuration file. The
// load itself happens at startup; the check carries its result, so doctor
// can diagnose a broken file instead of being blocked by it.
type ConfigCheck struct {
	path    string
	loadErr error
}

var _ Check = (*ConfigCheck)(nil)

// NewConfigCheck creates a check reporting the config load outcome for the
// file at path.
func NewConfigCheck(path string, loadErr error) *ConfigCheck {
	return &ConfigCheck{path: path, loadErr: loadErr}
}

// Name returns the unique identifier for this check.
func (c *ConfigCheck) Name() string {
	return "config-file"
}

// Category returns the grouping for this check.
func (c *ConfigCheck) Category() string {
	return "config"
}

// Run executes the configuration diagnostic check.
func (c *ConfigCheck) Run(_ context.Context) *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{"path": c.path},
	}

	if c.loadErr != nil {
		result.Status = SeverityError
		result.Message = fmt.Sprintf("configuration failed to load: %v", c.loadErr)
		result.Fixable = true
		result.FixHint = "fix the file or regenerate it with: pedalctl init --force"
		return result
	}

	result.Status = SeverityPass
	result.Message = "configuration loaded"
	return result
}

// OnboardCheck inspects the on-board configuration root: whether it exists,
// what layout state it is in, and whether an interrupted sync left staging
// directories behind.
type OnboardCheck struct {
	root storage.Root
}

var _ Check = (*OnboardCheck)(nil)

// NewOnboardCheck creates a check for the given on-board root.
func NewOnboardCheck(root storage.Root) *OnboardCheck {
	return &OnboardCheck{root: root}
}

// Name returns the unique identifier for this check.
func (c *OnboardCheck) Name() string {
	return "onboard-root"
}

// Category returns the grouping for this check.
func (c *OnboardCheck) Category() string {
	return "storage"
}

// Run executes the on-board root diagnostic check.
func (c *OnboardCheck) Run(_ context.Context) *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{"root": c.root.Name()},
	}

	exists, err := c.root.Exists("")
	if err != nil {
		result.Status = SeverityError
		result.Message = fmt.Sprintf("cannot access on-board root: %v", err)
		return result
	}
	if !exists {
		result.Status = SeverityInfo
		result.Message = "on-board root does not exist yet; the first load creates it"
		return result
	}

	state, err := layout.Probe(c.root)
	if err != nil {
		result.Status = SeverityError
		result.Message = fmt.Sprintf("cannot probe on-board layout: %v", err)
		return result
	}
	result.Details["state"] = state.String()

	stages := c.staleStages()
	if len(stages) > 0 {
		result.Details["stale_stages"] = stages
		result.Status = SeverityWarning
		result.Message = fmt.Sprintf("an interrupted sync left %d staging directories behind", len(stages))
		result.FixHint = fmt.Sprintf("inspect and remove the %s* directories under %s", syncer.StagePrefix, c.root.Name())
		return result
	}

	switch state {
	case layout.StateStructured:
		result.Status = SeverityPass
		result.Message = "on-board tree is structured"
	case layout.StateEmpty:
		result.Status = SeverityInfo
		result.Message = "on-board tree is empty; nothing synced yet"
	default:
		result.Status = SeverityWarning
		result.Message = fmt.Sprintf("on-board tree layout is %s", state)
		result.Fixable = true
		result.FixHint = "run: pedalctl migrate"
	}
	return result
}

// staleStages lists leftover staging directories at the top of the root.
// Listing failures are swallowed; the layout probe above already reported
// any access problem.
func (c *OnboardCheck) staleStages() []string {
	entries, err := c.root.List("")
	if err != nil {
		return nil
	}
	var stages []string
	for _, ent := range entries {
		if ent.Dir && strings.HasPrefix(ent.Name, syncer.StagePrefix) {
			stages = append(stages, ent.Name)
		}
	}
	return stages
}

// DeviceCheck scans for a connected device and reports its identity.
type DeviceCheck struct {
	scanner *device.Scanner
	timeout time.Duration
}

var _ Check = (*DeviceCheck)(nil)

// NewDeviceCheck creates a check using the given scanner. A non-positive
// timeout falls back to the engine's default scan timeout.
func NewDeviceCheck(scanner *device.Scanner, timeout time.Duration) *DeviceCheck {
	if timeout <= 0 {
		timeout = syncer.DefaultScanTimeout
	}
	return &DeviceCheck{scanner: scanner, timeout: timeout}
}

// Name returns the unique identifier for this check.
func (c *DeviceCheck) Name() string {
	return "device-scan"
}

// Category returns the grouping for this check.
func (c *DeviceCheck) Category() string {
	return "device"
}

// Run executes the device scan diagnostic check.
func (c *DeviceCheck) Run(ctx context.Context) *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{"mounts": c.scanner.Mounts()},
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	dev, err := c.scanner.Scan(ctx)
	if err != nil {
		if errors.Is(err, device.ErrNoDevice) {
			result.Status = SeverityInfo
			result.Message = "no device connected"
			return result
		}
		result.Status = SeverityError
		result.Message = fmt.Sprintf("device scan failed: %v", err)
		return result
	}

	result.Status = SeverityPass
	result.Message = fmt.Sprintf("found %s at %s", dev.Identity, dev.Path)
	result.Details["path"] = dev.Path
	if !dev.Identity.Empty() {
		result.Details["identity"] = dev.Identity
	}
	if state, err := layout.Probe(dev.Root); err == nil {
		result.Details["state"] = state.String()
	}
	return result
}

// ManifestCheck loads the plugin manifest set and reports how much of it
// was usable.
type ManifestCheck struct {
	root storage.Root
}

var _ Check = (*ManifestCheck)(nil)

// NewManifestCheck creates a check loading manifests from the given root.
func NewManifestCheck(root storage.Root) *ManifestCheck {
	return &ManifestCheck{root: root}
}

// Name returns the unique identifier for this check.
func (c *ManifestCheck) Name() string {
	return "manifest-load"
}

// Category returns the grouping for this check.
func (c *ManifestCheck) Category() string {
	return "plugins"
}

// Run executes the manifest loading diagnostic check.
func (c *ManifestCheck) Run(_ context.Context) *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
	}

	loader := manifest.NewLoader(c.root, logging.NewDiscard())
	res, err := loader.LoadDir(manifest.DefaultDir)
	if err != nil {
		result.Status = SeverityError
		result.Message = fmt.Sprintf("loading manifests: %v", err)
		return result
	}

	result.Details = map[string]any{
		"files":           len(res.Files),
		"plugins":         len(res.Plugins),
		"skipped_files":   len(res.SkippedFiles),
		"skipped_entries": res.SkippedEntries,
	}

	switch {
	case len(res.Files) == 0 && len(res.SkippedFiles) == 0:
		result.Status = SeverityInfo
		result.Message = "no plugin manifests found"
	case len(res.SkippedFiles) > 0 || res.SkippedEntries > 0:
		result.Status = SeverityWarning
		result.Message = fmt.Sprintf("loaded %d plugins from %d manifests; skipped %d files and %d entries",
			len(res.Plugins), len(res.Files), len(res.SkippedFiles), res.SkippedEntries)
		result.FixHint = "run: pedalctl manifest validate"
	default:
		result.Status = SeverityPass
		result.Message = fmt.Sprintf("loaded %d plugins from %d manifests", len(res.Plugins), len(res.Files))
	}
	return result
}

// ConflictCheck reports duplicate plugin URIs and duplicate parameter
// symbols across the manifest set.
type ConflictCheck struct {
	root storage.Root
}

var _ Check = (*ConflictCheck)(nil)

// NewConflictCheck creates a check detecting manifest conflicts under the
// given root.
func NewConflictCheck(root storage.Root) *ConflictCheck {
	return &ConflictCheck{root: root}
}

// Name returns the unique identifier for this check.
func (c *ConflictCheck) Name() string {
	return "manifest-conflicts"
}

// Category returns the grouping for this check.
func (c *ConflictCheck) Category() string {
	return "plugins"
}

// Run executes the conflict detection diagnostic check.
func (c *ConflictCheck) Run(_ context.Context) *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
	}

	loader := manifest.NewLoader(c.root, logging.NewDiscard())
	res, err := loader.LoadDir(manifest.DefaultDir)
	if err != nil {
		result.Status = SeverityError
		result.Message = fmt.Sprintf("loading manifests: %v", err)
		return result
	}

	if len(res.Conflicts) == 0 {
		result.Status = SeverityPass
		result.Message = "plugin uris and parameter symbols are unique"
		return result
	}

	conflicts := make([]string, 0, len(res.Conflicts))
	for _, conflict := range res.Conflicts {
		conflicts = append(conflicts, conflict.String())
	}
	result.Status = SeverityWarning
	result.Message = fmt.Sprintf("%d duplicate declarations dropped during load", len(res.Conflicts))
	result.Details = map[string]any{"conflicts": conflicts}
	result.FixHint = "give each plugin a unique uri and each parameter a unique symbol"
	return result
}

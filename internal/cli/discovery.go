package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/agentcli/agentcli-go/internal/errors"
)

const (
	// defaultBinaryName is the executable discovery searches for when the
	// caller hasn't named one explicitly or overridden it via env var.
	defaultBinaryName = "agent-cli"

	// binaryNameEnvVar lets an operator point discovery at a differently
	// named build of the CLI (e.g. a vendored fork) without touching code.
	binaryNameEnvVar = "AGENTCLI_BIN_NAME"

	// MinimumVersion is the minimum Agent CLI version this SDK supports.
	MinimumVersion = "2.0.0"

	// VersionCheckTimeout bounds the CLI version-check subprocess.
	VersionCheckTimeout = 2 * time.Second
)

// legacyBinaryNames holds executable names from prior CLI distributions.
// Discovery falls back to these, in order, only after the configured name
// comes up empty, so existing installs keep working across a rename.
var legacyBinaryNames = []string{"claude"}

// Config holds configuration for CLI discovery.
type Config struct {
	// CliPath is an explicit CLI path that skips PATH search.
	// If empty, discovery will search PATH and common locations.
	CliPath string

	// BinaryName overrides the executable name discovery looks for when
	// CliPath is unset. Defaults to defaultBinaryName, or the
	// AGENTCLI_BIN_NAME env var if set.
	BinaryName string

	// SkipVersionCheck skips version validation during discovery.
	// Can also be controlled via the AGENTCLI_SKIP_VERSION_CHECK env var.
	SkipVersionCheck bool

	// Logger is an optional logger for discovery operations.
	// If nil, a default no-op logger is used.
	Logger *slog.Logger
}

// Discoverer locates and validates the Agent CLI binary.
type Discoverer interface {
	// Discover locates the Agent CLI binary and validates its version.
	// Returns the absolute path to the CLI binary or an error.
	Discover(ctx context.Context) (string, error)
}

// discoverer implements the Discoverer interface.
type discoverer struct {
	cfg        *Config
	log        *slog.Logger
	binaryName string
}

// Compile-time verification that discoverer implements Discoverer.
var _ Discoverer = (*discoverer)(nil)

// NewDiscoverer creates a new CLI discoverer with the given configuration.
func NewDiscoverer(cfg *Config) Discoverer {
	if cfg == nil {
		cfg = &Config{}
	}

	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1}))
	}

	name := cfg.BinaryName
	if name == "" {
		name = os.Getenv(binaryNameEnvVar)
	}
	if name == "" {
		name = defaultBinaryName
	}

	return &discoverer{
		cfg:        cfg,
		log:        log,
		binaryName: name,
	}
}

// Discover locates the Agent CLI binary and validates its version.
func (d *discoverer) Discover(ctx context.Context) (string, error) {
	d.log.Debug("Discovering Agent CLI binary", "binary_name", d.binaryName)

	cliPath, err := d.findCLI()
	if err != nil {
		d.log.Error("Failed to find Agent CLI", "error", err)

		return "", err
	}

	d.log.Debug("Found Agent CLI binary", "cli_path", cliPath)

	d.checkVersion(ctx, cliPath)

	return cliPath, nil
}

// candidateNames returns the executable names discovery will search for,
// in priority order: the configured name first, then any legacy aliases.
func (d *discoverer) candidateNames() []string {
	names := make([]string, 0, 1+len(legacyBinaryNames))
	names = append(names, d.binaryName)

	for _, legacy := range legacyBinaryNames {
		if legacy != d.binaryName {
			names = append(names, legacy)
		}
	}

	return names
}

// findCLI locates the Agent CLI binary.
func (d *discoverer) findCLI() (string, error) {
	if d.cfg.CliPath != "" {
		d.log.Debug("Using explicit CLI path", "cli_path", d.cfg.CliPath)

		if _, err := os.Stat(d.cfg.CliPath); err == nil {
			return d.cfg.CliPath, nil
		}

		d.log.Debug("Explicit CLI path not found", "cli_path", d.cfg.CliPath)

		return "", &errors.CLINotFoundError{SearchedPaths: []string{d.cfg.CliPath}}
	}

	var searchedPaths []string

	for _, name := range d.candidateNames() {
		if path, err := exec.LookPath(name); err == nil {
			d.log.Debug("Found CLI in PATH", "name", name, "path", path)

			return path, nil
		}

		searchedPaths = append(searchedPaths, "$PATH/"+name)

		if path, ok := d.checkCommonLocations(name); ok {
			return path, nil
		}

		searchedPaths = append(searchedPaths, d.commonLocations(name)...)
	}

	d.log.Warn("Agent CLI not found in any searched paths", "searched_paths", searchedPaths)

	return "", &errors.CLINotFoundError{SearchedPaths: searchedPaths}
}

// commonLocations lists the fixed install paths checked for a given binary name.
func (d *discoverer) commonLocations(name string) []string {
	paths := []string{
		filepath.Join("/usr/local/bin", name),
		filepath.Join("/usr/bin", name),
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(homeDir, ".local/bin", name))
	}

	return paths
}

func (d *discoverer) checkCommonLocations(name string) (string, bool) {
	for _, path := range d.commonLocations(name) {
		d.log.Debug("Checking common path", "path", path)

		if _, err := os.Stat(path); err == nil {
			d.log.Debug("Found CLI at common path", "path", path)

			return path, true
		}
	}

	return "", false
}

// checkVersion checks if the Agent CLI version meets minimum requirements.
// Logs a warning if version is below minimum. Errors are silently ignored.
func (d *discoverer) checkVersion(ctx context.Context, cliPath string) {
	if d.cfg.SkipVersionCheck {
		d.log.Debug("Skipping CLI version check (configured)")

		return
	}

	if os.Getenv("AGENTCLI_SKIP_VERSION_CHECK") != "" {
		d.log.Debug("Skipping CLI version check (AGENTCLI_SKIP_VERSION_CHECK set)")

		return
	}

	ctx, cancel := context.WithTimeout(ctx, VersionCheckTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, cliPath, "-v")

	output, err := cmd.Output()
	if err != nil {
		d.log.Debug("CLI version check failed", "error", err)

		return
	}

	versionStr := strings.TrimSpace(string(output))
	re := regexp.MustCompile(`^([0-9]+\.[0-9]+\.[0-9]+)`)

	match := re.FindStringSubmatch(versionStr)
	if match == nil {
		d.log.Debug("Could not parse CLI version", "output", versionStr)

		return
	}

	version := match[1]
	if compareVersions(version, MinimumVersion) < 0 {
		d.log.Warn("Agent CLI version is unsupported by this SDK",
			"version", version,
			"minimum_required", MinimumVersion,
		)

		fmt.Fprintf(os.Stderr,
			"Warning: Agent CLI version %s is unsupported by this SDK. "+
				"Minimum required version is %s. Some features may not work correctly.\n",
			version, MinimumVersion,
		)

		return
	}

	d.log.Debug("CLI version check passed", "version", version, "minimum", MinimumVersion)
}

// compareVersions compares two semantic versions.
// Returns -1 if a < b, 0 if a == b, 1 if a > b.
func compareVersions(a, b string) int {
	aParts := strings.Split(a, ".")
	bParts := strings.Split(b, ".")

	for i := range 3 {
		aNum, bNum := 0, 0

		if i < len(aParts) {
			aNum, _ = strconv.Atoi(aParts[i])
		}

		if i < len(bParts) {
			bNum, _ = strconv.Atoi(bParts[i])
		}

		switch {
		case aNum < bNum:
			return -1
		case aNum > bNum:
			return 1
		}
	}

	return 0
}

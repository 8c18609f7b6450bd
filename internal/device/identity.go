package device

import (
	"io/fs"
	"log/slog"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"

	"github.com/multifx/pedalctl/internal/storage"
)

// IdentityFile is the optional descriptor at the top of a configuration
// root.
const IdentityFile = "device.toml"

// Identity describes the pedal a configuration root belongs to. All fields
// are optional; an absent or unusable identity file yields the zero value.
type Identity struct {
	Name     string `toml:"name"`
	ID       string `toml:"id"`
	Firmware string `toml:"firmware"`
}

// Empty reports whether no identity information is present.
func (id Identity) Empty() bool {
	return id == Identity{}
}

func (id Identity) String() string {
	if id.Empty() {
		return "unknown device"
	}
	name := id.Name
	if name == "" {
		name = "unnamed device"
	}
	var extras []string
	if id.ID != "" {
		extras = append(extras, "id "+id.ID)
	}
	if id.Firmware != "" {
		extras = append(extras, "fw "+id.Firmware)
	}
	if len(extras) == 0 {
		return name
	}
	return name + " (" + strings.Join(extras, ", ") + ")"
}

// LoadIdentity reads the identity file at the top of root. A missing file
// is normal; an unreadable or malformed one is worth a warning but never
// fails a scan.
func LoadIdentity(root storage.Root, logger *slog.Logger) Identity {
	if logger == nil {
		logger = slog.Default()
	}

	data, err := root.ReadFile(IdentityFile)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("unreadable identity file",
				"root", root.Name(),
				"error", err)
		}
		return Identity{}
	}

	var id Identity
	if err := toml.Unmarshal(data, &id); err != nil {
		logger.Warn("malformed identity file",
			"root", root.Name(),
			"error", err)
		return Identity{}
	}
	return id
}

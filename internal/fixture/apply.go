package fixture

import "github.com/lumigrid/lumigrid/internal/output"

// Config is the kind-independent parameter set of a fixture as persisted
// in a project file. Kind metrics are persisted alongside it by the
// structure layer.
type Config struct {
	X, Y, Z          float32
	Yaw, Pitch, Roll float32

	Enabled    bool
	Brightness float32
	Mute       bool
	Solo       bool

	Protocol  output.Protocol
	Host      string
	Port      int
	KinetPort int
	Universe  int
}

// ApplyConfig sets every parameter without triggering the per-field
// invalidation tiers, then performs exactly one full regenerate. This is
// the load path: a fixture loaded from disk must not rebuild once per
// field.
func (f *Fixture) ApplyConfig(c Config) error {
	f.x, f.y, f.z = c.X, c.Y, c.Z
	f.yaw, f.pitch, f.roll = c.Yaw, c.Pitch, c.Roll

	f.Enabled = c.Enabled
	f.Brightness = c.Brightness
	f.Mute = c.Mute
	f.Solo = c.Solo

	f.protocol = c.Protocol
	f.host = c.Host
	f.port = c.Port
	f.kinetPort = c.KinetPort
	f.universe = c.Universe

	if f.container != nil {
		return f.Regenerate()
	}
	return nil
}

// ConfigSnapshot returns the fixture's persistable parameters.
func (f *Fixture) ConfigSnapshot() Config {
	return Config{
		X: f.x, Y: f.y, Z: f.z,
		Yaw: f.yaw, Pitch: f.pitch, Roll: f.roll,
		Enabled:    f.Enabled,
		Brightness: f.Brightness,
		Mute:       f.Mute,
		Solo:       f.Solo,
		Protocol:   f.protocol,
		Host:       f.host,
		Port:       f.port,
		KinetPort:  f.kinetPort,
		Universe:   f.universe,
	}
}

package structure

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/lumigrid/lumigrid/internal/fixture"
	"github.com/lumigrid/lumigrid/internal/output"
)

// projectVersion is the persisted schema version.
const projectVersion = 1

type projectFile struct {
	Version  int            `yaml:"version"`
	Fixtures []fixtureEntry `yaml:"fixtures"`
}

// fixtureEntry is the persisted form of one fixture: geometry fields,
// kind-specific metrics, output fields and nested children.
type fixtureEntry struct {
	ID   string `yaml:"id,omitempty"`
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`

	X     float32 `yaml:"x"`
	Y     float32 `yaml:"y"`
	Z     float32 `yaml:"z"`
	Yaw   float32 `yaml:"yaw"`
	Pitch float32 `yaml:"pitch"`
	Roll  float32 `yaml:"roll"`

	Enabled    bool    `yaml:"enabled"`
	Brightness float32 `yaml:"brightness"`
	Mute       bool    `yaml:"mute,omitempty"`
	Solo       bool    `yaml:"solo,omitempty"`

	Protocol  string `yaml:"protocol,omitempty"`
	Host      string `yaml:"host,omitempty"`
	Port      int    `yaml:"port,omitempty"`
	KinetPort int    `yaml:"kinet_port,omitempty"`
	Universe  int    `yaml:"universe,omitempty"`

	Strip *stripEntry `yaml:"strip,omitempty"`
	Grid  *gridEntry  `yaml:"grid,omitempty"`
	Arc   *arcEntry   `yaml:"arc,omitempty"`

	Children []fixtureEntry `yaml:"children,omitempty"`
}

type stripEntry struct {
	NumPoints int     `yaml:"num_points"`
	Spacing   float32 `yaml:"spacing"`
}

type gridEntry struct {
	NumRows       int     `yaml:"num_rows"`
	NumColumns    int     `yaml:"num_columns"`
	RowSpacing    float32 `yaml:"row_spacing"`
	ColumnSpacing float32 `yaml:"column_spacing"`
}

type arcEntry struct {
	NumPoints       int     `yaml:"num_points"`
	Radius          float32 `yaml:"radius"`
	DegreesPerPoint float32 `yaml:"degrees_per_point"`
}

// Save writes the structure's fixtures to a project file.
func (s *Structure) Save(path string) error {
	project := projectFile{Version: projectVersion}
	for _, f := range s.fixtures {
		project.Fixtures = append(project.Fixtures, saveFixture(f))
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	data, err := yaml.Marshal(&project)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func saveFixture(f *fixture.Fixture) fixtureEntry {
	cfg := f.ConfigSnapshot()
	entry := fixtureEntry{
		ID:   f.ID.String(),
		Name: f.Name,
		Kind: f.Kind().Key(),

		X: cfg.X, Y: cfg.Y, Z: cfg.Z,
		Yaw: cfg.Yaw, Pitch: cfg.Pitch, Roll: cfg.Roll,

		Enabled:    cfg.Enabled,
		Brightness: cfg.Brightness,
		Mute:       cfg.Mute,
		Solo:       cfg.Solo,

		Host:      cfg.Host,
		Port:      cfg.Port,
		KinetPort: cfg.KinetPort,
		Universe:  cfg.Universe,
	}
	if cfg.Protocol != output.ProtocolNone {
		entry.Protocol = cfg.Protocol.String()
	}

	switch kind := f.Kind().(type) {
	case *fixture.StripKind:
		entry.Strip = &stripEntry{NumPoints: kind.NumPoints, Spacing: kind.Spacing}
	case *fixture.GridKind:
		entry.Grid = &gridEntry{
			NumRows: kind.NumRows, NumColumns: kind.NumColumns,
			RowSpacing: kind.RowSpacing, ColumnSpacing: kind.ColumnSpacing,
		}
	case *fixture.ArcKind:
		entry.Arc = &arcEntry{
			NumPoints: kind.NumPoints, Radius: kind.Radius,
			DegreesPerPoint: kind.DegreesPerPoint,
		}
	}

	for _, child := range f.Children() {
		entry.Children = append(entry.Children, saveFixture(child))
	}
	return entry
}

// Load replaces the structure's fixtures with the project file's
// contents. The entire file is parsed and validated before any existing
// fixture is touched: on a configuration error the current tree stays
// intact. Each loaded fixture applies all of its fields and then
// regenerates exactly once, on attach.
func (s *Structure) Load(path string) error {
	if err := s.guardMutate(); err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading project %s: %w", path, err)
	}

	var project projectFile
	if err := yaml.Unmarshal(data, &project); err != nil {
		return fmt.Errorf("parsing project %s: %v: %w", path, err, fixture.ErrConfiguration)
	}
	if project.Version != projectVersion {
		return fmt.Errorf("project %s: unsupported version %d: %w",
			path, project.Version, fixture.ErrConfiguration)
	}

	loaded := make([]*fixture.Fixture, 0, len(project.Fixtures))
	for _, entry := range project.Fixtures {
		f, err := loadFixture(entry)
		if err != nil {
			return fmt.Errorf("project %s: %w", path, err)
		}
		loaded = append(loaded, f)
	}

	if err := s.Clear(); err != nil {
		return err
	}
	for _, f := range loaded {
		if err := s.AddFixture(f); err != nil {
			return err
		}
	}
	return nil
}

func loadFixture(entry fixtureEntry) (*fixture.Fixture, error) {
	kind, err := loadKind(entry)
	if err != nil {
		return nil, err
	}

	protocol, err := output.ParseProtocol(entry.Protocol)
	if err != nil {
		return nil, fmt.Errorf("fixture %q: %v: %w", entry.Name, err, fixture.ErrConfiguration)
	}

	f := fixture.New(entry.Name, kind)
	if entry.ID != "" {
		id, err := uuid.Parse(entry.ID)
		if err != nil {
			return nil, fmt.Errorf("fixture %q: bad id %q: %w", entry.Name, entry.ID, fixture.ErrConfiguration)
		}
		f.ID = id
	}

	if err := f.ApplyConfig(fixture.Config{
		X: entry.X, Y: entry.Y, Z: entry.Z,
		Yaw: entry.Yaw, Pitch: entry.Pitch, Roll: entry.Roll,
		Enabled:    entry.Enabled,
		Brightness: entry.Brightness,
		Mute:       entry.Mute,
		Solo:       entry.Solo,
		Protocol:   protocol,
		Host:       entry.Host,
		Port:       entry.Port,
		KinetPort:  entry.KinetPort,
		Universe:   entry.Universe,
	}); err != nil {
		return nil, err
	}

	for _, childEntry := range entry.Children {
		child, err := loadFixture(childEntry)
		if err != nil {
			return nil, err
		}
		if err := f.AddChild(child); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func loadKind(entry fixtureEntry) (fixture.Kind, error) {
	switch entry.Kind {
	case "strip":
		if entry.Strip == nil {
			return nil, fmt.Errorf("fixture %q: missing strip metrics: %w", entry.Name, fixture.ErrConfiguration)
		}
		return &fixture.StripKind{
			NumPoints: entry.Strip.NumPoints,
			Spacing:   entry.Strip.Spacing,
		}, nil
	case "grid":
		if entry.Grid == nil {
			return nil, fmt.Errorf("fixture %q: missing grid metrics: %w", entry.Name, fixture.ErrConfiguration)
		}
		return &fixture.GridKind{
			NumRows:       entry.Grid.NumRows,
			NumColumns:    entry.Grid.NumColumns,
			RowSpacing:    entry.Grid.RowSpacing,
			ColumnSpacing: entry.Grid.ColumnSpacing,
		}, nil
	case "arc":
		if entry.Arc == nil {
			return nil, fmt.Errorf("fixture %q: missing arc metrics: %w", entry.Name, fixture.ErrConfiguration)
		}
		return &fixture.ArcKind{
			NumPoints:       entry.Arc.NumPoints,
			Radius:          entry.Arc.Radius,
			DegreesPerPoint: entry.Arc.DegreesPerPoint,
		}, nil
	}
	return nil, fmt.Errorf("fixture %q: unknown kind %q: %w", entry.Name, entry.Kind, fixture.ErrConfiguration)
}

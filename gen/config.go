package gen

import (
	"errors"
	"fmt"
	"go/token"
	"path/filepath"
	"runtime"

	"github.com/hashicorp/go-version"
	"github.com/spf13/afero"

	"github.com/syssam/scribe"
	"github.com/syssam/scribe/dialect"
)

// DefaultHeader is the comment placed at the top of generated Go files.
const DefaultHeader = "Code generated by scribe. DO NOT EDIT."

// Config holds the generation settings. Zero fields fall back to the
// defaults documented on the matching option.
type Config struct {
	// Schema is the path of the YAML schema file.
	Schema string
	// Target is the directory artifacts are written into.
	Target string
	// Package names the package of the generated constants file.
	// Empty means the base name of Target.
	Package string
	// Dialects lists the dialects migration scripts are built for.
	// Empty means every supported dialect.
	Dialects []string
	// Header is the header comment of generated Go files.
	Header string
	// MinVersion, when set, refuses to generate with an older release.
	MinVersion *version.Version
	// Fs is the filesystem the schema is read from and artifacts are
	// written through. Nil means the operating system filesystem.
	Fs afero.Fs
	// Workers caps the number of parallel artifact writes.
	Workers int
}

// Option configures artifact generation.
type Option func(*Config) error

// WithSchema sets the path of the YAML schema file.
func WithSchema(path string) Option {
	return func(c *Config) error {
		if path == "" {
			return NewConfigError("Schema", nil, "schema file cannot be empty")
		}
		c.Schema = path
		return nil
	}
}

// WithTarget sets the output directory.
// The directory where generated artifacts will be written.
func WithTarget(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("Target", nil, "target directory cannot be empty")
		}
		c.Target = dir
		return nil
	}
}

// WithPackage sets the package name of the generated constants file.
func WithPackage(pkg string) Option {
	return func(c *Config) error {
		if pkg == "" {
			return NewConfigError("Package", nil, "package cannot be empty")
		}
		if !token.IsIdentifier(pkg) {
			return NewConfigError("Package", pkg, "not a valid Go identifier")
		}
		c.Package = pkg
		return nil
	}
}

// WithDialects sets the dialects migration scripts are built for.
// Supported dialects: "mysql", "postgres", "sqlite".
func WithDialects(dialects ...string) Option {
	return func(c *Config) error {
		for _, d := range dialects {
			switch d {
			case dialect.MySQL, dialect.Postgres, dialect.SQLite:
			default:
				return NewConfigError("Dialects", d, "unsupported dialect; use mysql, postgres, or sqlite")
			}
		}
		c.Dialects = append(c.Dialects, dialects...)
		return nil
	}
}

// WithHeader sets the file header comment.
// The header is added at the top of each generated Go file.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithMinVersion sets the minimum release the schema may generate with.
// Generation fails when the running release is older.
func WithMinVersion(v string) Option {
	return func(c *Config) error {
		min, err := version.NewVersion(v)
		if err != nil {
			return NewConfigError("MinVersion", v, "not a valid version constraint")
		}
		c.MinVersion = min
		return nil
	}
}

// WithFs sets the filesystem artifacts are written through, which lets
// tests generate into memory.
func WithFs(fs afero.Fs) Option {
	return func(c *Config) error {
		if fs == nil {
			return NewConfigError("Fs", nil, "filesystem cannot be nil")
		}
		c.Fs = fs
		return nil
	}
}

// WithWorkers sets the number of parallel artifact writes.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n < 1 {
			return NewConfigError("Workers", n, "worker count must be positive")
		}
		c.Workers = n
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig creates a new Config with the given options.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNewConfig creates a new Config with the given options.
// It panics if any option fails.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// defaults fills the zero fields in place before generation runs.
func (c *Config) defaults() {
	if c.Package == "" && c.Target != "" {
		c.Package = filepath.Base(c.Target)
	}
	if len(c.Dialects) == 0 {
		c.Dialects = []string{dialect.MySQL, dialect.Postgres, dialect.SQLite}
	}
	if c.Header == "" {
		c.Header = DefaultHeader
	}
	if c.Fs == nil {
		c.Fs = afero.NewOsFs()
	}
	if c.Workers < 1 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
}

// checkVersion enforces the MinVersion gate against the running release.
func (c *Config) checkVersion() error {
	if c.MinVersion == nil {
		return nil
	}
	current, err := version.NewVersion(scribe.Version)
	if err != nil {
		return NewConfigError("MinVersion", scribe.Version, "cannot parse running version")
	}
	if current.LessThan(c.MinVersion) {
		msg := fmt.Sprintf("schema requires scribe %s or newer, running %s", c.MinVersion, scribe.Version)
		return NewConfigError("MinVersion", c.MinVersion.String(), msg)
	}
	return nil
}

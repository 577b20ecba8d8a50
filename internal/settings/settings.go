// Package settings holds the tool's configuration knobs and their layered
// loading: built-in defaults, then an optional YAML settings file, then
// environment variables. Command-line flags override all three.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Built-in defaults. Config directories are hidden ".schemap" directories;
// the files inside them use a ".patterns" suffix.
const (
	DefaultDirPattern  = `/\.schemap$`
	DefaultFilePattern = `\.patterns$`
	DefaultValidator   = "jsonschema"
)

// Environment variables recognized as overrides.
const (
	EnvDirPattern  = "SCHEMAP_DIR_PATTERN"
	EnvFilePattern = "SCHEMAP_FILE_PATTERN"
	EnvValidator   = "SCHEMAP_VALIDATOR"
)

// Settings are the recognized knobs.
type Settings struct {
	// DirPattern matches the full path of a config directory.
	DirPattern string `yaml:"dirPattern"`

	// FilePattern matches the full path of a config file inside a
	// config directory.
	FilePattern string `yaml:"filePattern"`

	// ValidatorCommand is the external validator executable.
	ValidatorCommand string `yaml:"validator"`
}

// Origins records where each knob's effective value came from, for the
// settings subcommand.
type Origins struct {
	DirPattern  string
	FilePattern string
	Validator   string
}

// Compiled is a Settings with the patterns compiled, ready for the pipeline.
type Compiled struct {
	DirPattern       *regexp.Regexp
	FilePattern      *regexp.Regexp
	ValidatorCommand string
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		DirPattern:       DefaultDirPattern,
		FilePattern:      DefaultFilePattern,
		ValidatorCommand: DefaultValidator,
	}
}

// DefaultPath returns the default settings file location (~/.schemap.yaml).
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".schemap.yaml"
	}
	return filepath.Join(home, ".schemap.yaml")
}

// Load builds the effective settings. If path is empty the default location
// is used and a missing file there is not an error; an explicit path must
// exist. environ is scanned for the SCHEMAP_* overrides, which take
// precedence over the file.
func Load(path string, environ []string) (Settings, Origins, error) {
	s := Default()
	o := Origins{DirPattern: "default", FilePattern: "default", Validator: "default"}

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		var file Settings
		if err := yaml.Unmarshal(content, &file); err != nil {
			return Settings{}, Origins{}, fmt.Errorf("settings file %s: %w", path, err)
		}
		if file.DirPattern != "" {
			s.DirPattern, o.DirPattern = file.DirPattern, "file"
		}
		if file.FilePattern != "" {
			s.FilePattern, o.FilePattern = file.FilePattern, "file"
		}
		if file.ValidatorCommand != "" {
			s.ValidatorCommand, o.Validator = file.ValidatorCommand, "file"
		}
	case os.IsNotExist(err) && !explicit:
		// No settings file is fine; defaults apply.
	default:
		return Settings{}, Origins{}, fmt.Errorf("settings file %s: %w", path, err)
	}

	if v := lookupEnv(environ, EnvDirPattern); v != "" {
		s.DirPattern, o.DirPattern = v, "env"
	}
	if v := lookupEnv(environ, EnvFilePattern); v != "" {
		s.FilePattern, o.FilePattern = v, "env"
	}
	if v := lookupEnv(environ, EnvValidator); v != "" {
		s.ValidatorCommand, o.Validator = v, "env"
	}

	return s, o, nil
}

// Compile validates the patterns and returns the compiled form.
func (s Settings) Compile() (Compiled, error) {
	dirRe, err := regexp.Compile(s.DirPattern)
	if err != nil {
		return Compiled{}, fmt.Errorf("invalid dir pattern %q: %w", s.DirPattern, err)
	}
	fileRe, err := regexp.Compile(s.FilePattern)
	if err != nil {
		return Compiled{}, fmt.Errorf("invalid file pattern %q: %w", s.FilePattern, err)
	}
	if s.ValidatorCommand == "" {
		return Compiled{}, fmt.Errorf("validator command is empty")
	}
	return Compiled{
		DirPattern:       dirRe,
		FilePattern:      fileRe,
		ValidatorCommand: s.ValidatorCommand,
	}, nil
}

// lookupEnv finds name in an os.Environ-style slice.
func lookupEnv(environ []string, name string) string {
	prefix := name + "="
	for _, env := range environ {
		if strings.HasPrefix(env, prefix) {
			return strings.TrimPrefix(env, prefix)
		}
	}
	return ""
}

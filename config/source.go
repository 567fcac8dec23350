package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to the environment variable name derived from a setting key.
const EnvPrefix = "CONTRACT_"

//go:embed defaults.yaml
var packagedDefaults []byte

// Source is one layer of configuration. Lookup reports whether the layer defines a key.
type Source interface {
	Name() string
	Lookup(key string) (string, bool)
}

// EnvName returns the environment variable consulted for a setting key, e.g.
// "base.uri" -> "CONTRACT_BASE_URI".
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
}

// OverrideSource holds explicit runtime overrides, such as --set flags.
type OverrideSource map[string]string

func (o OverrideSource) Name() string { return "override" }

func (o OverrideSource) Lookup(key string) (string, bool) {
	v, ok := o[key]
	return v, ok
}

// ParseOverrides turns "key=value" pairs into an OverrideSource.
func ParseOverrides(pairs []string) (OverrideSource, error) {
	o := make(OverrideSource, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid override %q, expected key=value", p)
		}
		o[k] = v
	}
	return o, nil
}

// EnvSource reads settings from the process environment.
type EnvSource struct{}

func (EnvSource) Name() string { return "environment" }

func (EnvSource) Lookup(key string) (string, bool) {
	if v, ok := os.LookupEnv(EnvName(key)); ok && v != "" {
		return v, true
	}
	return "", false
}

// DotEnvSource reads settings from a dotenv file without modifying the process environment.
type DotEnvSource struct {
	path   string
	values map[string]string
}

// NewDotEnvSource reads the dotenv file at path.
func NewDotEnvSource(path string) (*DotEnvSource, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("error reading env file %s: %w", path, err)
	}
	return &DotEnvSource{path: path, values: values}, nil
}

func (d *DotEnvSource) Name() string { return d.path }

func (d *DotEnvSource) Lookup(key string) (string, bool) {
	if v, ok := d.values[EnvName(key)]; ok && v != "" {
		return v, true
	}
	return "", false
}

// FileSource is a YAML defaults file. Keys may be written flat ("base.uri: ...") or nested
// ("base: {uri: ...}"); both forms are addressed by the dotted key.
type FileSource struct {
	name   string
	values map[string]string
}

// PackagedDefaults returns the defaults file compiled into the binary.
func PackagedDefaults() (*FileSource, error) {
	return ParseFileSource("packaged defaults", packagedDefaults)
}

// NewFileSource reads a YAML defaults file from disk.
func NewFileSource(path string) (*FileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return ParseFileSource(path, data)
}

// ParseFileSource parses YAML defaults data; name identifies the source in error messages.
func ParseFileSource(name string, data []byte) (*FileSource, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("error parsing config from %s: %w", name, err)
	}
	values := make(map[string]string)
	flatten("", raw, values)
	return &FileSource{name: name, values: values}, nil
}

func (f *FileSource) Name() string { return f.name }

func (f *FileSource) Lookup(key string) (string, bool) {
	v, ok := f.values[key]
	return v, ok
}

func flatten(prefix string, in map[string]interface{}, out map[string]string) {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch tv := v.(type) {
		case map[string]interface{}:
			flatten(key, tv, out)
		case nil:
		default:
			out[key] = fmt.Sprint(tv)
		}
	}
}

package config

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Error is a configuration value that could not be used. It is fatal for a test run.
type Error struct {
	Key    string
	Value  string
	Source string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid value %q for %q (from %s): %s", e.Value, e.Key, e.Source, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

type setting struct {
	key   string
	def   string
	apply func(c *Configuration, raw string) error
}

var settings = []setting{
	{KeyBaseURI, "https://jsonplaceholder.typicode.com", stringSetter(func(c *Configuration, v string) { c.BaseURI = v })},
	{KeyBasePath, "/", stringSetter(func(c *Configuration, v string) { c.BasePath = v })},
	{KeyTimeout, "10000", intSetter(func(c *Configuration, v int) { c.TimeoutMS = v })},
	{KeyEnvironment, "test", stringSetter(func(c *Configuration, v string) { c.Environment = v })},
	{KeyPostCount, "100", intSetter(func(c *Configuration, v int) { c.Fixture.PostCount = v })},
	{KeyUserCount, "10", intSetter(func(c *Configuration, v int) { c.Fixture.UserCount = v })},
	{KeyMissingUserID, "999", intSetter(func(c *Configuration, v int) { c.Fixture.MissingUserID = v })},
	{KeyLogLevel, "info", stringSetter(func(c *Configuration, v string) { c.Logging.Level = strings.ToLower(v) })},
	{KeyLogFormat, "console", stringSetter(func(c *Configuration, v string) { c.Logging.Format = strings.ToLower(v) })},
	{KeyLogHTTP, "all", stringSetter(func(c *Configuration, v string) { c.Logging.HTTP = strings.ToLower(v) })},
}

func stringSetter(set func(*Configuration, string)) func(*Configuration, string) error {
	return func(c *Configuration, raw string) error {
		set(c, strings.TrimSpace(raw))
		return nil
	}
}

func intSetter(set func(*Configuration, int)) func(*Configuration, string) error {
	return func(c *Configuration, raw string) error {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return errors.New("expected an integer")
		}
		set(c, n)
		return nil
	}
}

// Keys returns every setting key the resolver knows about, in resolution order.
func Keys() []string {
	ret := make([]string, 0, len(settings))
	for _, s := range settings {
		ret = append(ret, s.key)
	}
	return ret
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("key")
	})
	return v
}

// Resolver merges its sources in priority order. Resolution happens on the first call to
// Resolve; later calls return the same result.
type Resolver struct {
	sources []Source
	once    sync.Once
	cfg     Configuration
	err     error
}

// NewResolver creates a Resolver; sources are listed from highest to lowest precedence.
func NewResolver(sources ...Source) *Resolver {
	return &Resolver{sources: sources}
}

func (r *Resolver) Resolve() (Configuration, error) {
	r.once.Do(func() {
		r.cfg, r.err = r.resolve()
	})
	return r.cfg, r.err
}

func (r *Resolver) resolve() (Configuration, error) {
	var cfg Configuration
	origins := make(map[string]string, len(settings))
	for _, s := range settings {
		raw, from := s.def, "default"
		for _, src := range r.sources {
			if v, ok := src.Lookup(s.key); ok {
				raw, from = v, src.Name()
				break
			}
		}
		if err := s.apply(&cfg, raw); err != nil {
			return Configuration{}, &Error{Key: s.key, Value: raw, Source: from, Err: err}
		}
		origins[s.key] = from
	}

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return Configuration{}, &Error{
				Key:    fe.Field(),
				Value:  fmt.Sprint(fe.Value()),
				Source: origins[fe.Field()],
				Err:    errors.New(describeRule(fe)),
			}
		}
		return Configuration{}, err
	}
	return cfg, nil
}

func describeRule(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "a value is required"
	case "url":
		return "must be an absolute URL"
	case "startswith":
		return fmt.Sprintf("must start with %q", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	default:
		return fmt.Sprintf("failed the %q rule", fe.Tag())
	}
}

// Layers describes the standard source stack: explicit overrides, the process environment,
// an optional dotenv file, then a defaults file (the packaged one unless DefaultsPath is set).
type Layers struct {
	Overrides    OverrideSource
	DotEnvPath   string
	DefaultsPath string
}

// Resolver builds a Resolver for these layers. It fails only if a file can't be read.
func (l Layers) Resolver() (*Resolver, error) {
	sources := []Source{}
	if len(l.Overrides) > 0 {
		sources = append(sources, l.Overrides)
	}
	sources = append(sources, EnvSource{})
	if l.DotEnvPath != "" {
		d, err := NewDotEnvSource(l.DotEnvPath)
		if err != nil {
			return nil, err
		}
		sources = append(sources, d)
	}
	var defaults *FileSource
	var err error
	if l.DefaultsPath != "" {
		defaults, err = NewFileSource(l.DefaultsPath)
	} else {
		defaults, err = PackagedDefaults()
	}
	if err != nil {
		return nil, err
	}
	sources = append(sources, defaults)
	return NewResolver(sources...), nil
}

var (
	processOnce     sync.Once
	processResolver *Resolver
	processErr      error
)

// Default returns the process-wide resolver, reading the environment and the packaged
// defaults. Every call returns the same Resolver.
func Default() (*Resolver, error) {
	processOnce.Do(func() {
		processResolver, processErr = Layers{}.Resolver()
	})
	return processResolver, processErr
}

// Resolve resolves the process-wide configuration. It is memoized: only the first call does
// any work.
func Resolve() (Configuration, error) {
	r, err := Default()
	if err != nil {
		return Configuration{}, err
	}
	return r.Resolve()
}

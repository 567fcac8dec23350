// Package config resolves the settings the contract suite runs with.
//
// Settings are looked up by key (for instance "base.uri") in an ordered list of sources,
// the first source that defines a key wins, and keys that no source defines fall back to a
// hardcoded default. The result is an immutable Configuration that is resolved once per
// process and never changes afterward.
package config

import (
	"strings"
	"time"
)

// Setting keys.
const (
	KeyBaseURI       = "base.uri"
	KeyBasePath      = "base.path"
	KeyTimeout       = "timeout"
	KeyEnvironment   = "environment"
	KeyPostCount     = "fixture.posts.count"
	KeyUserCount     = "fixture.users.count"
	KeyMissingUserID = "fixture.users.missing.id"
	KeyLogLevel      = "log.level"
	KeyLogFormat     = "log.format"
	KeyLogHTTP       = "log.http"
)

// Configuration is the resolved, read-only configuration of a test run.
type Configuration struct {
	BaseURI     string        `key:"base.uri" validate:"required,url"`
	BasePath    string        `key:"base.path" validate:"required,startswith=/"`
	TimeoutMS   int           `key:"timeout" validate:"gt=0"`
	Environment string        `key:"environment" validate:"required"`
	Fixture     FixtureConfig `key:"fixture"`
	Logging     LoggingConfig `key:"log"`
}

// FixtureConfig describes the backing dataset the suite is pointed at. The reference
// dataset has 100 posts and 10 users; other datasets can override the expected sizes.
type FixtureConfig struct {
	PostCount     int `key:"fixture.posts.count" validate:"gte=0"`
	UserCount     int `key:"fixture.users.count" validate:"gte=0"`
	MissingUserID int `key:"fixture.users.missing.id" validate:"gt=0"`
}

type LoggingConfig struct {
	Level  string `key:"log.level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Format string `key:"log.format" validate:"oneof=console json"`
	HTTP   string `key:"log.http" validate:"oneof=all compact none"`
}

// BaseURL returns the base URI joined with the base path, without a trailing slash.
func (c Configuration) BaseURL() string {
	base := strings.TrimRight(c.BaseURI, "/")
	path := strings.Trim(c.BasePath, "/")
	if path == "" {
		return base
	}
	return base + "/" + path
}

// Timeout bounds every request issued during the run.
func (c Configuration) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

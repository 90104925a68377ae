package driver

import (
	"fmt"
	"strconv"
)

// DefaultFetchSize is the library-wide fetch batch size used when neither
// the fetch options, the cursor nor the attachment specify one.
const DefaultFetchSize = 64

// Config holds the driver-wide defaults applied to every client.
type Config struct {
	// DefaultFetchSize is the fetch batch size attachments start with.
	// Zero falls back to DefaultFetchSize.
	//
	// This setting can be configured via:
	//   - YAML configuration with the "default_fetch_size" key
	//   - Environment variable EMBER_DEFAULT_FETCH_SIZE
	DefaultFetchSize int `yaml:"default_fetch_size" envconfig:"EMBER_DEFAULT_FETCH_SIZE"`
}

// ConnectOptions describes how to reach an existing database and who to
// connect as. The zero value connects to a local database by path alone.
type ConnectOptions struct {
	// Host is the server host name. Empty means a direct local
	// attachment through the engine.
	Host string `yaml:"host" envconfig:"EMBER_HOST"`

	// Port is the server port. Zero uses the engine default.
	Port int `yaml:"port" envconfig:"EMBER_PORT"`

	// Database is the database path or alias on the server.
	Database string `yaml:"database" envconfig:"EMBER_DATABASE"`

	// Username and Password are the credentials presented to the server.
	Username string `yaml:"username" envconfig:"EMBER_USERNAME"`
	Password string `yaml:"password" envconfig:"EMBER_PASSWORD"`

	// Role is the SQL role to assume after connecting, if any.
	Role string `yaml:"role" envconfig:"EMBER_ROLE"`
}

// CreateDatabaseOptions extends ConnectOptions with creation-only settings.
type CreateDatabaseOptions struct {
	ConnectOptions `yaml:",inline"`

	// PageSize is the on-disk page size in bytes. Zero uses the engine
	// default.
	PageSize int `yaml:"page_size" envconfig:"EMBER_PAGE_SIZE"`

	// ForcedWrite makes the server flush pages synchronously. This is
	// the durable default; turn it off only for throwaway databases.
	ForcedWrite bool `yaml:"forced_write" envconfig:"EMBER_FORCED_WRITE"`
}

// Locator composes the target string handed to the engine:
// host/port:database, host:database, or the bare database path.
func (o ConnectOptions) Locator() string {
	if o.Host == "" {
		return o.Database
	}
	if o.Port != 0 {
		return fmt.Sprintf("%s/%d:%s", o.Host, o.Port, o.Database)
	}
	return fmt.Sprintf("%s:%s", o.Host, o.Database)
}

// engineOptions renders the credential and session settings as the flat
// key/value map the engine boundary consumes.
func (o ConnectOptions) engineOptions() map[string]string {
	opts := make(map[string]string)
	if o.Username != "" {
		opts["user"] = o.Username
	}
	if o.Password != "" {
		opts["password"] = o.Password
	}
	if o.Role != "" {
		opts["role"] = o.Role
	}
	return opts
}

func (o CreateDatabaseOptions) engineOptions() map[string]string {
	opts := o.ConnectOptions.engineOptions()
	if o.PageSize != 0 {
		opts["page_size"] = strconv.Itoa(o.PageSize)
	}
	opts["forced_write"] = strconv.FormatBool(o.ForcedWrite)
	return opts
}

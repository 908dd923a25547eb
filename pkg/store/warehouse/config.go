package warehouse

import (
	"fmt"

	sf "github.com/snowflakedb/gosnowflake"
	"github.com/spf13/viper"
)

// Profile describes how to reach the warehouse holding the five relations.
// Either a ready DSN is given, or for Snowflake the connection parameters
// from which one is built.
type Profile struct {
	Driver    string           `mapstructure:"driver"`
	DSN       string           `mapstructure:"dsn"`
	Snowflake *SnowflakeParams `mapstructure:"snowflake"`
}

type SnowflakeParams struct {
	Account   string `mapstructure:"account"`
	User      string `mapstructure:"user"`
	Password  string `mapstructure:"password"`
	Database  string `mapstructure:"database"`
	Schema    string `mapstructure:"schema"`
	Warehouse string `mapstructure:"warehouse"`
	Role      string `mapstructure:"role"`
}

// LoadProfile reads a warehouse profile from the given YAML file.
func LoadProfile(path string) (*Profile, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read warehouse profile: %w", err)
	}

	var profile Profile
	if err := v.Unmarshal(&profile); err != nil {
		return nil, fmt.Errorf("failed to parse warehouse profile: %w", err)
	}

	if profile.Driver == "" {
		return nil, fmt.Errorf("warehouse profile %s: driver is required", path)
	}
	return &profile, nil
}

// ResolveDSN returns the DSN to open, building one from Snowflake parameters
// when no literal DSN is configured.
func (p *Profile) ResolveDSN() (string, error) {
	if p.DSN != "" {
		return p.DSN, nil
	}
	if p.Driver == "snowflake" && p.Snowflake != nil {
		dsn, err := sf.DSN(&sf.Config{
			Account:   p.Snowflake.Account,
			User:      p.Snowflake.User,
			Password:  p.Snowflake.Password,
			Database:  p.Snowflake.Database,
			Schema:    p.Snowflake.Schema,
			Warehouse: p.Snowflake.Warehouse,
			Role:      p.Snowflake.Role,
		})
		if err != nil {
			return "", fmt.Errorf("failed to build snowflake DSN: %w", err)
		}
		return dsn, nil
	}
	return "", fmt.Errorf("profile for driver %q has no dsn", p.Driver)
}

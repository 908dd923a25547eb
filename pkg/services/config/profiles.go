// Package config resolves named source profiles from an ini file, typically
// ~/.salesatlas/profiles.ini. Each section names one place the five
// reporting relations can be loaded from.
package config

import (
	"context"
	"fmt"

	"gopkg.in/ini.v1"
)

type SourceKind string

const (
	SourceCSV       SourceKind = "csv"
	SourceDuckDB    SourceKind = "duckdb"
	SourceWarehouse SourceKind = "warehouse"
)

// Source is one resolved profile. Location is the directory for csv, the
// database path for duckdb and the connection profile path for warehouse.
type Source struct {
	Name     string
	Kind     SourceKind
	Location string
}

type Registry interface {
	GetProfiles(ctx context.Context) ([]Source, error)
	GetProfile(ctx context.Context, name string) (*Source, error)
}

type iniRegistry struct {
	cfg *ini.File
}

func NewRegistry(path string) (Registry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load profiles from %s: %w", path, err)
	}
	return &iniRegistry{cfg: cfg}, nil
}

var locationKeys = map[SourceKind]string{
	SourceCSV:       "dir",
	SourceDuckDB:    "path",
	SourceWarehouse: "profile",
}

func (r *iniRegistry) GetProfiles(_ context.Context) ([]Source, error) {
	var sources []Source
	for _, section := range r.cfg.Sections() {
		if len(section.Keys()) == 0 {
			continue
		}
		src, err := sectionToSource(section)
		if err != nil {
			return nil, err
		}
		sources = append(sources, *src)
	}
	return sources, nil
}

func (r *iniRegistry) GetProfile(_ context.Context, name string) (*Source, error) {
	section, err := r.cfg.GetSection(name)
	if err != nil {
		return nil, fmt.Errorf("profile %s not found", name)
	}
	return sectionToSource(section)
}

func sectionToSource(section *ini.Section) (*Source, error) {
	kind := SourceKind(section.Key("kind").String())
	locationKey, ok := locationKeys[kind]
	if !ok {
		return nil, fmt.Errorf("profile %s: unknown source kind %q", section.Name(), kind)
	}
	location := section.Key(locationKey).String()
	if location == "" {
		return nil, fmt.Errorf("profile %s: %s source requires %q", section.Name(), kind, locationKey)
	}
	return &Source{Name: section.Name(), Kind: kind, Location: location}, nil
}

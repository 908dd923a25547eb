package main

import (
	"fmt"
	"net"
	"os"

	"github.com/de-tools/sales-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/sales-atlas/pkg/server"
	"github.com/de-tools/sales-atlas/pkg/services/config"
	"github.com/de-tools/sales-atlas/pkg/services/snapshot"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	profilesPath string
	profileName  string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for Sales Atlas",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&profilesPath, "profiles", "c", commands.DefaultProfilesPath(),
		"Path to the profiles.ini file (default is $HOME/.salesatlas/profiles.ini)")
	rootCmd.Flags().StringVarP(&profileName, "profile", "p", "default",
		"Source profile the API serves reports from")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	registry, err := config.NewRegistry(profilesPath)
	if err != nil {
		return fmt.Errorf("failed to create profile registry: %w", err)
	}

	logger.Info().Msgf("Profiles found at `%s` successfully loaded.", profilesPath)
	sources, _ := registry.GetProfiles(ctx)
	for _, src := range sources {
		logger.Info().Msgf("Name: `%s`, Kind: `%s`", src.Name, src.Kind)
	}

	snapshots := snapshot.NewService(registry)

	// Fail fast if the configured profile cannot produce a snapshot.
	if _, err := snapshots.Load(ctx, profileName); err != nil {
		return fmt.Errorf("failed to load snapshot from profile %q: %w", profileName, err)
	}

	host := os.Getenv("SERVER_HOST")
	port := os.Getenv("SERVER_PORT")

	if host == "" || port == "" {
		logger.Error().Msgf("Missing server configuration from .env file")
		os.Exit(1)
	}

	webAPI := server.NewWebAPI(logger, server.Config{
		Addr: net.JoinHostPort(host, port),
		Dependencies: server.Dependencies{
			Snapshots: snapshots,
			Profile:   profileName,
		},
	})

	return webAPI.Start()
}

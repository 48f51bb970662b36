package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/stigmergy-dev/stigmergy/internal/capability"
	"github.com/stigmergy-dev/stigmergy/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter .stigmergy.yaml into the project directory",
	Long: `Write a .stigmergy.yaml into the project directory, pre-filled with
the built-in specialty registry so it can be edited in place.

The board itself needs no initialization: the first agent or command to
touch a project directory synthesizes the state file.

Examples:
  stigmergy init
  stigmergy init --project ./shared-board --force`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing config file")
}

// initFile mirrors the config file layout for serialization.
type initFile struct {
	Project struct {
		Name string `yaml:"name"`
	} `yaml:"project"`
	Executor struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"executor"`
	Planner struct {
		MaxFollowUps int `yaml:"max_followups"`
	} `yaml:"planner"`
	Archive struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"archive"`
	Agents map[string]capability.Specialty `yaml:"agents"`
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	path := filepath.Join(projectDir, ".stigmergy.yaml")
	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	var f initFile
	f.Project.Name = cfg.Project.Name
	f.Executor.Timeout = cfg.Executor.Timeout.String()
	f.Planner.MaxFollowUps = cfg.Planner.MaxFollowUps
	f.Archive.Enabled = cfg.Archive.Enabled
	f.Agents = make(map[string]capability.Specialty)
	for id, spec := range capability.DefaultRegistry() {
		f.Agents[string(id)] = spec
	}

	data, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	header := []byte("# stigmergy project configuration\n# Agents claim tasks whose descriptions contain one of their keywords.\n")
	if err := os.MkdirAll(projectDir, 0755); err != nil {
		return err
	}
	if err := os.WriteFile(path, append(header, data...), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	color.Green("wrote %s", path)
	return nil
}

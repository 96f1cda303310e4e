package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pipcheck/pipcheck/internal/models"
	"github.com/pipcheck/pipcheck/internal/scanner"
)

// listCmd enumerates the requirements of discovered manifests
var listCmd = &cobra.Command{
	Use:   "list [paths...]",
	Short: "List the requirements declared in discovered manifests",
	RunE:  runList,
}

type listedRequirement struct {
	Name      string   `json:"name"`
	Group     string   `json:"group"`
	Specifier string   `json:"specifier,omitempty"`
	Git       string   `json:"git,omitempty"`
	Ref       string   `json:"ref,omitempty"`
	Extras    []string `json:"extras,omitempty"`
	File      string   `json:"file"`
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := newContext(cmd)
	config, err := buildConfig(args)
	if err != nil {
		return err
	}

	s, err := scanner.New(config)
	if err != nil {
		return fmt.Errorf("failed to initialize scanner: %w", err)
	}

	manifests, err := s.Manifests(ctx)
	if err != nil {
		return fmt.Errorf("failed to discover manifests: %w", err)
	}

	if config.OutputFormat == "json" {
		var listed []listedRequirement
		for _, m := range manifests {
			for _, req := range m.AllRequirements() {
				listed = append(listed, listedRequirement{
					Name:      req.Name,
					Group:     string(req.Group),
					Specifier: req.Specifier,
					Git:       req.Git,
					Ref:       req.Ref,
					Extras:    req.Extras,
					File:      req.SourceFile,
				})
			}
		}
		output, err := json.MarshalIndent(listed, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(output))
		return nil
	}

	for _, m := range manifests {
		fmt.Println(m.Path)
		writeListedGroup(m.Packages)
		writeListedGroup(m.DevPackages)
	}
	return nil
}

func writeListedGroup(reqs []models.Requirement) {
	for _, req := range reqs {
		extras := ""
		if len(req.Extras) > 0 {
			extras = "[" + strings.Join(req.Extras, ",") + "]"
		}
		fmt.Printf("  %s%s  (%s)\n", req.String(), extras, req.Group)
	}
}

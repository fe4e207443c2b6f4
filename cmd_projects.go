package main

import (
	"fmt"

	"folio/models"
	"folio/store"

	"github.com/spf13/cobra"
)

// projectsCmd groups the public project views.
func (a *app) projectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Browse published projects",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List all projects, newest first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.store.FetchAll(cmd.Context()); err != nil {
					return err
				}
				return renderProjects(cmd.OutOrStdout(), a.output, a.store.Projects(), false)
			},
		},
		&cobra.Command{
			Use:   "latest",
			Short: "Show the most recent projects",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.store.FetchAll(cmd.Context()); err != nil {
					return err
				}
				return renderProjects(cmd.OutOrStdout(), a.output, a.store.Latest(), false)
			},
		},
		&cobra.Command{
			Use:   "show ID",
			Short: "Show one project",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				p, err := a.lookup(cmd, args[0])
				if err != nil {
					return err
				}
				return renderProject(cmd.OutOrStdout(), a.output, p)
			},
		},
	)

	return cmd
}

// lookup loads the list and finds id in it.
func (a *app) lookup(cmd *cobra.Command, id string) (models.Project, error) {
	if err := a.store.FetchAll(cmd.Context()); err != nil {
		return models.Project{}, err
	}
	p, ok := a.store.Get(id)
	if !ok {
		return models.Project{}, fmt.Errorf("project %s: %w", id, store.ErrNotFound)
	}
	return p, nil
}

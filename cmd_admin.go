package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"folio/middleware"
	"folio/models"
	"folio/store"

	"github.com/spf13/cobra"
)

// adminCmd groups the views that need a session. Every subcommand renders
// through the auth guard, which re-reads the token slot on each run.
func (a *app) adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage projects (requires login)",
	}

	cmd.AddCommand(
		a.adminProjectsCmd(),
		a.adminAddCmd(),
		a.adminEditCmd(),
		a.adminDeleteCmd(),
		a.adminStatsCmd(),
		a.adminUploadImageCmd(),
		a.adminImagesCmd(),
	)

	return cmd
}

// guarded renders view behind the auth guard. A missing token turns into an
// error pointing at the login command.
func (a *app) guarded(cmd *cobra.Command, view func(ctx context.Context) error) error {
	protected := middleware.AuthRequired(a.tokens, middleware.DefaultLoginPath)(middleware.ViewFunc(view))

	err := protected.Render(cmd.Context())
	var redirect *middleware.RedirectError
	if errors.As(err, &redirect) {
		return fmt.Errorf("%w (run 'folio login' first)", err)
	}
	return err
}

func (a *app) adminProjectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List projects with their ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.guarded(cmd, func(ctx context.Context) error {
				if err := a.store.FetchAll(ctx); err != nil {
					return err
				}
				return renderProjects(cmd.OutOrStdout(), a.output, a.store.Projects(), true)
			})
		},
	}
}

func (a *app) adminAddCmd() *cobra.Command {
	var (
		upload    models.ProjectUpload
		imagePath string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Upload a new project",
		Example: `  folio admin add --name Folio --deploy https://folio.example.com --image cover.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.guarded(cmd, func(ctx context.Context) error {
				if imagePath != "" {
					f, err := os.Open(imagePath)
					if err != nil {
						return fmt.Errorf("failed to open image: %w", err)
					}
					defer f.Close()
					upload.Image = f
					upload.ImageName = filepath.Base(imagePath)
				}

				resp, err := a.store.Add(ctx, upload)
				if err != nil {
					return err
				}
				if resp.Project != nil {
					return renderProject(cmd.OutOrStdout(), a.output, *resp.Project)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&upload.Name, "name", "", "Project name")
	cmd.Flags().StringVar(&upload.DeployLink, "deploy", "", "Live demo URL")
	cmd.Flags().StringVar(&upload.CodeLink, "code", "", "Source code URL")
	cmd.Flags().StringVar(&upload.Description, "description", "", "Project description")
	cmd.Flags().StringVar(&imagePath, "image", "", "Path to the cover image")

	return cmd
}

func (a *app) adminEditCmd() *cobra.Command {
	var name, description, deploy, code, image string

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change fields of a project",
		Long: `Change fields of a project. Only the flags given are sent;
everything else is left as it is.`,
		Example: `  folio admin edit 65a1f0c2e4b0a1b2c3d4e5f6 --name "New name"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var fields models.ProjectUpdate
			flags := cmd.Flags()
			if flags.Changed("name") {
				fields.Name = &name
			}
			if flags.Changed("description") {
				fields.Description = &description
			}
			if flags.Changed("deploy") {
				fields.DeployLink = &deploy
			}
			if flags.Changed("code") {
				fields.CodeLink = &code
			}
			if flags.Changed("image-url") {
				fields.Image = &image
			}

			return a.guarded(cmd, func(ctx context.Context) error {
				if fields.Empty() {
					return fmt.Errorf("nothing to change: pass at least one field flag")
				}
				if err := a.store.FetchAll(ctx); err != nil {
					return err
				}

				updated, err := a.store.Update(ctx, args[0], fields)
				if err != nil {
					return err
				}
				noticePrinter(cmd.ErrOrStderr()).Notify(store.Notice{
					Title:       "Project updated",
					Description: "Your changes have been saved.",
				})
				return renderProject(cmd.OutOrStdout(), a.output, updated)
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Project name")
	cmd.Flags().StringVar(&description, "description", "", "Project description")
	cmd.Flags().StringVar(&deploy, "deploy", "", "Live demo URL")
	cmd.Flags().StringVar(&code, "code", "", "Source code URL")
	cmd.Flags().StringVar(&image, "image-url", "", "Cover image URL")

	return cmd
}

func (a *app) adminDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.guarded(cmd, func(ctx context.Context) error {
				if err := a.store.FetchAll(ctx); err != nil {
					return err
				}

				unsubscribe := a.store.Subscribe(func(projects []models.Project) {
					fmt.Fprintf(cmd.OutOrStdout(), "%d projects remaining.\n", len(projects))
				})
				defer unsubscribe()

				return a.store.Delete(ctx, args[0])
			})
		},
	}
}

func (a *app) adminStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the number of projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.guarded(cmd, func(ctx context.Context) error {
				stats, err := a.client.ProjectNumbers(ctx)
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), a.output, stats, func(tw *tabwriter.Writer) {
					fmt.Fprintf(tw, "Total projects:\t%d\n", stats.Total)
				})
			})
		},
	}
}

func (a *app) adminUploadImageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload-image ID FILE",
		Short: "Replace the cover image of a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.guarded(cmd, func(ctx context.Context) error {
				f, err := os.Open(args[1])
				if err != nil {
					return fmt.Errorf("failed to open image: %w", err)
				}
				defer f.Close()

				resp, err := a.client.UploadImage(ctx, args[0], filepath.Base(args[1]), f)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), resp.ImageURL)
				return nil
			})
		},
	}
}

func (a *app) adminImagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "images",
		Short: "List stored cover images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.guarded(cmd, func(ctx context.Context) error {
				images, err := a.client.ListImages(ctx)
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), a.output, images, func(tw *tabwriter.Writer) {
					fmt.Fprintln(tw, "NAME\tURL")
					for _, img := range images {
						fmt.Fprintf(tw, "%s\t%s\n", img.Name, img.URL)
					}
				})
			})
		},
	}
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"folio/models"

	"gopkg.in/yaml.v3"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func checkFormat(format string) error {
	switch format {
	case formatTable, formatJSON, formatYAML:
		return nil
	}
	return fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
}

// render writes v as JSON or YAML, or calls table for the table format.
func render(w io.Writer, format string, v any, table func(*tabwriter.Writer)) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	table(tw)
	return tw.Flush()
}

func renderProjects(w io.Writer, format string, projects []models.Project, admin bool) error {
	return render(w, format, projects, func(tw *tabwriter.Writer) {
		if len(projects) == 0 {
			fmt.Fprintln(tw, "No projects found.")
			return
		}
		if admin {
			fmt.Fprintln(tw, "ID\tNAME\tCREATED\tIMAGE")
		} else {
			fmt.Fprintln(tw, "NAME\tCREATED\tDEPLOY\tCODE")
		}
		for _, p := range projects {
			if admin {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Name, created(p), dash(p.Image))
			} else {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Name, created(p), dash(p.DeployLink), dash(p.CodeLink))
			}
		}
	})
}

func renderProject(w io.Writer, format string, p models.Project) error {
	return render(w, format, p, func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "ID:\t%s\n", p.ID)
		fmt.Fprintf(tw, "Name:\t%s\n", p.Name)
		fmt.Fprintf(tw, "Created:\t%s\n", created(p))
		fmt.Fprintf(tw, "Description:\t%s\n", dash(p.Description))
		fmt.Fprintf(tw, "Image:\t%s\n", dash(p.Image))
		fmt.Fprintf(tw, "Live demo:\t%s\n", dash(p.DeployLink))
		fmt.Fprintf(tw, "Code:\t%s\n", dash(p.CodeLink))
	})
}

func created(p models.Project) string {
	t, ok := p.Timestamp()
	if !ok {
		return "-"
	}
	return t.UTC().Format(time.DateOnly)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

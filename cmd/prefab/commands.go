package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/chazu/prefab/pkg/catalog"
	"github.com/chazu/prefab/pkg/config"
	"github.com/chazu/prefab/pkg/design"
	"github.com/chazu/prefab/pkg/inspect"
	"github.com/chazu/prefab/pkg/kernel"
	"github.com/chazu/prefab/pkg/kernel/sdfx"
	"github.com/chazu/prefab/pkg/script"
	"github.com/chazu/prefab/pkg/tessellate"
	"github.com/spf13/cobra"
)

func newRootCmd(cfg config.Config, log *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "prefab",
		Short:         "Compose prefabricated building modules",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfg.CatalogPath, "catalog", cfg.CatalogPath, "YAML catalog (default: built-in modules)")
	root.PersistentFlags().StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "serve Prometheus metrics on this address")
	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		if cfg.MetricsAddr == "" {
			return nil
		}
		go func() {
			if err := design.ServeMetrics(cmd.Context(), cfg.MetricsAddr, log); err != nil {
				log.Error("metrics", "error", err)
			}
		}()
		return nil
	}

	root.AddCommand(&cobra.Command{
		Use:   "eval <script>",
		Short: "Apply a layout script and print the resulting composition as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runEval(cmd.OutOrStdout(), cfg, log, args[0])
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
			}
			return err
		},
	})

	var output string
	var cells int
	export := &cobra.Command{
		Use:   "export <script>",
		Short: "Write the massing of a layout script as Wavefront OBJ",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), err)
					return err
				}
				defer f.Close()
				w = f
			}
			err := runExport(w, cfg, log, args[0], sdfx.NewWithCells(cells))
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
			}
			return err
		},
	}
	export.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	export.Flags().IntVar(&cells, "cells", sdfx.DefaultMeshCells, "mesh resolution along each module's longest side")
	root.AddCommand(export)

	root.AddCommand(&cobra.Command{
		Use:   "watch <script>",
		Short: "Re-evaluate a layout script every time it is saved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			w, err := newScriptWatcher(path)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return err
			}
			defer w.Close()

			eval := func() {
				if err := runEval(cmd.OutOrStdout(), cfg, log, path); err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), err)
				}
			}
			eval()
			log.Info("watching script", "path", path)
			return watchLoop(cmd.Context(), w, path, watchDebounce, eval)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "catalog [file]",
		Short: "List module definitions as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cfg.CatalogPath
			if len(args) == 1 {
				path = args[0]
			}
			err := runCatalog(cmd.OutOrStdout(), path)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
			}
			return err
		},
	})
	return root
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Defaults(), nil
	}
	return catalog.LoadFile(path)
}

// build evaluates the script at path and applies it to a new composition.
func build(cfg config.Config, log *slog.Logger, path string) (*design.Controller, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}

	tmpl, evalErrs, err := script.New(cfg.EvalTimeout).Evaluate(string(src))
	if err != nil {
		return nil, err
	}
	if len(evalErrs) > 0 {
		errs := make([]error, len(evalErrs))
		for i, e := range evalErrs {
			errs[i] = fmt.Errorf("%s: %w", path, e)
		}
		return nil, errors.Join(errs...)
	}

	ctrl := design.New(cfg, cat, nil, log)
	if _, err := ctrl.ApplyTemplate(*tmpl); err != nil {
		return nil, err
	}
	for _, v := range ctrl.Validate() {
		log.Warn("composition check", "module", v.ModuleID, "severity", v.Severity.String(), "message", v.Message)
	}
	return ctrl, nil
}

func runEval(w io.Writer, cfg config.Config, log *slog.Logger, path string) error {
	ctrl, err := build(cfg, log, path)
	if err != nil {
		return err
	}
	return writeJSON(w, ctrl.State())
}

// runExport writes the massing of the scripted composition as Wavefront
// OBJ, one object per module.
func runExport(w io.Writer, cfg config.Config, log *slog.Logger, path string, k kernel.Kernel) error {
	ctrl, err := build(cfg, log, path)
	if err != nil {
		return err
	}
	meshes, err := tessellate.Tessellate(ctrl.Composition(), k)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# %s\n", filepath.Base(path))
	base := 1
	for _, m := range meshes {
		fmt.Fprintf(bw, "o %s\n", m.ModuleID)
		for i := 0; i < len(m.Vertices); i += 3 {
			fmt.Fprintf(bw, "v %g %g %g\n", m.Vertices[i], m.Vertices[i+1], m.Vertices[i+2])
		}
		for i := 0; i < len(m.Indices); i += 3 {
			fmt.Fprintf(bw, "f %d %d %d\n", base+int(m.Indices[i]), base+int(m.Indices[i+1]), base+int(m.Indices[i+2]))
		}
		base += m.VertexCount()
	}
	log.Info("exported massing", "modules", len(meshes))
	return bw.Flush()
}

type definitionJSON struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Connectors  []string `json:"connectors"`
	Beds        float64  `json:"beds"`
	Baths       float64  `json:"baths"`
	Sqft        float64  `json:"sqft"`
	Cost        float64  `json:"cost"`
}

func runCatalog(w io.Writer, path string) error {
	cat, err := loadCatalog(path)
	if err != nil {
		return err
	}
	out := []definitionJSON{}
	for _, d := range cat.List() {
		dj := definitionJSON{
			ID:          d.ID,
			Name:        d.Name,
			Description: d.Description,
			Connectors:  []string{},
			Beds:        d.Metrics.Beds,
			Baths:       d.Metrics.Baths,
			Sqft:        d.Metrics.Sqft,
			Cost:        d.BaseCost,
		}
		conns := d.Connectors
		if len(conns) == 0 {
			conns = inspect.ConnectorsFromMarkers(d.Geometry.Markers)
		}
		for _, c := range conns {
			dj.Connectors = append(dj.Connectors, c.ID)
		}
		out = append(out, dj)
	}
	return writeJSON(w, out)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

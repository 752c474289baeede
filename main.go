package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var version = "0.3.0"

var (
	good = color.New(color.FgGreen)
	bad  = color.New(color.FgRed, color.Bold)
	dim  = color.New(color.FgHiBlack)
)

var configPath string

func main() {
	if err := rootCmd().Execute(); err != nil {
		bad.Fprintf(os.Stderr, "flowchart: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "flowchart [file.json]",
		Short:         "Terminal flowchart editor",
		Long:          "Draw flowcharts in the terminal: nodes, curved connections,\nJSON import/export and PNG snapshots.",
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			return runEditor(cfg, args)
		},
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default "+defaultConfigPath()+")")
	cmd.AddCommand(exportPNGCmd(), validateCmd())
	return cmd
}

func runEditor(cfg *Config, args []string) error {
	logger, closer, err := openLogger(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	s := NewEditorSession(NewVisualTree(),
		WithLogger(logger),
		WithRasterizer(NewGGRasterizer()),
		WithGridSize(cfg.GridSize),
		WithSnapRadius(cfg.SnapRadius),
	)
	s.Logger().Info("session started", "version", version)

	m := newModel(s, cfg)
	if len(args) == 1 {
		if err := loadJSON(s, args[0]); err != nil {
			return err
		}
		m.setSuccess("Loaded " + args[0])
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run editor: %w", err)
	}
	s.Logger().Info("session ended")
	return nil
}

func exportPNGCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export-png <in.json> [out.png]",
		Short: "Render a diagram document to PNG",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			s := NewEditorSession(NewVisualTree(), WithRasterizer(NewGGRasterizer()))
			if err := loadJSON(s, args[0]); err != nil {
				return err
			}
			out := pngExportName
			if len(args) == 2 {
				out = args[1]
			}
			out, err = cfg.GetSavePath(withExt(out, ".png"))
			if err != nil {
				return err
			}
			if err := savePNG(s, out); err != nil {
				return err
			}
			good.Printf("wrote %s\n", out)
			return nil
		},
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <in.json>",
		Short: "Check a diagram document without opening the editor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			d, err := DecodeDocument(f)
			if err != nil {
				return err
			}
			nextNode, nextConn := d.Counters()
			good.Printf("%s is valid\n", args[0])
			dim.Printf("  %d nodes, %d connections, next ids %d/%d\n",
				len(d.Nodes()), len(d.Connections()), nextNode, nextConn)
			return nil
		},
	}
}

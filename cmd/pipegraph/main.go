package main

import (
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/spf13/cobra"

	pipebase "github.com/LSST/pipe-base"
	"github.com/LSST/pipe-base/pgraph"
	"github.com/LSST/pipe-base/viz"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var verbosity int
	root := &cobra.Command{
		Use:   "pipegraph",
		Short: "Inspect pipeline dependency graphs",
		Long: `Pipegraph builds the task/dataset-type dependency graph of a pipeline
declaration and answers questions about it: task ordering, dataset type
resolution, and terminal or Graphviz visualization.`,
	}
	root.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity")
	root.AddCommand(showCmd(&verbosity))
	root.AddCommand(orderCmd(&verbosity))
	root.AddCommand(resolveCmd(&verbosity))
	return root
}

func showCmd(verbosity *int) *cobra.Command {
	var (
		registryPath       string
		dot                bool
		datasetTypes       bool
		includeInit        bool
		dimensions         bool
		storageClasses     bool
		taskClasses        bool
		mergeInput         int
		mergeOutput        int
		mergeIntermediates bool
	)

	cmd := &cobra.Command{
		Use:   "show <pipeline.yaml>",
		Short: "Render the pipeline graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pg, err := buildGraph(args[0], registryPath, *verbosity)
			if err != nil {
				return err
			}
			options := viz.NodeAttributeOptions{
				Dimensions:     dimensions,
				StorageClasses: storageClasses,
				TaskClasses:    taskClasses,
			}
			g := viz.Export(pg, viz.ExportOptions{DatasetTypes: datasetTypes, Init: includeInit})
			if mergeInput > 0 {
				viz.MergeInputTrees(g, options, mergeInput)
			}
			if mergeOutput > 0 {
				viz.MergeOutputTrees(g, options, mergeOutput)
			}
			if mergeIntermediates {
				viz.MergeIntermediates(g, options)
			}
			if dot {
				src, err := viz.Dot(g, options, nil)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), src)
				return nil
			}
			printer := &viz.Printer{Options: options}
			return printer.Print(cmd.OutOrStdout(), viz.NewLayout(g))
		},
	}

	cmd.Flags().StringVar(&registryPath, "registry", "", "YAML file of registered dataset type definitions")
	cmd.Flags().BoolVar(&dot, "dot", false, "emit Graphviz DOT instead of a terminal drawing")
	cmd.Flags().BoolVar(&datasetTypes, "dataset-types", true, "include dataset type nodes")
	cmd.Flags().BoolVar(&includeInit, "init", false, "include task init nodes")
	cmd.Flags().BoolVar(&dimensions, "dimensions", false, "show and compare node dimensions")
	cmd.Flags().BoolVar(&storageClasses, "storage-classes", false, "show and compare storage classes")
	cmd.Flags().BoolVar(&taskClasses, "task-classes", false, "show and compare task classes")
	cmd.Flags().IntVar(&mergeInput, "merge-input", 0, "merge isomorphic input trees up to this depth")
	cmd.Flags().IntVar(&mergeOutput, "merge-output", 0, "merge isomorphic output trees up to this depth")
	cmd.Flags().BoolVar(&mergeIntermediates, "merge-intermediates", true, "merge interchangeable intermediate nodes")
	return cmd
}

func orderCmd(verbosity *int) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order <pipeline.yaml>",
		Short: "Print task labels in dependency order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pg, err := buildGraph(args[0], "", *verbosity)
			if err != nil {
				return err
			}
			order, err := pg.TaskOrder()
			if err != nil {
				return err
			}
			for _, label := range order {
				fmt.Fprintln(cmd.OutOrStdout(), label)
			}
			return nil
		},
	}
	return cmd
}

func resolveCmd(verbosity *int) *cobra.Command {
	var registryPath string
	cmd := &cobra.Command{
		Use:   "resolve <pipeline.yaml>",
		Short: "Resolve and print every dataset type in the pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pg, err := buildGraph(args[0], registryPath, *verbosity)
			if err != nil {
				return err
			}
			for _, node := range pg.DatasetTypeNodes() {
				marker := ""
				if node.IsPrerequisite {
					marker = " (prerequisite)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", node.Definition, marker)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&registryPath, "registry", "", "YAML file of registered dataset type definitions")
	return cmd
}

// buildGraph loads a pipeline declaration, builds its graph, and resolves it
// against the registry file if one was given (an empty registry otherwise).
func buildGraph(pipelinePath, registryPath string, verbosity int) (*pgraph.PipelineGraph, error) {
	data, err := os.ReadFile(pipelinePath)
	if err != nil {
		return nil, fmt.Errorf("read pipeline file: %w", err)
	}
	pipeline, err := pipebase.ParsePipeline(data)
	if err != nil {
		return nil, err
	}
	pg, err := pipeline.Graph(pgraph.WithLogger(newLogger(verbosity)))
	if err != nil {
		return nil, err
	}
	registry := pgraph.NewMapRegistry()
	if registryPath != "" {
		regData, err := os.ReadFile(registryPath)
		if err != nil {
			return nil, fmt.Errorf("read registry file: %w", err)
		}
		defs, err := pipebase.ParseDatasetTypes(regData)
		if err != nil {
			return nil, err
		}
		for _, def := range defs {
			registry.Register(def)
		}
	}
	if err := pg.Resolve(registry); err != nil {
		return nil, err
	}
	return pg, nil
}

func newLogger(verbosity int) logr.Logger {
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintf(os.Stderr, "%s: %s\n", prefix, args)
		} else {
			fmt.Fprintln(os.Stderr, args)
		}
	}, funcr.Options{Verbosity: verbosity})
}

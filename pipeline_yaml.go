package pipebase

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/LSST/pipe-base/pgraph"
)

// pipelineFile is the YAML shape of a pipeline declaration. This is glue for
// tools; the core consumes TaskDefs however they were built.
type pipelineFile struct {
	Description string              `yaml:"description"`
	Tasks       map[string]taskFile `yaml:"tasks"`
}

type taskFile struct {
	Class       string          `yaml:"class"`
	Dimensions  []string        `yaml:"dimensions"`
	Connections connectionsFile `yaml:"connections"`
}

type connectionsFile struct {
	Inputs             []inputFile  `yaml:"inputs"`
	PrerequisiteInputs []inputFile  `yaml:"prerequisiteInputs"`
	Outputs            []outputFile `yaml:"outputs"`
	InitInputs         []inputFile  `yaml:"initInputs"`
	InitOutputs        []outputFile `yaml:"initOutputs"`
}

type inputFile struct {
	Name                 string            `yaml:"name"`
	DatasetType          string            `yaml:"datasetType"`
	Component            string            `yaml:"component"`
	StorageClass         string            `yaml:"storageClass"`
	Dimensions           []string          `yaml:"dimensions"`
	Multiplicity         *multiplicityFile `yaml:"multiplicity"`
	DeferQueryConstraint bool              `yaml:"deferQueryConstraint"`
	ManualLoad           bool              `yaml:"manualLoad"`
}

type outputFile struct {
	Name         string            `yaml:"name"`
	DatasetType  string            `yaml:"datasetType"`
	StorageClass string            `yaml:"storageClass"`
	Dimensions   []string          `yaml:"dimensions"`
	Multiplicity *multiplicityFile `yaml:"multiplicity"`
}

type multiplicityFile struct {
	Kind     string `yaml:"kind"` // "scalar" or "sequence"
	Optional bool   `yaml:"optional"`
	Min      int    `yaml:"min"`
	Max      int    `yaml:"max"`
}

// ParsePipeline parses a YAML pipeline declaration into task definitions,
// sorted by label for determinism.
func ParsePipeline(data []byte) (Pipeline, error) {
	var file pipelineFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse pipeline: %w", err)
	}
	if len(file.Tasks) == 0 {
		return nil, fmt.Errorf("parse pipeline: no tasks declared")
	}
	labels := make([]string, 0, len(file.Tasks))
	for label := range file.Tasks {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	pipeline := make(Pipeline, 0, len(labels))
	for _, label := range labels {
		tf := file.Tasks[label]
		task := &TaskDef{
			Label:      label,
			TaskClass:  tf.Class,
			Dimensions: tf.Dimensions,
		}
		for _, in := range tf.Connections.Inputs {
			input, err := in.toInput(label)
			if err != nil {
				return nil, err
			}
			task.Connections.Inputs = append(task.Connections.Inputs, input)
		}
		for _, in := range tf.Connections.PrerequisiteInputs {
			input, err := in.toInput(label)
			if err != nil {
				return nil, err
			}
			task.Connections.PrerequisiteInputs = append(task.Connections.PrerequisiteInputs, input)
		}
		for _, out := range tf.Connections.Outputs {
			output, err := out.toOutput(label)
			if err != nil {
				return nil, err
			}
			task.Connections.Outputs = append(task.Connections.Outputs, output)
		}
		for _, in := range tf.Connections.InitInputs {
			input, err := in.toInput(label)
			if err != nil {
				return nil, err
			}
			task.Connections.InitInputs = append(task.Connections.InitInputs, input)
		}
		for _, out := range tf.Connections.InitOutputs {
			output, err := out.toOutput(label)
			if err != nil {
				return nil, err
			}
			task.Connections.InitOutputs = append(task.Connections.InitOutputs, output)
		}
		if err := task.Connections.Validate(); err != nil {
			return nil, fmt.Errorf("task %q: %w", label, err)
		}
		pipeline = append(pipeline, task)
	}
	return pipeline, nil
}

type datasetTypeFile struct {
	Name         string   `yaml:"name"`
	Dimensions   []string `yaml:"dimensions"`
	StorageClass string   `yaml:"storageClass"`
}

// ParseDatasetTypes parses a YAML list of dataset type definitions, the
// format tools use to seed a registry.
func ParseDatasetTypes(data []byte) ([]pgraph.DatasetTypeDefinition, error) {
	var file []datasetTypeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse dataset types: %w", err)
	}
	defs := make([]pgraph.DatasetTypeDefinition, 0, len(file))
	for _, dt := range file {
		if dt.Name == "" {
			return nil, fmt.Errorf("parse dataset types: definition without a name")
		}
		def := pgraph.DatasetTypeDefinition{
			Name:         dt.Name,
			Dimensions:   dt.Dimensions,
			StorageClass: dt.StorageClass,
		}
		defs = append(defs, def.Normalize())
	}
	return defs, nil
}

func (f inputFile) toInput(label string) (Input, error) {
	m, err := f.Multiplicity.toMultiplicity()
	if err != nil {
		return Input{}, fmt.Errorf("task %q, connection %q: %w", label, f.Name, err)
	}
	return Input{
		Name:                 f.Name,
		DatasetType:          f.DatasetType,
		Component:            f.Component,
		StorageClass:         f.StorageClass,
		Dimensions:           f.Dimensions,
		Multiplicity:         m,
		DeferQueryConstraint: f.DeferQueryConstraint,
		ManualLoad:           f.ManualLoad,
	}, nil
}

func (f outputFile) toOutput(label string) (Output, error) {
	m, err := f.Multiplicity.toMultiplicity()
	if err != nil {
		return Output{}, fmt.Errorf("task %q, connection %q: %w", label, f.Name, err)
	}
	return Output{
		Name:         f.Name,
		DatasetType:  f.DatasetType,
		StorageClass: f.StorageClass,
		Dimensions:   f.Dimensions,
		Multiplicity: m,
	}, nil
}

func (f *multiplicityFile) toMultiplicity() (Multiplicity, error) {
	if f == nil {
		return Scalar(false), nil
	}
	switch f.Kind {
	case "", "scalar":
		return Scalar(f.Optional), nil
	case "sequence":
		return Sequence(f.Min, f.Max), nil
	default:
		return Multiplicity{}, fmt.Errorf("unknown multiplicity kind %q", f.Kind)
	}
}

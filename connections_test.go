package pipebase

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestConnectionSetValidate(t *testing.T) {
	t.Run("valid set", func(t *testing.T) {
		c := ConnectionSet{
			Inputs:  []Input{{Name: "raw_in", DatasetType: "raw"}},
			Outputs: []Output{{Name: "calexp_out", DatasetType: "calexp"}},
			InitOutputs: []Output{{
				Name: "schema_out", DatasetType: "src_schema",
			}},
		}
		assert.NoError(t, c.Validate())
	})

	t.Run("duplicate role names across sections", func(t *testing.T) {
		c := ConnectionSet{
			Inputs:  []Input{{Name: "x", DatasetType: "raw"}},
			Outputs: []Output{{Name: "x", DatasetType: "calexp"}},
		}
		err := c.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate connection name")
	})

	t.Run("missing dataset type", func(t *testing.T) {
		c := ConnectionSet{Inputs: []Input{{Name: "raw_in"}}}
		assert.Error(t, c.Validate())
	})

	t.Run("missing role name", func(t *testing.T) {
		c := ConnectionSet{Outputs: []Output{{DatasetType: "calexp"}}}
		assert.Error(t, c.Validate())
	})

	t.Run("prerequisite cannot defer a query constraint", func(t *testing.T) {
		c := ConnectionSet{PrerequisiteInputs: []Input{{
			Name: "refcat_in", DatasetType: "refcat", DeferQueryConstraint: true,
		}}}
		err := c.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "refcat_in")
	})
}

func TestMultiplicity(t *testing.T) {
	t.Run("scalar", func(t *testing.T) {
		m := Scalar(false)
		assert.Error(t, m.Check(0))
		assert.NoError(t, m.Check(1))
		assert.Error(t, m.Check(2))
	})

	t.Run("optional scalar", func(t *testing.T) {
		m := Scalar(true)
		assert.NoError(t, m.Check(0))
		assert.NoError(t, m.Check(1))
		assert.Error(t, m.Check(2))
	})

	t.Run("bounded sequence", func(t *testing.T) {
		m := Sequence(1, 3)
		assert.Error(t, m.Check(0))
		assert.NoError(t, m.Check(1))
		assert.NoError(t, m.Check(3))
		assert.Error(t, m.Check(4))
	})

	t.Run("unbounded sequence", func(t *testing.T) {
		m := Sequence(0, 0)
		assert.NoError(t, m.Check(0))
		assert.NoError(t, m.Check(1000))
	})

	t.Run("adapt", func(t *testing.T) {
		refs := []DatasetRef{predicted("raw", DataCoordinate{"visit": "1"})}
		out, err := Scalar(false).Adapt(refs)
		assert.NoError(t, err)
		assert.Equal(t, 1, len(out))

		_, err = Scalar(false).Adapt(nil)
		assert.Error(t, err)
	})

	t.Run("string forms", func(t *testing.T) {
		assert.Equal(t, "scalar", Scalar(false).String())
		assert.Equal(t, "scalar?", Scalar(true).String())
		assert.Equal(t, "sequence[1..3]", Sequence(1, 3).String())
		assert.Equal(t, "sequence[0..]", Sequence(0, 0).String())
	})
}

// Package fields maps human readable field names to the slice of an encoded
// tensor that holds them, so consumers can pull out e.g. "test_results"
// without knowing how health_history is laid out.
package fields

import (
	"sort"

	"github.com/kiteco/ctt/ctt-golib/errors"
	"github.com/kiteco/ctt/ctt-golib/tensor"
)

var (
	// ErrUnknownField is returned when a field name is not registered.
	ErrUnknownField = errors.New("unknown field")
	// ErrTensorMismatch is returned when a tensor is asserted to come from a
	// different backing tensor than the field lives in.
	ErrTensorMismatch = errors.New("field does not live in tensor")
	// ErrMissingTensor is returned when the backing tensor is absent.
	ErrMissingTensor = errors.New("backing tensor missing")
)

// All selects the whole last axis.
const All = -1

// Projection locates a field inside a backing tensor: the last axis is
// sliced to [Start, End). End == All selects through the end of the axis.
type Projection struct {
	Tensor string
	Start  int
	End    int
}

func whole(name string) Projection {
	return Projection{Tensor: name, Start: 0, End: All}
}

// Apply slices t along its last axis.
func (p Projection) Apply(t tensor.Tensor) (tensor.Tensor, error) {
	if p.Start == 0 && p.End == All {
		return t, nil
	}
	end := p.End
	if end == All {
		end = t.Dim(-1)
	}
	return t.SliceLast(p.Start, end)
}

var defaults = map[string]Projection{
	"human_idx":                      whole("human_idx"),
	"day_idx":                        whole("day_idx"),
	"health_history":                 whole("health_history"),
	"reported_symptoms":              {Tensor: "health_history", Start: 0, End: 28},
	"test_results":                   {Tensor: "health_history", Start: 28, End: 29},
	"age":                            {Tensor: "health_profile", Start: 0, End: 1},
	"sex":                            {Tensor: "health_profile", Start: 1, End: 2},
	"preexisting_conditions":         {Tensor: "health_profile", Start: 2, End: 12},
	"history_days":                   whole("history_days"),
	"valid_history_mask":             whole("valid_history_mask"),
	"current_compartment":            whole("current_compartment"),
	"infectiousness_history":         whole("infectiousness_history"),
	"reported_symptoms_at_encounter": {Tensor: "encounter_health", Start: 0, End: 28},
	"test_results_at_encounter":      {Tensor: "encounter_health", Start: 28, End: 29},
	"encounter_message":              whole("encounter_message"),
	"encounter_partner_id":           whole("encounter_partner_id"),
	"encounter_duration":             whole("encounter_duration"),
	"encounter_day":                  whole("encounter_day"),
	"encounter_is_contagion":         whole("encounter_is_contagion"),
}

// Registry is a field name to projection table. The zero value is not usable;
// see Default and NewRegistry.
type Registry struct {
	projections map[string]Projection
	readOnly    bool
}

// Default is the shared, read-only table of the encoder's fields.
var Default = &Registry{projections: defaults, readOnly: true}

// NewRegistry returns a copy of the default table that may be extended.
func NewRegistry() *Registry {
	m := make(map[string]Projection, len(defaults))
	for k, v := range defaults {
		m[k] = v
	}
	return &Registry{projections: m}
}

// Register adds or replaces a field. It fails on the read-only Default.
func (r *Registry) Register(field string, p Projection) error {
	if r.readOnly {
		return errors.Errorf("cannot register %s on a read-only registry", field)
	}
	r.projections[field] = p
	return nil
}

// Lookup returns the projection for field.
func (r *Registry) Lookup(field string) (Projection, error) {
	p, ok := r.projections[field]
	if !ok {
		return Projection{}, errors.Wrapf(ErrUnknownField, "%s", field)
	}
	return p, nil
}

// Fields lists the registered field names in sorted order.
func (r *Registry) Fields() []string {
	names := make([]string, 0, len(r.projections))
	for k := range r.projections {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Project extracts field from a sample or batch, looking up the backing
// tensor by name.
func (r *Registry) Project(tensors map[string]tensor.Tensor, field string) (tensor.Tensor, error) {
	p, err := r.Lookup(field)
	if err != nil {
		return tensor.Tensor{}, err
	}
	t, ok := tensors[p.Tensor]
	if !ok {
		return tensor.Tensor{}, errors.Wrapf(ErrMissingTensor, "%s (for field %s)", p.Tensor, field)
	}
	return p.Apply(t)
}

// ProjectTensor extracts field from t, which the caller obtained from the
// tensor named tensorName. An empty tensorName skips the consistency check.
func (r *Registry) ProjectTensor(t tensor.Tensor, field, tensorName string) (tensor.Tensor, error) {
	p, err := r.Lookup(field)
	if err != nil {
		return tensor.Tensor{}, err
	}
	if tensorName != "" && tensorName != p.Tensor {
		return tensor.Tensor{}, errors.Wrapf(ErrTensorMismatch, "%s lives in %s, not %s", field, p.Tensor, tensorName)
	}
	return p.Apply(t)
}

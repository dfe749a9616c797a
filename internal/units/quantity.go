package units

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	apperrors "github.com/gstrugala/hp-tests/internal/errors"
)

// Quantity wraps a numeric array with a physical unit, a display label
// and a physical-property classification. Values are expressed in the
// tagged unit, not in SI; conversions are explicit.
//
// Array length equals the sample count of the currently active row
// filter. A scalar is represented as a single-element array.
type Quantity struct {
	Values   []float64
	Unit     Unit
	Label    string
	Property string
}

// New creates a quantity tagging values with the given unit and metadata.
// The values slice is owned by the quantity afterwards.
func New(values []float64, u Unit, label, property string) *Quantity {
	return &Quantity{Values: values, Unit: u, Label: label, Property: property}
}

// Scalar creates a single-element quantity.
func Scalar(value float64, u Unit, label, property string) *Quantity {
	return New([]float64{value}, u, label, property)
}

// Len returns the number of samples in the quantity.
func (q *Quantity) Len() int { return len(q.Values) }

// SI returns a copy of the values converted to the SI representation of
// the quantity's dimension.
func (q *Quantity) SI() []float64 {
	out := make([]float64, len(q.Values))
	copy(out, q.Values)
	floats.Scale(q.Unit.Factor, out)
	if q.Unit.Offset != 0 {
		floats.AddConst(q.Unit.Offset, out)
	}
	return out
}

// To converts the quantity to the target unit. Conversion is lossless up
// to floating-point precision and fails with IncompatibleUnits when the
// dimensions differ.
func (q *Quantity) To(target Unit) (*Quantity, error) {
	if !q.Unit.Compatible(target) {
		return nil, apperrors.IncompatibleUnits(q.Unit.Name, target.Name)
	}
	out := q.SI()
	if target.Offset != 0 {
		floats.AddConst(-target.Offset, out)
	}
	floats.Scale(1/target.Factor, out)
	return New(out, target, q.Label, q.Property), nil
}

// Add returns the element-wise sum, expressed in q's unit. Both operands
// must share a dimension and equal length; affine units are rejected
// because summing two absolute temperatures is not physically meaningful.
func (q *Quantity) Add(other *Quantity) (*Quantity, error) {
	return q.combine(other, 1)
}

// Sub returns the element-wise difference q − other, expressed in q's unit.
func (q *Quantity) Sub(other *Quantity) (*Quantity, error) {
	return q.combine(other, -1)
}

func (q *Quantity) combine(other *Quantity, sign float64) (*Quantity, error) {
	if !q.Unit.Compatible(other.Unit) {
		return nil, apperrors.IncompatibleUnits(q.Unit.Name, other.Unit.Name)
	}
	if q.Unit.IsAffine() || other.Unit.IsAffine() {
		return nil, apperrors.IncompatibleUnits(q.Unit.Name, other.Unit.Name)
	}
	if q.Len() != other.Len() {
		return nil, fmt.Errorf("length mismatch: %d vs %d samples", q.Len(), other.Len())
	}
	// Bring the other operand onto q's scale, then combine in place.
	out := make([]float64, q.Len())
	copy(out, other.Values)
	floats.Scale(sign*other.Unit.Factor/q.Unit.Factor, out)
	floats.Add(out, q.Values)
	return New(out, q.Unit, q.Label, q.Property), nil
}

// MulElem returns the element-wise product with a derived, unit-generating
// unit (dimension exponents add). Fails for affine operands.
func (q *Quantity) MulElem(other *Quantity) (*Quantity, error) {
	if q.Len() != other.Len() {
		return nil, fmt.Errorf("length mismatch: %d vs %d samples", q.Len(), other.Len())
	}
	u, err := mulUnits(q.Unit, other.Unit)
	if err != nil {
		return nil, err
	}
	out := make([]float64, q.Len())
	floats.MulTo(out, q.Values, other.Values)
	return New(out, u, q.Label, q.Property), nil
}

// Scale returns the quantity multiplied by a dimensionless constant.
func (q *Quantity) Scale(c float64) *Quantity {
	out := make([]float64, q.Len())
	copy(out, q.Values)
	floats.Scale(c, out)
	return New(out, q.Unit, q.Label, q.Property)
}

// WithMeta returns a copy of the quantity carrying new label and
// property metadata, sharing the underlying values.
func (q *Quantity) WithMeta(label, property string) *Quantity {
	return &Quantity{Values: q.Values, Unit: q.Unit, Label: label, Property: property}
}

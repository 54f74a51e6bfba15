package transform

import "github.com/aeroinspect/linetrack/geom"

// Chain applies an ordered list of transforms sequentially. Fitting a
// chain is not supported; only evaluation is.
type Chain struct {
	transforms []Transform
}

// NewChain builds a chain over the given transforms, applied in order
// for Direct evaluation and in reverse order for Inverse.
func NewChain(transforms ...Transform) *Chain {
	return &Chain{transforms: transforms}
}

// Add appends a transform to the chain.
func (c *Chain) Add(t Transform) {
	c.transforms = append(c.transforms, t)
}

// Len returns the number of transforms in the chain.
func (c *Chain) Len() int { return len(c.transforms) }

// MinimumPoints returns 0; a chain is never fitted.
func (c *Chain) MinimumPoints() int { return 0 }

// IsNull reports whether every member transform is the identity.
func (c *Chain) IsNull() bool {
	for _, t := range c.transforms {
		if !t.IsNull() {
			return false
		}
	}
	return true
}

// Compute is not supported on chains.
func (c *Chain) Compute(src, dst []geom.PointF) (Result, error) {
	return Result{}, ErrNotApplicable
}

// Apply maps a point through every member transform.
func (c *Chain) Apply(p geom.PointF, order Order) (geom.PointF, error) {
	var err error
	if order == Inverse {
		for i := len(c.transforms) - 1; i >= 0; i-- {
			if p, err = c.transforms[i].Apply(p, Inverse); err != nil {
				return geom.PointF{}, err
			}
		}
		return p, nil
	}
	for _, t := range c.transforms {
		if p, err = t.Apply(p, Direct); err != nil {
			return geom.PointF{}, err
		}
	}
	return p, nil
}

// ApplySlice maps a point list through the chain.
func (c *Chain) ApplySlice(in []geom.PointF, order Order) ([]geom.PointF, error) {
	return applySlice(c, in, order)
}

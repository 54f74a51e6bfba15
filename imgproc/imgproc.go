// Package imgproc implements the composable image-processing pipeline:
// a uniform Process interface over heterogeneous preprocessing steps
// (filters, morphology, normalization, thresholding, user callables)
// and an ordered Pipeline that chains them with a common error and
// buffering contract.
//
// Rasters are gocv.Mat values. A Process sets the shape and depth of
// its output; callers never pre-impose one. The pipeline double-buffers
// between steps, so a step never observes a buffer shared with an
// earlier stage.
package imgproc

import (
	"errors"

	"gocv.io/x/gocv"
)

// Type tags each concrete process.
type Type int

const (
	TypeNormalize Type = iota
	TypeBinarize
	TypeEqualizeHistogram
	TypeGaussianBlur
	TypeBilateralFilter
	TypeMedianBlur
	TypeSobel
	TypeCanny
	TypeErode
	TypeDilate
	TypeOpening
	TypeClosing
	TypeGradient
	TypeTopHat
	TypeBlackHat
	TypeResize
	TypeThinning
	TypeFunction
)

var (
	// ErrInvalidArgument is returned by constructors when a parameter is
	// outside its documented domain.
	ErrInvalidArgument = errors.New("imgproc: invalid argument")

	// ErrDataEmpty is returned by every process handed an empty raster.
	ErrDataEmpty = errors.New("imgproc: empty raster")

	// ErrProcess is returned when the underlying operation fails.
	ErrProcess = errors.New("imgproc: process failed")
)

// Process is a single image-processing step. Implementations are
// stateless with respect to the raster: a process instance may be run
// repeatedly, and distinct instances may run in parallel, but one
// instance must not be invoked concurrently.
//
// Out may alias in; implementations buffer internally where the backing
// operation cannot work in place. On failure out is unspecified and the
// caller must treat it as invalid.
type Process interface {
	// ProcessType returns the tag identifying the operation.
	ProcessType() Type

	// Run executes the step, writing the result to out.
	Run(in gocv.Mat, out *gocv.Mat) error
}

// checkInput applies the shared empty-raster precondition.
func checkInput(in gocv.Mat) error {
	if in.Empty() {
		return ErrDataEmpty
	}
	return nil
}

// Pipeline is an ordered sequence of processes. Run pipes the input
// through each process in insertion order; the first failure aborts the
// run and is surfaced to the caller.
type Pipeline struct {
	procs []Process
}

// NewPipeline builds a pipeline over the given processes.
func NewPipeline(procs ...Process) *Pipeline {
	return &Pipeline{procs: procs}
}

// Push appends a process to the pipeline.
func (p *Pipeline) Push(proc Process) {
	p.procs = append(p.procs, proc)
}

// Len returns the number of processes in the pipeline.
func (p *Pipeline) Len() int { return len(p.procs) }

// Run executes the pipeline. Intermediate results are double-buffered,
// so no process observes a raster shared with an earlier stage; out may
// alias in.
func (p *Pipeline) Run(in gocv.Mat, out *gocv.Mat) error {
	if err := checkInput(in); err != nil {
		return err
	}
	if len(p.procs) == 0 {
		in.CopyTo(out)
		return nil
	}

	cur := in.Clone()
	buf := gocv.NewMat()
	defer cur.Close()
	defer buf.Close()

	for _, proc := range p.procs {
		if err := proc.Run(cur, &buf); err != nil {
			return err
		}
		cur, buf = buf, cur
	}
	cur.CopyTo(out)
	return nil
}

// FunctionProcess adapts a user-supplied callable to the Process
// interface. The callable is treated as opaque.
type FunctionProcess struct {
	fn func(in gocv.Mat, out *gocv.Mat) error
}

// NewFunctionProcess wraps a callable.
func NewFunctionProcess(fn func(in gocv.Mat, out *gocv.Mat) error) (*FunctionProcess, error) {
	if fn == nil {
		return nil, ErrInvalidArgument
	}
	return &FunctionProcess{fn: fn}, nil
}

// ProcessType returns TypeFunction.
func (p *FunctionProcess) ProcessType() Type { return TypeFunction }

// Run invokes the wrapped callable.
func (p *FunctionProcess) Run(in gocv.Mat, out *gocv.Mat) error {
	if err := checkInput(in); err != nil {
		return err
	}
	return p.fn(in, out)
}

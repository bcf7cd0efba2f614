// Package script runs a YAML list of host function calls.
//
// A script is either a bare list of steps or a mapping with steps and a
// repeat count:
//
//	repeat: 100
//	steps:
//	  - call: set_color
//	    args: [[255, 0, 0]]
//	  - call: draw_rect
//	    args: [[[0, 0], [10, 10]]]
//	  - call: new_frame
//	  - call: sleep
//	    args: [16]
//
// A negative repeat runs until the context is cancelled.
package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rook-computer/drawloop/internal/command"
	"github.com/rook-computer/drawloop/internal/hostapi"
	"github.com/rook-computer/drawloop/internal/logging"
)

var ErrUnknownCall = errors.New("unknown call")

type Step struct {
	Call string `yaml:"call"`
	Args []any  `yaml:"args"`
	Line int    `yaml:"-"`
}

type Script struct {
	Repeat int    `yaml:"repeat"`
	Steps  []Step `yaml:"steps"`
}

// UnmarshalYAML accepts both the bare list and the mapping form and
// records each step's source line.
func (s *Script) UnmarshalYAML(n *yaml.Node) error {
	var steps *yaml.Node
	switch n.Kind {
	case yaml.SequenceNode:
		steps = n
	case yaml.MappingNode:
		var doc struct {
			Repeat int       `yaml:"repeat"`
			Steps  yaml.Node `yaml:"steps"`
		}
		if err := n.Decode(&doc); err != nil {
			return err
		}
		s.Repeat = doc.Repeat
		steps = &doc.Steps
	default:
		return fmt.Errorf("line %d: script must be a list or a mapping", n.Line)
	}
	if steps.Kind == 0 {
		return nil
	}
	if steps.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: steps must be a list", steps.Line)
	}
	s.Steps = make([]Step, 0, len(steps.Content))
	for _, item := range steps.Content {
		var st Step
		if err := item.Decode(&st); err != nil {
			return err
		}
		if st.Call == "" {
			return fmt.Errorf("line %d: step has no call", item.Line)
		}
		st.Line = item.Line
		s.Steps = append(s.Steps, st)
	}
	return nil
}

func Parse(r io.Reader) (*Script, error) {
	var s Script
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return &s, nil
		}
		return nil, fmt.Errorf("parse script: %w", err)
	}
	return &s, nil
}

// Validate checks that every call names a function in fns.
func (s *Script) Validate(fns map[string]hostapi.Func) error {
	for _, st := range s.Steps {
		if _, ok := fns[st.Call]; !ok {
			return fmt.Errorf("line %d: %w %q", st.Line, ErrUnknownCall, st.Call)
		}
	}
	return nil
}

type Runner struct {
	Functions map[string]hostapi.Func
	Logger    logging.Logger
}

// Run executes the script's steps in order, Repeat times (at least once).
// It stops at the first failing call or when ctx is done. A sleep step
// waits on ctx instead of calling the sleep function, so cancelling ctx
// cuts the wait short.
func (r *Runner) Run(ctx context.Context, s *Script) error {
	if err := s.Validate(r.Functions); err != nil {
		return err
	}
	if len(s.Steps) == 0 {
		return nil
	}
	logger := r.Logger
	if logger == nil {
		logger = logging.NoopLogger{}
	}
	for pass := 0; s.Repeat < 0 || pass < max(s.Repeat, 1); pass++ {
		for _, st := range s.Steps {
			if err := ctx.Err(); err != nil {
				return err
			}
			if st.Call == "sleep" {
				if err := sleep(ctx, st.Args); err != nil {
					return fmt.Errorf("line %d: %w", st.Line, err)
				}
				continue
			}
			v, err := r.Functions[st.Call](st.Args...)
			if err != nil {
				return fmt.Errorf("line %d: %w", st.Line, err)
			}
			if v != nil {
				logger.Debugf("script", "%s -> %v", st.Call, v)
			}
		}
	}
	return nil
}

// Run parses a script from src and executes it against fns.
func Run(ctx context.Context, fns map[string]hostapi.Func, src io.Reader) error {
	s, err := Parse(src)
	if err != nil {
		return err
	}
	return (&Runner{Functions: fns}).Run(ctx, s)
}

func sleep(ctx context.Context, args []any) error {
	if len(args) != 1 {
		return fmt.Errorf("sleep: %w: want 1, got %d", hostapi.ErrArity, len(args))
	}
	ms, err := command.Float(args[0])
	if err != nil {
		return fmt.Errorf("sleep: %w", err)
	}
	if !(ms > 0) {
		return nil
	}
	t := time.NewTimer(time.Duration(ms * float64(time.Millisecond)))
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

package manifest

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDuplicateStage = errors.New("duplicate stage")
	ErrUnknownStage   = errors.New("unknown stage dependency")
	ErrStageCycle     = errors.New("stage dependency cycle")
)

// Stage is one category's contribution to a load. After names the stages whose
// processing must complete first.
type Stage struct {
	Name    string
	After   []string
	Declare func(names *Names)
	Process func(names *Names)
}

// Pipeline runs stages in two phases: every Declare in dependency order, then
// every Process in the same order.
type Pipeline struct {
	stages []Stage
}

func (p *Pipeline) Add(s Stage) {
	p.stages = append(p.stages, s)
}

// Order returns stage names in execution order. Ties keep registration order.
func (p *Pipeline) Order() ([]string, error) {
	ordered, err := p.sorted()
	if err != nil {
		return nil, err
	}
	out := make([]string, len(ordered))
	for i, s := range ordered {
		out[i] = s.Name
	}
	return out, nil
}

func (p *Pipeline) Run(names *Names) error {
	ordered, err := p.sorted()
	if err != nil {
		return err
	}
	for _, s := range ordered {
		if s.Declare != nil {
			s.Declare(names)
		}
	}
	for _, s := range ordered {
		if s.Process != nil {
			s.Process(names)
		}
	}
	return nil
}

func (p *Pipeline) sorted() ([]Stage, error) {
	byName := make(map[string]int, len(p.stages))
	for i, s := range p.stages {
		if _, ok := byName[s.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateStage, s.Name)
		}
		byName[s.Name] = i
	}
	for _, s := range p.stages {
		for _, dep := range s.After {
			if _, ok := byName[dep]; !ok {
				return nil, fmt.Errorf("%w: %s after %s", ErrUnknownStage, s.Name, dep)
			}
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(p.stages))
	out := make([]Stage, 0, len(p.stages))
	var path []string
	var visit func(i int) error
	visit = func(i int) error {
		switch state[i] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w: %s", ErrStageCycle, strings.Join(append(path, p.stages[i].Name), " -> "))
		}
		state[i] = visiting
		path = append(path, p.stages[i].Name)
		for _, dep := range p.stages[i].After {
			if err := visit(byName[dep]); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		state[i] = done
		out = append(out, p.stages[i])
		return nil
	}
	for i := range p.stages {
		if err := visit(i); err != nil {
			return nil, err
		}
	}
	return out, nil
}

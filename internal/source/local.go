package source

import (
	"context"
	"fmt"
)

type localConfig struct {
	Roots []string `json:"roots"`
}

type localSource struct {
	roots []string
}

func init() {
	Register("local", createLocalSource)
}

func createLocalSource(args interface{}) (Source, error) {
	config := &localConfig{}
	if err := decodeConfig(args, config); err != nil {
		return nil, err
	}
	if len(config.Roots) == 0 {
		return nil, fmt.Errorf("local source roots are required")
	}
	return &localSource{roots: config.Roots}, nil
}

func (s *localSource) Roots(_ context.Context) ([]string, error) {
	return s.roots, nil
}

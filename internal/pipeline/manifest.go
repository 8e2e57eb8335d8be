package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Manifest lists morphologies to convert in one batch.
type Manifest struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Jobs        []ManifestJob `yaml:"jobs"`
}

type ManifestJob struct {
	Source string `yaml:"source"`
	Name   string `yaml:"name"`
	Engine string `yaml:"engine"`
	Traces string `yaml:"traces"`
}

// LoadManifest reads a manifest. Relative paths resolve against the
// manifest's directory.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	base := filepath.Dir(path)
	for i, j := range m.Jobs {
		if j.Source == "" {
			return nil, fmt.Errorf("%s: job %d has no source", path, i+1)
		}
		m.Jobs[i].Source = resolve(base, j.Source)
		if j.Traces != "" {
			m.Jobs[i].Traces = resolve(base, j.Traces)
		}
	}
	return &m, nil
}

func resolve(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

func (m *Manifest) ToJobs() []Job {
	jobs := make([]Job, len(m.Jobs))
	for i, j := range m.Jobs {
		jobs[i] = Job(j)
	}
	return jobs
}

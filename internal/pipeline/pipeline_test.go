package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/neuroanim/internal/cell"
	"github.com/san-kum/neuroanim/internal/config"
	"github.com/san-kum/neuroanim/internal/engine"
	"github.com/san-kum/neuroanim/internal/export"
	"github.com/san-kum/neuroanim/internal/morph"
)

const neuron = `# soma, dendrite, axon
1 1 0 0 0 5 -1
2 3 0 100 0 1 1
3 3 0 200 0 1 2
4 2 0 -400 0 0.5 1
`

func writeSWC(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	src := writeSWC(t, dir, "cell.swc", neuron)
	sink := export.FileSink{Dir: filepath.Join(dir, "out")}

	run, err := New(config.DefaultConfig(), sink, nil).Run(context.Background(), Job{Source: src})
	require.NoError(t, err)

	assert.Equal(t, "cell", run.Meta.Name)
	assert.Equal(t, EngineAnalytic, run.Meta.Engine)
	assert.Equal(t, "full", run.Meta.Step)
	require.Len(t, run.Meta.Stimuli, 1)
	assert.Equal(t, 0.5, run.Meta.Stimuli[0].Amp)

	assert.Equal(t, 400, run.Payload.Metadata.FrameCount)
	assert.Len(t, run.Payload.Sections, run.Model.Len())
	assert.Len(t, run.Records, run.Model.Len())
	assert.Len(t, run.Model.Probes(), run.Model.Len())

	assert.Contains(t, run.Meta.Metrics, "peak_voltage")
	assert.Greater(t, run.Meta.Metrics["spiking_fraction"], 0.0)
	assert.InDelta(t, run.Model.TotalLength(), run.Meta.Metrics["total_length"], 1e-9)

	payload, records := sink.Paths("cell")
	assert.FileExists(t, payload)
	assert.FileExists(t, records)
}

func TestRunFallsBack(t *testing.T) {
	dir := t.TempDir()
	src := writeSWC(t, dir, "cell.swc", neuron)
	cfg := config.DefaultConfig()
	sink := export.LimitSink{Next: export.FileSink{Dir: dir}, MaxFrames: 100}

	run, err := New(cfg, sink, nil).Run(context.Background(), Job{Source: src, Name: "small"})
	require.NoError(t, err)
	assert.Equal(t, "frames<=50", run.Meta.Step)
	assert.Equal(t, 50, run.Payload.Metadata.FrameCount)
}

func TestRunReplay(t *testing.T) {
	dir := t.TempDir()
	src := writeSWC(t, dir, "cell.swc", neuron)
	p := New(config.DefaultConfig(), export.FileSink{Dir: dir}, nil)

	m, err := p.Load(src)
	require.NoError(t, err)
	require.NoError(t, m.AttachStimulus(cell.DefaultStimulus(m)))
	rec, err := cell.Simulate(context.Background(), m, engine.NewAnalytic(), cell.DefaultEngineConfig())
	require.NoError(t, err)

	traces := filepath.Join(dir, "traces.csv")
	f, err := os.Create(traces)
	require.NoError(t, err)
	require.NoError(t, engine.WriteTraces(f, m, rec))
	require.NoError(t, f.Close())

	run, err := p.Run(context.Background(), Job{Source: src, Name: "replayed", Traces: traces})
	require.NoError(t, err)
	assert.Equal(t, EngineReplay, run.Meta.Engine)
	assert.Equal(t, rec.Time, run.Recording.Time)
	for id, tr := range rec.Traces {
		assert.Equal(t, tr, run.Recording.Traces[id])
	}
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	bad := writeSWC(t, dir, "bad.swc", neuron+"5 3 not a sample\n")

	cfg := config.DefaultConfig()
	_, err := New(cfg, export.FileSink{Dir: dir}, nil).Run(context.Background(), Job{Source: bad})
	require.NoError(t, err, "lenient parsing skips the bad line")

	cfg.Parse.Strict = true
	_, err = New(cfg, export.FileSink{Dir: dir}, nil).Run(context.Background(), Job{Source: bad})
	assert.ErrorIs(t, err, morph.ErrFormat)

	_, err = New(config.DefaultConfig(), export.FileSink{Dir: dir}, nil).Run(context.Background(), Job{Source: bad, Engine: "nope"})
	assert.ErrorContains(t, err, "unknown engine")

	_, err = New(config.DefaultConfig(), export.FileSink{Dir: dir}, nil).Run(context.Background(), Job{Source: bad, Engine: EngineReplay})
	assert.ErrorContains(t, err, "traces file")

	_, err = New(config.DefaultConfig(), export.FileSink{Dir: dir}, nil).Run(context.Background(), Job{Source: filepath.Join(dir, "missing.swc")})
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

type mismatchedEngine struct{}

func (mismatchedEngine) Run(context.Context, *cell.Model, cell.EngineConfig) (*cell.Recording, error) {
	rec := cell.NewRecording([]float64{0, 1})
	rec.Traces[99] = []float64{-70, -70}
	return rec, nil
}

func TestRunIncompatibleRecording(t *testing.T) {
	dir := t.TempDir()
	src := writeSWC(t, dir, "cell.swc", neuron)
	p := New(config.DefaultConfig(), export.FileSink{Dir: dir}, nil)
	p.Registry().Register("mismatched", func(Job) (cell.Engine, error) { return mismatchedEngine{}, nil })

	_, err := p.Run(context.Background(), Job{Source: src, Engine: "mismatched"})
	require.Error(t, err)
	assert.ErrorIs(t, err, export.ErrExportFailed)
	assert.ErrorIs(t, err, cell.ErrIncompatibleRecording)

	var ee *export.ExportError
	require.ErrorAs(t, err, &ee)
	require.Len(t, ee.Attempts, 1)
	assert.Equal(t, "simulate", ee.Attempts[0].Step)

	cfg := config.DefaultConfig()
	cfg.Engine.Dt = 0
	_, err = New(cfg, export.FileSink{Dir: dir}, nil).Run(context.Background(), Job{Source: src})
	assert.ErrorIs(t, err, cell.ErrInvalidConfig)
	assert.NotErrorIs(t, err, export.ErrExportFailed)
}

func TestRunAll(t *testing.T) {
	dir := t.TempDir()
	jobs := []Job{
		{Source: writeSWC(t, dir, "a.swc", neuron)},
		{Source: filepath.Join(dir, "missing.swc")},
		{Source: writeSWC(t, dir, "b.swc", neuron)},
	}

	runs, err := New(config.DefaultConfig(), export.FileSink{Dir: dir}, nil).RunAll(context.Background(), jobs, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	require.Len(t, runs, 3)
	assert.Equal(t, "a", runs[0].Meta.Name)
	assert.Nil(t, runs[1])
	assert.Equal(t, "b", runs[2].Meta.Name)
}

func TestRunAllCanceled(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(config.DefaultConfig(), export.FileSink{Dir: dir}, nil).RunAll(ctx, []Job{{Source: writeSWC(t, dir, "a.swc", neuron)}}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{EngineAnalytic, EngineReplay}, r.ListEngines())

	r.Register("fixed", func(Job) (cell.Engine, error) { return &engine.Replay{}, nil })
	e, err := r.GetEngine("fixed", Job{})
	require.NoError(t, err)
	assert.IsType(t, &engine.Replay{}, e)
}

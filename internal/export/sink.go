package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/san-kum/neuroanim/internal/codec"
)

// Sink persists one export. A sink may reject a payload, in which case the
// ladder moves on to its next step.
type Sink interface {
	Write(name string, p *codec.Payload, records []codec.Record) error
}

// FileSink writes <Dir>/<name>.json and <Dir>/<name>.msgpack.
type FileSink struct {
	Dir string
}

func (s FileSink) Paths(name string) (payload, records string) {
	base := filepath.Join(s.Dir, name)
	return base + ".json", base + ".msgpack"
}

func (s FileSink) Write(name string, p *codec.Payload, records []codec.Record) error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return err
	}
	payloadPath, recordsPath := s.Paths(name)
	if err := codec.WriteFile(payloadPath, p); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}
	if err := codec.WriteRecordsFile(recordsPath, records); err != nil {
		return fmt.Errorf("write records: %w", err)
	}
	return nil
}

// LimitSink rejects payloads above MaxFrames frames or MaxSections sections
// before handing them to Next. Zero disables a limit.
type LimitSink struct {
	Next        Sink
	MaxFrames   int
	MaxSections int
}

func (s LimitSink) Write(name string, p *codec.Payload, records []codec.Record) error {
	if s.MaxFrames > 0 && p.Metadata.FrameCount > s.MaxFrames {
		return fmt.Errorf("%w: %d frames, max %d", ErrLimitExceeded, p.Metadata.FrameCount, s.MaxFrames)
	}
	if s.MaxSections > 0 && len(p.Sections) > s.MaxSections {
		return fmt.Errorf("%w: %d sections, max %d", ErrLimitExceeded, len(p.Sections), s.MaxSections)
	}
	return s.Next.Write(name, p, records)
}

package logger

import (
	"strings"

	"github.com/nulzo/prism-fanout/internal/cli"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

var bufPool = buffer.NewPool()

// highlightEncoder is zap's console encoder with the trailing JSON field blob
// passed through highlight.
type highlightEncoder struct {
	zapcore.Encoder
	highlight func(string) string
}

func newHighlightEncoder(cfg zapcore.EncoderConfig) zapcore.Encoder {
	return &highlightEncoder{
		Encoder:   zapcore.NewConsoleEncoder(cfg),
		highlight: cli.HighlightJSON,
	}
}

func (e *highlightEncoder) Clone() zapcore.Encoder {
	return &highlightEncoder{Encoder: e.Encoder.Clone(), highlight: e.highlight}
}

func (e *highlightEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	buf, err := e.Encoder.EncodeEntry(ent, fields)
	if err != nil || len(fields) == 0 {
		return buf, err
	}

	// header and fields are tab separated, the blob is the last "\t{"
	line := buf.String()
	at := strings.LastIndex(line, "\t{")
	if at == -1 {
		return buf, nil
	}

	out := bufPool.Get()
	out.AppendString(line[:at+1])
	out.AppendString(e.highlight(line[at+1:]))
	buf.Free()
	return out, nil
}

package main

import (
	"bufio"
	"encoding/hex"
	"io"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/daBlesr/polars/pkg/row"
)

type mode string

const (
	modeBorrow  mode = "borrow"
	modeArray   mode = "array"
	modeBinview mode = "binview"
)

func parseMode(s string) (mode, error) {
	switch m := mode(s); m {
	case modeBorrow, modeArray, modeBinview:
		return m, nil
	}
	return "", errors.Errorf("unknown mode %q", s)
}

func (m mode) dataType() arrow.DataType {
	if m == modeBinview {
		return arrow.BinaryTypes.BinaryView
	}
	return arrow.BinaryTypes.LargeBinary
}

// maxLineSize bounds the size of a single input row.
const maxLineSize = 64 << 20

// inspector feeds rows into a builder and exports every buffer it flushes.
type inspector struct {
	logger  log.Logger
	mode    mode
	hex     bool
	builder *row.Builder
	schema  *arrow.Schema
	writer  *ipc.FileWriter // nil when no output is written.

	stats stats
}

type stats struct {
	buffers int
	rows    int
	bytes   int
	inline  int
}

func run(cfg *config, inputs []string, logger log.Logger) error {
	m, err := parseMode(cfg.mode)
	if err != nil {
		return err
	}

	metrics := row.NewMetrics()
	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return errors.Wrap(err, "registering metrics")
	}
	defer metrics.Unregister(prometheus.DefaultRegisterer)

	builder, err := row.NewBuilder(cfg.Rows, cfg.Rows.NewPool(), metrics)
	if err != nil {
		return err
	}

	ins := &inspector{logger: logger, mode: m, hex: cfg.hex, builder: builder}

	if cfg.output != "" {
		f, err := os.Create(cfg.output)
		if err != nil {
			return errors.Wrap(err, "creating output file")
		}
		defer func() { _ = f.Close() }()

		ins.schema = arrow.NewSchema([]arrow.Field{{Name: "rows", Type: m.dataType()}}, nil)
		ins.writer, err = ipc.NewFileWriter(f, ipc.WithSchema(ins.schema))
		if err != nil {
			return errors.Wrap(err, "creating arrow writer")
		}
	}

	for _, input := range inputs {
		if err := ins.readInput(input); err != nil {
			return errors.Wrapf(err, "reading %s", input)
		}
	}
	if err := ins.flush(); err != nil {
		return err
	}

	if ins.writer != nil {
		if err := ins.writer.Close(); err != nil {
			return errors.Wrap(err, "closing arrow writer")
		}
	}

	level.Info(logger).Log(
		"msg", "inspected rows",
		"mode", m,
		"buffers", ins.stats.buffers,
		"rows", ins.stats.rows,
		"size", humanize.Bytes(uint64(ins.stats.bytes)),
		"inline_rows", ins.stats.inline,
	)
	return nil
}

func (ins *inspector) readInput(name string) error {
	var r io.Reader = os.Stdin
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		r = f
	}
	return ins.read(r)
}

func (ins *inspector) read(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), maxLineSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if ins.hex {
			decoded := make([]byte, hex.DecodedLen(len(line)))
			if _, err := hex.Decode(decoded, line); err != nil {
				return errors.Wrap(err, "decoding hex row")
			}
			line = decoded
		}

		err := ins.builder.Append(line)
		if errors.Is(err, row.ErrBufferFull) {
			if err := ins.flush(); err != nil {
				return err
			}
			err = ins.builder.Append(line)
		}
		if err != nil {
			return err
		}
	}
	return scanner.Err()
}

// flush exports the rows buffered so far.
func (ins *inspector) flush() error {
	if ins.builder.Len() == 0 {
		return nil
	}

	rows, err := ins.builder.Flush()
	if err != nil {
		return err
	}
	defer rows.Release()

	n, size := rows.Len(), rows.Size()

	var arr arrow.Array
	switch ins.mode {
	case modeBorrow:
		arr = rows.BorrowArray()
	case modeArray:
		arr = rows.IntoArray()
	case modeBinview:
		view := rows.IntoBinaryView()
		for i := range view.Len() {
			if view.ValueHeader(i).IsInline() {
				ins.stats.inline++
			}
		}
		arr = view
	}
	defer arr.Release()

	ins.stats.buffers++
	ins.stats.rows += n
	ins.stats.bytes += size

	level.Debug(ins.logger).Log("msg", "exported row buffer", "rows", n, "size", humanize.Bytes(uint64(size)))

	if ins.writer == nil {
		return nil
	}

	rec := array.NewRecord(ins.schema, []arrow.Array{arr}, int64(n))
	defer rec.Release()
	return errors.Wrap(ins.writer.Write(rec), "writing record")
}

/*
fixcat — FIX tag-value stream codec tools
Copyright (C) 2025 Steve Clarke <stephenlclarke@mac.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.

In accordance with section 13 of the AGPL, if you modify this program,
your modified version must prominently offer all users interacting with it
remotely through a computer network an opportunity to receive the source
code of your version.
*/
package encoder

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/segmentio/kafka-go"
)

// Sink receives encoded messages in order. header and body alias encoder
// buffers; a Sink must not keep them past the call.
type Sink interface {
	WriteMessage(ctx context.Context, header, body []byte) error
	Close() error
}

// WriterSink writes messages back to back to an io.Writer.
type WriterSink struct {
	w *bufio.Writer
	c io.Closer
}

// NewWriterSink buffers writes to w. c, if not nil, is closed by Close.
func NewWriterSink(w io.Writer, c io.Closer) *WriterSink {
	return &WriterSink{w: bufio.NewWriterSize(w, 64*1024), c: c}
}

func (s *WriterSink) WriteMessage(_ context.Context, header, body []byte) error {
	if _, err := s.w.Write(header); err != nil {
		return err
	}
	_, err := s.w.Write(body)
	return err
}

func (s *WriterSink) Close() error {
	err := s.w.Flush()
	if s.c != nil {
		if cerr := s.c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// KafkaOptions configures KafkaSink.
type KafkaOptions struct {
	Brokers      []string
	Topic        string
	BatchSize    int
	BatchTimeout time.Duration
	RequiredAcks int
	Compression  string
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes every FIX message as one Kafka record. Messages are
// copied into per-slot buffers and sent synchronously a batch at a time.
type KafkaSink struct {
	writer messageWriter
	batch  []kafka.Message
	bufs   [][]byte
	n      int
}

// NewKafkaSink builds a kafka-go writer from opts.
func NewKafkaSink(opts KafkaOptions) (*KafkaSink, error) {
	if len(opts.Brokers) == 0 || opts.Topic == "" {
		return nil, fmt.Errorf("kafka sink needs brokers and a topic")
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(opts.Brokers...),
		Topic:        opts.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    opts.BatchSize,
		BatchTimeout: opts.BatchTimeout,
		RequiredAcks: kafka.RequiredAcks(opts.RequiredAcks),
	}

	switch opts.Compression {
	case "gzip":
		w.Compression = kafka.Gzip
	case "snappy":
		w.Compression = kafka.Snappy
	case "lz4":
		w.Compression = kafka.Lz4
	case "zstd":
		w.Compression = kafka.Zstd
	case "", "none":
	default:
		return nil, fmt.Errorf("unknown kafka compression %q", opts.Compression)
	}

	return newKafkaSink(w, opts.BatchSize), nil
}

func newKafkaSink(w messageWriter, batchSize int) *KafkaSink {
	return &KafkaSink{
		writer: w,
		batch:  make([]kafka.Message, batchSize),
		bufs:   make([][]byte, batchSize),
	}
}

func (s *KafkaSink) WriteMessage(ctx context.Context, header, body []byte) error {
	buf := append(s.bufs[s.n][:0], header...)
	buf = append(buf, body...)
	s.bufs[s.n] = buf
	s.batch[s.n] = kafka.Message{Value: buf}
	s.n++

	if s.n == len(s.batch) {
		return s.Flush(ctx)
	}
	return nil
}

// Flush sends the pending batch.
func (s *KafkaSink) Flush(ctx context.Context) error {
	if s.n == 0 {
		return nil
	}

	err := s.writer.WriteMessages(ctx, s.batch[:s.n]...)
	s.n = 0
	if err != nil {
		return fmt.Errorf("publish to kafka: %w", err)
	}
	return nil
}

// Close flushes pending messages and closes the writer.
func (s *KafkaSink) Close() error {
	err := s.Flush(context.Background())
	if cerr := s.writer.Close(); err == nil {
		err = cerr
	}
	return err
}

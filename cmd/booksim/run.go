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
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/stephenlclarke/fixcat/config"
	"github.com/stephenlclarke/fixcat/encoder"
	"go.uber.org/zap"
)

// cancellation is polled once per this many messages
const checkEvery = 1024

// run generates cfg.Messages snapshots into sink and returns how many were written.
func run(ctx context.Context, cfg config.ConfigOptions, sink encoder.Sink, logger *zap.Logger) (int, error) {
	enc, err := encoder.NewSnapshotEncoder(cfg.Template())
	if err != nil {
		return 0, err
	}

	rng := encoder.NewRandomSource(cfg.Seed)
	seq := cfg.StartSeqNum

	var book encoder.OrderBook

	logger.Info("generating",
		zap.Int("messages", cfg.Messages),
		zap.Int("bids", cfg.BidLevels),
		zap.Int("asks", cfg.AskLevels),
		zap.Uint32("mid", cfg.MidPrice),
		zap.Uint32("startSeqNum", seq))

	start := time.Now()

	for i := 0; i < cfg.Messages; i++ {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return i, err
			}
		}

		if err := book.Generate(rng, cfg.BidLevels, cfg.AskLevels, cfg.MidPrice); err != nil {
			return i, err
		}

		header, rest, err := enc.Encode(&book, seq)
		if err != nil {
			return i, fmt.Errorf("encode seq %d: %w", seq, err)
		}

		if err := sink.WriteMessage(ctx, header, rest); err != nil {
			return i, err
		}

		if logger.Core().Enabled(zap.DebugLevel) {
			logger.Debug("book", zap.Uint32("seq", seq), zap.Stringer("book", &book))
		}

		seq++
	}

	elapsed := time.Since(start)
	rate := 0.0
	if elapsed > 0 {
		rate = float64(cfg.Messages) / elapsed.Seconds()
	}

	logger.Info("done",
		zap.Int("messages", cfg.Messages),
		zap.Duration("elapsed", elapsed),
		zap.Float64("msgsPerSec", rate))

	return cfg.Messages, nil
}

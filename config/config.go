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
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"
	"github.com/stephenlclarke/fixcat/encoder"
	"github.com/stephenlclarke/fixcat/fix"
)

// EnvPrefix namespaces environment overrides, e.g. BOOKSIM_MID_PRICE.
const EnvPrefix = "BOOKSIM"

type KafkaOptions struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	BatchSize    int           `mapstructure:"batch_size"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	RequiredAcks int           `mapstructure:"required_acks"`
	Compression  string        `mapstructure:"compression"`
}

// ConfigOptions drives the synthetic order-book generator.
type ConfigOptions struct {
	LogLevel    string `mapstructure:"log_level"`
	Development bool   `mapstructure:"development"`

	FixVersion      string `mapstructure:"fix_version"`
	Separator       string `mapstructure:"separator"`
	SenderCompID    string `mapstructure:"sender_comp_id"`
	TargetCompID    string `mapstructure:"target_comp_id"`
	SendingTime     string `mapstructure:"sending_time"`
	Symbol          string `mapstructure:"symbol"`
	CheckSum        string `mapstructure:"check_sum"`
	ComputeCheckSum bool   `mapstructure:"compute_check_sum"`

	MidPrice    uint32 `mapstructure:"mid_price"`
	BidLevels   int    `mapstructure:"bid_levels"`
	AskLevels   int    `mapstructure:"ask_levels"`
	Messages    int    `mapstructure:"messages"`
	Seed        uint64 `mapstructure:"seed"`
	StartSeqNum uint32 `mapstructure:"start_seq_num"`

	Output string       `mapstructure:"output"` // "-" is stdout
	Kafka  KafkaOptions `mapstructure:"kafka"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("development", false)

	v.SetDefault("fix_version", "44")
	v.SetDefault("separator", "soh")
	v.SetDefault("sender_comp_id", "SENDER_ID")
	v.SetDefault("target_comp_id", "TARGET_ID")
	v.SetDefault("sending_time", "YYYYMMDD-HH:MM:SS.sss")
	v.SetDefault("symbol", "EURUSD")
	v.SetDefault("check_sum", "543")
	v.SetDefault("compute_check_sum", false)

	v.SetDefault("mid_price", 1000)
	v.SetDefault("bid_levels", 10)
	v.SetDefault("ask_levels", 10)
	v.SetDefault("messages", 10_000_000)
	v.SetDefault("seed", 0)
	v.SetDefault("start_seq_num", 12345)

	v.SetDefault("output", "-")
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"127.0.0.1:9092"})
	v.SetDefault("kafka.topic", "fix.md.snapshots")
	v.SetDefault("kafka.batch_size", 100)
	v.SetDefault("kafka.batch_timeout", "10ms")
	v.SetDefault("kafka.required_acks", 1)
	v.SetDefault("kafka.compression", "snappy")
}

// LoadConfig reads configFile (if not empty) over the defaults, applies
// BOOKSIM_* environment overrides and validates the result.
func LoadConfig(configFile string) (ConfigOptions, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return ConfigOptions{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	var config ConfigOptions
	if err := v.Unmarshal(&config); err != nil {
		return ConfigOptions{}, fmt.Errorf("decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return ConfigOptions{}, err
	}

	return config, nil
}

// Validate reports every invalid setting at once.
func (c ConfigOptions) Validate() error {
	var result *multierror.Error

	if !fix.IsSupportedFixVersion(c.FixVersion) {
		result = multierror.Append(result, fmt.Errorf("fix_version %q not one of %s", c.FixVersion, fix.SupportedFixVersions()))
	}
	if _, ok := fix.SeparatorByName(c.Separator); !ok {
		result = multierror.Append(result, fmt.Errorf("separator %q must be soh or pipe", c.Separator))
	}
	if c.BidLevels < 0 || c.BidLevels > encoder.MaxLevels {
		result = multierror.Append(result, fmt.Errorf("bid_levels %d must be within 0..%d", c.BidLevels, encoder.MaxLevels))
	}
	if c.AskLevels < 0 || c.AskLevels > encoder.MaxLevels {
		result = multierror.Append(result, fmt.Errorf("ask_levels %d must be within 0..%d", c.AskLevels, encoder.MaxLevels))
	}
	if c.Messages < 0 {
		result = multierror.Append(result, fmt.Errorf("messages %d must not be negative", c.Messages))
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			result = multierror.Append(result, fmt.Errorf("kafka.brokers is empty"))
		}
		if c.Kafka.Topic == "" {
			result = multierror.Append(result, fmt.Errorf("kafka.topic is empty"))
		}
	}

	if _, ok := fix.SeparatorByName(c.Separator); ok {
		if err := c.Template().Validate(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	return result.ErrorOrNil()
}

// Template builds the encoder template from the config.
func (c ConfigOptions) Template() encoder.Template {
	sep, _ := fix.SeparatorByName(c.Separator)

	return encoder.Template{
		BeginString:     fix.BeginStringFor(c.FixVersion),
		SenderCompID:    c.SenderCompID,
		TargetCompID:    c.TargetCompID,
		SendingTime:     c.SendingTime,
		Symbol:          c.Symbol,
		CheckSum:        c.CheckSum,
		ComputeCheckSum: c.ComputeCheckSum,
		Separator:       sep,
	}
}

// KafkaSinkOptions converts the kafka section for encoder.NewKafkaSink.
func (c ConfigOptions) KafkaSinkOptions() encoder.KafkaOptions {
	return encoder.KafkaOptions{
		Brokers:      c.Kafka.Brokers,
		Topic:        c.Kafka.Topic,
		BatchSize:    c.Kafka.BatchSize,
		BatchTimeout: c.Kafka.BatchTimeout,
		RequiredAcks: c.Kafka.RequiredAcks,
		Compression:  c.Kafka.Compression,
	}
}

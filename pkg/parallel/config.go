// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/hpctutor/pkg/linalg"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// ConfigEnvVar is the environment variable with the configuration of the Default executor.
// It takes precedence over DefaultConfig.
//
// The format is the one accepted by ParseConfig, e.g.: "workers=8,chunk=4096,block=64x128x128".
const ConfigEnvVar = "HPCTUTOR_PARALLEL"

// DefaultConfig is the configuration used by Default when ConfigEnvVar is not set.
// An empty string means the values of NewConfig.
//
// It is read only once, the first time Default is called.
var DefaultConfig = ""

// DefaultMinChunk is the default minimum amount of work (elements, or multiply-adds for Gemm)
// assigned to one partition.
const DefaultMinChunk = 4096

// Config holds the parameters of an Executor.
type Config struct {
	// Workers is the soft limit of the worker pool: 0 disables parallelism (every kernel runs
	// inline in the caller) and a negative value means unlimited.
	Workers int

	// MinChunk is the minimum amount of work per partition, it must be >= 1.
	// Smaller problems use fewer partitions, down to running sequentially.
	MinChunk int

	// BlockSizes, if set (non-zero), makes Gemm use linalg.GemmBlock on each output tile.
	BlockSizes linalg.BlockSizes
}

// NewConfig returns the default configuration: one worker per CPU, DefaultMinChunk and unblocked GEMM tiles.
func NewConfig() Config {
	return Config{Workers: runtime.NumCPU(), MinChunk: DefaultMinChunk}
}

// Validate returns an error if the configuration is not usable.
func (c Config) Validate() error {
	if c.MinChunk < 1 {
		return errors.Errorf("parallel: invalid chunk size %d, it must be >= 1", c.MinChunk)
	}
	if c.BlockSizes != (linalg.BlockSizes{}) {
		if err := c.BlockSizes.Validate(); err != nil {
			return errors.WithMessage(err, "parallel")
		}
	}
	return nil
}

// String returns the configuration in the format accepted by ParseConfig.
func (c Config) String() string {
	s := fmt.Sprintf("workers=%d,chunk=%d", c.Workers, c.MinChunk)
	if c.BlockSizes != (linalg.BlockSizes{}) {
		s += fmt.Sprintf(",block=%dx%dx%d", c.BlockSizes.N, c.BlockSizes.M, c.BlockSizes.L)
	}
	return s
}

// ParseConfig parses a comma-separated list of key=value pairs, starting from NewConfig.
//
// Keys:
//
//   - workers: soft limit of parallel workers; 0 disables parallelism, -1 makes it unlimited.
//   - chunk: minimum amount of work per partition.
//   - block: GEMM tile sizes given as "NxMxL", e.g. "64x128x128".
func ParseConfig(config string) (Config, error) {
	c := NewConfig()
	for part := range strings.SplitSeq(config, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, found := strings.Cut(part, "=")
		if !found {
			return c, errors.Errorf("parallel: invalid config %q: %q is not a key=value pair", config, part)
		}
		var err error
		switch key {
		case "workers":
			c.Workers, err = strconv.Atoi(value)
		case "chunk":
			c.MinChunk, err = strconv.Atoi(value)
		case "block":
			c.BlockSizes, err = ParseBlockSizes(value)
		default:
			err = errors.Errorf("unknown key %q", key)
		}
		if err != nil {
			return c, errors.Wrapf(err, "parallel: invalid config %q", config)
		}
	}
	return c, c.Validate()
}

// ParseBlockSizes parses block sizes given as "NxMxL". A single value "B" is taken as "BxBxB".
func ParseBlockSizes(s string) (linalg.BlockSizes, error) {
	parts := strings.Split(s, "x")
	if len(parts) == 1 {
		parts = []string{parts[0], parts[0], parts[0]}
	}
	if len(parts) != 3 {
		return linalg.BlockSizes{}, errors.Errorf("block sizes %q must have the form NxMxL", s)
	}
	var sizes [3]int
	for ii, part := range parts {
		v, err := strconv.Atoi(part)
		if err != nil {
			return linalg.BlockSizes{}, errors.Wrapf(err, "block sizes %q", s)
		}
		sizes[ii] = v
	}
	bs := linalg.BlockSizes{N: sizes[0], M: sizes[1], L: sizes[2]}
	return bs, bs.Validate()
}

var defaultExecutor = sync.OnceValue(func() *Executor {
	config, source := DefaultConfig, "DefaultConfig"
	if env, found := os.LookupEnv(ConfigEnvVar); found {
		config, source = env, "$"+ConfigEnvVar
	}
	c, err := ParseConfig(config)
	if err != nil {
		exceptions.Panicf("failed to configure the default parallel executor from %s: %+v", source, err)
	}
	klog.V(1).Infof("parallel: default executor configured from %s: %s", source, c)
	return mustNew(c)
})

// Default returns the executor used when a nil *Executor is given to the kernels.
//
// It is created on the first call, from the ConfigEnvVar environment variable if set, or from
// DefaultConfig otherwise. It panics if the configuration is invalid.
func Default() *Executor {
	return defaultExecutor()
}

/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package client

import (
	"fmt"
	"net"
	"time"

	"go.osspkg.com/reactor/internal"
)

const (
	DefaultRetries     = 5
	DefaultRetryDelay  = 2 * time.Second
	DefaultIdleTimeout = 5 * time.Second
)

type Config struct {
	Address     string        `yaml:"address"`
	MaxConns    uint64        `yaml:"max_conns,omitempty"`
	Timeout     time.Duration `yaml:"timeout,omitempty"`
	IdleTimeout time.Duration `yaml:"idle_timeout,omitempty"`
	Retries     int           `yaml:"retries,omitempty"`
	RetryDelay  time.Duration `yaml:"retry_delay,omitempty"`
}

func (c *Config) Default() {
	if c.MaxConns <= 0 {
		c.MaxConns = 1
	}
	c.Retries = internal.NotZero(c.Retries, DefaultRetries)
	c.RetryDelay = internal.NotZeroDuration(c.RetryDelay, DefaultRetryDelay)
	c.IdleTimeout = internal.NotZeroDuration(c.IdleTimeout, DefaultIdleTimeout)
}

func (c Config) Resolve() (*net.TCPAddr, error) {
	addr, err := net.ResolveTCPAddr("tcp", c.Address)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", c.Address, err)
	}
	return addr, nil
}

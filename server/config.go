/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package server

import (
	"time"

	"go.osspkg.com/reactor/address"
	"go.osspkg.com/reactor/internal"
	"go.osspkg.com/reactor/listen"
)

const (
	DefaultPort      = "6667"
	DefaultWorkers   = 5
	DefaultQueueSize = 10
)

type Config struct {
	Address          string        `yaml:"address"`
	Workers          int           `yaml:"workers,omitempty"`
	QueueSize        int           `yaml:"queue_size,omitempty"`
	Backlog          int           `yaml:"backlog,omitempty"`
	IdleTimeout      time.Duration `yaml:"idle_timeout,omitempty"`
	RefreshThreshold int           `yaml:"refresh_threshold,omitempty"`
	WaitInterval     time.Duration `yaml:"wait_interval,omitempty"`
	CountEvents      int           `yaml:"count_events,omitempty"`
	ReadBuffer       int           `yaml:"read_buffer,omitempty"`
}

// Default fills unset fields. Loop-level fields left at zero are filled by
// eventloop.Option.Validate.
func (c *Config) Default() {
	c.Address = address.HostPort(c.Address, DefaultPort)
	c.Workers = internal.NotZero(c.Workers, DefaultWorkers)
	c.QueueSize = internal.NotZero(c.QueueSize, DefaultQueueSize)
	c.Backlog = internal.NotZero(c.Backlog, listen.DefaultBacklog)
}

/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package server

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"go.osspkg.com/errors"
	"go.osspkg.com/logx"
	"go.osspkg.com/syncing"
	"golang.org/x/sys/unix"

	"go.osspkg.com/reactor/epoll"
	"go.osspkg.com/reactor/errs"
	"go.osspkg.com/reactor/eventloop"
	"go.osspkg.com/reactor/listen"
	"go.osspkg.com/reactor/ring"
)

type (
	Server interface {
		HandleFunc(fn eventloop.MessageFunc)
		Listen() error
		Serve(ctx context.Context) error
		ListenAndServe(ctx context.Context) error
		Addr() string
		Connections() []int64
	}

	_server struct {
		conf    Config
		log     logx.Logger
		handler eventloop.MessageFunc
		queue   *ring.Queue[eventloop.Handoff]
		fd      int
		addr    string
		workers []*eventloop.Loop
		sync    syncing.Switch
		wg      syncing.Group
		mux     sync.RWMutex
	}
)

func New(conf Config, log logx.Logger) Server {
	conf.Default()
	return &_server{
		conf:  conf,
		log:   log,
		queue: ring.New[eventloop.Handoff](conf.QueueSize),
		fd:    -1,
		sync:  syncing.NewSwitch(),
		wg:    syncing.NewGroup(),
	}
}

func (v *_server) HandleFunc(fn eventloop.MessageFunc) {
	if v.sync.IsOn() {
		return
	}
	v.handler = fn
}

// Listen opens the listening socket so that Addr is known before Serve.
func (v *_server) Listen() error {
	v.mux.Lock()
	defer v.mux.Unlock()

	if v.fd >= 0 {
		return nil
	}
	fd, err := listen.Socket(v.conf.Address, v.conf.Backlog)
	if err != nil {
		return err
	}
	v.fd, v.addr = fd, listen.Addr(fd)
	return nil
}

func (v *_server) Addr() string {
	v.mux.RLock()
	defer v.mux.RUnlock()
	return v.addr
}

// Connections reports how many clients each worker currently owns.
func (v *_server) Connections() []int64 {
	v.mux.RLock()
	defer v.mux.RUnlock()

	result := make([]int64, 0, len(v.workers))
	for _, w := range v.workers {
		result = append(result, w.Active())
	}
	return result
}

func (v *_server) ListenAndServe(ctx context.Context) error {
	if err := v.Listen(); err != nil {
		return err
	}
	return v.Serve(ctx)
}

func (v *_server) option(source eventloop.Source, fn eventloop.MessageFunc) eventloop.Option {
	return eventloop.Option{
		Source:           source,
		OnMessage:        fn,
		CountEvents:      v.conf.CountEvents,
		WaitInterval:     v.conf.WaitInterval,
		IdleTimeout:      v.conf.IdleTimeout,
		RefreshThreshold: v.conf.RefreshThreshold,
		ReadBuffer:       v.conf.ReadBuffer,
	}
}

// build creates every loop up front: a poller that cannot be created is
// fatal before any connection is accepted.
func (v *_server) build() (acceptor *eventloop.Loop, err error) {
	loops := make([]*eventloop.Loop, 0, v.conf.Workers+1)
	owned := false
	defer func() {
		if err == nil {
			return
		}
		for _, l := range loops {
			err = errors.Wrap(err, l.Close())
		}
		// once registered, the listener loop closes the socket itself
		v.mux.Lock()
		if !owned {
			err = errors.Wrap(err, unix.Close(v.fd))
		}
		v.fd = -1
		v.mux.Unlock()
	}()

	if acceptor, err = eventloop.New(v.log, v.option(nil, nil)); err != nil {
		return nil, fmt.Errorf("listener loop: %w", err)
	}
	loops = append(loops, acceptor)

	acc := listen.NewAcceptor(v.fd, v.queue, v.log)
	if err = acceptor.AddConnection(acc.FD(), epoll.EventIn|epoll.EdgeTriggered, acc.Hooks(), "0.0.0.0", 0, true); err != nil {
		return nil, fmt.Errorf("register listener: %w", err)
	}
	owned = true

	workers := make([]*eventloop.Loop, 0, v.conf.Workers)
	for i := 0; i < v.conf.Workers; i++ {
		w, e := eventloop.New(v.log, v.option(v.queue, v.handler))
		if e != nil {
			return nil, fmt.Errorf("worker %d: %w", i, e)
		}
		loops = append(loops, w)
		workers = append(workers, w)
	}

	v.mux.Lock()
	v.workers = workers
	v.mux.Unlock()

	return acceptor, nil
}

func (v *_server) Serve(ctx context.Context) error {
	if v.handler == nil {
		return fmt.Errorf("handler not found")
	}
	if !v.sync.On() {
		return errs.ErrServAlreadyRunning
	}
	if err := v.Listen(); err != nil {
		v.sync.Off()
		return err
	}

	acceptor, err := v.build()
	if err != nil {
		v.sync.Off()
		return err
	}

	v.run(ctx, "listener", acceptor)
	v.mux.RLock()
	for i, w := range v.workers {
		v.run(ctx, fmt.Sprintf("worker-%d", i), w)
	}
	v.mux.RUnlock()

	v.log.Info("Server started", "addr", v.Addr(), "workers", v.conf.Workers)
	v.wg.Wait()

	v.mux.Lock()
	v.fd = -1
	v.mux.Unlock()

	v.dropPending()
	v.log.Info("Server stopped", "addr", v.Addr())
	v.sync.Off()
	return nil
}

func (v *_server) run(ctx context.Context, name string, l *eventloop.Loop) {
	v.wg.Background(func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		if err := l.Run(ctx); err != nil {
			v.log.Error("Server loop stopped", "loop", name, "err", err)
		}
	})
}

// dropPending closes clients accepted but never picked up by a worker.
func (v *_server) dropPending() {
	for {
		h, ok := v.queue.Pop()
		if !ok {
			return
		}
		if err := unix.Close(h.FD); err != nil {
			v.log.Error("Server close pending client", "err", err, "fd", h.FD)
		}
	}
}

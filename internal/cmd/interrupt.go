// Copyright (c) 2026 dotandev
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"context"
	stderrors "errors"
	"os"
	"sync"
	"time"

	"github.com/dotandev/parkledger/internal/logger"
	"github.com/dotandev/parkledger/internal/shutdown"
)

const (
	InterruptExitCode = 130
	shutdownTimeout   = 3 * time.Second
)

var ErrInterrupted = stderrors.New("interrupt received")

func IsInterrupted(err error) bool {
	return stderrors.Is(err, ErrInterrupted)
}

var shutdownState struct {
	mu          sync.RWMutex
	coordinator *shutdown.Coordinator
}

func setShutdownCoordinator(c *shutdown.Coordinator) {
	shutdownState.mu.Lock()
	defer shutdownState.mu.Unlock()
	shutdownState.coordinator = c
}

func clearShutdownCoordinator() {
	shutdownState.mu.Lock()
	defer shutdownState.mu.Unlock()
	shutdownState.coordinator = nil
}

// registerShutdownHook is a no-op outside executeWithSignals.
func registerShutdownHook(name string, fn shutdown.HookFunc) {
	shutdownState.mu.RLock()
	c := shutdownState.coordinator
	shutdownState.mu.RUnlock()
	if c == nil {
		return
	}
	c.Register(name, fn)
}

func registerCloser(name string, closer interface{ Close() error }) {
	registerShutdownHook(name, func(context.Context) error { return closer.Close() })
}

func runShutdownHooks(c *shutdown.Coordinator) {
	if err := c.RunWithTimeout(shutdownTimeout); err != nil {
		logger.Component("cmd").Warn("Shutdown hooks completed with errors", "error", err)
	}
}

// executeWithSignals runs exec until it returns or a signal arrives on sigCh.
// Shutdown hooks run in both cases.
func executeWithSignals(ctx context.Context, cancel context.CancelFunc, sigCh <-chan os.Signal, c *shutdown.Coordinator, exec func(context.Context) error) error {
	setShutdownCoordinator(c)
	defer clearShutdownCoordinator()

	done := make(chan error, 1)
	go func() { done <- exec(ctx) }()

	select {
	case err := <-done:
		runShutdownHooks(c)
		return err
	case sig := <-sigCh:
		logger.Component("cmd").Info("Received signal, shutting down", "signal", sig.String())
		cancel()
		select {
		case <-done:
		case <-time.After(shutdownTimeout):
		}
		runShutdownHooks(c)
		return ErrInterrupted
	}
}

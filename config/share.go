package config

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/flightrecorder/recorder/shmem"
)

var (
	shareMu      sync.Mutex
	currentShare *shmem.Chans
	shareCleanup sync.Once

	cleanupMu      sync.Mutex
	cleanupHooks   []func()
	cleanupInstall sync.Once
)

func currentShans() *shmem.Chans {
	shareMu.Lock()
	defer shareMu.Unlock()
	return currentShare
}

// ensureShans returns the currently-open shared-memory file, creating one
// at RECORDER_SHARE (or defaultSharePath) if no share= item has opened
// one yet. Channel exports are created lazily, so the first export
// request in a process's lifetime is what actually materializes the
// file.
func ensureShans() (*shmem.Chans, error) {
	shareMu.Lock()
	if currentShare != nil {
		c := currentShare
		shareMu.Unlock()
		return c, nil
	}
	shareMu.Unlock()

	path := os.Getenv("RECORDER_SHARE")
	if path == "" {
		path = defaultSharePath
	}

	shareMu.Lock()
	defer shareMu.Unlock()
	if currentShare != nil {
		// Another caller created it while we were racing for the lock.
		return currentShare, nil
	}
	c, err := shmem.New(path)
	if err != nil {
		return nil, err
	}
	currentShare = c
	shareCleanup.Do(func() {
		registerCleanup(closeShare)
	})
	return c, nil
}

// applyShare (re)creates the shared-memory file at path, closing any
// previously open one first. The very first successful share= registers
// a process-wide cleanup hook that closes the mapping on SIGINT/SIGTERM.
func applyShare(path string) error {
	shareMu.Lock()
	if currentShare != nil {
		_ = currentShare.Close()
		currentShare = nil
	}
	c, err := shmem.New(path)
	if err != nil {
		shareMu.Unlock()
		return err
	}
	currentShare = c
	shareMu.Unlock()

	shareCleanup.Do(func() {
		registerCleanup(closeShare)
	})
	return nil
}

func closeShare() {
	shareMu.Lock()
	defer shareMu.Unlock()
	if currentShare != nil {
		_ = currentShare.Close()
		currentShare = nil
	}
}

// registerCleanup appends f to the process-wide cleanup hook list and
// lazily installs the signal-driven runner that executes the list on the
// process's first SIGINT/SIGTERM.
func registerCleanup(f func()) {
	cleanupMu.Lock()
	cleanupHooks = append(cleanupHooks, f)
	cleanupMu.Unlock()

	cleanupInstall.Do(func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sigs
			runCleanups()
			os.Exit(1)
		}()
	})
}

func runCleanups() {
	cleanupMu.Lock()
	hooks := cleanupHooks
	cleanupHooks = nil
	cleanupMu.Unlock()
	for _, h := range hooks {
		h()
	}
}

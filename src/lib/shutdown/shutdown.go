package shutdown

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/foliosite/folio/src/lib/slog"
)

var fns []func() error
var mux sync.Mutex

// Subscribe registers a clean up function. Functions run in the reverse
// order of registration.
func Subscribe(fn func() error) {
	mux.Lock()
	defer mux.Unlock()
	fns = append(fns, fn)
}

// Wait blocks until the process receives an interrupt or terminate signal,
// then runs the clean up functions.
func Wait() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(c)

	sig := <-c
	slog.Infof("received %s, shutting down", sig.String())
	Shutdown()
}

// Shutdown runs and forgets the registered clean up functions.
func Shutdown() {
	mux.Lock()
	list := fns
	fns = nil
	mux.Unlock()

	slog.Info("running clean up operations")

	for i := len(list) - 1; i >= 0; i-- {
		if err := list[i](); err != nil {
			slog.Errorf("error while shutting down: %s", err.Error())
		}
	}
}

package main

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDrainErrorsKeepsChannelClear(t *testing.T) {
	cfg := &Config{}
	errs := make(chan error, 64)
	go drainErrors(cfg, errs)

	// Well past the buffer size; a writer must never block.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			errs <- errors.New("write failed")
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("error channel backed up and blocked its writer")
	}
}

func TestHumanReadableSize(t *testing.T) {
	assert.Equal(t, "12 B", humanReadableSize(12))
	assert.Equal(t, "1.5 kB", humanReadableSize(1500))
	assert.Equal(t, "2.0 MB", humanReadableSize(2_000_000))
}

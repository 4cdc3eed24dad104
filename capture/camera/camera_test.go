package camera

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/janpfeifer/daltonview/capture"
)

type closedDevice struct{ closed bool }

func (d *closedDevice) Read(*gocv.Mat) bool { return false }
func (d *closedDevice) IsOpened() bool      { return false }
func (d *closedDevice) Close() error        { d.closed = true; return nil }

func TestNotStarted(t *testing.T) {
	src := New(0, func(int) (Device, error) { return nil, errors.New("no such device") })
	_, err := src.Acquire(context.Background(), capture.Request{})
	assert.ErrorIs(t, err, capture.ErrNotStarted)
	assert.True(t, src.CheckPermission())
	src.Stop()
}

func TestOpenFailures(t *testing.T) {
	src := New(3, func(id int) (Device, error) {
		assert.Equal(t, 3, id)
		return nil, errors.New("no such device")
	})
	assert.ErrorIs(t, src.Start(capture.Request{}), capture.ErrAcquisition)

	device := &closedDevice{}
	src = New(0, func(int) (Device, error) { return device, nil })
	assert.ErrorIs(t, src.Start(capture.Request{}), capture.ErrPermissionDenied)
	assert.True(t, device.closed)
	_, err := src.Acquire(context.Background(), capture.Request{})
	assert.ErrorIs(t, err, capture.ErrNotStarted)
}

// blockedDevice is opened, but Read blocks until released.
type blockedDevice struct {
	reading, release chan struct{}
	closed           atomic.Bool
}

func (d *blockedDevice) Read(*gocv.Mat) bool {
	d.reading <- struct{}{}
	<-d.release
	return false
}
func (d *blockedDevice) IsOpened() bool { return true }
func (d *blockedDevice) Close() error   { d.closed.Store(true); return nil }

func TestStopDuringRead(t *testing.T) {
	device := &blockedDevice{reading: make(chan struct{}, 1), release: make(chan struct{})}
	src := New(0, func(int) (Device, error) { return device, nil })
	require.NoError(t, src.Start(capture.Request{}))

	errs := make(chan error, 1)
	go func() {
		_, err := src.Acquire(context.Background(), capture.Request{})
		errs <- err
	}()
	<-device.reading

	stopped := make(chan struct{})
	go func() {
		src.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop waited for the read")
	}
	assert.False(t, device.closed.Load(), "closed only once the read returns")

	close(device.release)
	assert.ErrorIs(t, <-errs, capture.ErrNotStarted)
	assert.True(t, device.closed.Load())
}

// Package camera implements a capture.FrameSource reading from a video
// capture device, with gocv.
package camera

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/golang/glog"
	"gocv.io/x/gocv"

	"github.com/janpfeifer/daltonview/capture"
)

// Device is the part of gocv.VideoCapture used by Source.
type Device interface {
	Read(m *gocv.Mat) bool
	IsOpened() bool
	Close() error
}

// Opener opens a device by id.
type Opener func(deviceID int) (Device, error)

// OpenVideoCapture opens a gocv.VideoCapture.
func OpenVideoCapture(deviceID int) (Device, error) {
	vc, err := gocv.OpenVideoCapture(deviceID)
	if err != nil {
		return nil, err
	}
	return vc, nil
}

// Source reads frames from a camera. Cameras ignore the screen geometry of
// capture requests: frames always hold the full camera image.
type Source struct {
	deviceID int
	open     Opener

	// mu is never held while reading from the device.
	mu       sync.Mutex
	device   Device
	mat      gocv.Mat
	failures int

	// reading is the device being read, if any.
	reading Device
}

// New creates a camera source for deviceID. If open is nil,
// OpenVideoCapture is used.
func New(deviceID int, open Opener) *Source {
	if open == nil {
		open = OpenVideoCapture
	}
	return &Source{deviceID: deviceID, open: open}
}

// Start implements capture.FrameSource. The device is opened once, later
// calls only reconfigure.
func (s *Source) Start(capture.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.device != nil {
		return nil
	}
	device, err := s.open(s.deviceID)
	if err != nil {
		return fmt.Errorf("%w: failed to open camera %d: %v", capture.ErrAcquisition, s.deviceID, err)
	}
	if !device.IsOpened() {
		_ = device.Close()
		return fmt.Errorf("camera %d can not be opened: %w", s.deviceID, capture.ErrPermissionDenied)
	}
	s.device = device
	s.mat = gocv.NewMat()
	glog.Infof("Camera %d opened", s.deviceID)
	return nil
}

// Stop implements capture.FrameSource. It does not wait for a read in
// progress: that device is closed when the read returns.
func (s *Source) Stop() {
	s.mu.Lock()
	device, mat := s.device, s.mat
	busy := device != nil && s.reading == device
	s.device = nil
	s.mu.Unlock()
	if device != nil && !busy {
		s.close(device, mat)
	}
}

func (s *Source) close(device Device, mat gocv.Mat) {
	if err := device.Close(); err != nil {
		glog.Warningf("Failed to close camera %d: %s", s.deviceID, err)
	}
	_ = mat.Close()
}

// CheckPermission implements capture.FrameSource. Camera access is checked
// when opening the device, in Start.
func (s *Source) CheckPermission() bool { return true }

// HandlePointerEvent implements capture.FrameSource.
func (s *Source) HandlePointerEvent(capture.PointerEvent) {}

// Acquire implements capture.FrameSource.
func (s *Source) Acquire(ctx context.Context, _ capture.Request) (*capture.Frame, error) {
	s.mu.Lock()
	device, mat := s.device, s.mat
	switch {
	case device == nil:
		s.mu.Unlock()
		return nil, capture.ErrNotStarted
	case s.reading != nil:
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: camera %d is busy", capture.ErrAcquisition, s.deviceID)
	}
	if err := ctx.Err(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.reading = device
	s.mu.Unlock()

	// The device stays marked as being read until the frame is converted, so
	// Stop leaves closing it to us.
	var img image.Image
	err := fmt.Errorf("%w: camera %d returned no frame", capture.ErrAcquisition, s.deviceID)
	if device.Read(&mat) && !mat.Empty() {
		img, err = mat.ToImage()
		if err != nil {
			err = fmt.Errorf("%w: converting camera frame: %v", capture.ErrAcquisition, err)
		}
	}

	s.mu.Lock()
	s.reading = nil
	stopped := s.device != device
	if !stopped && err != nil {
		s.failures++
		err = fmt.Errorf("%w (%d failures)", err, s.failures)
	}
	s.mu.Unlock()
	if stopped {
		s.close(device, mat)
		return nil, capture.ErrNotStarted
	}
	if err != nil {
		return nil, err
	}
	return &capture.Frame{Image: img, Rect: img.Bounds(), Time: time.Now()}, nil
}

var _ capture.FrameSource = (*Source)(nil)

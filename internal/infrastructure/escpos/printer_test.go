package escpos

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acaishop/printing/internal/domain/shared"
)

// fakeDevice fails the first failUntil connect attempts and records
// all written bytes
type fakeDevice struct {
	failUntil int
	connects  int
	written   []byte
	closed    int
}

func (d *fakeDevice) Connect() error {
	d.connects++
	if d.connects <= d.failUntil {
		return errors.New("device busy")
	}
	return nil
}

func (d *fakeDevice) Write(p []byte) (int, error) {
	d.written = append(d.written, p...)
	return len(p), nil
}

func (d *fakeDevice) Close() error {
	d.closed++
	return nil
}

func TestPrinterPrint(t *testing.T) {
	t.Run("writes full stream and releases device", func(t *testing.T) {
		device := &fakeDevice{}
		p := NewPrinter(device, nil, 3, time.Millisecond, nil)

		err := p.Print(context.Background(), sampleModel())
		require.NoError(t, err)

		assert.Equal(t, 1, device.connects)
		assert.Equal(t, 1, device.closed)
		assert.Equal(t, NewRenderer().Render(sampleModel(), nil), device.written)
	})

	t.Run("defers and retries while device is busy", func(t *testing.T) {
		device := &fakeDevice{failUntil: 2}
		p := NewPrinter(device, nil, 3, time.Millisecond, nil)

		err := p.Print(context.Background(), sampleModel())
		require.NoError(t, err)
		assert.Equal(t, 3, device.connects)
	})

	t.Run("reports offline after deferral bound", func(t *testing.T) {
		device := &fakeDevice{failUntil: 100}
		p := NewPrinter(device, nil, 2, time.Millisecond, nil)

		err := p.Print(context.Background(), sampleModel())
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrPrinterOffline)
		assert.Equal(t, 3, device.connects) // first attempt plus two deferrals
		assert.Empty(t, device.written)
	})

	t.Run("cancellation stops deferral wait", func(t *testing.T) {
		device := &fakeDevice{failUntil: 100}
		p := NewPrinter(device, nil, 10, time.Hour, nil)

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()

		err := p.Print(ctx, sampleModel())
		assert.ErrorIs(t, err, context.Canceled)
	})
}

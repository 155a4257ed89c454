package throttle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacerFirstCallDoesNotWait(t *testing.T) {
	t.Parallel()

	p := NewPacer(time.Hour)
	start := time.Now()
	require.NoError(t, p.Wait(context.Background()))
	assert.Less(t, time.Since(start), time.Second)
}

func TestPacerSpacesCalls(t *testing.T) {
	t.Parallel()

	p := NewPacer(30 * time.Millisecond)
	require.NoError(t, p.Wait(context.Background()))
	start := time.Now()
	require.NoError(t, p.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 25*time.Millisecond)
}

func TestPacerHonoursCancellation(t *testing.T) {
	t.Parallel()

	p := NewPacer(time.Hour)
	require.NoError(t, p.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Wait(ctx), context.Canceled)
}

func TestNilPacerIsNoop(t *testing.T) {
	t.Parallel()

	var p *Pacer
	assert.NoError(t, p.Wait(context.Background()))
}

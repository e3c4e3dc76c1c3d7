package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeRetryBackoff(t *testing.T) {
	cases := []struct {
		retryCount int
		want       time.Duration
	}{
		{0, time.Minute},
		{1, time.Minute},
		{2, 2 * time.Minute},
		{3, 4 * time.Minute},
		{5, 16 * time.Minute},
		{6, 30 * time.Minute}, // 32m capeado a 30m
		{10, 30 * time.Minute},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, computeRetryBackoff(c.retryCount), "retryCount=%d", c.retryCount)
	}
}

func TestWithRetry_ReintentaYPropagaUltimoError(t *testing.T) {
	intentos := 0
	err := withRetry(context.Background(), 3, func(_ int) error {
		intentos++
		return errors.New("siempre falla")
	})
	require.Error(t, err)
	assert.Equal(t, 3, intentos)
	assert.Equal(t, "siempre falla", err.Error())
}

func TestWithRetry_ParaEnElPrimerExito(t *testing.T) {
	intentos := 0
	err := withRetry(context.Background(), 3, func(_ int) error {
		intentos++
		if intentos < 2 {
			return errors.New("transitorio")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, intentos)
}

func TestWithRetry_RespetaContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := withRetry(ctx, 3, func(_ int) error {
		return errors.New("falla para forzar la espera")
	})
	assert.ErrorIs(t, err, context.Canceled)
}

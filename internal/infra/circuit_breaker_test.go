package infra

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errProveedor = errors.New("proveedor caído")

func fallar() error { return errProveedor }
func okFn() error   { return nil }

func TestCircuitBreaker_AbreTrasFallasConsecutivas(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 3,
		SuccessThreshold: 1,
		OpenTimeout:      time.Minute,
	})

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(fallar), errProveedor)
	}
	assert.Equal(t, CBOpen, cb.State())

	// Abierto: fast-fail sin llamar a fn.
	assert.ErrorIs(t, cb.Execute(okFn), ErrCircuitOpen)
}

func TestCircuitBreaker_ExitoResetaContadorEnCerrado(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 3,
		SuccessThreshold: 1,
		OpenTimeout:      time.Minute,
	})

	assert.Error(t, cb.Execute(fallar))
	assert.Error(t, cb.Execute(fallar))
	require.NoError(t, cb.Execute(okFn))

	// El contador volvió a cero: dos fallas más no abren el circuito.
	assert.Error(t, cb.Execute(fallar))
	assert.Error(t, cb.Execute(fallar))
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenCierraTrasExitos(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 1,
		SuccessThreshold: 2,
		OpenTimeout:      10 * time.Millisecond,
	})

	require.Error(t, cb.Execute(fallar))
	require.Equal(t, CBOpen, cb.State())

	time.Sleep(20 * time.Millisecond)
	require.Equal(t, CBHalfOpen, cb.State())

	// Un éxito no basta con SuccessThreshold=2.
	require.NoError(t, cb.Execute(okFn))
	require.Equal(t, CBHalfOpen, cb.State())

	require.NoError(t, cb.Execute(okFn))
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreaker_ProbeFallidaReabre(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 1,
		SuccessThreshold: 1,
		OpenTimeout:      10 * time.Millisecond,
	})

	require.Error(t, cb.Execute(fallar))
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, CBHalfOpen, cb.State())

	require.Error(t, cb.Execute(fallar))
	assert.Equal(t, CBOpen, cb.State())
}

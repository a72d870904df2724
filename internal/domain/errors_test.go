package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNoDataSeesWrappedErrors(t *testing.T) {
	err := fmt.Errorf("analyze supplier: %w", &NoDataError{Entity: "supplier", ID: 9, Reason: "no confirmed orders"})

	assert.True(t, IsNoData(err))
	assert.False(t, IsNotFound(err))
}

func TestIsNotFoundSeesWrappedErrors(t *testing.T) {
	err := fmt.Errorf("load product: %w", &NotFoundError{Entity: "product", ID: 1})

	assert.True(t, IsNotFound(err))
	assert.False(t, IsNoData(err))
}

func TestNotFoundErrorFormatsStringKeys(t *testing.T) {
	assert.Equal(t, "product 1 not found", (&NotFoundError{Entity: "product", ID: 1}).Error())
	assert.Equal(t, "alert cb7qrm2n3kg2 not found", (&NotFoundError{Entity: "alert", Key: "cb7qrm2n3kg2"}).Error())
}

func TestInvalidMeasurementMessage(t *testing.T) {
	err := &InvalidMeasurement{Value: 412.5, Reason: "lead time outside (0, 365) days"}

	assert.Equal(t, "invalid measurement 412.5: lead time outside (0, 365) days", err.Error())
}

func TestExternalServiceFailureUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := &ExternalServiceFailure{Service: "forecast advisor", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "forecast advisor")
}

package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grrdistribution/barrel-ledger/internal/model"
	"github.com/grrdistribution/barrel-ledger/internal/services"
	xhttp "github.com/grrdistribution/barrel-ledger/pkg/http"
	"github.com/pkg/errors"
)

func TestWriteServiceError_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", model.ValidationError("customer_name is required"), xhttp.StatusBadRequest},
		{"no baseline", services.ErrNoBaseline, xhttp.StatusNotFound},
		{"not found", services.ErrNotFound, xhttp.StatusNotFound},
		{"wrapped not found", errors.Wrap(services.ErrNotFound, "latest"), xhttp.StatusNotFound},
		{"conflict", services.ErrSiteExists, xhttp.StatusConflict},
		{"store failure", errors.New("connection refused"), xhttp.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ctx xhttp.RequestCtx
			writeServiceError(&ctx, tt.err)
			assert.Equal(t, tt.status, ctx.Response.StatusCode())
		})
	}
}

func TestWriteServiceError_HidesStoreDetail(t *testing.T) {
	var ctx xhttp.RequestCtx
	writeServiceError(&ctx, errors.New("pq: password authentication failed"))
	assert.NotContains(t, string(ctx.Response.Body()), "password")
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("2025-06-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), d)

	d, err = parseDate("2025-06-15T10:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, 15, d.Day())

	_, err = parseDate("15/06/2025")
	assert.Error(t, err)
}

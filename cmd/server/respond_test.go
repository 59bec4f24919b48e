package main

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elecmate/quotedesk/internal/pricing"
	"github.com/elecmate/quotedesk/internal/settings"
	"github.com/elecmate/quotedesk/internal/validation"
)

func TestWriteJSONUnencodableValueIsLogged500(t *testing.T) {
	var logs bytes.Buffer
	logger := zerolog.New(&logs)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(logger.WithContext(req.Context()))
	rr := httptest.NewRecorder()

	writeJSON(rr, req, http.StatusOK, map[string]float64{"price": math.Inf(1)})

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	var resp errorResponse
	decodeBody(t, rr, &resp)
	assert.Equal(t, "internal server error", resp.Error)
	assert.Contains(t, logs.String(), `"message":"encode response"`)
	assert.Contains(t, logs.String(), `"status":200`)
}

func TestWriteJSONWritesStatusAndBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	writeJSON(rr, req, http.StatusCreated, map[string]string{"status": "ok"})

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "application/json; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestValidationFieldsSortedByPath(t *testing.T) {
	biz := settings.Defaults()
	biz.VATPercent = 150
	biz.Multipliers.Low = 0
	biz.HourlyRate = -1

	err := fmt.Errorf("%w: %w", settings.ErrInvalid, validation.New().Struct(biz))

	fields := validationFields(err)
	require.Len(t, fields, 3)
	assert.Equal(t, []string{"hourlyRate", "multipliers.low", "vatPercent"},
		lo.Map(fields, func(f pricing.FieldError, _ int) string { return f.Field }))
	assert.Equal(t, "must be greater than 0", fields[1].Message)
	assert.Equal(t, "must be less than or equal to 100", fields[2].Message)

	assert.Nil(t, validationFields(errors.New("boom")))
}

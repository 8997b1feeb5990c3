package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCaptureRouter() *gin.Engine {
	r := gin.Default()
	handler := NewHandler(nil, nil, nil, nil, nil, nil)
	r.POST("/nfc-capture", handler.PostCapture)
	return r
}

func TestPostCapture_Validation(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{name: "empty body", body: ""},
		{name: "missing tag", body: `{"datetime":"2025-06-02T08:30:00"}`},
		{name: "missing datetime", body: `{"nfc_tag":"T1"}`},
		{name: "blank tag", body: `{"nfc_tag":"   ","datetime":"2025-06-02T08:30:00"}`},
		{name: "unparseable datetime", body: `{"nfc_tag":"T1","datetime":"yesterday"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router := setupCaptureRouter()

			w := httptest.NewRecorder()
			req, _ := http.NewRequest("POST", "/nfc-capture", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestParseScanTime(t *testing.T) {
	saoPaulo := time.FixedZone("-03", -3*3600)

	t.Run("rfc3339 keeps its offset", func(t *testing.T) {
		ts, err := parseScanTime("2025-06-02T08:30:00-03:00", saoPaulo)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 6, 2, 11, 30, 0, 0, time.UTC), ts.UTC())
	})

	t.Run("naive timestamps use the scanner zone", func(t *testing.T) {
		for _, raw := range []string{"2025-06-02T08:30:00", "2025-06-02 08:30:00"} {
			ts, err := parseScanTime(raw, saoPaulo)
			require.NoError(t, err)
			assert.Equal(t, 8, ts.Hour())
			assert.Equal(t, saoPaulo, ts.Location())
		}
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := parseScanTime("02/06/2025 08:30", saoPaulo)
		assert.Error(t, err)
	})
}

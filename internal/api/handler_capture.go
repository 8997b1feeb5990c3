package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/guuisouza/smartlocker-backend-api/internal/model"
	"github.com/guuisouza/smartlocker-backend-api/internal/store"
)

type captureRequest struct {
	NfcTag   string `json:"nfc_tag" binding:"required"`
	Datetime string `json:"datetime" binding:"required"`
}

type scanEventResponse struct {
	ID         string    `json:"id"`
	NfcTag     string    `json:"nfc_tag"`
	CapturedAt time.Time `json:"captured_at"`
}

// scanTimeLayouts are the accepted datetime forms, tried in order. The
// layouts without an offset are interpreted in the configured local zone,
// which is where the scanners live.
var scanTimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseScanTime(raw string, loc *time.Location) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, nil
	}
	for _, layout := range scanTimeLayouts {
		if ts, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, errors.New("datetime must be an ISO-8601 timestamp")
}

// PostCapture handles POST /nfc-capture: it audits the raw scan and then
// resolves it into a checkout or a return. The audit row is written before
// resolution and survives any resolution failure.
func (h *Handler) PostCapture(c *gin.Context) {
	var req captureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.NfcTag) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nfc_tag must not be empty"})
		return
	}

	ts, err := parseScanTime(req.Datetime, h.loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	scan := model.ScanEvent{
		ID:         uuid.NewString(),
		NfcTag:     req.NfcTag,
		CapturedAt: ts,
	}
	if err := h.store.RecordScan(c.Request.Context(), &scan); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record scan event"})
		return
	}

	scanResponse := scanEventResponse{ID: scan.ID, NfcTag: scan.NfcTag, CapturedAt: scan.CapturedAt}

	result, err := h.resolver.Resolve(c.Request.Context(), req.NfcTag, ts)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, store.ErrNotebookNotFound),
			errors.Is(err, store.ErrCabinetNotFound),
			errors.Is(err, store.ErrScheduleNotFound):
			status = http.StatusNotFound
		case errors.Is(err, store.ErrScheduleOverlap),
			errors.Is(err, store.ErrMovementConflict):
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error(), "scan": scanResponse})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"scan":        scanResponse,
		"outcome":     result.Outcome,
		"movement_id": result.Movement.ID,
	})
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
)

// CheckScanNumber handles GET /api/scan/:number. The kiosk scanner calls this
// before offering the reservation form.
func (h *Handler) CheckScanNumber(c *gin.Context) {
	number := c.Param("number")

	state, err := h.store.Load(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"number":  number,
		"allowed": state.IsScanNumberAllowed(number),
	})
}

// GetConsoleQR handles GET /api/consoles/:id/qr, serving a PNG QR code the
// kiosk prints next to each console.
func (h *Handler) GetConsoleQR(c *gin.Context) {
	id := c.Param("id")

	state, err := h.store.Load(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if state.ConsoleByID(id) == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "console not found"})
		return
	}

	png, err := qrcode.Encode(id, qrcode.Medium, 256)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

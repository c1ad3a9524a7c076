package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"vendorbook/internal/core/id"
	"vendorbook/internal/domain/catalogs/vendor"
	"vendorbook/internal/domain/settlement"
	"vendorbook/internal/infrastructure/http/v1/dto"
)

// SessionHandler drives settlement sessions: morning selection and taken
// quantities, lock, evening returns, submission.
type SessionHandler struct {
	*BaseHandler
	service *settlement.Service
}

// NewSessionHandler creates a session handler.
func NewSessionHandler(base *BaseHandler, service *settlement.Service) *SessionHandler {
	return &SessionHandler{BaseHandler: base, service: service}
}

// Start handles POST /sessions.
func (h *SessionHandler) Start(c *gin.Context) {
	var req dto.StartSessionRequest
	if c.Request.ContentLength > 0 && !h.BindJSON(c, &req) {
		return
	}

	sess, err := h.service.Start(c.Request.Context(), req.Date)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromSession(sess))
}

// Get handles GET /sessions/:id.
func (h *SessionHandler) Get(c *gin.Context) {
	sessionID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	sess, err := h.service.Get(c.Request.Context(), sessionID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromSession(sess))
}

// SelectVendor handles POST /sessions/:id/vendors. A body with vendorId picks
// a registered vendor; otherwise the body registers a new one.
func (h *SessionHandler) SelectVendor(c *gin.Context) {
	ctx := c.Request.Context()

	sessionID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.SelectVendorRequest
	if !h.BindJSON(c, &req) {
		return
	}

	var (
		sess *settlement.Session
		err  error
	)
	if raw := strings.TrimSpace(req.VendorID); raw != "" {
		vendorID, parseErr := id.Parse(raw)
		if parseErr != nil {
			h.Error(c, errInvalidID("vendorId", raw))
			return
		}
		sess, err = h.service.SelectVendor(ctx, sessionID, vendorID)
	} else {
		sess, _, err = h.service.SelectAdHocVendor(ctx, sessionID, vendor.AdHocInput{
			Name:           req.Name,
			CommissionRate: req.CommissionRate,
			Email:          req.Email,
			Phone:          req.Phone,
		})
	}
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromSession(sess))
}

// DeselectVendor handles DELETE /sessions/:id/vendors/:vendorId.
func (h *SessionHandler) DeselectVendor(c *gin.Context) {
	sessionID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	vendorID, ok := h.ParseID(c, "vendorId")
	if !ok {
		return
	}

	sess, err := h.service.DeselectVendor(c.Request.Context(), sessionID, vendorID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromSession(sess))
}

// SetTaken handles PUT /sessions/:id/vendors/:vendorId/items/:itemId/taken.
func (h *SessionHandler) SetTaken(c *gin.Context) {
	sessionID, vendorID, itemID, qty, ok := h.lineRequest(c)
	if !ok {
		return
	}

	sess, err := h.service.SetQuantityTaken(c.Request.Context(), sessionID, vendorID, itemID, qty)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromSession(sess))
}

// Lock handles POST /sessions/:id/lock.
func (h *SessionHandler) Lock(c *gin.Context) {
	sessionID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	sess, err := h.service.Lock(c.Request.Context(), sessionID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromSession(sess))
}

// SetReturned handles PUT /sessions/:id/vendors/:vendorId/items/:itemId/returned.
func (h *SessionHandler) SetReturned(c *gin.Context) {
	sessionID, vendorID, itemID, qty, ok := h.lineRequest(c)
	if !ok {
		return
	}

	sess, err := h.service.SetQuantityReturned(c.Request.Context(), sessionID, vendorID, itemID, qty)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromSession(sess))
}

// Totals handles GET /sessions/:id/totals.
func (h *SessionHandler) Totals(c *gin.Context) {
	sessionID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	sess, err := h.service.Get(c.Request.Context(), sessionID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromSessionTotalsView(sess))
}

// Submit handles POST /sessions/:id/submit. Repeating the call for a session
// that was already submitted returns the same record.
func (h *SessionHandler) Submit(c *gin.Context) {
	sessionID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	rec, err := h.service.Submit(c.Request.Context(), sessionID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromRecord(rec))
}

func (h *SessionHandler) lineRequest(c *gin.Context) (sessionID, vendorID, itemID id.ID, qty int64, ok bool) {
	if sessionID, ok = h.ParseID(c, "id"); !ok {
		return
	}
	if vendorID, ok = h.ParseID(c, "vendorId"); !ok {
		return
	}
	if itemID, ok = h.ParseID(c, "itemId"); !ok {
		return
	}

	var req dto.QuantityRequest
	if ok = h.BindJSON(c, &req); !ok {
		return
	}
	return sessionID, vendorID, itemID, *req.Quantity, true
}

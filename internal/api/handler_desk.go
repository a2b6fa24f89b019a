package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hostel-backend/internal/model"
	"hostel-backend/internal/mw"
	"hostel-backend/internal/parse"
	"hostel-backend/internal/records"
)

type complaintUpdateRequest struct {
	Status   string  `json:"status"`
	Assignee *string `json:"assignee"`
}

// FileComplaint records a complaint from the signed-in resident.
func (h *Handler) FileComplaint(c *gin.Context) {
	var req records.ComplaintInput
	if !bindJSON(c, &req) {
		return
	}
	rec, err := h.records.Complaints.File(c.Request.Context(), mw.MustAccount(c), req)
	if err != nil {
		respondError(c, err, "Failed to create complaint")
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// UpdateComplaint changes a complaint's status and/or assignee.
func (h *Handler) UpdateComplaint(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req complaintUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	rec, err := h.records.Complaints.Update(c.Request.Context(), id, req.Status, req.Assignee, mw.MustAccount(c))
	if err != nil {
		respondError(c, err, "Failed to update complaint")
		return
	}
	c.JSON(http.StatusOK, rec)
}

type gatePassRequest struct {
	Reason string `json:"reason" binding:"required"`
	From   string `json:"from" binding:"required"`
	To     string `json:"to" binding:"required"`
	Notes  string `json:"notes"`
}

func (h *Handler) RequestGatePass(c *gin.Context) {
	var req gatePassRequest
	if !bindJSON(c, &req) {
		return
	}
	from, errFrom := parse.Time(req.From, h.loc)
	to, errTo := parse.Time(req.To, h.loc)
	if errFrom != nil || errTo != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "from and to must be dates or RFC3339 times"})
		return
	}
	rec, err := h.records.GatePasses.Request(c.Request.Context(), mw.MustAccount(c), records.GatePassInput{
		Reason: req.Reason, From: from, To: to, Notes: req.Notes,
	})
	if err != nil {
		respondError(c, err, "Failed to request gate pass")
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// GatePassQR renders an approved pass as a PNG.
func (h *Handler) GatePassQR(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	png, err := h.records.GatePasses.QR(c.Request.Context(), id, mw.MustAccount(c))
	if err != nil {
		respondError(c, err, "Failed to render gate pass")
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *Handler) RegisterVisitor(c *gin.Context) {
	var req records.VisitorInput
	if !bindJSON(c, &req) {
		return
	}
	rec, err := h.records.Visitors.Register(c.Request.Context(), mw.MustAccount(c), req)
	if err != nil {
		respondError(c, err, "Failed to register visitor")
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *Handler) LogPackage(c *gin.Context) {
	var req records.PackageInput
	if !bindJSON(c, &req) {
		return
	}
	rec, err := h.records.Packages.Log(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to log package")
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// SendContact accepts the public contact form; a signed-in sender is linked.
func (h *Handler) SendContact(c *gin.Context) {
	var req records.ContactInput
	if !bindJSON(c, &req) {
		return
	}
	var sender *model.Account
	if account, ok := mw.Account(c); ok {
		sender = &account
	}
	rec, err := h.records.Contacts.Send(c.Request.Context(), req, sender)
	if err != nil {
		respondError(c, err, "Failed to send message")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": rec.ID, "createdAt": rec.CreatedAt})
}

// ContactInbox pages through contact messages: ?page=&limit=&unread=true.
func (h *Handler) ContactInbox(c *gin.Context) {
	page, ok := queryInt(c, "page")
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	unread := strings.EqualFold(c.Query("unread"), "true") || c.Query("unread") == "1"
	result, err := h.records.Contacts.Inbox(c.Request.Context(), page, limit, unread)
	if err != nil {
		respondError(c, err, "Failed to fetch messages")
		return
	}
	c.JSON(http.StatusOK, result)
}

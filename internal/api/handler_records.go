package api

import (
	"context"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"hostel-backend/internal/mw"
	"hostel-backend/internal/parse"
	"hostel-backend/internal/records"
)

type lister[T any] interface {
	List(ctx context.Context, scopes ...records.Scope) ([]T, error)
}

type actor[T any] interface {
	Act(ctx context.Context, id uint, name string, in records.ActionInput) (*T, error)
}

type actionRequest struct {
	Note     string `json:"note"`
	Remarks  string `json:"remarks"`
	PickedBy string `json:"pickedBy"`
	Code     string `json:"code"`
}

func (r actionRequest) note() string {
	for _, s := range []string{r.Note, r.PickedBy, r.Remarks} {
		if s != "" {
			return s
		}
	}
	return ""
}

// listOwned lists the caller's records, newest first. column holds the
// owner's account id.
func listOwned[T any](l lister[T], column string) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := l.List(c.Request.Context(), records.Where(column+" = ?", mw.MustAccount(c).ID), records.Newest)
		if err != nil {
			respondError(c, err, "Failed to fetch records")
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// listAll lists every record newest first, filtered by ?status= when given.
func listAll[T any](l lister[T], scopes ...records.Scope) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := c.Query("status")
		all := append([]records.Scope{records.WhereIf(status != "", "status = ?", status)}, scopes...)
		items, err := l.List(c.Request.Context(), append(all, records.Newest)...)
		if err != nil {
			respondError(c, err, "Failed to fetch records")
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// act applies the action named by the :action path parameter, or the only
// allowed action when the route has no such parameter.
func act[T any](a actor[T], allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		name := c.Param("action")
		if name == "" && len(allowed) == 1 {
			name = allowed[0]
		}
		if !slices.Contains(allowed, name) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Unknown action"})
			return
		}
		var req actionRequest
		if !bindOptionalJSON(c, &req) {
			return
		}
		rec, err := a.Act(c.Request.Context(), id, name, records.ActionInput{
			Actor: mw.MustAccount(c),
			Note:  req.note(),
			Code:  req.Code,
		})
		if err != nil {
			respondError(c, err, "Failed to update record")
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}

// day resolves the ?date= query parameter to a day key, today by default.
func (h *Handler) day(c *gin.Context) (string, bool) {
	day, err := parse.Day(c.Query("date"), h.now(), h.loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return "", false
	}
	return day, true
}

package importer

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pevans/seminarfed/dialect"
	"github.com/pevans/seminarfed/seminars"
)

// ImportAPIServer exposes import runs over HTTP.
type ImportAPIServer struct {
	runner *Runner
}

// NewImportAPIServer creates a new import API server.
func NewImportAPIServer(runner *Runner) *ImportAPIServer {
	return &ImportAPIServer{runner: runner}
}

// RegisterRoutes adds the import route to router.
func (s *ImportAPIServer) RegisterRoutes(router gin.IRouter) {
	router.POST("/api/v1/seminars/:id/import", s.HandleImport)
}

// ImportRequest represents the optional body of POST
// /api/v1/seminars/:id/import. Without HTML the agenda is fetched from the
// seminar's source.
type ImportRequest struct {
	HTML    string `json:"html"`
	Dialect string `json:"dialect"`
}

// HandleImport handles POST /api/v1/seminars/:id/import. The response body
// is the run's Result in every case; the status tells why a run failed.
func (s *ImportAPIServer) HandleImport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "bad_request", "message": "Invalid seminar ID"},
		})
		return
	}

	var req ImportRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": gin.H{"code": "bad_request", "message": err.Error()},
			})
			return
		}
	}

	var result Result
	if req.HTML != "" {
		result = s.runner.ImportHTML(id, req.HTML, req.Dialect)
	} else {
		result = s.runner.ImportSource(c.Request.Context(), id, req.Dialect)
	}

	c.JSON(resultStatus(result), result)
}

func resultStatus(result Result) int {
	switch {
	case result.Success:
		return http.StatusOK
	case errors.Is(result.Err, seminars.ErrSeminarNotFound):
		return http.StatusNotFound
	case errors.Is(result.Err, dialect.ErrUnknownDialect),
		errors.Is(result.Err, ErrNoSourceURL):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

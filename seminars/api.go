package seminars

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DialectPolicy decides which dialect ids a seminar may use and which one
// it gets when none is given.
type DialectPolicy interface {
	Has(id string) bool
	Default() string
}

// SeminarAPIServer represents the HTTP API server for seminar management.
type SeminarAPIServer struct {
	store    *Store
	dialects DialectPolicy
}

// NewSeminarAPIServer creates a new seminar API server.
func NewSeminarAPIServer(store *Store, dialects DialectPolicy) *SeminarAPIServer {
	return &SeminarAPIServer{
		store:    store,
		dialects: dialects,
	}
}

// RegisterRoutes adds the seminar routes to router.
func (s *SeminarAPIServer) RegisterRoutes(router gin.IRouter) {
	api := router.Group("/api/v1")
	api.GET("/seminars", s.HandleListSeminars)
	api.GET("/seminars/:id", s.HandleGetSeminar)
	api.POST("/seminars", s.HandleCreateSeminar)
	api.PUT("/seminars/:id", s.HandleUpdateSeminar)
	api.DELETE("/seminars/:id", s.HandleDeleteSeminar)
	api.GET("/seminars/:id/agenda", s.HandleGetAgenda)
}

// ListSeminarsResponse represents the response for GET /api/v1/seminars.
type ListSeminarsResponse struct {
	Seminars []Seminar `json:"seminars"`
	Total    int       `json:"total"`
}

// CreateSeminarRequest represents the request for POST /api/v1/seminars.
type CreateSeminarRequest struct {
	Name       string `json:"name"`
	SourceURL  string `json:"source_url"`
	SourceType string `json:"source_type"`
	Dialect    string `json:"dialect"`
}

// UpdateSeminarRequest represents the request for PUT /api/v1/seminars/:id.
type UpdateSeminarRequest struct {
	Name       *string `json:"name"`
	SourceURL  *string `json:"source_url"`
	SourceType *string `json:"source_type"`
	Dialect    *string `json:"dialect"`
}

// AgendaResponse represents the response for GET
// /api/v1/seminars/:id/agenda.
type AgendaResponse struct {
	Seminar  *Seminar        `json:"seminar"`
	Sections []AgendaSection `json:"sections"`
}

var errUnknownDialect = errors.New("unknown dialect")

// errorResponse creates a standardized error response.
func errorResponse(code, message string) gin.H {
	return gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
}

// handleError maps domain errors to HTTP responses.
func (s *SeminarAPIServer) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrSeminarNotFound):
		c.JSON(http.StatusNotFound, errorResponse("not_found", err.Error()))
	case errors.Is(err, ErrEmptyName),
		errors.Is(err, ErrNameTooLong),
		errors.Is(err, ErrInvalidSourceType),
		errors.Is(err, errUnknownDialect):
		c.JSON(http.StatusBadRequest, errorResponse("validation_error", err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, errorResponse("internal_error", "Failed to process request"))
	}
}

// seminarID parses the :id path parameter, answering 400 when it is not a
// UUID.
func seminarID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("bad_request", "Invalid seminar ID"))
		return uuid.Nil, false
	}
	return id, true
}

// HandleListSeminars handles GET /api/v1/seminars.
func (s *SeminarAPIServer) HandleListSeminars(c *gin.Context) {
	seminars, err := s.store.ListSeminars()
	if err != nil {
		s.handleError(c, err)
		return
	}
	if seminars == nil {
		seminars = []Seminar{}
	}

	c.JSON(http.StatusOK, ListSeminarsResponse{
		Seminars: seminars,
		Total:    len(seminars),
	})
}

// HandleGetSeminar handles GET /api/v1/seminars/:id.
func (s *SeminarAPIServer) HandleGetSeminar(c *gin.Context) {
	id, ok := seminarID(c)
	if !ok {
		return
	}

	seminar, err := s.store.GetSeminar(id)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, seminar)
}

// HandleCreateSeminar handles POST /api/v1/seminars.
func (s *SeminarAPIServer) HandleCreateSeminar(c *gin.Context) {
	var req CreateSeminarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("bad_request", err.Error()))
		return
	}

	if req.Dialect == "" {
		req.Dialect = s.dialects.Default()
	}
	if !s.dialects.Has(req.Dialect) {
		s.handleError(c, errUnknownDialect)
		return
	}

	seminar, err := s.store.CreateSeminar(req.Name, req.SourceURL, req.SourceType, req.Dialect)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, seminar)
}

// HandleUpdateSeminar handles PUT /api/v1/seminars/:id.
func (s *SeminarAPIServer) HandleUpdateSeminar(c *gin.Context) {
	id, ok := seminarID(c)
	if !ok {
		return
	}

	var req UpdateSeminarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("bad_request", err.Error()))
		return
	}

	if req.Dialect != nil && !s.dialects.Has(*req.Dialect) {
		s.handleError(c, errUnknownDialect)
		return
	}

	update := SeminarUpdate{
		Name:       req.Name,
		SourceURL:  req.SourceURL,
		SourceType: req.SourceType,
		Dialect:    req.Dialect,
	}
	if err := s.store.UpdateSeminar(id, update); err != nil {
		s.handleError(c, err)
		return
	}

	seminar, err := s.store.GetSeminar(id)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, seminar)
}

// HandleDeleteSeminar handles DELETE /api/v1/seminars/:id.
func (s *SeminarAPIServer) HandleDeleteSeminar(c *gin.Context) {
	id, ok := seminarID(c)
	if !ok {
		return
	}

	if err := s.store.DeleteSeminar(id); err != nil {
		s.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// HandleGetAgenda handles GET /api/v1/seminars/:id/agenda.
func (s *SeminarAPIServer) HandleGetAgenda(c *gin.Context) {
	id, ok := seminarID(c)
	if !ok {
		return
	}

	seminar, err := s.store.GetSeminar(id)
	if err != nil {
		s.handleError(c, err)
		return
	}

	agenda, err := s.store.Agenda(id)
	if err != nil {
		s.handleError(c, err)
		return
	}
	if agenda == nil {
		agenda = []AgendaSection{}
	}

	c.JSON(http.StatusOK, AgendaResponse{
		Seminar:  seminar,
		Sections: agenda,
	})
}

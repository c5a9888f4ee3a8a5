package medical

import (
	"net/http"
	"strconv"

	httperr "github.com/aevon-lab/project-vitals/internal/core/errors"
	"github.com/aevon-lab/project-vitals/internal/paging"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the medical resource read routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/medical-resources", s.HandleRead)
}

// HandleRead handles GET /v1/medical-resources
// Query parameters: resource_type, data_source_id (repeated), page_size, page_token.
// A page_token continues a read and cannot be combined with a filter.
func (s *Service) HandleRead(c *gin.Context) {
	var query struct {
		ResourceType  string   `form:"resource_type"`
		DataSourceIDs []string `form:"data_source_id"`
		PageSize      string   `form:"page_size"`
		PageToken     string   `form:"page_token"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidJsonError,
			Message:   "Invalid query parameters",
			Details:   err.Error(),
		})
		return
	}

	pageSize := 0
	if query.PageSize != "" {
		n, err := strconv.Atoi(query.PageSize)
		if err != nil {
			writeError(c, httperr.Validationf("page_size", "not a number: %q", query.PageSize))
			return
		}
		pageSize = n
	}

	if query.PageToken != "" {
		if query.ResourceType != "" || len(query.DataSourceIDs) > 0 {
			writeError(c, httperr.Validationf("page_token", "cannot be combined with resource_type or data_source_id"))
			return
		}
		resp, err := s.ReadPage(c.Request.Context(), ReadPageRequest{PageToken: query.PageToken, PageSize: pageSize})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	if query.ResourceType == "" {
		writeError(c, httperr.Validationf("resource_type", "required without page_token"))
		return
	}
	resourceType, err := paging.ParseMedicalResourceType(query.ResourceType)
	if err != nil {
		writeError(c, err)
		return
	}
	filter, err := paging.NewReadFilter(resourceType, query.DataSourceIDs)
	if err != nil {
		writeError(c, err)
		return
	}

	resp, err := s.ReadInitial(c.Request.Context(), ReadInitialRequest{Filter: filter, PageSize: pageSize})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func writeError(c *gin.Context, err error) {
	status, errType := httperr.HTTPStatus(err)
	message := "Failed to read medical resources"
	if status == http.StatusBadRequest {
		message = "Invalid medical resource read"
	}
	c.JSON(status, httperr.ErrorResponse{
		ErrorType: errType,
		Message:   message,
		Details:   err.Error(),
	})
}

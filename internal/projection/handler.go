package projection

import (
	"net/http"

	httperr "github.com/aevon-lab/project-vitals/internal/core/errors"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all projection API routes on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/aggregate", s.HandleAggregate)
	r.GET("/v1/aggregation-types", s.HandleAggregationTypes)
}

// HandleAggregate handles POST /v1/aggregate
func (s *Service) HandleAggregate(c *gin.Context) {
	var req AggregateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidJsonError,
			Message:   "Invalid request body",
			Details:   err.Error(),
		})
		return
	}

	resp, err := s.Aggregate(c.Request.Context(), req)
	if err != nil {
		status, errType := httperr.HTTPStatus(err)
		message := "Failed to aggregate records"
		switch status {
		case http.StatusBadRequest:
			message = "Invalid aggregate request"
		case http.StatusNotFound:
			message = "Unknown aggregation"
		}
		c.JSON(status, httperr.ErrorResponse{
			ErrorType: errType,
			Message:   message,
			Details:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HandleAggregationTypes handles GET /v1/aggregation-types
func (s *Service) HandleAggregationTypes(c *gin.Context) {
	c.JSON(http.StatusOK, s.AggregationTypes())
}

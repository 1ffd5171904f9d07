package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/kcluster/internal/analytics"
	"github.com/soltixdb/kcluster/internal/logging"
	"github.com/soltixdb/kcluster/internal/models"
	"github.com/soltixdb/kcluster/internal/services"
)

// Run returns a handler that executes op on the JSON request body
// POST /v1/cluster/*, /v1/breaks, /v1/adjacency/*
func (h *Handler) Run(op string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body models.ClusterRequest
		if err := c.BodyParser(&body); err != nil {
			h.logger.Debug("Invalid request body", "op", op, "path", c.Path(), "error", err)
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
				Error: models.ErrorDetail{
					Code:    "INVALID_JSON",
					Message: "Failed to parse JSON body",
					Details: map[string]interface{}{"error": err.Error()},
				},
			})
		}

		req, err := toServiceRequest(&body)
		if err != nil {
			return h.writeError(c, err)
		}

		result, err := h.clusterService.Execute(c.UserContext(), op, req)
		if err != nil {
			return h.writeError(c, err)
		}

		return c.JSON(result)
	}
}

// Seeders lists the registered seeding strategies
// GET /v1/cluster/seeders
func (h *Handler) Seeders(c *fiber.Ctx) error {
	return c.JSON(models.SeedersResponse{Seeders: h.clusterService.Seeders()})
}

// toServiceRequest copies the body into a service request, parsing points
func toServiceRequest(body *models.ClusterRequest) (*services.ClusterRequest, error) {
	req := &services.ClusterRequest{
		K:         body.K,
		Seeds:     body.Seeds,
		Updates:   body.Updates,
		Rank:      body.Rank,
		MinCount:  body.MinCount,
		Target:    body.Target,
		Middle:    body.Middle,
		Perc:      body.Perc,
		SDevs:     body.SDevs,
		Num:       body.Num,
		Threshold: body.Threshold,
		Seed:      body.Seed,
		Seeder:    body.Seeder,
	}

	if body.Values != nil {
		req.Values = body.Values
		return req, nil
	}

	points := make(analytics.TimeSeriesData, 0, len(body.Points))
	for i, p := range body.Points {
		if p.Value == nil {
			return nil, services.NewServiceErrorWithDetails(services.CodeInvalidInput,
				"point value is null", map[string]interface{}{"index": i})
		}
		t, err := time.Parse(time.RFC3339, p.Time)
		if err != nil {
			return nil, services.NewServiceErrorWithDetails(services.CodeInvalidInput,
				"point time must be in RFC3339 format", map[string]interface{}{"index": i, "time": p.Time})
		}
		points = append(points, analytics.TimeSeriesPoint{Time: t, Value: *p.Value})
	}
	req.Points = points

	return req, nil
}

// writeError renders a service error with the matching status code
func (h *Handler) writeError(c *fiber.Ctx, err error) error {
	var svcErr *services.ServiceError
	if !errors.As(err, &svcErr) {
		svcErr = services.NewServiceError(services.CodeInternalError, err.Error())
	}

	status := fiber.StatusBadRequest
	switch svcErr.Code {
	case services.CodeTooManyPoints:
		status = fiber.StatusRequestEntityTooLarge
	case services.CodeUnknownOperation:
		status = fiber.StatusNotFound
	case services.CodeInternalError:
		status = fiber.StatusInternalServerError
	}

	ctx := c.UserContext()
	log := logging.FromContext(ctx).WithContext(ctx)
	if svcErr.IsClientError() {
		log.Debug("Clustering request rejected", "path", c.Path(), "code", svcErr.Code)
	} else {
		log.Error("Clustering failed", "path", c.Path(), "error", err)
	}

	return c.Status(status).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    svcErr.Code,
			Message: svcErr.Message,
			Path:    c.Path(),
			Details: svcErr.Details,
		},
	})
}

package web

import (
	"bytes"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pet2cattle/aws-dashboard/pkg/data"
)

const renderIDHeader = "X-Render-Id"

// page is the data contract handed to the template and the JSON endpoint
type page struct {
	RenderID         string                   `json:"renderId"`
	Region           string                   `json:"region"`
	CredentialSource string                   `json:"credentialSource"`
	Resources        data.AggregateResult     `json:"resources"`
	Orchestration    data.OrchestrationStatus `json:"orchestration"`
}

// collect builds a fresh page; nothing is reused between requests
func (s *Server) collect(c *fiber.Ctx) (*page, error) {
	renderID := uuid.NewString()
	c.Set(renderIDHeader, renderID)

	ctx := c.UserContext()
	status := s.status.Status(ctx)

	resources, err := s.aggregator.Aggregate(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("page collected",
		"render_id", renderID,
		"demo", resources.DemoMode,
		"instances", len(resources.Instances),
		"pods", status.PodCount,
	)

	return &page{
		RenderID:         renderID,
		Region:           s.config.Region,
		CredentialSource: s.config.CredentialSource,
		Resources:        resources,
		Orchestration:    status,
	}, nil
}

func (s *Server) handleDashboard(c *fiber.Ctx) error {
	p, err := s.collect(c)
	if err != nil {
		return err
	}

	// Render the whole page before writing anything to the response
	var buf bytes.Buffer
	if err := s.page.Execute(&buf, p); err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(buf.Bytes())
}

func (s *Server) handleResources(c *fiber.Ctx) error {
	p, err := s.collect(c)
	if err != nil {
		return err
	}
	return c.JSON(p)
}

package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	parser "github.com/pulso-odonto/go-br-patient-parser"
	"github.com/pulso-odonto/go-br-patient-parser/internal/outreach"
)

const (
	msgWriteFirst      = "Escreva uma mensagem primeiro."
	msgSelectAndWrite  = "Selecione pelo menos um paciente e escreva uma mensagem."
	msgUnknownTemplate = "Mensagem pronta não encontrada"
)

// linksRequest message text, or a template id when the text is empty
type linksRequest struct {
	Message    string `json:"message"`
	TemplateID string `json:"template_id"`
}

type linksResponse struct {
	Links []outreach.Link `json:"links"`
	Total int             `json:"total"`
}

func (h *Handler) ListTemplates(c echo.Context) error {
	return c.JSON(http.StatusOK, h.templates)
}

// BuildLinks wa.me links for the selected patients, ghosts excluded
func (h *Handler) BuildLinks(c echo.Context) error {
	var req linksRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Corpo da requisição inválido")
	}

	msg, err := h.resolveMessage(req.Message, req.TemplateID)
	if err != nil {
		return err
	}

	var recipients []parser.PatientRecord
	for _, p := range h.roster.Selected() {
		if !h.roster.IsGhost(p.ID) {
			recipients = append(recipients, p)
		}
	}

	links, err := outreach.BuildLinks(recipients, msg)
	switch {
	case errors.Is(err, outreach.ErrEmptyMessage), errors.Is(err, outreach.ErrNoRecipients):
		return echo.NewHTTPError(http.StatusBadRequest, msgSelectAndWrite)
	case err != nil:
		return err
	}

	h.logger.Info().Int("recipients", len(links)).Msg("whatsapp links built")
	return c.JSON(http.StatusOK, linksResponse{Links: links, Total: len(links)})
}

// PatientLink single wa.me link, ?message= or ?template_id=
func (h *Handler) PatientLink(c echo.Context) error {
	p, err := h.roster.Get(c.Param("id"))
	if err != nil {
		return rosterError(err)
	}

	msg, err := h.resolveMessage(c.QueryParam("message"), c.QueryParam("template_id"))
	if err != nil {
		return err
	}
	if strings.TrimSpace(msg) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, msgWriteFirst)
	}

	return c.JSON(http.StatusOK, outreach.Link{
		PatientID: p.ID,
		Name:      p.Name,
		Phone:     p.Phone,
		URL:       outreach.WhatsAppURL(p.Phone, msg),
	})
}

func (h *Handler) resolveMessage(msg, templateID string) (string, error) {
	if strings.TrimSpace(msg) != "" || templateID == "" {
		return msg, nil
	}
	t, ok := outreach.FindTemplate(h.templates, templateID)
	if !ok {
		return "", echo.NewHTTPError(http.StatusNotFound, msgUnknownTemplate)
	}
	return t.Message, nil
}

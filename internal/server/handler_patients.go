package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	parser "github.com/pulso-odonto/go-br-patient-parser"
	"github.com/pulso-odonto/go-br-patient-parser/internal/roster"
)

// patientView patient plus dashboard marks
type patientView struct {
	parser.PatientRecord
	Selected bool `json:"selected"`
	Ghost    bool `json:"ghost"`
}

type patientList struct {
	Patients []patientView `json:"patients"`
	Total    int           `json:"total"`
}

// ListPatients filters by ?search, ?min_age and ?max_age
func (h *Handler) ListPatients(c echo.Context) error {
	q, err := h.queryFromRequest(c)
	if err != nil {
		return err
	}

	matched := h.roster.Filter(q)
	views := make([]patientView, 0, len(matched))
	for _, p := range matched {
		views = append(views, patientView{
			PatientRecord: p,
			Selected:      h.roster.IsSelected(p.ID),
			Ghost:         h.roster.IsGhost(p.ID),
		})
	}

	return c.JSON(http.StatusOK, patientList{Patients: views, Total: len(views)})
}

func (h *Handler) ToggleSelection(c echo.Context) error {
	selected, err := h.roster.Toggle(c.Param("id"))
	if err != nil {
		return rosterError(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"selected": selected})
}

func (h *Handler) ToggleGhost(c echo.Context) error {
	ghost, err := h.roster.ToggleGhost(c.Param("id"))
	if err != nil {
		return rosterError(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"ghost": ghost})
}

// SelectAll selects every patient matching the current filter
func (h *Handler) SelectAll(c echo.Context) error {
	q, err := h.queryFromRequest(c)
	if err != nil {
		return err
	}

	matched := h.roster.Filter(q)
	ids := make([]string, 0, len(matched))
	for _, p := range matched {
		ids = append(ids, p.ID)
	}

	return c.JSON(http.StatusOK, map[string]int{"selected": h.roster.SelectAll(ids)})
}

func (h *Handler) ClearSelection(c echo.Context) error {
	h.roster.ClearSelection()
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Stats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.roster.Stats())
}

// queryFromRequest falls back to the configured age range for absent params
func (h *Handler) queryFromRequest(c echo.Context) (roster.Query, error) {
	q := h.defaultQuery
	q.Search = c.QueryParam("search")

	var err error
	if q.MinAge, err = intParam(c, "min_age", q.MinAge); err != nil {
		return q, err
	}
	if q.MaxAge, err = intParam(c, "max_age", q.MaxAge); err != nil {
		return q, err
	}
	return q, nil
}

func intParam(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "parâmetro inválido: "+name)
	}
	return n, nil
}

func rosterError(err error) error {
	if errors.Is(err, roster.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Paciente não encontrado")
	}
	return err
}

package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	parser "github.com/pulso-odonto/go-br-patient-parser"
)

// importRequest pasted content; Format empty means auto detection
type importRequest struct {
	Content string `json:"content"`
	Format  string `json:"format"`
}

type importResponse struct {
	*parser.ImportResult
	Message    string `json:"message,omitempty"`
	RosterSize int    `json:"roster_size"`
}

var ptBR = message.NewPrinter(language.BrazilianPortuguese)

// PreviewImport parses without touching the roster
func (h *Handler) PreviewImport(c echo.Context) error {
	result, err := h.parseRequest(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, importResponse{
		ImportResult: result,
		Message:      ptBR.Sprintf("%d pacientes", result.Imported),
		RosterSize:   h.roster.Len(),
	})
}

// Import parses, appends the batch to the roster and clears the selection
func (h *Handler) Import(c echo.Context) error {
	result, err := h.parseRequest(c)
	if err != nil {
		return err
	}

	size := h.roster.Append(result.Patients)
	h.logger.Info().
		Str("source_format", string(result.SourceFormat)).
		Int("imported", result.Imported).
		Int("roster_size", size).
		Msg("patients imported")

	return c.JSON(http.StatusOK, importResponse{
		ImportResult: result,
		Message:      ptBR.Sprintf("%d paciente(s) importado(s) com sucesso.", result.Imported),
		RosterSize:   size,
	})
}

// parseRequest accepts a multipart "file" upload or a JSON/text body.
// An empty result is reported as 422.
func (h *Handler) parseRequest(c echo.Context) (*parser.ImportResult, error) {
	var (
		result *parser.ImportResult
		err    error
	)

	ctype := c.Request().Header.Get(echo.HeaderContentType)
	switch {
	case strings.HasPrefix(ctype, echo.MIMEMultipartForm):
		result, err = h.parseUpload(c)
	case strings.HasPrefix(ctype, echo.MIMETextPlain):
		body, rerr := io.ReadAll(c.Request().Body)
		if rerr != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "Erro ao ler dados")
		}
		result, err = h.parser.ParseContent(string(body))
	default:
		var req importRequest
		if berr := c.Bind(&req); berr != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "Corpo da requisição inválido")
		}
		format, ok := parser.ParseFormat(req.Format)
		if !ok {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "Formato não suportado: "+req.Format)
		}
		result, err = h.parser.ParseByFormat(req.Content, format)
	}

	if err != nil {
		h.logger.Debug().Err(err).Msg("import parse failed")
		if errors.Is(err, parser.ErrMalformedJSON) {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "JSON inválido: "+err.Error())
		}
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Erro ao processar dados: "+err.Error())
	}

	h.logger.Debug().
		Str("source_format", string(result.SourceFormat)).
		Int("total", result.Total).
		Int("skipped", result.Skipped).
		Msg("import parsed")

	if len(result.Patients) == 0 {
		return nil, echo.NewHTTPError(http.StatusUnprocessableEntity, parser.MsgNoPatients)
	}
	return result, nil
}

func (h *Handler) parseUpload(c echo.Context) (*parser.ImportResult, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Nenhum arquivo enviado")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Erro ao processar arquivo")
	}
	defer f.Close()

	h.logger.Debug().Str("filename", fh.Filename).Int64("size", fh.Size).Msg("import upload")
	return h.parser.ParseFile(f, fh.Filename)
}

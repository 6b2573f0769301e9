package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/storefront/storefront-api/pkg/logger"
)

// Exporter writes a synthetic item export in several formats.
type Exporter interface {
	WriteCSV(ctx context.Context, w io.Writer) error
	WriteText(ctx context.Context, w io.Writer) error
	WriteJSON(ctx context.Context, w io.Writer) error
}

// StreamHandler streams exports to the client as attachments.
type StreamHandler struct {
	exporter Exporter
	log      zerolog.Logger
}

func NewStreamHandler(exporter Exporter, log zerolog.Logger) *StreamHandler {
	return &StreamHandler{exporter: exporter, log: log}
}

// CSV handles GET /api/v2/stream/items.csv.
//
// @Summary      Stream a CSV export
// @Tags         stream
// @Produce      text/csv
// @Success      200  {file}  file
// @Router       /api/v2/stream/items.csv [get]
func (h *StreamHandler) CSV(c echo.Context) error {
	return h.stream(c, "text/csv; charset=utf-8", "items.csv", h.exporter.WriteCSV)
}

// Text handles GET /api/v2/stream/items.txt.
//
// @Summary      Stream a plain-text export
// @Tags         stream
// @Produce      plain
// @Success      200  {file}  file
// @Router       /api/v2/stream/items.txt [get]
func (h *StreamHandler) Text(c echo.Context) error {
	return h.stream(c, echo.MIMETextPlainCharsetUTF8, "items.txt", h.exporter.WriteText)
}

// JSON handles GET /api/v2/stream/items.json.
//
// @Summary      Stream a JSON export
// @Tags         stream
// @Produce      json
// @Success      200  {file}  file
// @Router       /api/v2/stream/items.json [get]
func (h *StreamHandler) JSON(c echo.Context) error {
	return h.stream(c, echo.MIMEApplicationJSON, "items.json", h.exporter.WriteJSON)
}

// stream commits the headers and hands the response writer to write. Once
// the first byte is out an error can only be logged; a client disconnect
// surfaces here as a cancelled context.
func (h *StreamHandler) stream(c echo.Context, contentType, filename string, write func(context.Context, io.Writer) error) error {
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, contentType)
	res.Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	res.WriteHeader(http.StatusOK)

	ctx := c.Request().Context()
	if err := write(ctx, res); err != nil {
		log := logger.FromContext(ctx, h.log)
		if ctx.Err() != nil {
			log.Debug().Str("file", filename).Msg("export aborted by client")
			return nil
		}
		log.Error().Err(err).Str("file", filename).Msg("export failed mid-stream")
	}
	return nil
}

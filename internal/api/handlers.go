package api

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"owidtrends/internal/chart"
	"owidtrends/internal/config"
	"owidtrends/internal/engine"
	"owidtrends/internal/models"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	mu     sync.RWMutex
	index  *engine.Index
	groups config.Groups
}

func NewHandler(index *engine.Index, groups config.Groups) *Handler {
	return &Handler{index: index, groups: groups}
}

// SetData publishes a freshly loaded index.
func (h *Handler) SetData(index *engine.Index) {
	h.mu.Lock()
	h.index = index
	h.mu.Unlock()
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")
	api.GET("/countries", h.GetCountries)
	api.GET("/groups", h.GetGroups)
	api.GET("/fields", h.GetFields)
	api.GET("/value", h.GetValue)
	api.GET("/series", h.GetSeries)
	api.GET("/chart", h.GetChart)
}

// getPaginationParams reads ?limit= and ?offset=, falling back to defaultLimit and 0.
func getPaginationParams(c echo.Context, defaultLimit int) (int, int) {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

// data returns the current index, or 503 while the background load runs.
func (h *Handler) data() (*engine.Index, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.index == nil {
		return nil, echo.NewHTTPError(http.StatusServiceUnavailable, "dataset is still loading")
	}
	return h.index, nil
}

// scoped restricts the index to ?group= when given.
func (h *Handler) scoped(c echo.Context) (*engine.Index, error) {
	idx, err := h.data()
	if err != nil {
		return nil, err
	}
	name := c.QueryParam("group")
	if name == "" {
		return idx, nil
	}
	members, err := h.groups.Lookup(name)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return engine.FilterSubset(idx, members), nil
}

func toHTTPError(err error) error {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		return he
	case engine.IsNotFound(err):
		return echo.NewHTTPError(http.StatusNotFound, err.Error()).SetInternal(err)
	case errors.Is(err, engine.ErrInvalidRange), errors.Is(err, engine.ErrInvalidDate), errors.Is(err, chart.ErrNoSeries):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	case errors.Is(err, engine.ErrNotNumeric):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error()).SetInternal(err)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error()).SetInternal(err)
	}
}

// --- HANDLERS ---

func (h *Handler) GetCountries(c echo.Context) error {
	idx, err := h.scoped(c)
	if err != nil {
		return toHTTPError(err)
	}
	countries := idx.Countries()
	total := len(countries)
	limit, offset := getPaginationParams(c, total)

	if offset >= total {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"data": []string{}, "total": total, "limit": limit, "offset": offset,
		})
	}

	end := offset + limit
	if end > total {
		end = total
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":   countries[offset:end],
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *Handler) GetGroups(c echo.Context) error {
	out := make([]models.GroupItem, 0, len(h.groups))
	for _, name := range h.groups.Names() {
		out = append(out, models.GroupItem{Name: name, Countries: h.groups[name]})
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) GetFields(c echo.Context) error {
	idx, err := h.data()
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, idx.Fields())
}

func (h *Handler) GetValue(c echo.Context) error {
	idx, err := h.scoped(c)
	if err != nil {
		return toHTTPError(err)
	}
	country, date, field := c.QueryParam("country"), c.QueryParam("date"), c.QueryParam("field")
	if country == "" || date == "" || field == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "country, date and field are required")
	}

	v, err := engine.GetValue(idx, country, date, field)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, models.ValueResponse{
		Country: country,
		Date:    date,
		Field:   field,
		Value:   v,
		Message: engine.Describe(field, country, date, v),
	})
}

// seriesQuery extracts one series per (country, field) pair, country-major.
func (h *Handler) seriesQuery(c echo.Context) ([]models.Series, error) {
	idx, err := h.scoped(c)
	if err != nil {
		return nil, err
	}
	params := c.QueryParams()
	countries := params["country"]
	fields := params["field"]
	start, end := c.QueryParam("start"), c.QueryParam("end")

	if len(countries) == 0 && c.QueryParam("group") != "" {
		countries = idx.Countries()
	}
	if len(countries) == 0 || len(fields) == 0 || start == "" || end == "" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "country, field, start and end are required")
	}

	return engine.ExtractGrid(idx, countries, fields, start, end)
}

func (h *Handler) GetSeries(c echo.Context) error {
	series, err := h.seriesQuery(c)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, series)
}

func (h *Handler) GetChart(c echo.Context) error {
	series, err := h.seriesQuery(c)
	if err != nil {
		return toHTTPError(err)
	}
	p, err := chart.Build(series)
	if err != nil {
		return toHTTPError(err)
	}

	var buf bytes.Buffer
	if err := chart.WritePNG(p, &buf); err != nil {
		return toHTTPError(err)
	}
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

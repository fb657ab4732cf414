package web

import (
	"encoding/csv"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/labstack/echo/v4"

	cmdreport "waste-stats/command/report"
	ccsv "waste-stats/connectors/csv"
	"waste-stats/connectors/xlsx"
	"waste-stats/domain/dashboard"
	"waste-stats/domain/report"
	"waste-stats/domain/waste"
)

// Server holds what the API handlers need.
type Server struct {
	Store    *dashboard.Store
	Events   *dashboard.Events
	View     *dashboard.View
	Pipeline *report.Pipeline
	Importer *xlsx.Importer
	DataDir  string

	generating  atomic.Bool
	dialogOpen  atomic.Bool
	unsubscribe []func()
}

// ReportState mirrors the report topics for clients polling /api/status.
type ReportState struct {
	Generating bool `json:"generating"`
	DialogOpen bool `json:"dialogOpen"`
}

func (s *Server) ReportState() ReportState {
	return ReportState{Generating: s.generating.Load(), DialogOpen: s.dialogOpen.Load()}
}

// Close detaches the server from the event topics.
func (s *Server) Close() {
	for _, u := range s.unsubscribe {
		u()
	}
	s.unsubscribe = nil
}

// calculatedCSVs are the files of the calculate command served under /api/csv.
var calculatedCSVs = map[string]string{
	"summary":   ccsv.SummaryFile,
	"breakdown": ccsv.BreakdownFile,
	"overview":  ccsv.OverviewFile,
}

// Register subscribes to the report topics and mounts the API routes.
func (s *Server) Register(e *echo.Echo) {
	s.unsubscribe = append(s.unsubscribe,
		s.Events.ReportGenerating.Subscribe(s.generating.Store),
		s.Events.ReportDialogToggle.Subscribe(s.dialogOpen.Store),
	)

	api := e.Group("/api")
	api.GET("/records", s.records)
	api.GET("/summary", s.summary)
	api.GET("/breakdown/:material", s.breakdown)
	api.GET("/categories", s.categories)
	api.GET("/overview", s.overview)
	api.GET("/methane", s.methane)
	api.GET("/table", s.table)
	api.GET("/status", s.status)
	api.GET("/csv/:name", s.calculated)
	api.POST("/refresh", s.refresh)
	api.POST("/import", s.importWorkbook)
	api.POST("/selection/period", s.selectPeriod)
	api.POST("/selection/range", s.selectRange)
	api.POST("/report", s.report)
	api.POST("/report/dialog", s.reportDialog)
}

func apiError(c echo.Context, code int, err error, message string) error {
	return c.JSON(code, map[string]any{
		"error":   err.Error(),
		"message": message,
	})
}

// filtered applies ?period= or ?from=&to= when given, otherwise the
// current selection of the view.
func (s *Server) filtered(c echo.Context) ([]waste.Record, error) {
	period, from, to := c.QueryParam("period"), c.QueryParam("from"), c.QueryParam("to")
	if period == "" && from == "" && to == "" {
		return s.View.Records(), nil
	}
	req, err := cmdreport.ParseRequest(period, from, to)
	if err != nil {
		return nil, err
	}
	all := s.Store.Records()
	if req.Range != nil {
		return waste.FilterByDateRange(all, req.Range.Start, req.Range.End), nil
	}
	return waste.FilterByPeriod(all, req.Period), nil
}

func (s *Server) records(c echo.Context) error {
	records, err := s.filtered(c)
	if err != nil {
		return apiError(c, http.StatusBadRequest, err, "invalid filter")
	}
	return c.JSON(http.StatusOK, records)
}

func (s *Server) summary(c echo.Context) error {
	records, err := s.filtered(c)
	if err != nil {
		return apiError(c, http.StatusBadRequest, err, "invalid filter")
	}
	return c.JSON(http.StatusOK, waste.Summarize(records))
}

func (s *Server) breakdown(c echo.Context) error {
	m, err := waste.ParseMaterial(c.Param("material"))
	if err != nil {
		return apiError(c, http.StatusNotFound, err, "unknown material")
	}
	records, err := s.filtered(c)
	if err != nil {
		return apiError(c, http.StatusBadRequest, err, "invalid filter")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"material": m,
		"label":    m.Label(),
		"slices":   waste.Breakdown(records, m),
	})
}

func (s *Server) categories(c echo.Context) error {
	records, err := s.filtered(c)
	if err != nil {
		return apiError(c, http.StatusBadRequest, err, "invalid filter")
	}
	return c.JSON(http.StatusOK, waste.CategoryTotals(records))
}

func (s *Server) overview(c echo.Context) error {
	records, err := s.filtered(c)
	if err != nil {
		return apiError(c, http.StatusBadRequest, err, "invalid filter")
	}
	return c.JSON(http.StatusOK, waste.Overview(records))
}

// methane buckets the filtered records by ?granularity=, defaulting to
// the period of the current selection (day for custom ranges).
func (s *Server) methane(c echo.Context) error {
	granularity := c.QueryParam("granularity")
	if granularity == "" {
		granularity = c.QueryParam("period")
	}
	var p waste.Period
	if granularity != "" {
		var err error
		if p, err = waste.ParsePeriod(granularity); err != nil {
			return apiError(c, http.StatusBadRequest, err, "unknown granularity")
		}
	} else if sel := s.View.Selection(); sel.Custom {
		p = waste.PeriodDay
	} else {
		p = sel.Period
	}
	records, err := s.filtered(c)
	if err != nil {
		return apiError(c, http.StatusBadRequest, err, "invalid filter")
	}
	return c.JSON(http.StatusOK, waste.MethaneTrend(records, p))
}

func (s *Server) table(c echo.Context) error {
	var q waste.TableQuery
	err := echo.QueryParamsBinder(c).
		String("search", &q.Search).
		String("sort", &q.SortKey).
		Bool("desc", &q.Desc).
		Int("page", &q.Page).
		Int("pageSize", &q.PageSize).
		BindError()
	if err != nil {
		return apiError(c, http.StatusBadRequest, err, "invalid table query")
	}
	records, err := s.filtered(c)
	if err != nil {
		return apiError(c, http.StatusBadRequest, err, "invalid filter")
	}
	page, err := waste.Table(records, q)
	if err != nil {
		return apiError(c, http.StatusBadRequest, err, "invalid table query")
	}
	return c.JSON(http.StatusOK, page)
}

func (s *Server) status(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"data":          s.Store.Status(),
		"selection":     s.View.Selection(),
		"reportRunning": s.Pipeline.Running(),
		"report":        s.ReportState(),
	})
}

// calculated serves a CSV written by the calculate command as JSON objects.
func (s *Server) calculated(c echo.Context) error {
	name, ok := calculatedCSVs[c.Param("name")]
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	path := filepath.Join(s.DataDir, name)
	rows, err := readCSV(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c.JSON(http.StatusNotFound, map[string]any{
				"error":   "file not found",
				"path":    path,
				"message": "CSV file is missing, run calculate",
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]any{
			"error":   err.Error(),
			"path":    path,
			"message": "failed to read CSV",
		})
	}
	return c.JSON(http.StatusOK, rows)
}

func (s *Server) refresh(c echo.Context) error {
	err := s.Store.Refresh(c.Request().Context())
	switch {
	case errors.Is(err, dashboard.ErrRefreshRunning):
		return apiError(c, http.StatusConflict, err, "a refresh is already running")
	case err != nil:
		return c.JSON(http.StatusBadGateway, map[string]any{
			"error":   err.Error(),
			"message": "sheet could not be loaded, keeping the current dataset",
			"data":    s.Store.Status(),
		})
	}
	return c.JSON(http.StatusOK, s.Store.Status())
}

func (s *Server) importWorkbook(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return apiError(c, http.StatusBadRequest, err, "expected a multipart field named file")
	}
	f, err := fh.Open()
	if err != nil {
		return apiError(c, http.StatusBadRequest, err, "unreadable upload")
	}
	defer f.Close()

	records, err := s.Importer.Read(f)
	if err != nil {
		return apiError(c, http.StatusUnprocessableEntity, err, "workbook could not be imported")
	}
	if len(records) == 0 {
		return apiError(c, http.StatusUnprocessableEntity, dashboard.ErrNoRows, "workbook has no usable rows")
	}
	s.Store.Replace(records, "upload:"+fh.Filename)
	return c.JSON(http.StatusOK, s.Store.Status())
}

func (s *Server) selectPeriod(c echo.Context) error {
	var body struct {
		Period string `json:"period"`
	}
	if err := c.Bind(&body); err != nil {
		return err
	}
	p, err := waste.ParsePeriod(body.Period)
	if err != nil {
		return apiError(c, http.StatusBadRequest, err, "unknown period")
	}
	s.Events.PeriodSelected.Publish(p)
	return c.JSON(http.StatusOK, s.View.Selection())
}

func (s *Server) selectRange(c echo.Context) error {
	var body struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}
	if err := c.Bind(&body); err != nil {
		return err
	}
	req, err := cmdreport.ParseRequest("", body.Start, body.End)
	if err != nil {
		return apiError(c, http.StatusBadRequest, err, "invalid range")
	}
	s.Events.DateRangeSelected.Publish(*req.Range)
	return c.JSON(http.StatusOK, s.View.Selection())
}

func (s *Server) reportDialog(c echo.Context) error {
	var body struct {
		Open bool `json:"open"`
	}
	if err := c.Bind(&body); err != nil {
		return err
	}
	if body.Open && s.generating.Load() {
		return apiError(c, http.StatusConflict, report.ErrBusy, "a report is already being generated")
	}
	s.Events.ReportDialogToggle.Publish(body.Open)
	return c.JSON(http.StatusOK, s.ReportState())
}

func (s *Server) report(c echo.Context) error {
	var body struct {
		Period string `json:"period"`
		From   string `json:"from"`
		To     string `json:"to"`
	}
	if err := c.Bind(&body); err != nil {
		return err
	}
	req, err := cmdreport.ParseRequest(body.Period, body.From, body.To)
	if err != nil {
		return apiError(c, http.StatusBadRequest, err, "invalid report request")
	}
	res, err := s.Pipeline.Export(c.Request().Context(), req)
	switch {
	case errors.Is(err, report.ErrBusy):
		return apiError(c, http.StatusConflict, err, "a report is already being generated")
	case cmdreport.IsClientError(err):
		return apiError(c, http.StatusBadRequest, err, "invalid report request")
	case err != nil:
		return apiError(c, http.StatusInternalServerError, err, "report generation failed")
	}
	c.Response().Header().Set("X-Report-Run", res.RunID)
	return c.Attachment(res.Path, res.Filename)
}

// readCSV loads a CSV file and returns a slice of objects keyed by headers.
// Values are kept as strings.
func readCSV(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	out := []map[string]string{}
	if len(rows) < 2 {
		return out, nil
	}
	headers := rows[0]
	for _, row := range rows[1:] {
		obj := make(map[string]string, len(headers))
		for j := 0; j < len(headers) && j < len(row); j++ {
			obj[headers[j]] = row[j]
		}
		out = append(out, obj)
	}
	return out, nil
}

package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	dto "fairwork.com/fairwork/internal/data_models"
	apperrors "fairwork.com/fairwork/internal/errors"
	"fairwork.com/fairwork/internal/http/validators"
	"fairwork.com/fairwork/internal/services"
)

type Handler struct {
	ingest *services.IngestService
}

func NewHandler(ingest *services.IngestService) *Handler {
	return &Handler{ingest: ingest}
}

func (h *Handler) RegisterRequester(c echo.Context) error {
	var req dto.RegisterRequesterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	if err := validators.ValidateRegisterRequester(&req); err != nil {
		return err
	}

	requester, err := h.ingest.RegisterRequester(c.Request().Context(), req.AccountID, req.AccessKey, req.SecretKey, req.Email)
	if err != nil {
		return httpError(err, "failed to register requester")
	}
	return c.JSON(http.StatusOK, requester)
}

func (h *Handler) RegisterTask(c echo.Context) error {
	var req dto.RegisterTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	if err := validators.ValidateRegisterTask(&req); err != nil {
		return err
	}

	var reward *decimal.Decimal
	if req.Reward != "" {
		parsed, err := decimal.NewFromString(req.Reward)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "reward must be a decimal amount")
		}
		reward = &parsed
	}

	task, err := h.ingest.RegisterTask(c.Request().Context(), req.TaskGroupID, req.TaskID, req.AccountID, req.Host, reward)
	if err != nil {
		return httpError(err, "failed to register task")
	}
	return c.JSON(http.StatusCreated, task)
}

func (h *Handler) ReportDuration(c echo.Context) error {
	var req dto.ReportDurationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	if err := validators.ValidateReportDuration(&req); err != nil {
		return err
	}

	duration := time.Duration(req.DurationMinutes * float64(time.Minute))
	report, err := h.ingest.RecordDuration(c.Request().Context(), req.TaskID, req.WorkerID, req.SubmissionID, duration, req.Consented)
	if err != nil {
		return httpError(err, "failed to record duration")
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) LatestReport(c echo.Context) error {
	groupID := c.QueryParam("task_group_id")
	workerID := c.QueryParam("worker_id")
	if groupID == "" || workerID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "task_group_id and worker_id are required")
	}

	report, err := h.ingest.LatestReport(c.Request().Context(), groupID, workerID)
	if err != nil {
		return httpError(err, "failed to look up report")
	}
	return c.JSON(http.StatusOK, report)
}

func httpError(err error, fallback string) error {
	var appErr *apperrors.Exception
	if errors.As(err, &appErr) {
		return echo.NewHTTPError(appErr.StatusCode, appErr.Message)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, fallback)
}

package validators

import (
	"net/http"

	"github.com/labstack/echo/v4"

	dto "fairwork.com/fairwork/internal/data_models"
)

func ValidateRegisterRequester(r *dto.RegisterRequesterRequest) error {
	if r.AccountID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "account_id is required")
	}
	if r.AccessKey == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "access_key is required")
	}
	if r.SecretKey == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "secret_key is required")
	}
	return nil
}

func ValidateRegisterTask(r *dto.RegisterTaskRequest) error {
	if r.TaskGroupID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "task_group_id is required")
	}
	if r.TaskID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "task_id is required")
	}
	if r.AccountID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "account_id is required")
	}
	if r.Host == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "host is required")
	}
	return nil
}

func ValidateReportDuration(r *dto.ReportDurationRequest) error {
	if r.TaskID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "task_id is required")
	}
	if r.WorkerID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "worker_id is required")
	}
	if r.SubmissionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "submission_id is required")
	}
	if r.DurationMinutes <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "duration_minutes must be positive")
	}
	return nil
}

package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"fairwork.com/fairwork/internal/constants"
	model "fairwork.com/fairwork/internal/models"
)

// HTTPClient talks to one marketplace environment on behalf of one requester.
type HTTPClient struct {
	endpoint  string
	accessKey string
	secretKey string
	http      *http.Client
}

// Endpoints carries the per-environment marketplace base URLs.
type Endpoints struct {
	Production string
	Sandbox    string
}

// NewHTTPFactory returns a Factory producing HTTP clients signed with the
// requester's credentials against the environment's endpoint.
func NewHTTPFactory(endpoints Endpoints) Factory {
	return func(requester *model.Requester, env constants.Environment) Client {
		endpoint := endpoints.Production
		if env == constants.EnvSandbox {
			endpoint = endpoints.Sandbox
		}
		return &HTTPClient{
			endpoint:  endpoint,
			accessKey: requester.AccessKey,
			secretKey: requester.SecretKey,
			http:      &http.Client{Timeout: 30 * time.Second},
		}
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type submissionResponse struct {
	Status   string `json:"status"`
	WorkerID string `json:"worker_id"`
}

type taskResponse struct {
	Reward decimal.Decimal `json:"reward"`
}

func (c *HTTPClient) SubmissionStatus(ctx context.Context, submissionID string) (string, error) {
	var resp submissionResponse
	err := c.get(ctx, "/submissions/"+url.PathEscape(submissionID), &resp)
	if err != nil {
		return "", err
	}
	return resp.Status, nil
}

func (c *HTTPClient) TaskReward(ctx context.Context, taskID string) (decimal.Decimal, error) {
	var resp taskResponse
	if err := c.get(ctx, "/tasks/"+url.PathEscape(taskID), &resp); err != nil {
		return decimal.Zero, err
	}
	return resp.Reward, nil
}

func (c *HTTPClient) SendBonus(ctx context.Context, workerID string, amount decimal.Decimal, submissionID, reason, token string) error {
	payload := map[string]string{
		"worker_id":     workerID,
		"amount":        amount.StringFixed(2),
		"submission_id": submissionID,
		"reason":        reason,
		"request_token": token,
	}
	return c.post(ctx, "/bonuses", payload, nil)
}

func (c *HTTPClient) NotifyWorker(ctx context.Context, workerID, subject, message string) error {
	payload := map[string]string{
		"worker_id": workerID,
		"subject":   subject,
		"message":   message,
	}
	return c.post(ctx, "/notifications", payload, nil)
}

func (c *HTTPClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *HTTPClient) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *HTTPClient) do(req *http.Request, out interface{}) error {
	req.SetBasicAuth(c.accessKey, c.secretKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil {
			return fmt.Errorf("marketplace returned status %d", resp.StatusCode)
		}
		switch apiErr.Code {
		case "InsufficientFunds":
			return ErrInsufficientFunds
		case "DuplicateRequestToken":
			return ErrDuplicateToken
		case "UnknownSubmission":
			return ErrSubmissionUnknown
		default:
			return fmt.Errorf("marketplace error %s: %s", apiErr.Code, apiErr.Message)
		}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"syscall"
	"time"

	"github.com/AnshRaj112/hiddenmood-backend/internal/apperrors"
	"github.com/AnshRaj112/hiddenmood-backend/internal/models"
)

// Classifier error codes, reported to clients as error_type.
const (
	ClassifierTimeout         = "timeout"
	ClassifierConnection      = "connection_error"
	ClassifierUpstream        = "ml_api_error"
	ClassifierInvalidResponse = "invalid_response"
	ClassifierGeneric         = "generic_error"
)

const (
	maxClassifierBody = 1 << 20
	classifierAgent   = "HiddenMood-Backend/1.0"
)

// Classifier scores a curhat text for stress and emotion.
type Classifier interface {
	Analyze(ctx context.Context, text string) (*models.Analysis, error)
}

// MLClassifier calls the remote ML service over HTTP. One request per call,
// no retries.
type MLClassifier struct {
	endpoint string
	client   *http.Client
}

func NewMLClassifier(endpoint string, timeout time.Duration) *MLClassifier {
	return &MLClassifier{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Analyze posts {"text": text} and returns the normalized analysis. Errors are
// *apperrors.AppError with one of the Classifier* codes.
func (c *MLClassifier) Analyze(ctx context.Context, text string) (*models.Analysis, error) {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindInternal, ClassifierGeneric, "Failed to process text with ML API")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindInternal, ClassifierGeneric, "Failed to process text with ML API")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", classifierAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxClassifierBody))
	if err != nil {
		return nil, classifyTransportError(err)
	}

	if resp.StatusCode != http.StatusOK {
		details := string(bytes.TrimSpace(body))
		if details == "" {
			details = "No details available"
		}
		return nil, &apperrors.AppError{
			Kind:    apperrors.KindExternal,
			Code:    ClassifierUpstream,
			Message: "ML API returned an error",
			Status:  resp.StatusCode,
			Details: details,
		}
	}

	var analysis models.Analysis
	if err := json.Unmarshal(body, &analysis); err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindExternal, ClassifierInvalidResponse, "Invalid response format from ML API")
	}
	analysis.Normalize()
	return &analysis, nil
}

func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Wrap(err, apperrors.KindTimeout, ClassifierTimeout, "ML API request timed out. Please try again.")
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return apperrors.Wrap(err, apperrors.KindTimeout, ClassifierTimeout, "ML API request timed out. Please try again.")
	}

	var dnsErr *net.DNSError
	var opErr *net.OpError
	if errors.Is(err, syscall.ECONNREFUSED) || errors.As(err, &dnsErr) || (errors.As(err, &opErr) && opErr.Op == "dial") {
		return apperrors.Wrap(err, apperrors.KindConnection, ClassifierConnection, "Cannot connect to ML API. Please check if the service is running.")
	}

	return apperrors.Wrap(err, apperrors.KindInternal, ClassifierGeneric, fmt.Sprintf("Failed to process text with ML API: %v", err))
}

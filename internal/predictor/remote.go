package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"attendance/internal/features"

	"github.com/rs/zerolog"
)

type remotePredictor struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
	info    Info
}

// MetadataResponse is what the inference service reports about its model
type MetadataResponse struct {
	Model           string   `json:"model"`
	EncodingVersion string   `json:"encoding_version"`
	Features        []string `json:"features"`
}

// PredictRequest is the body sent to the inference service
type PredictRequest struct {
	FeatureNames []string  `json:"feature_names"`
	Features     []float64 `json:"features"`
}

// PredictResponse is the inference service reply
type PredictResponse struct {
	Prediction float64 `json:"prediction"`
}

// NewRemotePredictor connects to an inference service and checks, once,
// that it serves a model trained on this build's feature layout.
func NewRemotePredictor(ctx context.Context, baseURL string, timeout time.Duration, logger zerolog.Logger) (Predictor, error) {
	p := &remotePredictor{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With().Str("service", "RemotePredictor").Logger(),
	}
	meta, err := p.metadata(ctx)
	if err != nil {
		return nil, unavailable(p.baseURL, err)
	}
	if err := checkSchema(meta.Features, meta.EncodingVersion); err != nil {
		return nil, unavailable(p.baseURL, err)
	}
	p.info = Info{
		Kind:            "remote",
		Source:          p.baseURL,
		EncodingVersion: meta.EncodingVersion,
		Features:        meta.Features,
	}
	p.logger.Info().Str("model", meta.Model).Str("encoding_version", meta.EncodingVersion).Msg("Inference service ready")
	return p, nil
}

func (p *remotePredictor) metadata(ctx context.Context) (*MetadataResponse, error) {
	url := fmt.Sprintf("%s/metadata", p.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	var meta MetadataResponse
	if err := p.do(req, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (p *remotePredictor) Predict(ctx context.Context, v features.Vector) (float64, error) {
	jsonBody, err := json.Marshal(PredictRequest{FeatureNames: features.Names, Features: v.Values()})
	if err != nil {
		return 0, fmt.Errorf("marshaling request body: %w", err)
	}

	url := fmt.Sprintf("%s/predict", p.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var out PredictResponse
	if err := p.do(req, &out); err != nil {
		return 0, err
	}
	if math.IsNaN(out.Prediction) || math.IsInf(out.Prediction, 0) {
		return 0, ErrInvalidOutput
	}
	return out.Prediction, nil
}

func (p *remotePredictor) do(req *http.Request, into any) error {
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("making request to inference service: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			p.logger.Warn().Err(closeErr).Msg("Failed to close response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if readErr != nil {
			p.logger.Warn().Err(readErr).Int("status_code", resp.StatusCode).Msg("Failed to read error body from inference service")
			return fmt.Errorf("inference service returned status %d", resp.StatusCode)
		}

		errorMsg := string(bodyBytes)
		p.logger.Error().
			Int("status_code", resp.StatusCode).
			Str("error_body", errorMsg).
			Msg("Inference service returned error")

		return fmt.Errorf("inference service returned status %d: %s", resp.StatusCode, errorMsg)
	}

	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (p *remotePredictor) Info() Info {
	return p.info
}

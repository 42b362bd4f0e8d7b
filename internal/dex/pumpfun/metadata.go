// internal/dex/pumpfun/metadata.go
package pumpfun

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

const ipfsEndpoint = "https://pump.fun/api/ipfs"

// TokenInfo describes the token being launched.
type TokenInfo struct {
	Name        string
	Symbol      string
	Description string
	Twitter     string
	Telegram    string
	Website     string
	ShowName    bool
	ImagePath   string
}

// TokenMetadata is the upload result consumed by the create stage.
type TokenMetadata struct {
	MetadataURI string `json:"metadataUri"`
}

// MetadataUploader pushes token metadata and image to the pump.fun
// IPFS endpoint.
type MetadataUploader struct {
	httpClient *http.Client
	endpoint   string
	logger     *zap.Logger
}

func NewMetadataUploader(logger *zap.Logger) *MetadataUploader {
	return &MetadataUploader{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		endpoint: ipfsEndpoint,
		logger:   logger.Named("metadata-uploader"),
	}
}

// Upload sends the token image and fields as multipart form data and
// returns the resulting metadata URI.
func (u *MetadataUploader) Upload(ctx context.Context, info TokenInfo) (*TokenMetadata, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	file, err := os.Open(info.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open token image: %w", err)
	}
	defer file.Close()

	part, err := writer.CreateFormFile("file", filepath.Base(info.ImagePath))
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to copy token image: %w", err)
	}

	fields := map[string]string{
		"name":        info.Name,
		"symbol":      info.Symbol,
		"description": info.Description,
		"twitter":     info.Twitter,
		"telegram":    info.Telegram,
		"website":     info.Website,
		"showName":    fmt.Sprintf("%t", info.ShowName),
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("failed to write field %s: %w", key, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to upload metadata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("metadata upload returned status code: %d", resp.StatusCode)
	}

	var metadata TokenMetadata
	if err := json.NewDecoder(resp.Body).Decode(&metadata); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}
	if metadata.MetadataURI == "" {
		return nil, fmt.Errorf("metadata upload returned empty URI")
	}

	u.logger.Info("Token metadata uploaded",
		zap.String("symbol", info.Symbol),
		zap.String("metadata_uri", metadata.MetadataURI))
	return &metadata, nil
}

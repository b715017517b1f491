package util

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockRoundTripper implements http.RoundTripper
type MockRoundTripper struct {
	Response *http.Response
	Err      error
	Path     string
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	m.Path = req.URL.Path
	if m.Response != nil {
		m.Response.Request = req
	}
	return m.Response, m.Err
}

func TestCheckForUpdates(t *testing.T) {
	tests := []struct {
		name            string
		currentVersion  string
		responseBody    string
		statusCode      int
		expectUpdate    bool
		expectError     bool
		expectedVersion string
	}{
		{
			name:            "Update Available",
			currentVersion:  "v1.0.0",
			responseBody:    `{"tag_name": "v1.1.0", "html_url": "http://release", "body": "notes"}`,
			statusCode:      200,
			expectUpdate:    true,
			expectedVersion: "v1.1.0",
		},
		{
			name:            "No Update Available",
			currentVersion:  "1.1.0",
			responseBody:    `{"tag_name": "v1.1.0", "html_url": "http://release", "body": "notes"}`,
			statusCode:      200,
			expectUpdate:    false,
			expectedVersion: "v1.1.0",
		},
		{
			name:            "Newer Local Version",
			currentVersion:  "v2.0.0",
			responseBody:    `{"tag_name": "1.1.0", "html_url": "http://release", "body": "notes"}`,
			statusCode:      200,
			expectUpdate:    false,
			expectedVersion: "v1.1.0",
		},
		{
			name:            "Development Build",
			currentVersion:  "dev",
			responseBody:    `{"tag_name": "v0.1.0"}`,
			statusCode:      200,
			expectUpdate:    true,
			expectedVersion: "v0.1.0",
		},
		{
			name:           "API Error",
			currentVersion: "v1.0.0",
			responseBody:   `{"message": "Not Found"}`,
			statusCode:     404,
			expectError:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockTransport := &MockRoundTripper{
				Response: &http.Response{
					StatusCode: tt.statusCode,
					Body:       io.NopCloser(bytes.NewBufferString(tt.responseBody)),
					Header:     make(http.Header),
				},
			}
			client := &http.Client{Transport: mockTransport}

			result, err := CheckForUpdates(context.Background(), client, tt.currentVersion)

			assert.Equal(t, "/repos/dixieflatline76/UltimateThumb/releases/latest", mockTransport.Path)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectUpdate, result.UpdateAvailable)
			assert.Equal(t, tt.expectedVersion, result.LatestVersion)
		})
	}
}

package s3

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	appconfig "github.com/5w1tchy/library-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURL(t *testing.T) {
	b, k, err := ParseURL("s3://datasets/catalog/2025.json")
	require.NoError(t, err)
	assert.Equal(t, "datasets", b)
	assert.Equal(t, "catalog/2025.json", k)

	b, k, err = ParseURL("s3:///catalog.json")
	require.NoError(t, err)
	assert.Empty(t, b)
	assert.Equal(t, "catalog.json", k)

	_, _, err = ParseURL("s3://bucket-only")
	assert.Error(t, err)
	_, _, err = ParseURL("/tmp/catalog.json")
	assert.Error(t, err)
}

func testClient(t *testing.T, endpoint string) *S3Client {
	t.Helper()
	c, err := NewClient(context.Background(), appconfig.S3Config{
		Endpoint:        endpoint,
		Region:          "auto",
		Bucket:          "datasets",
		AccessKeyID:     "test",
		SecretAccessKey: "test",
	})
	require.NoError(t, err)
	return c
}

func TestGetUsesPathStyleAndDefaultBucket(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"authors":[],"books":[]}`))
	}))
	defer srv.Close()

	b, err := testClient(t, srv.URL).Get(context.Background(), "", "catalog.json")
	require.NoError(t, err)
	assert.Equal(t, "/datasets/catalog.json", gotPath)
	assert.JSONEq(t, `{"authors":[],"books":[]}`, string(b))
}

func TestPresignGet(t *testing.T) {
	c := testClient(t, "https://objects.example.com")
	u, err := c.PresignGet(context.Background(), "exports", "catalog.json", 15*time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u, "https://objects.example.com/exports/catalog.json?"), u)
	assert.Contains(t, u, "X-Amz-Expires=900")
}

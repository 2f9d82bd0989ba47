package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/worldchef/backend/config"
)

func TestNew(t *testing.T) {
	cfg := &config.Config{
		ServerHost:   "localhost",
		ServerPort:   "8080",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	srv := New(cfg, http.NotFoundHandler(), zap.NewNop())
	require.NotNil(t, srv)
	assert.Equal(t, "localhost:8080", srv.http.Addr)
	assert.Equal(t, 5*time.Second, srv.http.ReadTimeout)
	assert.Equal(t, 30*time.Second, srv.http.WriteTimeout)
	assert.Equal(t, 10*time.Second, srv.shutdownTimeout)
}

func TestServeAndShutdown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	srv := New(&config.Config{ShutdownTimeout: time.Second}, router, zap.NewNop())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(ctx, ln)
	}()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRunInvalidAddress(t *testing.T) {
	srv := New(&config.Config{ServerHost: "127.0.0.1", ServerPort: "99999"}, http.NotFoundHandler(), zap.NewNop())
	err := srv.Run(context.Background())
	assert.Error(t, err)
}

package e2e_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/minesweeper-go/internal/api"
	"github.com/mcoot/minesweeper-go/internal/factory"
	"github.com/mcoot/minesweeper-go/internal/testutil"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(projectRoot, "bin", "msweep-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/minesweep")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	server   *http.Server
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	// Create application with real clock/random
	app, err := factory.New(factory.Config{})
	require.NoError(t, err)

	logger := testutil.NopLogger()
	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		SessionService: app.SessionService,
		HubManager:     app.HubManager,
	})

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server
	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to be ready
	serverURL := "http://" + addr
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		server: server,
		addr:   serverURL,
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing
type sessionResponse struct {
	ID    string `json:"id"`
	Rows  int    `json:"rows"`
	Cols  int    `json:"cols"`
	Mines int    `json:"mines"`
}

type boardResponse struct {
	Rows  int    `json:"rows"`
	Cols  int    `json:"cols"`
	Mines int    `json:"mines"`
	Phase string `json:"phase"`
	Cells [][]struct {
		State         string `json:"state"`
		AdjacentMines int    `json:"adjacent_mines"`
	} `json:"cells"`
}

type gameStateResponse struct {
	Session sessionResponse `json:"session"`
	Board   boardResponse   `json:"board"`
}

type sessionListResponse struct {
	Sessions []sessionResponse `json:"sessions"`
}

type summaryListResponse struct {
	Summaries []struct {
		Outcome  string `json:"outcome"`
		Revealed int    `json:"revealed"`
	} `json:"summaries"`
}

type healthResponse struct {
	Status string `json:"status"`
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_GameLifecycle(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Create a game
	output, err := cli.run("game", "new", "--rows", "8", "--cols", "8", "--mines", "10")
	require.NoError(t, err, "output: %s", output)

	var created gameStateResponse
	require.NoError(t, json.Unmarshal([]byte(output), &created))
	assert.NotEmpty(t, created.Session.ID)
	assert.Equal(t, 8, created.Session.Rows)
	assert.Equal(t, "not_started", created.Board.Phase)

	id := created.Session.ID

	// List games
	output, err = cli.run("game", "list")
	require.NoError(t, err, "output: %s", output)

	var list sessionListResponse
	require.NoError(t, json.Unmarshal([]byte(output), &list))
	require.Len(t, list.Sessions, 1)
	assert.Equal(t, id, list.Sessions[0].ID)

	// Show game
	output, err = cli.run("game", "show", id)
	require.NoError(t, err, "output: %s", output)

	var shown gameStateResponse
	require.NoError(t, json.Unmarshal([]byte(output), &shown))
	assert.Equal(t, id, shown.Session.ID)

	// Delete game
	output, err = cli.run("game", "delete", id)
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("game", "show", id)
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "not found")
}

func TestCLI_PlayCommands(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("game", "new", "--rows", "8", "--cols", "8", "--mines", "10")
	require.NoError(t, err, "output: %s", output)

	var created gameStateResponse
	require.NoError(t, json.Unmarshal([]byte(output), &created))
	id := created.Session.ID

	// Flag toggles on and off
	output, err = cli.run("game", "flag", id, "0", "0")
	require.NoError(t, err, "output: %s", output)

	var board boardResponse
	require.NoError(t, json.Unmarshal([]byte(output), &board))
	assert.Equal(t, "flagged", board.Cells[0][0].State)

	output, err = cli.run("game", "flag", id, "0", "0")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &board))
	assert.Equal(t, "hidden", board.Cells[0][0].State)

	// First reveal is always safe and starts the game
	output, err = cli.run("game", "reveal", id, "4", "4")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &board))
	assert.NotEqual(t, "not_started", board.Phase)
	assert.NotEqual(t, "lost", board.Phase)
	assert.Equal(t, "revealed", board.Cells[4][4].State)

	// Reset returns to a fresh board
	output, err = cli.run("game", "reset", id)
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &board))
	assert.Equal(t, "not_started", board.Phase)
	assert.Equal(t, "hidden", board.Cells[4][4].State)

	// No completed games yet
	output, err = cli.run("game", "history", id)
	require.NoError(t, err, "output: %s", output)

	var history summaryListResponse
	require.NoError(t, json.Unmarshal([]byte(output), &history))
	assert.Empty(t, history.Summaries)
}

func TestCLI_ErrorHandling(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Unknown session
	output, err := cli.run("game", "show", "MISSING")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "not found")

	// Invalid configuration
	output, err = cli.run("game", "new", "--rows", "2", "--cols", "2", "--mines", "9")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "configuration")

	// Out of range cell
	output, err = cli.run("game", "new", "--rows", "4", "--cols", "4", "--mines", "3")
	require.NoError(t, err, "output: %s", output)

	var created gameStateResponse
	require.NoError(t, json.Unmarshal([]byte(output), &created))

	output, err = cli.run("game", "reveal", created.Session.ID, "9", "9")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "range")
}

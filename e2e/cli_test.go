package e2e_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/gameofchests/internal/factory"
	"github.com/mcoot/gameofchests/internal/services/identity"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
	tokenFile  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	projectRoot := findProjectRoot(t)

	binaryPath := filepath.Join(t.TempDir(), "chests-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/chests")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		tokenFile:  filepath.Join(t.TempDir(), "token"),
	}
}

// withTokenFile returns a runner sharing the binary but holding its own identity
func (r *cliRunner) withTokenFile(path string) *cliRunner {
	return &cliRunner{binaryPath: r.binaryPath, serverURL: r.serverURL, tokenFile: path}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	cmd.Env = append(os.Environ(), "CHESTS_TOKEN=")
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
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	app, err := factory.New(context.Background(), factory.Config{
		Logger:      logger,
		StorageType: factory.StorageTypeMemory,
		TokenConfig: identity.Config{Secret: []byte("e2e-secret")},
	})
	require.NoError(t, err)

	server := &http.Server{Handler: app.Router()}

	go func() {
		if err := server.Serve(listener); err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := "http://" + listener.Addr().String()
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		addr: serverURL,
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			app.Broadcaster.Close()
			_ = server.Shutdown(ctx)
			_ = app.Close()
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
type credentialsResponse struct {
	Identity struct {
		ID    string `json:"id"`
		Short string `json:"short"`
	} `json:"identity"`
	Token string `json:"token"`
}

type seatResponse struct {
	Identity struct {
		ID string `json:"id"`
	} `json:"identity"`
}

type roomResponse struct {
	ID        string        `json:"id"`
	Presenter *seatResponse `json:"presenter"`
	Placer    *seatResponse `json:"placer"`
	State     struct {
		Phase        string `json:"phase"`
		CoinCount    int    `json:"coin_count"`
		Compensation int    `json:"compensation"`
		Remaining    []int  `json:"remaining"`
		Sums         []int  `json:"sums"`
		Offered      *int   `json:"offered"`
	} `json:"state"`
	Role    string `json:"role"`
	Outcome *struct {
		Result  string `json:"result"`
		Summary string `json:"summary"`
	} `json:"outcome"`
	Headline string `json:"headline"`
}

type joinResponse struct {
	Room roomResponse `json:"room"`
	Role string       `json:"role"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func decode(t *testing.T, output string, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(output), v), "output: %s", output)
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	decode(t, output, &resp)
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_IdentityCommands(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("identity", "new")
	require.NoError(t, err, "output: %s", output)

	var creds credentialsResponse
	decode(t, output, &creds)
	assert.NotEmpty(t, creds.Token)
	assert.NotEmpty(t, creds.Identity.ID)

	// Token was saved to the token file
	output, err = cli.run("identity", "show")
	require.NoError(t, err, "output: %s", output)

	var me struct {
		ID string `json:"id"`
	}
	decode(t, output, &me)
	assert.Equal(t, creds.Identity.ID, me.ID)
}

func TestCLI_FullGameFlow(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	alice := newCLIRunner(t, ts.addr)
	bob := alice.withTokenFile(filepath.Join(t.TempDir(), "token2"))

	output, err := alice.run("identity", "new")
	require.NoError(t, err, "output: %s", output)
	output, err = bob.run("identity", "new")
	require.NoError(t, err, "output: %s", output)

	// Alice presents
	output, err = alice.run("room", "create", "--role", "presenter", "--coins", "5", "--compensation", "2")
	require.NoError(t, err, "output: %s", output)
	var room roomResponse
	decode(t, output, &room)
	assert.Equal(t, "waiting", room.State.Phase)
	assert.Nil(t, room.Placer)
	roomID := room.ID
	t.Logf("Created room: %s", roomID)

	// Bob takes the free seat
	output, err = bob.run("room", "join", roomID)
	require.NoError(t, err, "output: %s", output)
	var joined joinResponse
	decode(t, output, &joined)
	assert.Equal(t, "placer", joined.Role)
	assert.Equal(t, "offering", joined.Room.State.Phase)

	// Bob cannot offer
	output, err = bob.run("game", "offer", roomID, "0")
	assert.Error(t, err)
	assert.Contains(t, output, "NOT_PRESENTER")

	moves := [][2]int{{0, 5}, {1, 1}, {2, 4}, {0, 2}, {1, 3}}
	for turn, m := range moves {
		output, err = alice.run("game", "offer", roomID, strconv.Itoa(m[0]))
		require.NoError(t, err, "turn %d offer: %s", turn, output)
		decode(t, output, &room)
		assert.Equal(t, "placing", room.State.Phase)
		require.NotNil(t, room.State.Offered)
		assert.Equal(t, m[0], *room.State.Offered)

		output, err = bob.run("game", "place", roomID, strconv.Itoa(m[1]))
		require.NoError(t, err, "turn %d place: %s", turn, output)
		decode(t, output, &room)
		t.Logf("Turn %d: coin %d into basket %d", turn, m[1], m[0])
	}

	assert.Equal(t, "finished", room.State.Phase)
	assert.Equal(t, []int{7, 4, 4}, room.State.Sums)
	require.NotNil(t, room.Outcome)
	assert.Equal(t, "placer", room.Outcome.Result)
	assert.Equal(t, "You win 7:6", room.Headline)

	output, err = alice.run("room", "show", roomID)
	require.NoError(t, err, "output: %s", output)
	decode(t, output, &room)
	assert.Equal(t, "You lose 7:6", room.Headline)

	// Rematch with swapped roles
	output, err = alice.run("room", "leave", roomID)
	require.NoError(t, err, "output: %s", output)
	var msg messageResponse
	decode(t, output, &msg)
	assert.Contains(t, msg.Message, "Left room")

	output, err = bob.run("room", "assume", roomID, "--role", "presenter")
	require.NoError(t, err, "output: %s", output)
	decode(t, output, &room)
	assert.Equal(t, "presenter", room.Role)
	assert.Equal(t, "waiting", room.State.Phase)

	output, err = alice.run("room", "join", roomID)
	require.NoError(t, err, "output: %s", output)
	decode(t, output, &joined)
	assert.Equal(t, "placer", joined.Role)
	assert.Equal(t, "offering", joined.Room.State.Phase)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, joined.Room.State.Remaining)
}

func TestCLI_ErrorHandling(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("identity", "show")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "unauthorized")

	output, err = cli.run("identity", "new")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("room", "show", "INVALID")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "room not found")

	output, err = cli.run("room", "create", "--coins", "11")
	assert.Error(t, err)
	assert.Contains(t, output, "INVALID_SETTINGS")
}

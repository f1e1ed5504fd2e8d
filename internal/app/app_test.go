package app

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/abrezinsky/electora/internal/config"
	"github.com/abrezinsky/electora/internal/logger"
	"github.com/abrezinsky/electora/internal/testutil"
)

func testConfig() config.Config {
	return config.Config{
		Port:          3001,
		DBPath:        ":memory:",
		JWTSecret:     "test-secret",
		BaseURL:       "http://vote.example/",
		AdminPassword: "admin123",
	}
}

func createTestApp(t *testing.T, cfg config.Config) *App {
	t.Helper()
	app, err := New(logger.Discard(), cfg)
	if err != nil {
		t.Fatalf("failed to create test app: %v", err)
	}
	t.Cleanup(app.Close)
	return app
}

func TestNew_InitializesApp(t *testing.T) {
	app := createTestApp(t, testConfig())

	if app.handlers == nil {
		t.Error("expected handlers to be initialized")
	}
	if app.repo == nil {
		t.Error("expected repo to be initialized")
	}
	if app.cancelHub == nil {
		t.Error("expected cancelHub to be set")
	}
	if app.BaseURL() != "http://vote.example" {
		t.Errorf("expected trailing slash trimmed, got %q", app.BaseURL())
	}
}

func TestNew_DetectsBaseURL(t *testing.T) {
	cfg := testConfig()
	cfg.BaseURL = ""
	app := createTestApp(t, cfg)

	if !strings.HasPrefix(app.BaseURL(), "http://") || !strings.HasSuffix(app.BaseURL(), ":3001") {
		t.Errorf("unexpected detected base URL %q", app.BaseURL())
	}
}

func TestNew_FailsWithBadDBPath(t *testing.T) {
	cfg := testConfig()
	cfg.DBPath = "/nonexistent/path/db.sqlite"

	if _, err := New(logger.Discard(), cfg); err == nil {
		t.Error("expected error for invalid db path")
	}
}

func TestNew_SeedsAccounts(t *testing.T) {
	cfg := testConfig()
	cfg.ManagerPassword = "manager456"
	app := createTestApp(t, cfg)

	for _, creds := range []struct{ user, pass string }{{"admin", "admin123"}, {"manager", "manager456"}} {
		body := `{"username":"` + creds.user + `","password":"` + creds.pass + `"}`
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		app.Router().ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected %s to log in, got %d: %s", creds.user, rec.Code, rec.Body.String())
		}
	}
}

func TestNew_SeedsSampleElection(t *testing.T) {
	cfg := testConfig()
	cfg.SeedSample = true
	app := createTestApp(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/elections", nil)
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)

	var resp struct {
		Success bool `json:"success"`
		Data    []struct {
			Title  string `json:"title"`
			Status string `json:"status"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data) != 1 {
		t.Fatalf("expected one sample election, got %d", len(resp.Data))
	}
	if resp.Data[0].Title != "Sample Election" || resp.Data[0].Status != "active" {
		t.Errorf("unexpected sample election %+v", resp.Data[0])
	}
}

func TestNew_DefaultDatabaseWritesNoFile(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg := testConfig()
	cfg.DBPath = config.DefaultDBPath
	cfg.SeedSample = true
	app := createTestApp(t, cfg)
	app.Close()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected state kept in memory, found %d files in working dir", len(entries))
	}
}

func TestNew_SeedingSurvivesRestart(t *testing.T) {
	cfg := testConfig()
	cfg.DBPath = testutil.TempDBPath(t)
	cfg.SeedSample = true

	for i := 0; i < 2; i++ {
		app, err := New(logger.Discard(), cfg)
		if err != nil {
			t.Fatalf("start %d: %v", i, err)
		}
		app.Close()
	}

	repo := testutil.OpenRepository(t, cfg.DBPath)
	elections, err := repo.ListElections(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(elections) != 1 {
		t.Errorf("expected sample election created once, got %d", len(elections))
	}
	users, err := repo.ListUsers(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 1 {
		t.Errorf("expected admin seeded once, got %d users", len(users))
	}
}

func TestApp_Router_ServesHealth(t *testing.T) {
	app := createTestApp(t, testConfig())
	server := httptest.NewServer(app.Router())
	defer server.Close()

	resp, err := http.Get(server.URL + "/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for /health, got %d", resp.StatusCode)
	}
}

func TestApp_Close_Idempotent(t *testing.T) {
	app, err := New(logger.Discard(), testConfig())
	if err != nil {
		t.Fatal(err)
	}

	app.Close()
	app.Close()
}

func TestApp_Run_StopsOnCancel(t *testing.T) {
	app := createTestApp(t, testConfig())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- app.Run(ctx, "127.0.0.1:0")
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestApp_Run_BindError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	app := createTestApp(t, testConfig())
	if err := app.Run(context.Background(), ln.Addr().String()); err == nil {
		t.Error("expected error for address in use")
	}
}

func TestGetPreferredIP_ReturnsValidIP(t *testing.T) {
	ip := getPreferredIP(realNetworkProvider{})

	if ip == "" {
		t.Fatal("expected non-empty IP")
	}
	if ip != "localhost" {
		parsed := net.ParseIP(ip)
		if parsed == nil || parsed.To4() == nil {
			t.Errorf("expected IPv4 address or localhost, got: %s", ip)
		}
	}
}

type mockInterface struct {
	flags net.Flags
	addrs []net.Addr
	err   error
}

func (m mockInterface) Flags() net.Flags {
	return m.flags
}

func (m mockInterface) Addrs() ([]net.Addr, error) {
	return m.addrs, m.err
}

type mockNetworkProvider struct {
	interfaces []networkInterface
	err        error
}

func (m mockNetworkProvider) Interfaces() ([]networkInterface, error) {
	return m.interfaces, m.err
}

func ipNet(s string) *net.IPNet {
	return &net.IPNet{IP: net.ParseIP(s), Mask: net.CIDRMask(24, 32)}
}

func TestGetPreferredIP(t *testing.T) {
	tests := []struct {
		name     string
		provider mockNetworkProvider
		want     string
	}{
		{
			name:     "interfaces error",
			provider: mockNetworkProvider{err: net.ErrClosed},
			want:     "localhost",
		},
		{
			name: "addrs error",
			provider: mockNetworkProvider{interfaces: []networkInterface{
				mockInterface{flags: net.FlagUp, err: net.ErrClosed},
			}},
			want: "localhost",
		},
		{
			name: "down interface skipped",
			provider: mockNetworkProvider{interfaces: []networkInterface{
				mockInterface{flags: 0, addrs: []net.Addr{ipNet("192.168.1.9")}},
			}},
			want: "localhost",
		},
		{
			name: "loopback interface skipped",
			provider: mockNetworkProvider{interfaces: []networkInterface{
				mockInterface{flags: net.FlagUp | net.FlagLoopback, addrs: []net.Addr{ipNet("10.0.0.1")}},
			}},
			want: "localhost",
		},
		{
			name: "ip addr type",
			provider: mockNetworkProvider{interfaces: []networkInterface{
				mockInterface{flags: net.FlagUp, addrs: []net.Addr{&net.IPAddr{IP: net.ParseIP("192.168.1.100")}}},
			}},
			want: "192.168.1.100",
		},
		{
			name: "public fallback",
			provider: mockNetworkProvider{interfaces: []networkInterface{
				mockInterface{flags: net.FlagUp, addrs: []net.Addr{ipNet("8.8.8.8")}},
			}},
			want: "8.8.8.8",
		},
		{
			name: "private preferred over public",
			provider: mockNetworkProvider{interfaces: []networkInterface{
				mockInterface{flags: net.FlagUp, addrs: []net.Addr{ipNet("8.8.8.8"), ipNet("172.20.0.5")}},
			}},
			want: "172.20.0.5",
		},
		{
			name: "loopback address skipped",
			provider: mockNetworkProvider{interfaces: []networkInterface{
				mockInterface{flags: net.FlagUp, addrs: []net.Addr{ipNet("127.0.0.1"), ipNet("192.168.1.50")}},
			}},
			want: "192.168.1.50",
		},
		{
			name: "ipv6 ignored",
			provider: mockNetworkProvider{interfaces: []networkInterface{
				mockInterface{flags: net.FlagUp, addrs: []net.Addr{&net.IPNet{IP: net.ParseIP("fe80::1"), Mask: net.CIDRMask(64, 128)}}},
			}},
			want: "localhost",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getPreferredIP(tt.provider); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestIsPrivate172(t *testing.T) {
	tests := []struct {
		ip   string
		want bool
	}{
		{"172.16.0.1", true},
		{"172.31.255.255", true},
		{"172.15.0.1", false},
		{"172.32.0.1", false},
		{"192.168.1.1", false},
		{"::1", false},
	}
	for _, tt := range tests {
		if got := isPrivate172(net.ParseIP(tt.ip)); got != tt.want {
			t.Errorf("isPrivate172(%s) = %v, want %v", tt.ip, got, tt.want)
		}
	}
}

func TestRealNetworkProvider_Interfaces(t *testing.T) {
	ifaces, err := realNetworkProvider{}.Interfaces()
	if err != nil {
		t.Skipf("net.Interfaces() failed (system-dependent): %v", err)
	}
	for _, iface := range ifaces {
		_ = iface.Flags()
		if _, err := iface.Addrs(); err != nil {
			t.Logf("Addrs() failed: %v", err)
		}
	}
}

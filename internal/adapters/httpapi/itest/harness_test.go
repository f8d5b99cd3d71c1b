package itest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/healthportal-app/portal-client/internal/adapters/devapi"
	filestore "github.com/healthportal-app/portal-client/internal/adapters/file/credentialstore"
	"github.com/healthportal-app/portal-client/internal/adapters/httpapi"
	memclock "github.com/healthportal-app/portal-client/internal/adapters/memory/clock"
	memstore "github.com/healthportal-app/portal-client/internal/adapters/memory/credentialstore"
	portalclient "github.com/healthportal-app/portal-client/internal/adapters/portalapi"
	pgstore "github.com/healthportal-app/portal-client/internal/adapters/postgres/credentialstore"
	postgres_testutil "github.com/healthportal-app/portal-client/internal/adapters/postgres/testutil"
	redisstore "github.com/healthportal-app/portal-client/internal/adapters/redis/credentialstore"
	"github.com/healthportal-app/portal-client/internal/app/access"
	"github.com/healthportal-app/portal-client/internal/app/patient"
	"github.com/healthportal-app/portal-client/internal/app/profile"
	"github.com/healthportal-app/portal-client/internal/app/provider"
	"github.com/healthportal-app/portal-client/internal/app/session"
	"github.com/healthportal-app/portal-client/internal/domain"
	"github.com/healthportal-app/portal-client/internal/platform/auth/devtoken"
	"github.com/healthportal-app/portal-client/internal/platform/logging"
	credentialstoreport "github.com/healthportal-app/portal-client/internal/ports/out/credentialstore"
)

type backend string

const (
	backendMemory   backend = "memory"
	backendFile     backend = "file"
	backendRedis    backend = "redis"
	backendPostgres backend = "postgres"
)

func backendsFromEnv(t *testing.T) []backend {
	t.Helper()
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ITEST_BACKEND"))) {
	case "", "memory":
		return []backend{backendMemory}
	case "file":
		return []backend{backendFile}
	case "redis":
		return []backend{backendRedis}
	case "postgres":
		return []backend{backendPostgres}
	case "all":
		return []backend{backendMemory, backendFile, backendRedis, backendPostgres}
	default:
		t.Fatalf("unknown ITEST_BACKEND value (expected memory|file|redis|postgres|all)")
		return nil
	}
}

// openStore returns a function that opens the credential slot over one shared
// backend, so a second call behaves like the same slot after a restart.
func openStore(t *testing.T, b backend) func() credentialstoreport.Store {
	t.Helper()
	switch b {
	case backendMemory:
		shared := memstore.NewStore(domain.DefaultStorageKey)
		return func() credentialstoreport.Store { return shared.WithKey(domain.DefaultStorageKey) }
	case backendFile:
		path := filepath.Join(t.TempDir(), "credentials.json")
		return func() credentialstoreport.Store { return filestore.NewStore(path, domain.DefaultStorageKey) }
	case backendRedis:
		mr := miniredis.RunT(t)
		rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })
		return func() credentialstoreport.Store { return redisstore.NewStore(rdb, domain.DefaultStorageKey) }
	case backendPostgres:
		pool := postgres_testutil.OpenMigratedPool(t)
		return func() credentialstoreport.Store { return pgstore.NewStore(pool, domain.DefaultStorageKey) }
	default:
		t.Fatalf("unknown backend: %s", b)
		return nil
	}
}

type testServer struct {
	t       *testing.T
	apiURL  string
	open    func() credentialstoreport.Store
	clk     *memclock.Manual
	baseURL string
	client  *http.Client
}

// newTestServer starts a dev API and a portal in front of it. The portal's
// session has hydrated from the backend before this returns.
func newTestServer(t *testing.T, b backend) *testServer {
	t.Helper()

	clk := memclock.NewManual(time.Now().UTC())
	iss, err := devtoken.NewIssuer([]byte("itest-signing-key"), time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	api := devapi.NewServer(iss, devapi.Options{Clock: clk, Logger: logging.Discard(), BcryptCost: bcrypt.MinCost})
	apiSrv := httptest.NewServer(api.Handler())
	t.Cleanup(apiSrv.Close)

	s := &testServer{t: t, apiURL: apiSrv.URL, open: openStore(t, b), clk: clk}
	s.boot()
	return s
}

// boot (re)starts the portal process over the same credential backend.
func (s *testServer) boot() {
	s.t.Helper()

	client := portalclient.New(s.apiURL, portalclient.Options{Logger: logging.Discard()})
	mgr := session.NewManager(s.open(), client, session.Options{Logger: logging.Discard()})
	caller := session.NewAuthorizedCaller(client, mgr)

	srv := httpapi.NewServer(httpapi.Deps{
		Sessions: mgr,
		Access:   access.NewRouter(),
		Patient:  patient.NewService(caller, s.clk),
		Provider: provider.NewService(caller),
		Profile:  profile.NewService(caller),
		Logger:   logging.Discard(),
	})
	portalSrv := httptest.NewServer(httpapi.NewRouter(srv))
	s.t.Cleanup(portalSrv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	mgr.Start(ctx)
	if _, err := mgr.WaitReady(ctx); err != nil {
		s.t.Fatalf("WaitReady: %v", err)
	}

	client2 := portalSrv.Client()
	client2.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

	s.baseURL = portalSrv.URL
	s.client = client2
}

func (s *testServer) url(path string) string {
	if strings.HasPrefix(path, "/") {
		return s.baseURL + path
	}
	return s.baseURL + "/" + path
}

func (s *testServer) doJSON(t *testing.T, method string, path string, body any) (int, []byte, http.Header) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.url(path), r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out, resp.Header
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func mustUnmarshal[T any](t *testing.T, b []byte) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v\nbody=%s", err, string(b))
	}
	return out
}

func requireErrorCode(t *testing.T, status int, body []byte, wantStatus int, wantCode string) {
	t.Helper()
	if status != wantStatus {
		t.Fatalf("status=%d want=%d body=%s", status, wantStatus, string(body))
	}
	got := mustUnmarshal[errorResponse](t, body)
	if got.Error.Code != wantCode {
		t.Fatalf("error.code=%q want=%q body=%s", got.Error.Code, wantCode, string(body))
	}
}

func requireRedirect(t *testing.T, status int, h http.Header, body []byte, want string) {
	t.Helper()
	if status != http.StatusSeeOther {
		t.Fatalf("status=%d want=303 body=%s", status, string(body))
	}
	if got := h.Get("Location"); got != want {
		t.Fatalf("Location=%q want=%q", got, want)
	}
}

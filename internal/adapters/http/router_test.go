package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/docker/docker/api/types"
	"github.com/gofiber/fiber/v2"
	"github.com/melih/podman-remote/internal/adapters/secrets"
	"github.com/melih/podman-remote/internal/core/domain"
	"github.com/melih/podman-remote/internal/core/ports/mocks"
	"github.com/melih/podman-remote/internal/core/services"
	"github.com/melih/podman-remote/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testToken = "abc123"

type gateway struct {
	app       *fiber.App
	engine    *mocks.ContainerEngine
	container *mocks.ContainerSession
	manager   *mocks.UnitManager
	unit      *mocks.UnitSession
}

func newGateway(t *testing.T) *gateway {
	t.Helper()
	g := &gateway{
		engine:    new(mocks.ContainerEngine),
		container: new(mocks.ContainerSession),
		manager:   new(mocks.UnitManager),
		unit:      new(mocks.UnitSession),
	}
	logger := logging.Discard()
	g.app = NewRouter(RouterConfig{
		Containers: services.NewContainerService(g.engine, logger),
		Services:   services.NewUnitService(g.manager, logger),
		Tokens:     secrets.NewStaticToken(testToken),
		Logger:     logger,
	})
	return g
}

// connected makes every Connect succeed with the shared session doubles.
func (g *gateway) connected() *gateway {
	g.engine.On("Connect", mock.Anything).Return(g.container, nil)
	g.container.On("Close").Return(nil)
	g.manager.On("Connect", mock.Anything).Return(g.unit, nil)
	g.unit.On("Close").Return(nil)
	return g
}

func (g *gateway) do(t *testing.T, method, path, authorization, body string) (int, string) {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	resp, err := g.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b)
}

func bearer(token string) string { return "Bearer " + token }

func containerDetail(id string, running bool) domain.ContainerDetail {
	return domain.ContainerDetail{
		ContainerJSONBase: &types.ContainerJSONBase{
			ID:    id,
			Name:  "/" + id,
			State: &types.ContainerState{Running: running},
		},
	}
}

func TestLivenessEndpointsNeedNoAuth(t *testing.T) {
	g := newGateway(t)

	for _, auth := range []string{"", bearer("wrong"), bearer(testToken), "Basic Zm9v"} {
		code, body := g.do(t, http.MethodGet, "/", auth, "")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "Hello, Podman Remote!", body)

		code, body = g.do(t, http.MethodGet, "/health", auth, "")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "OK", body)
	}
}

func TestProtectedRoutesRejectBadCredentials(t *testing.T) {
	g := newGateway(t)

	routes := []struct{ method, path, body string }{
		{http.MethodGet, "/containers/", ""},
		{http.MethodGet, "/containers", ""},
		{http.MethodGet, "/containers/web", ""},
		{http.MethodPut, "/containers/web", `{"running":true}`},
		{http.MethodGet, "/services/", ""},
		{http.MethodGet, "/services/nginx", ""},
		{http.MethodPut, "/services/nginx", `{"command":"start"}`},
	}
	headers := []string{"", "abc123", "Basic abc123", "bearer abc123", "Bearer  abc123", bearer("wrong"), bearer("abc12")}

	for _, rt := range routes {
		for _, h := range headers {
			code, body := g.do(t, rt.method, rt.path, h, rt.body)
			assert.Equal(t, http.StatusUnauthorized, code, "%s %s with %q", rt.method, rt.path, h)
			assert.Empty(t, body, "%s %s with %q", rt.method, rt.path, h)
		}
	}

	g.engine.AssertNotCalled(t, "Connect", mock.Anything)
	g.manager.AssertNotCalled(t, "Connect", mock.Anything)
}

func TestListContainersEmptyBackend(t *testing.T) {
	g := newGateway(t).connected()
	g.container.On("ListContainers", mock.Anything).Return([]domain.ContainerSummary{}, nil)

	code, body := g.do(t, http.MethodGet, "/containers/", bearer(testToken), "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, body)

	code, body = g.do(t, http.MethodGet, "/containers/", bearer("wrong"), "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Empty(t, body)
}

func TestListThenGetContainers(t *testing.T) {
	g := newGateway(t).connected()
	g.container.On("ListContainers", mock.Anything).Return([]domain.ContainerSummary{
		{ID: "web", Names: []string{"/web"}, State: "running"},
		{ID: "db", Names: []string{"/db"}, State: "exited"},
	}, nil)
	g.container.On("InspectContainer", mock.Anything, "web").Return(containerDetail("web", true), nil)
	g.container.On("InspectContainer", mock.Anything, "db").Return(containerDetail("db", false), nil)

	code, body := g.do(t, http.MethodGet, "/containers/", bearer(testToken), "")
	require.Equal(t, http.StatusOK, code)

	var list []domain.ContainerSummary
	require.NoError(t, json.Unmarshal([]byte(body), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "web", list[0].ID)
	assert.Equal(t, "db", list[1].ID)

	for _, c := range list {
		code, body := g.do(t, http.MethodGet, "/containers/"+c.ID, bearer(testToken), "")
		require.Equal(t, http.StatusOK, code)

		var detail domain.ContainerDetail
		require.NoError(t, json.Unmarshal([]byte(body), &detail))
		assert.Equal(t, c.ID, detail.ID)
	}
}

func TestGetContainerNotFound(t *testing.T) {
	g := newGateway(t).connected()
	g.container.On("InspectContainer", mock.Anything, "ghost").Return(domain.ContainerDetail{}, domain.ErrNotFound)

	code, body := g.do(t, http.MethodGet, "/containers/ghost", bearer(testToken), "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Empty(t, body)
}

func TestContainersEngineUnavailable(t *testing.T) {
	g := newGateway(t)
	g.engine.On("Connect", mock.Anything).Return(nil, errors.New("dial unix /var/run/docker.sock: connect: no such file or directory"))

	for _, path := range []string{"/containers/", "/containers/web"} {
		code, body := g.do(t, http.MethodGet, path, bearer(testToken), "")
		assert.Equal(t, http.StatusInternalServerError, code, path)
		assert.Empty(t, body, path)
	}
}

func TestUpdateContainer(t *testing.T) {
	g := newGateway(t).connected()
	g.container.On("StartContainer", mock.Anything, "web").Return(nil).Once()
	g.container.On("InspectContainer", mock.Anything, "web").Return(containerDetail("web", true), nil).Once()

	code, body := g.do(t, http.MethodPut, "/containers/web", bearer(testToken), `{"running":true}`)
	require.Equal(t, http.StatusOK, code)

	var detail domain.ContainerDetail
	require.NoError(t, json.Unmarshal([]byte(body), &detail))
	assert.Equal(t, "web", detail.ID)
	assert.True(t, detail.State.Running)

	g.container.On("StopContainer", mock.Anything, "web").Return(nil).Once()
	g.container.On("InspectContainer", mock.Anything, "web").Return(containerDetail("web", false), nil).Once()

	code, body = g.do(t, http.MethodPut, "/containers/web", bearer(testToken), `{"running":false}`)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal([]byte(body), &detail))
	assert.False(t, detail.State.Running)

	g.container.AssertExpectations(t)
}

func TestUpdateNonexistentContainerIsServerError(t *testing.T) {
	g := newGateway(t).connected()
	g.container.On("StartContainer", mock.Anything, "ghost").Return(errors.Join(domain.ErrNotFound, errors.New("No such container: ghost")))

	code, body := g.do(t, http.MethodPut, "/containers/ghost", bearer(testToken), `{"running":true}`)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Empty(t, body)
}

func TestUpdateContainerBadBody(t *testing.T) {
	g := newGateway(t)

	code, _ := g.do(t, http.MethodPut, "/containers/web", bearer(testToken), `{"running":`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = g.do(t, http.MethodPut, "/containers/web", bearer(testToken), `{}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, _ = g.do(t, http.MethodPut, "/containers/web", bearer(testToken), `{"running":"yes"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	g.engine.AssertNotCalled(t, "Connect", mock.Anything)
}

func TestListServices(t *testing.T) {
	g := newGateway(t).connected()
	g.unit.On("ListUnits", mock.Anything).Return([]domain.Unit{
		{Name: "nginx.service", LoadState: "loaded", ActiveState: "active", SubState: "running"},
		{Name: "dbus.socket", LoadState: "loaded", ActiveState: "active", SubState: "listening"},
	}, nil)

	code, body := g.do(t, http.MethodGet, "/services/", bearer(testToken), "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[{"name":"nginx.service","active_state":"active","sub_state":"running","load_state":"loaded"}]`, body)
}

func TestGetServiceNotFound(t *testing.T) {
	g := newGateway(t).connected()
	g.unit.On("ListUnits", mock.Anything).Return([]domain.Unit{{Name: "nginx.service"}}, nil)

	code, body := g.do(t, http.MethodGet, "/services/ghost", bearer(testToken), "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Empty(t, body)
}

func TestServicesBusUnavailable(t *testing.T) {
	g := newGateway(t)
	g.manager.On("Connect", mock.Anything).Return(nil, errors.New("DBUS_SESSION_BUS_ADDRESS is not set"))

	code, body := g.do(t, http.MethodGet, "/services/nginx", bearer(testToken), "")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Empty(t, body)
}

func TestEnableServiceNormalizesName(t *testing.T) {
	g := newGateway(t).connected()
	g.unit.On("EnableUnit", mock.Anything, "nginx.service").Return(nil).Once()
	g.unit.On("ListUnits", mock.Anything).Return([]domain.Unit{
		{Name: "nginx.service", LoadState: "loaded", ActiveState: "inactive", SubState: "dead"},
	}, nil)

	code, body := g.do(t, http.MethodPut, "/services/nginx", bearer(testToken), `{"command":"enable"}`)
	require.Equal(t, http.StatusOK, code)

	var info domain.ServiceInfo
	require.NoError(t, json.Unmarshal([]byte(body), &info))
	assert.Equal(t, "nginx.service", info.Name)

	g.unit.AssertExpectations(t)
}

func TestStartServiceThenGet(t *testing.T) {
	g := newGateway(t).connected()
	running := []domain.Unit{{Name: "nginx.service", LoadState: "loaded", ActiveState: "active", SubState: "running"}}
	g.unit.On("StartUnit", mock.Anything, "nginx.service").Return(nil).Once()
	g.unit.On("ListUnits", mock.Anything).Return(running, nil)

	code, _ := g.do(t, http.MethodPut, "/services/nginx.service", bearer(testToken), `{"command":"start"}`)
	require.Equal(t, http.StatusOK, code)

	code, body := g.do(t, http.MethodGet, "/services/nginx", bearer(testToken), "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"name":"nginx.service","active_state":"active","sub_state":"running","load_state":"loaded"}`, body)
}

func TestUpdateServiceCommandFailure(t *testing.T) {
	g := newGateway(t).connected()
	g.unit.On("RestartUnit", mock.Anything, "nginx.service").Return(errors.New("job failed"))

	code, body := g.do(t, http.MethodPut, "/services/nginx", bearer(testToken), `{"command":"restart"}`)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Empty(t, body)
}

func TestUpdateServiceInvalidCommand(t *testing.T) {
	g := newGateway(t)

	for _, body := range []string{`{"command":"reload"}`, `{"command":"START"}`, `{}`, `{"command":3}`} {
		code, _ := g.do(t, http.MethodPut, "/services/nginx", bearer(testToken), body)
		assert.Equal(t, http.StatusUnprocessableEntity, code, body)
	}

	g.manager.AssertNotCalled(t, "Connect", mock.Anything)
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	g := newGateway(t)

	code, body := g.do(t, http.MethodGet, "/volumes", "", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Empty(t, body)
}

type panickingContainers struct{ ContainerTranslator }

func (panickingContainers) List(context.Context) ([]domain.ContainerSummary, error) {
	panic("boom")
}

func TestPanicBecomesServerError(t *testing.T) {
	app := NewRouter(RouterConfig{
		Containers: panickingContainers{},
		Services:   services.NewUnitService(new(mocks.UnitManager), logging.Discard()),
		Tokens:     secrets.NewStaticToken(testToken),
		Logger:     logging.Discard(),
	})

	req := httptest.NewRequest(http.MethodGet, "/containers/", nil)
	req.Header.Set("Authorization", bearer(testToken))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
}

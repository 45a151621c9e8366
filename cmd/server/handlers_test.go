package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/aonescu/kubelens/internal/kube"
	"github.com/aonescu/kubelens/internal/kube/kubetest"
	"github.com/aonescu/kubelens/internal/poller"
	"github.com/aonescu/kubelens/internal/state"
	"github.com/aonescu/kubelens/internal/types"
)

const (
	podsPath     = "api/v1/namespaces/default/pods"
	servicesPath = "api/v1/namespaces/default/services"
)

func pods() *corev1.PodList {
	pod := func(name string, labels map[string]string) corev1.Pod {
		return corev1.Pod{ObjectMeta: metav1.ObjectMeta{Name: name, Labels: labels}}
	}
	return &corev1.PodList{Items: []corev1.Pod{
		pod("pod-1", map[string]string{"app": "pod-1", "version": "v1"}),
		pod("pod-2", map[string]string{"app": "pod-2", "version": "v1"}),
		pod("pod-3", map[string]string{"app": "pod-3", "version": "v2"}),
	}}
}

func services() *corev1.ServiceList {
	svc := func(name string) corev1.Service {
		return corev1.Service{ObjectMeta: metav1.ObjectMeta{Name: name}}
	}
	return &corev1.ServiceList{Items: []corev1.Service{svc("service-1"), svc("service-2"), svc("service-3")}}
}

func newTestServer(client *kubetest.Client) (*APIServer, *state.MemoryStore, *poller.Namespaces) {
	store := state.NewMemoryStore()
	ns := poller.NewNamespaces("default")
	return NewAPIServer(store, client, ns, nil), store, ns
}

func serve(api *APIServer, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	api.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, into any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(w.Body).Decode(into))
}

func TestAPIServer_HandleHealth(t *testing.T) {
	api, _, _ := newTestServer(kubetest.New())

	w := serve(api, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	decode(t, w, &response)
	assert.Equal(t, "healthy", response["status"])
}

func TestAPIServer_HandleReady(t *testing.T) {
	api, _, _ := newTestServer(kubetest.New())

	w := serve(api, http.MethodGet, "/ready", "")
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	decode(t, w, &response)
	assert.Equal(t, true, response["ready"])
	assert.Equal(t, false, response["collected"])
	assert.Contains(t, response["kinds"], "pods")
}

func TestAPIServer_HandleEvents(t *testing.T) {
	api, store, _ := newTestServer(kubetest.New())

	w := serve(api, http.MethodGet, "/api/v1/events", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Record(types.EventSnapshot{CollectedAt: at, Namespaces: []string{"default"}, Rows: []string{"older"}}))
	require.NoError(t, store.Record(types.EventSnapshot{CollectedAt: at.Add(time.Second), Namespaces: []string{"default"}, Rows: []string{"newer"}}))

	w = serve(api, http.MethodGet, "/api/v1/events", "")
	require.Equal(t, http.StatusOK, w.Code)
	var latest types.EventSnapshot
	decode(t, w, &latest)
	assert.Equal(t, []string{"newer"}, latest.Rows)

	w = serve(api, http.MethodGet, "/api/v1/events/history?limit=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var history struct {
		Snapshots []types.EventSnapshot `json:"snapshots"`
	}
	decode(t, w, &history)
	require.Len(t, history.Snapshots, 1)
	assert.Equal(t, []string{"newer"}, history.Snapshots[0].Rows)

	w = serve(api, http.MethodGet, "/api/v1/events/history?limit=many", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(api, http.MethodGet, "/api/v1/events/history?limit=-1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(api, http.MethodGet, "/api/v1/events/history?limit=0", "")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &history)
	assert.Len(t, history.Snapshots, 2)

	w = serve(api, http.MethodPost, "/api/v1/events", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestAPIServer_HandleRelatedBySelector(t *testing.T) {
	api, _, _ := newTestServer(kubetest.New().On(podsPath, pods()))

	w := serve(api, http.MethodGet, "/api/v1/related?kind=pods&selector=version=v1", "")
	require.Equal(t, http.StatusOK, w.Code)

	var response relatedResponse
	decode(t, w, &response)
	assert.Equal(t, "default", response.Namespace)
	assert.Equal(t, "selector=version=v1", response.Criteria)
	assert.Equal(t, []string{"pod-1", "pod-2"}, []string(response.Related))
}

func TestAPIServer_HandleRelatedNoneIsNull(t *testing.T) {
	api, _, _ := newTestServer(kubetest.New().On(podsPath, pods()))

	w := serve(api, http.MethodGet, "/api/v1/related?kind=pods&selector=app=missing", "")
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	decode(t, w, &response)
	value, present := response["related"]
	assert.True(t, present)
	assert.Nil(t, value)
}

func TestAPIServer_HandleRelatedByNames(t *testing.T) {
	api, _, _ := newTestServer(kubetest.New().On(servicesPath, services()))

	w := serve(api, http.MethodGet, "/api/v1/related?kind=services&names=service-3,service-1", "")
	require.Equal(t, http.StatusOK, w.Code)

	var response relatedResponse
	decode(t, w, &response)
	assert.Equal(t, []string{"service-1", "service-3"}, []string(response.Related))
}

func TestAPIServer_HandleRelatedFetchFailure(t *testing.T) {
	client := kubetest.New().Fail(podsPath, &kube.FetchError{Path: podsPath, Op: kube.OpRequest, Err: errors.New("connection refused")})
	api, _, _ := newTestServer(client)

	w := serve(api, http.MethodGet, "/api/v1/related?kind=pods&selector=version=v1", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestAPIServer_HandleRelatedBadRequest(t *testing.T) {
	api, _, _ := newTestServer(kubetest.New())

	tests := []struct {
		name   string
		target string
	}{
		{"unknown kind", "/api/v1/related?kind=widgets&selector=a=b"},
		{"missing criteria", "/api/v1/related?kind=pods"},
		{"both criteria", "/api/v1/related?kind=pods&selector=a=b&names=x"},
		{"bad selector", "/api/v1/related?kind=pods&selector=a=b=c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(api, http.MethodGet, tt.target, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestAPIServer_HandleDescribe(t *testing.T) {
	svc := &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{Name: "service-1"},
		Spec:       corev1.ServiceSpec{Selector: map[string]string{"version": "v1"}},
	}
	client := kubetest.New().
		On(servicesPath+"/service-1", svc).
		On(podsPath, pods())
	api, _, _ := newTestServer(client)

	w := serve(api, http.MethodGet, "/api/v1/describe?kind=service&name=service-1", "")
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Kind    string              `json:"kind"`
		Related map[string][]string `json:"relatedResources"`
	}
	decode(t, w, &response)
	assert.Equal(t, "Service", response.Kind)
	assert.Equal(t, []string{"pod-1", "pod-2"}, response.Related["pods"])

	w = serve(api, http.MethodGet, "/api/v1/describe?kind=pod&name=missing", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w = serve(api, http.MethodGet, "/api/v1/describe?kind=node&name=x", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(api, http.MethodGet, "/api/v1/describe?kind=pod", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPIServer_HandleNamespaces(t *testing.T) {
	api, _, ns := newTestServer(kubetest.New())

	w := serve(api, http.MethodGet, "/api/v1/namespaces", "")
	require.Equal(t, http.StatusOK, w.Code)
	var body namespacesBody
	decode(t, w, &body)
	assert.Equal(t, []string{"default"}, body.Namespaces)

	w = serve(api, http.MethodPut, "/api/v1/namespaces", `{"namespaces": ["team-a", " ", "team-b"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"team-a", "team-b"}, ns.Get())

	w = serve(api, http.MethodPut, "/api/v1/namespaces", `{"namespaces": []}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"team-a", "team-b"}, ns.Get(), "rejected update leaves the set alone")

	w = serve(api, http.MethodPut, "/api/v1/namespaces", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPIServer_CORSPreflight(t *testing.T) {
	api, _, _ := newTestServer(kubetest.New())

	w := serve(api, http.MethodOptions, "/api/v1/namespaces", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PUT")
}

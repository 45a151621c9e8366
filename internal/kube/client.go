// Package kube is the read-only transport between kubelens and a Kubernetes
// API server. It issues single GET requests against fully qualified API paths
// and decodes the responses into typed lists or server-side tables.
package kube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/rest"
)

// TableAccept asks the API server to convert a list into a meta.k8s.io/v1 Table.
const TableAccept = "application/json;as=Table;v=v1;g=meta.k8s.io"

var (
	// ErrTransport classifies failures to reach the server or non-2xx responses.
	ErrTransport = errors.New("kube: transport failure")
	// ErrDecode classifies responses whose body could not be decoded.
	ErrDecode = errors.New("kube: decode failure")
)

// Op identifies the stage of a request that failed.
type Op string

const (
	OpRequest Op = "request"
	OpDecode  Op = "decode"
)

// FetchError is returned for every failed Request.
type FetchError struct {
	Path string
	Op   Op
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %s: %v", e.Path, e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is lets errors.Is match the ErrTransport and ErrDecode sentinels.
func (e *FetchError) Is(target error) bool {
	switch target {
	case ErrTransport:
		return e.Op == OpRequest
	case ErrDecode:
		return e.Op == OpDecode
	}
	return false
}

// RequestOptions are the per-request knobs a Client honours.
type RequestOptions struct {
	Accept string
}

type RequestOption func(*RequestOptions)

// AsTable requests the server-side table representation of a list.
func AsTable() RequestOption {
	return func(o *RequestOptions) { o.Accept = TableAccept }
}

// BuildOptions folds opts into a RequestOptions value.
func BuildOptions(opts ...RequestOption) RequestOptions {
	var o RequestOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Client performs one GET against path and decodes the body into into.
// Implementations must not retry.
type Client interface {
	Request(ctx context.Context, path string, into any, opts ...RequestOption) error
}

// RESTClient implements Client on top of a client-go REST client.
type RESTClient struct {
	rest rest.Interface
}

func NewRESTClient(r rest.Interface) *RESTClient {
	return &RESTClient{rest: r}
}

func (c *RESTClient) Request(ctx context.Context, path string, into any, opts ...RequestOption) error {
	o := BuildOptions(opts...)

	req := c.rest.Get().AbsPath(path)
	if o.Accept != "" {
		req = req.SetHeader("Accept", o.Accept)
	}

	body, err := req.Do(ctx).Raw()
	if err != nil {
		return &FetchError{Path: path, Op: OpRequest, Err: err}
	}
	if err := json.Unmarshal(body, into); err != nil {
		return &FetchError{Path: path, Op: OpDecode, Err: err}
	}
	return nil
}

// Fetch requests path and decodes it into a new L.
func Fetch[L any](ctx context.Context, c Client, path string) (*L, error) {
	list := new(L)
	if err := c.Request(ctx, path, list); err != nil {
		return nil, asFetchError(path, err)
	}
	return list, nil
}

// FetchTable requests the table representation of the list at path.
func FetchTable(ctx context.Context, c Client, path string) (*metav1.Table, error) {
	table := &metav1.Table{}
	if err := c.Request(ctx, path, table, AsTable()); err != nil {
		return nil, asFetchError(path, err)
	}
	return table, nil
}

func asFetchError(path string, err error) error {
	var fe *FetchError
	if errors.As(err, &fe) {
		return err
	}
	return &FetchError{Path: path, Op: OpRequest, Err: err}
}

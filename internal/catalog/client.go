package catalog

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/watchfire-io/labwatch/internal/models"
)

// DefaultCallTimeout bounds each catalog call made by a Client.
const DefaultCallTimeout = 10 * time.Second

// Client is a Catalog backed by a remote catalog service.
type Client struct {
	conn    grpc.ClientConnInterface
	close   func() error
	timeout time.Duration
}

// Dial creates a client for the catalog service at addr.
func Dial(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to catalog: %w", err)
	}
	c := NewClient(conn)
	c.close = conn.Close
	return c, nil
}

// NewClient wraps an existing connection.
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn, timeout: DefaultCallTimeout}
}

// Close releases the connection if the client opened it.
func (c *Client) Close() error {
	if c.close == nil {
		return nil
	}
	return c.close()
}

func (c *Client) invoke(ctx context.Context, method string, in *structpb.Struct, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.conn.Invoke(ctx, method, in, out); err != nil {
		return fromStatus(err)
	}
	return nil
}

// RegisterLog implements Catalog.
func (c *Client) RegisterLog(ctx context.Context, runID int64, filename string) error {
	req := runRequest(runID, map[string]string{fieldFilename: filename})
	return c.invoke(ctx, MethodRegisterLog, req, new(emptypb.Empty))
}

// ReportPanic implements Catalog.
func (c *Client) ReportPanic(ctx context.Context, runID int64, signature string) error {
	req := runRequest(runID, map[string]string{fieldSignature: signature})
	return c.invoke(ctx, MethodReportPanic, req, new(emptypb.Empty))
}

// IsRunActive implements Catalog.
func (c *Client) IsRunActive(ctx context.Context, runID int64) (bool, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.invoke(ctx, MethodIsRunActive, runRequest(runID, nil), out); err != nil {
		return false, err
	}
	return out.GetValue(), nil
}

// ActiveRuns implements Catalog.
func (c *Client) ActiveRuns(ctx context.Context) ([]models.Run, error) {
	out := new(structpb.Struct)
	if err := c.invoke(ctx, MethodActiveRuns, &structpb.Struct{}, out); err != nil {
		return nil, err
	}
	return runsFromStruct(out)
}

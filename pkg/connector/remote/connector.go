// Package remote implements the Connector contract against a bare gRPC
// agent running inside an arbitrary remote environment that isn't
// Kubernetes or Helm-managed — the generic "other remote environments"
// case spec.md §1 calls out. The wire messages are plain structs carried
// as JSON over grpc-go's custom-codec support (see codec.go) rather than
// protoc-generated types, since no .proto sources ship with this
// connector's counterpart service; a real deployment would swap this
// codec for a compiled one without changing the dial/Invoke call sites
// below, which follow the teacher's worker-to-manager RPC style
// (grpc.NewClient + a small set of unary calls).
package remote

import (
	"context"
	"fmt"
	"io"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/streamflow-go/engine/pkg/connector"
	"github.com/streamflow-go/engine/pkg/log"
)

const (
	serviceName          = "streamflow.RemoteAgent"
	methodExec           = "/" + serviceName + "/Exec"
	methodDeploy         = "/" + serviceName + "/Deploy"
	methodUndeploy       = "/" + serviceName + "/Undeploy"
	methodResources      = "/" + serviceName + "/Resources"
	methodCopyToRemote   = "/" + serviceName + "/CopyToRemote"
	methodCopyFromRemote = "/" + serviceName + "/CopyFromRemote"
)

// Config addresses the remote agent and, optionally, the TLS material
// used to authenticate it.
type Config struct {
	Address  string
	Insecure bool
	TLS      credentials.TransportCredentials
}

// Connector drives a remote agent over gRPC, lazily dialing on first use
// and reusing the connection for every subsequent call.
type Connector struct {
	cfg Config

	mu         sync.Mutex
	conn       *grpc.ClientConn
	isDeployed bool
}

// NewConnector builds a Connector targeting cfg.Address.
func NewConnector(cfg Config) *Connector {
	return &Connector{cfg: cfg}
}

func (c *Connector) dial(ctx context.Context) (*grpc.ClientConn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return c.conn, nil
	}

	creds := c.cfg.TLS
	if creds == nil {
		creds = insecure.NewCredentials()
	}
	conn, err := grpc.NewClient(c.cfg.Address, grpc.WithTransportCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("dialing remote agent %s: %w", c.cfg.Address, err)
	}
	log.WithConnector(c.cfg.Address).Info().Msg("dialed remote agent")
	c.conn = conn
	return conn, nil
}

func (c *Connector) Deploy(ctx context.Context) error {
	c.mu.Lock()
	if c.isDeployed {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}
	var resp deployResponse
	if err := conn.Invoke(ctx, methodDeploy, &deployRequest{}, &resp, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return fmt.Errorf("remote deploy: %w", err)
	}
	c.mu.Lock()
	c.isDeployed = true
	c.mu.Unlock()
	return nil
}

func (c *Connector) Undeploy(ctx context.Context) error {
	c.mu.Lock()
	if !c.isDeployed {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}
	var resp deployResponse
	if err := conn.Invoke(ctx, methodUndeploy, &deployRequest{}, &resp, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return fmt.Errorf("remote undeploy: %w", err)
	}

	c.mu.Lock()
	c.isDeployed = false
	conn = c.conn
	c.conn = nil
	c.mu.Unlock()
	if conn != nil {
		return conn.Close()
	}
	return nil
}

func (c *Connector) Run(ctx context.Context, location connector.Location, opts connector.RunOptions) (*connector.RunResult, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}

	req := &execRequest{
		Location:      string(location),
		Command:       opts.Command,
		Workdir:       opts.Workdir,
		Stdin:         opts.Stdin,
		CaptureOutput: opts.CaptureOutput,
	}
	for _, e := range opts.Env {
		req.Env = append(req.Env, envVar{Name: e.Name, Value: e.Value})
	}

	var resp execResponse
	if err := conn.Invoke(ctx, methodExec, req, &resp, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, fmt.Errorf("remote exec on %s: %w", location, err)
	}
	var result *connector.RunResult
	if opts.CaptureOutput {
		result = &connector.RunResult{Stdout: resp.Stdout, ExitCode: resp.ExitCode}
	}
	if resp.ExitCode != 0 {
		return result, errNonZeroExit(resp.ExitCode)
	}
	return result, nil
}

func (c *Connector) GetAvailableResources(ctx context.Context, service string) ([]connector.Location, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	var resp resourcesResponse
	if err := conn.Invoke(ctx, methodResources, &resourcesRequest{Service: service}, &resp, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, fmt.Errorf("remote resources for %s: %w", service, err)
	}
	locations := make([]connector.Location, 0, len(resp.Locations))
	for _, l := range resp.Locations {
		locations = append(locations, connector.Location(l))
	}
	return locations, nil
}

// Copy streams a tar archive to or from the remote agent in fixed-size
// chunks over a client- or server-streaming RPC, mirroring the
// pod-exec tar pipes the Kubernetes connector uses in place of a real
// filesystem mount.
func (c *Connector) Copy(ctx context.Context, req connector.CopyRequest) error {
	switch req.Kind {
	case connector.LocalToRemote:
		for _, loc := range req.Locations {
			if err := c.copyToRemote(ctx, req.Src, req.Dst); err != nil {
				return fmt.Errorf("copy to %s: %w", loc, err)
			}
		}
		return nil
	case connector.RemoteToLocal:
		return c.copyFromRemote(ctx, req.Src, req.Dst)
	case connector.RemoteToRemote:
		return fmt.Errorf("remote-to-remote copy is not supported between two bare remote agents")
	default:
		return fmt.Errorf("unknown copy kind %v", req.Kind)
	}
}

func (c *Connector) copyToRemote(ctx context.Context, src, dst string) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}
	stream, err := conn.NewStream(ctx, &grpc.StreamDesc{ClientStreams: true}, methodCopyToRemote, grpc.CallContentSubtype(jsonCodecName))
	if err != nil {
		return fmt.Errorf("opening copy-to-remote stream: %w", err)
	}

	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(connector.WriteTar(pw, src, dst))
	}()

	buf := make([]byte, 32*1024)
	for {
		n, rerr := pr.Read(buf)
		if n > 0 {
			chunk := &copyChunkRequest{Dst: dst, Data: append([]byte(nil), buf[:n]...)}
			if serr := stream.SendMsg(chunk); serr != nil {
				return fmt.Errorf("sending copy chunk: %w", serr)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return fmt.Errorf("reading tar stream: %w", rerr)
		}
	}
	if err := stream.SendMsg(&copyChunkRequest{Dst: dst, Eof: true}); err != nil {
		return fmt.Errorf("closing copy stream: %w", err)
	}
	return stream.CloseSend()
}

func (c *Connector) copyFromRemote(ctx context.Context, src, dst string) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}
	stream, err := conn.NewStream(ctx, &grpc.StreamDesc{ServerStreams: true}, methodCopyFromRemote, grpc.CallContentSubtype(jsonCodecName))
	if err != nil {
		return fmt.Errorf("opening copy-from-remote stream: %w", err)
	}
	if err := stream.SendMsg(&copyStartRequest{Src: src}); err != nil {
		return fmt.Errorf("requesting remote tar stream: %w", err)
	}
	if err := stream.CloseSend(); err != nil {
		return err
	}

	pr, pw := io.Pipe()
	go func() {
		var chunkErr error
		for {
			var chunk copyChunkResponse
			if err := stream.RecvMsg(&chunk); err != nil {
				if err != io.EOF {
					chunkErr = err
				}
				break
			}
			if len(chunk.Data) > 0 {
				if _, werr := pw.Write(chunk.Data); werr != nil {
					chunkErr = werr
					break
				}
			}
			if chunk.Eof {
				break
			}
		}
		pw.CloseWithError(chunkErr)
	}()

	return connector.ExtractTarStream(pr, src, dst)
}

type errNonZeroExit int

func (e errNonZeroExit) Error() string { return fmt.Sprintf("remote command exited with code %d", int(e)) }

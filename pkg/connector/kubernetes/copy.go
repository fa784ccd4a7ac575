package kubernetes

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/tools/remotecommand"

	"github.com/streamflow-go/engine/pkg/connector"
)

// streamExec opens a pod-exec session with the caller's stdin/stdout wired
// to the given pipes, used by the tar-transfer copy paths below instead of
// execInPod's buffered, non-interactive form.
func (c *Connector) streamExec(ctx context.Context, pod, container, namespace string, command []string, stdin io.Reader, stdout io.Writer) error {
	_, restCfg, _, err := c.client(ctx)
	if err != nil {
		return err
	}
	cs := c.clientsetOrNil()
	req := cs.CoreV1().RESTClient().Post().
		Resource("pods").
		Name(pod).
		Namespace(namespace).
		SubResource("exec").
		VersionedParams(&corev1.PodExecOptions{
			Container: container,
			Command:   command,
			Stdin:     stdin != nil,
			Stdout:    stdout != nil,
			Stderr:    true,
			TTY:       false,
		}, scheme.ParameterCodec)

	executor, err := remotecommand.NewSPDYExecutor(restCfg, "POST", req.URL())
	if err != nil {
		return fmt.Errorf("building pod-exec executor for %s:%s: %w", pod, container, err)
	}
	return executor.StreamWithContext(ctx, remotecommand.StreamOptions{
		Stdin:  stdin,
		Stdout: stdout,
		Tty:    false,
	})
}

func (c *Connector) copyLocalToRemote(ctx context.Context, req connector.CopyRequest) error {
	var wg sync.WaitGroup
	errs := make([]error, len(req.Locations))
	for i, loc := range req.Locations {
		wg.Add(1)
		go func(i int, loc connector.Location) {
			defer wg.Done()
			errs[i] = c.copyLocalToRemoteSingle(ctx, req.Src, req.Dst, loc)
		}(i, loc)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Connector) copyLocalToRemoteSingle(ctx context.Context, src, dst string, location connector.Location) error {
	pod, container, err := splitLocation(location)
	if err != nil {
		return err
	}
	_, _, namespace, err := c.client(ctx)
	if err != nil {
		return err
	}

	pr, pw := io.Pipe()
	var tarErr error
	go func() {
		tarErr = connector.WriteTar(pw, src, dst)
		pw.Close()
	}()

	streamErr := c.streamExec(ctx, pod, container, namespace, []string{"tar", "xf", "-", "-C", "/"}, pr, nil)
	if tarErr != nil {
		return fmt.Errorf("error copying %s to %s on location %s: %w", src, dst, location, tarErr)
	}
	if streamErr != nil {
		return fmt.Errorf("error copying %s to %s on location %s: %w", src, dst, location, streamErr)
	}
	return nil
}

func (c *Connector) copyRemoteToLocal(ctx context.Context, src, dst string, location connector.Location) error {
	pod, container, err := splitLocation(location)
	if err != nil {
		return err
	}
	_, _, namespace, err := c.client(ctx)
	if err != nil {
		return err
	}

	pr, pw := io.Pipe()
	var streamErr error
	go func() {
		streamErr = c.streamExec(ctx, pod, container, namespace,
			[]string{"tar", "chf", "-", "-C", "/", relPath(src)}, nil, pw)
		pw.Close()
	}()

	if extractErr := connector.ExtractTarStream(pr, src, dst); extractErr != nil {
		return fmt.Errorf("error copying %s from location %s to %s: %w", src, location, dst, extractErr)
	}
	if streamErr != nil {
		return fmt.Errorf("error copying %s from location %s to %s: %w", src, location, dst, streamErr)
	}
	return nil
}

func (c *Connector) copyRemoteToRemote(ctx context.Context, req connector.CopyRequest) error {
	if req.SourceLocation == "" {
		return fmt.Errorf("source location is mandatory for remote to remote copy")
	}
	locations := append([]connector.Location(nil), req.Locations...)

	for i, loc := range locations {
		if loc == req.SourceLocation {
			if req.Src != req.Dst {
				if _, err := c.Run(ctx, loc, connector.RunOptions{Command: []string{"/bin/cp", "-rf", req.Src, req.Dst}}); err != nil {
					return err
				}
			}
			locations = append(locations[:i], locations[i+1:]...)
			break
		}
	}
	if len(locations) == 0 {
		return nil
	}

	// Cross-pod copy: stage through a local temp directory since the two
	// pods cannot stream directly to each other.
	staging, err := os.MkdirTemp("", "streamflow-r2r-*")
	if err != nil {
		return fmt.Errorf("creating staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	if err := c.copyRemoteToLocal(ctx, req.Src, staging, req.SourceLocation); err != nil {
		return err
	}

	var wg sync.WaitGroup
	errs := make([]error, len(locations))
	for i, loc := range locations {
		wg.Add(1)
		go func(i int, loc connector.Location) {
			defer wg.Done()
			errs[i] = c.copyLocalToRemoteSingle(ctx, staging, req.Dst, loc)
		}(i, loc)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func relPath(p string) string {
	return strings.TrimPrefix(p, "/")
}

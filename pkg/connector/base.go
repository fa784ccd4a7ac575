package connector

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path"
	"strings"
	"sync"

	"github.com/streamflow-go/engine/internal/util"
)

// RunCommandBuilder is implemented by a connector that embeds BaseConnector
// (in this module, LocalConnector) to turn an already shell-encoded command string into
// the final argv that actually reaches that backend (e.g. "kubectl exec
// -it pod -c container -- sh -c <encoded>").
type RunCommandBuilder interface {
	// BuildRunCommand produces the argv that runs command on location.
	// interactive requests a connected stdin pipe (used by tar transfer).
	BuildRunCommand(command string, location Location, interactive bool) []string
	// Shell names the shell used to decode base64-encoded commands.
	Shell() string
}

// BaseConnector implements the tar-over-pipe Copy engine and base64-encoded
// Run contract over local subprocesses (spec §4.2). LocalConnector embeds it
// and supplies a RunCommandBuilder; the Kubernetes and remote connectors
// implement Connector directly and reuse only WriteTar/ExtractTarStream.
type BaseConnector struct {
	Builder            RunCommandBuilder
	TransferBufferSize int

	mu         sync.Mutex
	isDeployed bool
}

func (c *BaseConnector) shell() string {
	if c.Builder.Shell() != "" {
		return c.Builder.Shell()
	}
	return "sh"
}

// Run assembles, base64-encodes, and executes command on location exactly
// as spec §4.2 describes.
func (c *BaseConnector) Run(ctx context.Context, location Location, opts RunOptions) (*RunResult, error) {
	envVars := make([]util.EnvVar, 0, len(opts.Env))
	for _, e := range opts.Env {
		envVars = append(envVars, util.EnvVar{Name: e.Name, Value: e.Value})
	}
	assembled := util.BuildCommand(util.CommandRequest{
		Command: opts.Command,
		Env:     envVars,
		Workdir: opts.Workdir,
		Stdin:   opts.Stdin,
		Stdout:  opts.Stdout,
		Stderr:  opts.Stderr,
	})
	encoded := util.EncodeCommand(assembled, c.shell())
	argv := c.Builder.BuildRunCommand(encoded, location, false)

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	if !opts.CaptureOutput {
		if err := cmd.Run(); err != nil {
			return nil, timeoutOrWrap(ctx, "run", err)
		}
		return nil, nil
	}

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stdout
	err := cmd.Run()
	if err != nil {
		if ctx.Err() != nil {
			return nil, timeoutOrWrap(ctx, "run", err)
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			return &RunResult{
				Stdout:   strings.TrimSpace(stdout.String()),
				ExitCode: exitErr.ExitCode(),
			}, nil
		}
		return nil, timeoutOrWrap(ctx, "run", err)
	}
	return &RunResult{Stdout: strings.TrimSpace(stdout.String()), ExitCode: 0}, nil
}

func timeoutOrWrap(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil {
		return &connectorTimeoutError{op: op}
	}
	return fmt.Errorf("%s: %w", op, err)
}

type connectorTimeoutError struct{ op string }

func (e *connectorTimeoutError) Error() string { return fmt.Sprintf("timeout: %s", e.op) }

// Copy realises the three copy kinds of spec §4.2.
func (c *BaseConnector) Copy(ctx context.Context, req CopyRequest) error {
	switch req.Kind {
	case LocalToRemote:
		return c.copyLocalToRemote(ctx, req)
	case RemoteToLocal:
		if len(req.Locations) > 1 {
			return fmt.Errorf("copy from multiple locations is not supported")
		}
		if len(req.Locations) == 0 {
			return fmt.Errorf("remote to local copy requires exactly one location")
		}
		return c.copyRemoteToLocal(ctx, req)
	case RemoteToRemote:
		if req.SourceLocation == "" {
			return fmt.Errorf("source location is mandatory for remote to remote copy")
		}
		return c.copyRemoteToRemote(ctx, req)
	default:
		return fmt.Errorf("unsupported copy kind %s", req.Kind)
	}
}

func (c *BaseConnector) copyLocalToRemote(ctx context.Context, req CopyRequest) error {
	var wg sync.WaitGroup
	errs := make([]error, len(req.Locations))
	for i, loc := range req.Locations {
		wg.Add(1)
		go func(i int, loc Location) {
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

func (c *BaseConnector) copyLocalToRemoteSingle(ctx context.Context, src, dst string, location Location) error {
	argv := c.Builder.BuildRunCommand("tar xf - -C /", location, true)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("opening stdin to %s: %w", location, err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting tar extraction on %s: %w", location, err)
	}

	tarErr := WriteTar(stdin, src, dst)
	stdin.Close()
	waitErr := cmd.Wait()

	if tarErr != nil {
		return fmt.Errorf("error copying %s to %s on location %s: %w", src, dst, location, tarErr)
	}
	if waitErr != nil {
		return fmt.Errorf("error copying %s to %s on location %s: %w", src, dst, location, waitErr)
	}
	return nil
}

func (c *BaseConnector) copyRemoteToLocal(ctx context.Context, req CopyRequest) error {
	location := req.Locations[0]
	relSrc := strings.TrimPrefix(req.Src, "/")
	argv := c.Builder.BuildRunCommand(fmt.Sprintf("tar chf - -C / %s", relSrc), location, false)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("opening stdout from %s: %w", location, err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting tar archival on %s: %w", location, err)
	}

	extractErr := ExtractTarStream(stdout, req.Src, req.Dst)
	waitErr := cmd.Wait()

	if extractErr != nil {
		return fmt.Errorf("error copying %s from location %s to %s: %w", req.Src, location, req.Dst, extractErr)
	}
	if waitErr != nil {
		return fmt.Errorf("error copying %s from location %s to %s: %w", req.Src, location, req.Dst, waitErr)
	}
	return nil
}

func (c *BaseConnector) copyRemoteToRemote(ctx context.Context, req CopyRequest) error {
	srcConnector := req.SourceConnector
	locations := append([]Location(nil), req.Locations...)

	if sameConnector(srcConnector, c) {
		for i, loc := range locations {
			if loc == req.SourceLocation {
				if req.Src != req.Dst {
					if _, err := c.Run(ctx, loc, RunOptions{Command: []string{"/bin/cp", "-rf", req.Src, req.Dst}}); err != nil {
						return err
					}
				}
				locations = append(locations[:i], locations[i+1:]...)
				break
			}
		}
	}
	if len(locations) == 0 {
		return nil
	}

	srcIsDir := false
	if path.Base(req.Src) != path.Base(req.Dst) {
		probeConnector := srcConnector
		if probeConnector == nil {
			probeConnector = c
		}
		result, err := probeConnector.Run(ctx, req.SourceLocation, RunOptions{Command: []string{"test", "-d", req.Src}, CaptureOutput: true})
		if err != nil {
			return fmt.Errorf("probing source kind for %s: %w", req.Src, err)
		}
		srcIsDir = result != nil && result.ExitCode == 0
	}
	writeCommand := remoteToRemoteWriteCommand(req.Src, req.Dst, srcIsDir)

	readerCmd, reader, err := openRemoteReader(ctx, srcConnector, req.SourceLocation, req.Src)
	if err != nil {
		return err
	}

	type writer struct {
		loc   Location
		cmd   *exec.Cmd
		stdin interface{ Close() error }
		err   error
	}
	writers := make([]*writer, 0, len(locations))
	for _, loc := range locations {
		argv := c.Builder.BuildRunCommand(writeCommand, loc, true)
		wcmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
		stdin, err := wcmd.StdinPipe()
		if err != nil {
			return fmt.Errorf("opening writer stdin on %s: %w", loc, err)
		}
		if err := wcmd.Start(); err != nil {
			return fmt.Errorf("starting writer on %s: %w", loc, err)
		}
		writers = append(writers, &writer{loc: loc, cmd: wcmd, stdin: stdin})
	}

	buf := make([]byte, bufferSizeOrDefault(c.TransferBufferSize))
	var copyErr error
	for {
		n, rerr := reader.Read(buf)
		if n > 0 {
			var wg sync.WaitGroup
			wg.Add(len(writers))
			for _, w := range writers {
				go func(w *writer) {
					defer wg.Done()
					if w.err != nil {
						return
					}
					if ws, ok := w.stdin.(interface{ Write([]byte) (int, error) }); ok {
						if _, err := ws.Write(buf[:n]); err != nil {
							w.err = fmt.Errorf("writing to %s: %w", w.loc, err)
						}
					}
				}(w)
			}
			wg.Wait()
		}
		if rerr != nil {
			if !errors.Is(rerr, io.EOF) {
				copyErr = rerr
			}
			break
		}
	}

	for _, w := range writers {
		w.stdin.Close()
	}
	for _, w := range writers {
		waitErr := w.cmd.Wait()
		if copyErr == nil {
			if w.err != nil {
				copyErr = w.err
			} else if waitErr != nil {
				copyErr = fmt.Errorf("writer on %s failed: %w", w.loc, waitErr)
			}
		}
	}
	if readerCmd != nil {
		_ = readerCmd.Wait()
	}
	return copyErr
}

func bufferSizeOrDefault(n int) int {
	if n <= 0 {
		return 64 * 1024
	}
	return n
}

func sameConnector(a Connector, b *BaseConnector) bool {
	if a == nil {
		return true
	}
	type embedder interface{ base() *BaseConnector }
	if e, ok := a.(embedder); ok {
		return e.base() == b
	}
	return false
}

// remoteToRemoteWriteCommand implements the write-command selection rule
// of spec §4.2: matching basenames preserve the archived top-level name;
// differing basenames use the caller's `test -d src` probe result to pick
// the directory (--strip-components) or file (redirect) extraction form.
func remoteToRemoteWriteCommand(src, dst string, srcIsDir bool) string {
	if path.Base(src) == path.Base(dst) {
		return fmt.Sprintf("tar xf - -C %s", path.Dir(dst))
	}
	if srcIsDir {
		return RemoteToRemoteWriteCommandForDir(dst)
	}
	return fmt.Sprintf("tar xf - -O > %s", dst)
}

// RemoteToRemoteWriteCommandForDir is the directory-form write command used
// when the caller has already probed `test -d src` and found a directory.
func RemoteToRemoteWriteCommandForDir(dst string) string {
	return fmt.Sprintf("tar xf - -C %s --strip-components 1", dst)
}

func openRemoteReader(ctx context.Context, srcConnector Connector, location Location, src string) (*exec.Cmd, interface{ Read([]byte) (int, error) }, error) {
	base, ok := srcConnector.(interface{ base() *BaseConnector })
	if !ok {
		return nil, nil, fmt.Errorf("source connector does not support streaming reads")
	}
	b := base.base()
	dirname, basename := path.Split(src)
	if dirname == "" {
		dirname = "/"
	}
	argv := b.Builder.BuildRunCommand(fmt.Sprintf("tar chf - -C %s %s", strings.TrimSuffix(dirname, "/"), basename), location, false)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("opening reader stdout on %s: %w", location, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("starting reader on %s: %w", location, err)
	}
	return cmd, stdout, nil
}

func (c *BaseConnector) base() *BaseConnector { return c }

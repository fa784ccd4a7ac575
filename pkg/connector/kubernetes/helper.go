package kubernetes

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/streamflow-go/engine/internal/util"
	"github.com/streamflow-go/engine/pkg/connector"
)

// buildHelperFile writes the per-invocation helper script of spec §6
// ("#!/bin/sh\n<export lines>\n<optional cd>\nsh -c \"$(echo $@ | base64
// --decode)\"\n"), uploads it to pod:container at the same path it was
// written to locally, and returns that remote path.
func (c *Connector) buildHelperFile(ctx context.Context, pod, container, namespace string, env []util.EnvVar, workdir string) (string, error) {
	content := "#!/bin/sh\n"
	for _, e := range env {
		content += fmt.Sprintf("export %s=\"%s\"\n", e.Name, e.Value)
	}
	if workdir != "" {
		content += fmt.Sprintf("cd %s\n", workdir)
	}
	content += `sh -c "$(echo $@ | base64 --decode)"` + "\n"

	f, err := os.CreateTemp("", "streamflow-helper-*")
	if err != nil {
		return "", fmt.Errorf("creating helper script: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return "", fmt.Errorf("writing helper script: %w", err)
	}
	f.Close()
	if err := os.Chmod(path, 0o755); err != nil {
		return "", fmt.Errorf("marking helper script executable: %w", err)
	}

	_, restCfg, _, err := c.client(ctx)
	if err != nil {
		return "", err
	}

	location := connector.Location(fmt.Sprintf("%s:%s", pod, container))
	if _, err := execInPod(ctx, c.clientsetOrNil(), restCfg, namespace, pod, container,
		[]string{"mkdir", "-p", filepath.Dir(path)}, false); err != nil {
		return "", fmt.Errorf("creating helper script directory on %s: %w", location, err)
	}

	if err := c.copyLocalToRemoteSingle(ctx, path, path, location); err != nil {
		return "", fmt.Errorf("uploading helper script to %s: %w", location, err)
	}
	return path, nil
}

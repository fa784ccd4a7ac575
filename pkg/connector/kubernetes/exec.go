package kubernetes

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/remotecommand"
	"sigs.k8s.io/yaml"

	"github.com/streamflow-go/engine/pkg/connector"
	"github.com/streamflow-go/engine/pkg/contract"
)

// execStatus mirrors the YAML document delivered on pod-exec's error
// channel (channel 3): {status: Success|Failure, details.causes[0].message}.
type execStatus struct {
	Status  string `json:"status"`
	Details struct {
		Causes []struct {
			Message string `json:"message"`
		} `json:"causes"`
	} `json:"details"`
}

// execInPod runs command inside pod:container over the SPDY-multiplexed
// remote-command API (spec §4.3 channel layout: 0 stdin, 1 stdout, 2
// stderr, 3 error). When capture is set the combined stdout is returned
// with an exit code parsed from the error channel's status document.
func execInPod(ctx context.Context, cs *kubernetes.Clientset, restCfg *rest.Config, namespace, pod, container string, command []string, capture bool) (*connector.RunResult, error) {
	req := cs.CoreV1().RESTClient().Post().
		Resource("pods").
		Name(pod).
		Namespace(namespace).
		SubResource("exec").
		VersionedParams(&corev1.PodExecOptions{
			Container: container,
			Command:   command,
			Stdin:     false,
			Stdout:    true,
			Stderr:    true,
			TTY:       false,
		}, scheme.ParameterCodec)

	executor, err := remotecommand.NewSPDYExecutor(restCfg, "POST", req.URL())
	if err != nil {
		return nil, fmt.Errorf("building pod-exec executor for %s:%s: %w", pod, container, err)
	}

	var stdout, stderr bytes.Buffer
	streamErr := executor.StreamWithContext(ctx, remotecommand.StreamOptions{
		Stdout: &stdout,
		Stderr: &stderr,
		Tty:    false,
	})

	if !capture {
		if streamErr != nil {
			return nil, exitCodeFromStreamError(streamErr)
		}
		return nil, nil
	}

	exitCode := 0
	if streamErr != nil {
		exitCode = parseExitCode(streamErr)
	}
	return &connector.RunResult{
		Stdout:   strings.TrimSpace(stdout.String()),
		ExitCode: exitCode,
	}, nil
}

// exitCodeFromStreamError surfaces a non-capturing Run failure as a
// connector error carrying the parsed exit code.
func exitCodeFromStreamError(err error) error {
	return &contract.ConnectorError{ExitCode: parseExitCode(err)}
}

// parseExitCode extracts the exit code from a CodeExitError-shaped stream
// failure, following spec §6: "Success" -> 0, otherwise the first cause's
// message parsed as an integer.
func parseExitCode(err error) int {
	if ec, ok := err.(interface{ ExitStatus() (int, error) }); ok {
		if code, cerr := ec.ExitStatus(); cerr == nil {
			return code
		}
	}
	var status execStatus
	if yamlErr := yaml.Unmarshal([]byte(err.Error()), &status); yamlErr == nil {
		if status.Status == "Success" {
			return 0
		}
		if len(status.Details.Causes) > 0 {
			var code int
			if _, scanErr := fmt.Sscanf(status.Details.Causes[0].Message, "%d", &code); scanErr == nil {
				return code
			}
		}
	}
	return 1
}

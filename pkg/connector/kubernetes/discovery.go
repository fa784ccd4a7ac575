package kubernetes

import (
	"context"
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/streamflow-go/engine/pkg/connector"
)

// discover lists running pods in the release's namespace with label
// selector app.kubernetes.io/instance=<releaseName>, registering
// "<pod>:<service>" for each pod whose containers include service.
func (c *Connector) discover(ctx context.Context, service string) ([]connector.Location, error) {
	cs, _, namespace, err := c.client(ctx)
	if err != nil {
		return nil, err
	}

	pods, err := cs.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{
		LabelSelector: fmt.Sprintf("app.kubernetes.io/instance=%s", c.cfg.ReleaseName),
		FieldSelector: "status.phase=Running",
	})
	if err != nil {
		return nil, fmt.Errorf("listing pods for release %s: %w", c.cfg.ReleaseName, err)
	}

	var locations []connector.Location
	for _, pod := range pods.Items {
		for _, container := range pod.Spec.Containers {
			if container.Name == service {
				locations = append(locations, connector.Location(fmt.Sprintf("%s:%s", pod.Name, service)))
				break
			}
		}
	}
	return locations, nil
}

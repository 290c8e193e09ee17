package k8s

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pet2cattle/aws-dashboard/pkg/data"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/cli-runtime/pkg/genericclioptions"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
)

const (
	DefaultNamespace   = "default"
	DefaultPodSelector = "app=aws-dashboard"

	statusTimeout = 3 * time.Second
)

// $ kubectl get pods -n <namespace> -l app=aws-dashboard --field-selector=status.phase=Running
// NAME                             READY   STATUS    RESTARTS   AGE
// aws-dashboard-6d4f9c7b8-2xkqp    1/1     Running   0          4m

// StatusCollector reports how many dashboard pods are running next to this one
type StatusCollector struct {
	clientset kubernetes.Interface
	clientErr error
	namespace string
	podName   string
	selector  string
}

// NewStatusCollector builds a client from the in-cluster service account, falling back
// to the kubeconfig resolved by getter. A client that cannot be built is reported by
// Status, it is never fatal.
func NewStatusCollector(getter genericclioptions.RESTClientGetter, namespace, podName, selector string) *StatusCollector {
	collector := &StatusCollector{
		namespace: namespace,
		podName:   podName,
		selector:  selector,
	}

	config, err := rest.InClusterConfig()
	if err != nil {
		if getter == nil {
			collector.clientErr = errors.New("not running in a cluster and no kubeconfig available")
			return collector
		}
		config, err = getter.ToRESTConfig()
	}
	if err != nil {
		collector.clientErr = fmt.Errorf("failed to load kubernetes config: %w", err)
		return collector
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		collector.clientErr = fmt.Errorf("failed to create kubernetes client: %w", err)
		return collector
	}
	collector.clientset = clientset

	return collector
}

// NewStatusCollectorWithClient creates a collector with a custom clientset (for testing)
func NewStatusCollectorWithClient(clientset kubernetes.Interface, namespace, podName, selector string) *StatusCollector {
	return &StatusCollector{
		clientset: clientset,
		namespace: namespace,
		podName:   podName,
		selector:  selector,
	}
}

func (c *StatusCollector) queryNamespace() string {
	if c.namespace == "" {
		return DefaultNamespace
	}
	return c.namespace
}

func (c *StatusCollector) currentPod() string {
	if c.podName == "" {
		return data.NotAvailable
	}
	return c.podName
}

// Status counts the running pods matching the selector
func (c *StatusCollector) Status(ctx context.Context) data.OrchestrationStatus {
	status := data.OrchestrationStatus{
		CurrentPod: c.currentPod(),
		Namespace:  c.queryNamespace(),
	}

	if c.clientErr != nil {
		status.Error = c.clientErr.Error()
		return status
	}

	selector := c.selector
	if selector == "" {
		selector = DefaultPodSelector
	}

	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()

	pods, err := c.clientset.CoreV1().Pods(status.Namespace).List(ctx, metav1.ListOptions{
		LabelSelector: selector,
	})
	if err != nil {
		status.Error = fmt.Sprintf("failed to list pods: %v", err)
		return status
	}

	for _, pod := range pods.Items {
		if pod.Status.Phase == corev1.PodRunning {
			status.PodCount++
		}
	}

	return status
}

package printutils

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pet2cattle/aws-dashboard/pkg/data"
	"gopkg.in/yaml.v3"
	v1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/cli-runtime/pkg/printers"
)

// Snapshot is one aggregation together with the pod status, as printed by the CLI
type Snapshot struct {
	Resources     data.AggregateResult     `json:"resources" yaml:"resources"`
	Orchestration data.OrchestrationStatus `json:"orchestration" yaml:"orchestration"`
}

// PrintSnapshot writes the snapshot as kubectl-style tables, or as json / yaml
func PrintSnapshot(w io.Writer, snapshot Snapshot, output string, noHeaders bool) error {
	switch output {
	case "json":
		jsonBytes, err := json.MarshalIndent(snapshot, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(jsonBytes))
		return err
	case "yaml":
		yamlBytes, err := yaml.Marshal(snapshot)
		if err != nil {
			return err
		}
		_, err = w.Write(yamlBytes)
		return err
	case "", "wide":
	default:
		return fmt.Errorf("unsupported output format %q", output)
	}

	if snapshot.Resources.DemoMode {
		fmt.Fprintln(w, "# DEMO MODE: AWS credentials are not usable, showing sample data")
	}

	result := snapshot.Resources
	tables := []struct {
		title string
		table *v1.Table
	}{
		{"EC2 INSTANCES", instancesTable(result.Instances)},
		{"VPCS", networksTable(result.Networks)},
		{"LOAD BALANCERS", loadBalancersTable(result.LoadBalancers)},
		{"AMIS", imagesTable(result.Images)},
		{"ORCHESTRATION", orchestrationTable(snapshot.Orchestration)},
	}

	// Create a table printer shared by every section
	printer := printers.NewTablePrinter(printers.PrintOptions{NoHeaders: noHeaders})
	for i, t := range tables {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if !noHeaders {
			fmt.Fprintf(w, "# %s\n", t.title)
		}
		if err := printer.PrintObj(t.table, w); err != nil {
			return fmt.Errorf("error printing table: %w", err)
		}
	}

	return nil
}

func instancesTable(rows []data.InstanceRow) *v1.Table {
	table := &v1.Table{
		ColumnDefinitions: []v1.TableColumnDefinition{
			{Name: "ID", Type: "string"},
			{Name: "STATE", Type: "string"},
			{Name: "TYPE", Type: "string"},
			{Name: "PUBLIC IP", Type: "string"},
		},
	}
	for _, row := range rows {
		table.Rows = append(table.Rows, v1.TableRow{
			Cells: []interface{}{row.ID, row.State, row.Type, row.PublicIP},
		})
	}
	return table
}

func networksTable(rows []data.NetworkRow) *v1.Table {
	table := &v1.Table{
		ColumnDefinitions: []v1.TableColumnDefinition{
			{Name: "VPC ID", Type: "string"},
			{Name: "CIDR", Type: "string"},
		},
	}
	for _, row := range rows {
		table.Rows = append(table.Rows, v1.TableRow{
			Cells: []interface{}{row.ID, row.CIDR},
		})
	}
	return table
}

func loadBalancersTable(rows []data.LoadBalancerRow) *v1.Table {
	table := &v1.Table{
		ColumnDefinitions: []v1.TableColumnDefinition{
			{Name: "LB NAME", Type: "string"},
			{Name: "DNS NAME", Type: "string"},
		},
	}
	for _, row := range rows {
		table.Rows = append(table.Rows, v1.TableRow{
			Cells: []interface{}{row.Name, row.DNSName},
		})
	}
	return table
}

func imagesTable(rows []data.ImageRow) *v1.Table {
	table := &v1.Table{
		ColumnDefinitions: []v1.TableColumnDefinition{
			{Name: "AMI ID", Type: "string"},
			{Name: "NAME", Type: "string"},
		},
	}
	for _, row := range rows {
		table.Rows = append(table.Rows, v1.TableRow{
			Cells: []interface{}{row.ID, row.Name},
		})
	}
	return table
}

func orchestrationTable(status data.OrchestrationStatus) *v1.Table {
	errorText := status.Error
	if errorText == "" {
		errorText = "-"
	}
	return &v1.Table{
		ColumnDefinitions: []v1.TableColumnDefinition{
			{Name: "NAMESPACE", Type: "string"},
			{Name: "CURRENT POD", Type: "string"},
			{Name: "RUNNING PODS", Type: "number"},
			{Name: "ERROR", Type: "string"},
		},
		Rows: []v1.TableRow{
			{Cells: []interface{}{status.Namespace, status.CurrentPod, status.PodCount, errorText}},
		},
	}
}

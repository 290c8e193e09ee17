package printutils

import (
	"fmt"
	"io"

	"github.com/pet2cattle/aws-dashboard/pkg/data"
	v1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/cli-runtime/pkg/printers"
)

func PrintWhoAmI(w io.Writer, noHeaders bool, region, source string, usable bool, identity *data.CallerIdentity) error {
	// Create a table printer
	printer := printers.NewTablePrinter(printers.PrintOptions{NoHeaders: noHeaders})

	table := &v1.Table{
		ColumnDefinitions: []v1.TableColumnDefinition{
			{Name: "COMPONENT", Type: "string"},
			{Name: "ATTRIBUTE", Type: "string"},
			{Name: "VALUE", Type: "string"},
		},
	}

	table.Rows = append(table.Rows, v1.TableRow{
		Cells: []interface{}{"Config", "Region", region},
	})
	table.Rows = append(table.Rows, v1.TableRow{
		Cells: []interface{}{"Config", "Credential Source", source},
	})
	table.Rows = append(table.Rows, v1.TableRow{
		Cells: []interface{}{"Probe", "Usable", fmt.Sprintf("%t", usable)},
	})

	if identity != nil {
		table.Rows = append(table.Rows, v1.TableRow{
			Cells: []interface{}{"AWS", "ARN", identity.Arn},
		})
		table.Rows = append(table.Rows, v1.TableRow{
			Cells: []interface{}{"AWS", "Account", identity.Account},
		})
		table.Rows = append(table.Rows, v1.TableRow{
			Cells: []interface{}{"AWS", "User ID", identity.UserID},
		})
	}

	// Print the table
	if err := printer.PrintObj(table, w); err != nil {
		return fmt.Errorf("error printing table: %w", err)
	}
	return nil
}

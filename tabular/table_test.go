package tabular_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/networkteam/cvsuite/tabular"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestOpen_CSV(t *testing.T) {
	path := writeFile(t, "user_create.csv", "\ufefffirstName,email,employeeId\n"+
		"Alice,alice@example.com,E-1\n"+
		"Bob,bob@example.com,E-2\n"+
		",,\n")

	table, err := tabular.Open(path, tabular.Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"firstName", "email", "employeeId"}, table.Header())
	assert.Equal(t, 3, table.RowCount())
	assert.Equal(t, 2, table.DataRows())

	v, err := table.Cell("email", 2)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", v)

	v, err = table.Cell("EmployeeID", 3)
	require.NoError(t, err)
	assert.Equal(t, "E-2", v, "column lookup ignores case")

	_, err = table.Cell("manager", 2)
	assert.ErrorIs(t, err, tabular.ErrColumnNotFound)

	_, err = table.Cell("email", 9)
	assert.ErrorIs(t, err, tabular.ErrRowOutOfRange)
}

func TestOpen_NoHeader(t *testing.T) {
	path := writeFile(t, "employee_ids_delete.csv", "E-1\nE-2\nE-3\n")

	table, err := tabular.Open(path, tabular.Options{NoHeader: true})
	require.NoError(t, err)

	assert.Nil(t, table.Header())
	assert.Equal(t, 3, table.DataRows())
	assert.Equal(t, []string{"E-1", "E-2", "E-3"}, table.ColumnAt(0))

	_, err = table.Cell("id", 1)
	assert.ErrorIs(t, err, tabular.ErrColumnNotFound)
}

func TestOpen_UnsupportedFormat(t *testing.T) {
	path := writeFile(t, "users.json", "[]")

	_, err := tabular.Open(path, tabular.Options{})
	assert.Error(t, err)
}

func TestTable_IndexAndRecords(t *testing.T) {
	path := writeFile(t, "users.csv", "email,role\na@example.com,Employee\nb@example.com,Manager\n")

	table, err := tabular.Open(path, tabular.Options{})
	require.NoError(t, err)

	index, err := table.Index("email")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a@example.com": 2, "b@example.com": 3}, index)

	records := table.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "Manager", records[1]["role"])
}

func TestTable_SetCellAndSaveCSV(t *testing.T) {
	path := writeFile(t, "user_update.csv", "userId,email\n,a@example.com\n,b@example.com\n")

	table, err := tabular.Open(path, tabular.Options{})
	require.NoError(t, err)

	require.NoError(t, table.SetCell("userId", 2, "db-1"))
	require.NoError(t, table.SetCell("userId", 3, "db-2"))
	require.NoError(t, table.Save())

	reread, err := tabular.Open(path, tabular.Options{})
	require.NoError(t, err)
	ids, err := reread.Column("userId")
	require.NoError(t, err)
	assert.Equal(t, []string{"db-1", "db-2"}, ids)
}

func TestWriteAndOpen_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report", "excelReport.xlsx")

	err := tabular.Write(path, "Users to Delete", [][]string{
		{"Database ID", "Employee ID", "Email"},
		{"db-1", "E-1", "a@example.com"},
		{"db-2", "E-2", "b@example.com"},
	})
	require.NoError(t, err)

	table, err := tabular.Open(path, tabular.Options{Sheet: "Users to Delete"})
	require.NoError(t, err)

	assert.Equal(t, "Users to Delete", table.Sheet())
	assert.Equal(t, 2, table.DataRows())
	v, err := table.Cell("Database ID", 3)
	require.NoError(t, err)
	assert.Equal(t, "db-2", v)

	require.NoError(t, table.SetCell("Email", 2, "changed@example.com"))
	require.NoError(t, table.Save())
	require.NoError(t, table.Close())

	reread, err := tabular.Open(path, tabular.Options{})
	require.NoError(t, err)
	defer reread.Close()
	v, err = reread.Cell("Email", 2)
	require.NoError(t, err)
	assert.Equal(t, "changed@example.com", v)
}

func TestOpen_XLSXMissingSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, tabular.Write(path, "", [][]string{{"a"}, {"1"}}))

	_, err := tabular.Open(path, tabular.Options{Sheet: "Nope"})
	assert.Error(t, err)
}

func TestOpen_InteriorBlankRowsMatchAcrossFormats(t *testing.T) {
	rows := [][]string{
		{"email", "userId"},
		{"a@example.com", ""},
		{"", ""},
		{"b@example.com", ""},
	}
	for _, name := range []string{"users.csv", "users.xlsx"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, tabular.Write(path, "", rows))

			table, err := tabular.Open(path, tabular.Options{})
			require.NoError(t, err)
			assert.Equal(t, 2, table.DataRows())
			emails, err := table.Column("email")
			require.NoError(t, err)
			assert.Equal(t, []string{"a@example.com", "b@example.com"}, emails)

			require.NoError(t, table.SetCell("userId", 3, "db-2"))
			require.NoError(t, table.Save())
			require.NoError(t, table.Close())

			reread, err := tabular.Open(path, tabular.Options{})
			require.NoError(t, err)
			defer reread.Close()
			assert.Equal(t, 2, reread.DataRows())
			ids, err := reread.Column("userId")
			require.NoError(t, err)
			assert.Equal(t, []string{"", "db-2"}, ids)
		})
	}
}

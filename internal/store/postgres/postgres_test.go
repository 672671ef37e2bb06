package postgres

import (
	"testing"

	"github.com/JonMunkholm/CleanCSV/internal/store"
)

func TestCreateTableSQL(t *testing.T) {
	tests := []struct {
		name  string
		table string
		cols  []store.ColumnDef
		want  string
	}{
		{
			name:  "mixed types",
			table: "people",
			cols:  []store.ColumnDef{{Name: "name"}, {Name: "age", Numeric: true}},
			want:  `CREATE TABLE "people" ("name" TEXT, "age" DOUBLE PRECISION)`,
		},
		{
			name:  "quoted column names",
			table: "t1",
			cols:  []store.ColumnDef{{Name: `First "Nick" Name`}, {Name: "Unnamed: 1"}},
			want:  `CREATE TABLE "t1" ("First ""Nick"" Name" TEXT, "Unnamed: 1" TEXT)`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CreateTableSQL(tt.table, tt.cols); got != tt.want {
				t.Errorf("CreateTableSQL() =\n  %s\nwant\n  %s", got, tt.want)
			}
		})
	}
}

func TestOptText(t *testing.T) {
	if v := optText(""); v.Valid {
		t.Error("empty string should be NULL")
	}
	if v := optText("x"); !v.Valid || v.String != "x" {
		t.Errorf("optText(x) = %+v", v)
	}
}

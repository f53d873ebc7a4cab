package system

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/habitpulse/internal/models"
)

func writeImportFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.json")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write import file: %v", err)
	}
	return path
}

func TestParseExport(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    int
		wantErr bool
	}{
		{"array", `[{"id":"a","title":"A"},{"id":"b","title":"B"}]`, 2, false},
		{"wrapped", `{"habits":[{"id":"a","title":"A"}],"profile":{"name":"x"}}`, 1, false},
		{"wrapped empty", `{"habits":[]}`, 0, false},
		{"missing key", `{"profile":{"name":"x"}}`, 0, true},
		{"empty file", "  \n", 0, true},
		{"garbage", `not json`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseExport([]byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseExport() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && len(got) != tt.want {
				t.Errorf("parseExport() returned %d habits, want %d", len(got), tt.want)
			}
		})
	}
}

func TestImportCmd_MergesByID(t *testing.T) {
	ctx, cleanup := setupTestDebugDB(t)
	defer cleanup()

	addTestHabit(t, ctx, "Read", map[string]models.HabitLog{
		"2024-06-01": {Date: "2024-06-01", Value: 1, Completed: true},
	})

	path := writeImportFile(t, `{"habits":[
		{"id":"Read-id","title":"Read","goal":20,"unit":"pages","frequency":[1,3,5],"type":"count",
		 "logs":{"2024-06-05":{"date":"2024-06-05","value":20,"completed":true,"note":"great chapter"}}},
		{"title":"Stretch","goal":1,"unit":"times","frequency":[0,1,2,3,4,5,6],"type":"check","logs":{}}
	]}`)

	if err := (&ImportCmd{File: path}).Run(ctx); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	habits, err := ctx.Store.GetAllHabits()
	if err != nil {
		t.Fatalf("failed to list habits: %v", err)
	}
	if len(habits) != 2 {
		t.Fatalf("got %d habits after import, want 2", len(habits))
	}

	read, err := ctx.Store.GetHabit("Read-id")
	if err != nil {
		t.Fatalf("updated habit missing: %v", err)
	}
	if read.Goal != 20 || read.Frequency != models.NewFrequency(1, 3, 5) {
		t.Errorf("updated habit = goal %v freq %v", read.Goal, read.Frequency)
	}
	if _, ok := read.Logs["2024-06-01"]; ok {
		t.Error("import should replace the habit's logs")
	}
	if l := read.Logs["2024-06-05"]; !l.Completed || l.Note != "great chapter" {
		t.Errorf("imported log = %+v", l)
	}

	stretch, err := ctx.Store.GetHabitByTitle("Stretch")
	if err != nil {
		t.Fatalf("new habit missing: %v", err)
	}
	if stretch.ID == "" || !stretch.CreatedAt.Equal(initNow) {
		t.Errorf("new habit id=%q createdAt=%v", stretch.ID, stretch.CreatedAt)
	}
}

func TestImportCmd_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{
			name:    "invalid habit",
			data:    `[{"id":"x","title":"","goal":1,"frequency":[1],"type":"check"}]`,
			wantErr: "title cannot be empty",
		},
		{
			name:    "duplicate title",
			data:    `[{"id":"x","title":"read","goal":1,"frequency":[1],"type":"check"}]`,
			wantErr: "already exists",
		},
		{
			name:    "bad log key",
			data:    `[{"id":"x","title":"New","goal":1,"frequency":[1],"type":"check","logs":{"06/05/2024":{"completed":true}}}]`,
			wantErr: "invalid log date",
		},
		{
			name:    "repeated id",
			data:    `[{"id":"x","title":"One","goal":1,"frequency":[1],"type":"check"},{"id":"x","title":"Two","goal":1,"frequency":[1],"type":"check"}]`,
			wantErr: "more than once",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cleanup := setupTestDebugDB(t)
			defer cleanup()
			addTestHabit(t, ctx, "Read", nil)

			err := (&ImportCmd{File: writeImportFile(t, tt.data)}).Run(ctx)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("import error = %v, want %q", err, tt.wantErr)
			}

			habits, _ := ctx.Store.GetAllHabits()
			if len(habits) != 1 {
				t.Errorf("rejected import wrote data: %d habits", len(habits))
			}
		})
	}
}

func TestImportCmd_DryRun(t *testing.T) {
	ctx, cleanup := setupTestDebugDB(t)
	defer cleanup()

	path := writeImportFile(t, `[{"id":"n","title":"New","goal":1,"frequency":[1],"type":"check"}]`)
	if err := (&ImportCmd{File: path, DryRun: true}).Run(ctx); err != nil {
		t.Fatalf("dry run failed: %v", err)
	}
	habits, _ := ctx.Store.GetAllHabits()
	if len(habits) != 0 {
		t.Errorf("dry run wrote %d habits", len(habits))
	}
}

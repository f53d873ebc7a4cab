package lock

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	ps "github.com/mitchellh/go-ps"
)

type mockProcess struct {
	pid        int
	executable string
}

func (m *mockProcess) Pid() int           { return m.pid }
func (m *mockProcess) PPid() int          { return 0 }
func (m *mockProcess) Executable() string { return m.executable }

// withProcesses replaces the process table with the given pid -> executable map.
func withProcesses(t *testing.T, self int, table map[int]string) {
	t.Helper()
	oldFind, oldPid, oldNow := findProcessFunc, getpid, nowFunc
	t.Cleanup(func() { findProcessFunc, getpid, nowFunc = oldFind, oldPid, oldNow })

	getpid = func() int { return self }
	nowFunc = func() time.Time { return time.Date(2024, 6, 5, 9, 0, 0, 0, time.UTC) }
	findProcessFunc = func(pid int) (ps.Process, error) {
		exe, ok := table[pid]
		if !ok {
			return nil, nil
		}
		return &mockProcess{pid: pid, executable: exe}, nil
	}
}

func TestAcquireAndRelease(t *testing.T) {
	withProcesses(t, 100, map[int]string{100: "habitpulse"})
	dir := t.TempDir()

	l, err := Acquire(dir)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	owner, err := ReadOwner(Path(dir))
	if err != nil {
		t.Fatalf("ReadOwner failed: %v", err)
	}
	if owner.PID != 100 || owner.Executable != "habitpulse" {
		t.Errorf("owner = %+v", owner)
	}

	if err := l.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if _, err := os.Stat(Path(dir)); !os.IsNotExist(err) {
		t.Error("lockfile should be removed on release")
	}
	if err := l.Release(); err != nil {
		t.Errorf("second Release should be a no-op, got %v", err)
	}
}

func TestAcquireHeldByLiveProcess(t *testing.T) {
	dir := t.TempDir()
	withProcesses(t, 200, map[int]string{100: "habitpulse", 200: "habitpulse"})

	content := "100|habitpulse|2024-06-05T08:00:00Z"
	if err := os.WriteFile(Path(dir), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := Acquire(dir)
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("Acquire error = %v, want ErrLocked", err)
	}
	if !strings.Contains(err.Error(), "pid 100") {
		t.Errorf("error should name the owner: %v", err)
	}

	_, held, err := Status(dir)
	if err != nil || !held {
		t.Errorf("Status() held=%v err=%v, want held", held, err)
	}
}

func TestAcquireReclaimsStaleLocks(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "dead pid", content: "100|habitpulse|2024-06-05T08:00:00Z"},
		{name: "recycled pid", content: "300|habitpulse|2024-06-05T08:00:00Z"},
		{name: "malformed", content: "garbage"},
		{name: "bad pid", content: "abc|habitpulse|2024-06-05T08:00:00Z"},
		{name: "empty executable", content: "100| |2024-06-05T08:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withProcesses(t, 200, map[int]string{200: "habitpulse", 300: "bash"})
			dir := t.TempDir()
			if err := os.WriteFile(Path(dir), []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}

			l, err := Acquire(dir)
			if err != nil {
				t.Fatalf("Acquire failed: %v", err)
			}
			defer l.Release()

			owner, err := ReadOwner(Path(dir))
			if err != nil || owner.PID != 200 {
				t.Errorf("owner = %+v err=%v, want pid 200", owner, err)
			}
		})
	}
}

func TestReleaseDoesNotRemoveForeignLock(t *testing.T) {
	withProcesses(t, 100, map[int]string{100: "habitpulse"})
	dir := t.TempDir()

	l, err := Acquire(dir)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if err := os.WriteFile(Path(dir), []byte("999|habitpulse|2024-06-05T08:00:00Z"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := l.Release(); err == nil {
		t.Error("expected error releasing a lock owned by another pid")
	}
	if _, err := os.Stat(Path(dir)); err != nil {
		t.Error("foreign lockfile should be left in place")
	}
}

func TestStatusNoLockfile(t *testing.T) {
	_, held, err := Status(t.TempDir())
	if err != nil || held {
		t.Errorf("Status() held=%v err=%v, want not held", held, err)
	}
}

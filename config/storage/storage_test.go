package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestAtomicFileUpdate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	writeFile(t, path, `{"old":true}`)

	if err := AtomicFileUpdate(path, `{"new":true}`, true); err != nil {
		t.Fatalf("AtomicFileUpdate: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != `{"new":true}` {
		t.Errorf("content = %s", data)
	}

	// The previous content survives as a backup
	backups, err := NewBackupManager(DefaultBackupRetention).ListBackups(path)
	if err != nil {
		t.Fatalf("ListBackups: %v", err)
	}
	if len(backups) != 1 {
		t.Fatalf("got %d backups, want 1", len(backups))
	}
	backup, _ := os.ReadFile(backups[0])
	if string(backup) != `{"old":true}` {
		t.Errorf("backup content = %s", backup)
	}

	// No stray temp files
	matches, _ := filepath.Glob(filepath.Join(dir, "settings.json.tmp*"))
	if len(matches) != 0 {
		t.Errorf("temp files left behind: %v", matches)
	}
}

func TestAtomicFileUpdateNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	if err := AtomicFileUpdate(path, `{}`, true); err != nil {
		t.Fatalf("AtomicFileUpdate: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("permissions = %o, want 0600", perm)
	}
}

func TestCleanupOldBackups(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	writeFile(t, path, `{}`)

	// Five backups with distinct, ordered mtimes
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		backup := fmt.Sprintf("%s.backup-2024010100000%d-1", path, i)
		writeFile(t, backup, fmt.Sprintf(`{"rev":%d}`, i))
		mtime := base.Add(time.Duration(i) * time.Minute)
		if err := os.Chtimes(backup, mtime, mtime); err != nil {
			t.Fatalf("Chtimes: %v", err)
		}
	}

	bm := NewBackupManager(3)
	if err := bm.CleanupOldBackups(path); err != nil {
		t.Fatalf("CleanupOldBackups: %v", err)
	}

	backups, err := bm.ListBackups(path)
	if err != nil {
		t.Fatalf("ListBackups: %v", err)
	}
	if len(backups) != 3 {
		t.Fatalf("got %d backups after cleanup, want 3", len(backups))
	}
	// The oldest two are gone, the newest survive
	data, _ := os.ReadFile(backups[len(backups)-1])
	if string(data) != `{"rev":4}` {
		t.Errorf("newest backup = %s", data)
	}
}

func TestRestoreFromLatestBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	writeFile(t, path, `{"rev":0}`)

	bm := NewBackupManager(DefaultBackupRetention)
	if _, err := bm.CreateBackup(path); err != nil {
		t.Fatalf("CreateBackup: %v", err)
	}
	writeFile(t, path, `{"rev":1,"broken":`)

	if err := bm.RestoreFromLatestBackup(path); err != nil {
		t.Fatalf("RestoreFromLatestBackup: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != `{"rev":0}` {
		t.Errorf("restored content = %s", data)
	}
}

func TestRestoreWithoutBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	writeFile(t, path, `{}`)

	err := NewBackupManager(DefaultBackupRetention).RestoreFromLatestBackup(path)
	if err == nil {
		t.Fatal("expected an error with no backups present")
	}
}

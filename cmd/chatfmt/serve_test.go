package main

import (
	"path/filepath"
	"testing"

	"github.com/gorewood/chatfmt/internal/output"
)

func TestServeCommand_Registered(t *testing.T) {
	cmd := newRootCmd()
	serve, _, err := cmd.Find([]string{"serve"})
	if err != nil {
		t.Fatalf("Find(serve) error = %v", err)
	}
	if serve.Name() != "serve" || serve.GroupID != "agent" {
		t.Errorf("serve = %q in group %q", serve.Name(), serve.GroupID)
	}
}

func TestServeCommand_CatalogConflict(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "run.yaml")
	writeFile(t, cfgPath, "templates:\n  llama3: mine\n")

	_, _, err := executeCmd(t, "serve", "--config", cfgPath)
	if err == nil {
		t.Fatal("expected conflict before the server starts")
	}
	if got := output.GetExitCode(err); got != output.ExitConflict {
		t.Errorf("exit code = %d, want %d", got, output.ExitConflict)
	}
}

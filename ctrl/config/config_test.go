package config

import (
	"github.com/tennlab/ucaspian/link/packet"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("expected defaults\nreceived: %+v\nexpected: %+v", cfg, Default())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, "tcp: bridge.local:4000\ntimeout: 330ms\nframing: leak-sentinel\ncapture: /tmp/session.csv\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	expected := &Config{
		Port:    "/dev/ttyUSB0",
		TCP:     "bridge.local:4000",
		Timeout: 330 * time.Millisecond,
		Framing: "leak-sentinel",
		Capture: "/tmp/session.csv",
	}
	if !reflect.DeepEqual(cfg, expected) {
		t.Errorf("wrong config\nreceived: %+v\nexpected: %+v", cfg, expected)
	}
	f, err := cfg.ParsedFraming()
	if err != nil || f != packet.FramingV1 {
		t.Errorf("wrong framing %v (%v)", f, err)
	}
}

func TestLoadInvalid(t *testing.T) {
	for _, content := range []string{
		"timeout: [1, 2]\n",
		"timeout: -1s\n",
		"framing: v3\n",
		"port: \"\"\n",
	} {
		if _, err := Load(writeConfig(t, content)); err == nil {
			t.Errorf("expected error loading %q", content)
		}
	}
}

func TestDefaultPath(t *testing.T) {
	if filepath.Base(DefaultPath()) != "config.yaml" || filepath.Base(filepath.Dir(DefaultPath())) != ".ucaspian" {
		t.Errorf("unexpected default path %s", DefaultPath())
	}
}

package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"ATLASPROMPT_LLM_PROVIDER", "ATLASPROMPT_LLM_MODEL", "ATLASPROMPT_LLM_API_KEY",
		"ATLASPROMPT_RENDER_API_KEY", "MAPS_API_KEY",
		"GEMINI_API_KEY", "GOOGLE_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OLLAMA_BASE_URL",
	} {
		t.Setenv(name, "")
	}
	t.Setenv("HOME", t.TempDir())
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	c, used, err := loadConfig("", nil)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if used != "" {
		t.Errorf("Expected no config file, got %s", used)
	}
	if c.LLM.Provider != "gemini" {
		t.Errorf("Expected default provider gemini, got %s", c.LLM.Provider)
	}
	if c.Server.Port == 0 || c.Render.Width == 0 {
		t.Errorf("Expected defaults to be populated, got %+v", c)
	}
}

func TestLoadConfig_Precedence(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "llm:\n  provider: openai\n  model: gpt-4o-mini\nserver:\n  port: 9000\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	// file only
	c, used, err := loadConfig(path, nil)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if used != path {
		t.Errorf("Expected config file %s, got %s", path, used)
	}
	if c.LLM.Provider != "openai" || c.LLM.Model != "gpt-4o-mini" || c.Server.Port != 9000 {
		t.Errorf("Expected file values, got %+v", c.LLM)
	}

	// env beats file
	t.Setenv("ATLASPROMPT_LLM_MODEL", "gpt-4o")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	c, _, err = loadConfig(path, nil)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if c.LLM.Model != "gpt-4o" {
		t.Errorf("Expected env model gpt-4o, got %s", c.LLM.Model)
	}
	if c.LLM.APIKey != "sk-test" {
		t.Errorf("Expected provider key from OPENAI_API_KEY, got %q", c.LLM.APIKey)
	}

	// flag beats env
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("model", "", "")
	flags.Int("port", 0, "")
	if err := flags.Parse([]string{"--model", "o3-mini"}); err != nil {
		t.Fatal(err)
	}
	c, _, err = loadConfig(path, flags)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if c.LLM.Model != "o3-mini" {
		t.Errorf("Expected flag model o3-mini, got %s", c.LLM.Model)
	}
	if c.Server.Port != 9000 {
		t.Errorf("Unset flag must not override file port, got %d", c.Server.Port)
	}
}

func TestLoadConfig_MapsKeyFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAPS_API_KEY", "maps-key")

	c, _, err := loadConfig("", nil)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if c.Render.APIKey != "maps-key" {
		t.Errorf("Expected render key from MAPS_API_KEY, got %q", c.Render.APIKey)
	}
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	clearEnv(t)

	if _, _, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"), nil); err == nil {
		t.Error("Expected error for missing explicit config file")
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	if err := writeDefaultConfig(path); err != nil {
		t.Fatalf("writeDefaultConfig failed: %v", err)
	}

	c, used, err := loadConfig(path, nil)
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if used != path || c.LLM.Provider != "gemini" {
		t.Errorf("Unexpected config from generated file: %s %+v", used, c.LLM)
	}

	if err := writeDefaultConfig(path); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("Expected refusal to overwrite, got %v", err)
	}
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"short", "****"},
		{"AIzaSyD-very-long-key", "AIza****"},
	}

	for _, tt := range tests {
		if got := maskSecret(tt.in); got != tt.want {
			t.Errorf("maskSecret(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Castles of Wales", "castles-of-wales"},
		{"  The Silk Road: Xi'an -> Samarkand!  ", "the-silk-road-xi-an-samarkand"},
		{"///", "prompt"},
		{"Москва и Киев", "москва-и-киев"},
		{strings.Repeat("a", 100), strings.Repeat("a", 60)},
	}

	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
